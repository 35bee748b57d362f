package main

import (
	"fmt"
	"strings"
	"time"

	"levelup/internal/repository"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database  repository.Config `yaml:"database"`
	Catalog   CatalogConfig     `yaml:"catalog"`
	Scheduler SchedulerConfig   `yaml:"scheduler"`
	Weekly    WeeklyConfig      `yaml:"weekly"`
	Server    ServerConfig      `yaml:"server"`

	LogLevel string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type CatalogConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

type SchedulerConfig struct {
	Interval string `yaml:"interval"`
	Timezone string `yaml:"timezone"`
}

type WeeklyConfig struct {
	LevelThreshold int `yaml:"levelThreshold"`
	MinClasses     int `yaml:"minClasses"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.SetDefault("database.driver", repository.DriverSQLite)
	viper.SetDefault("database.path", "data/levelup.db")
	viper.SetDefault("database.autoMigrate", true)
	viper.SetDefault("scheduler.interval", "@every 1m")
	viper.SetDefault("weekly.levelThreshold", 3)
	viper.SetDefault("weekly.minClasses", 3)
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("logLevel", "info")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Location resolves the timezone used for daily and weekly resets. Empty
// means the machine's local time.
func (c SchedulerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
