package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"levelup/internal/repository"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	data := []byte(`
database:
  driver: memory
catalog:
  path: catalog.toml
  watch: true
scheduler:
  timezone: Europe/Berlin
weekly:
  minClasses: 4
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("APP_SERVER_PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, repository.DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "catalog.toml", cfg.Catalog.Path)
	assert.True(t, cfg.Catalog.Watch)
	assert.Equal(t, 4, cfg.Weekly.MinClasses)
	assert.Equal(t, 3, cfg.Weekly.LevelThreshold)
	assert.Equal(t, "@every 1m", cfg.Scheduler.Interval)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestSchedulerLocation(t *testing.T) {
	loc, err := SchedulerConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = SchedulerConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	_, err = SchedulerConfig{Timezone: "Mars/Olympus"}.Location()
	assert.Error(t, err)
}
