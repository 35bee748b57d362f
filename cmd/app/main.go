package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"levelup/internal/api"
	"levelup/internal/catalog"
	"levelup/internal/repository"
	"levelup/internal/service"
	"levelup/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type store interface {
	service.Repository
	Close() error
}

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	loc, err := cfg.Scheduler.Location()
	if err != nil {
		zapLogger.Fatal("Invalid scheduler config", zap.Error(err))
	}

	repo, err := openStore(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := api.NewHub()
	defer hub.Close()

	source := catalog.NewSource(cfg.Catalog.Path)
	svc := service.NewService(repo, source, service.Options{
		Location: loc,
		Notifier: hub,
		Weekly: service.WeeklyRules{
			LevelThreshold: cfg.Weekly.LevelThreshold,
			MinClasses:     cfg.Weekly.MinClasses,
		},
	})

	if err := svc.Maintenance.EnsureInitialized(ctx); err != nil {
		zapLogger.Fatal("Failed to initialize store", zap.Error(err))
	}

	scheduler := service.NewScheduler(svc.Maintenance, service.SchedulerConfig{
		Interval: cfg.Scheduler.Interval,
		Location: loc,
	})
	if err := scheduler.Start(ctx); err != nil {
		zapLogger.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer scheduler.Stop()
	hub.SetForeground(scheduler)

	if cfg.Catalog.Watch && cfg.Catalog.Path != "" {
		watcher, err := catalog.NewWatcher(cfg.Catalog.Path, func(ctx context.Context) error {
			_, err := svc.Templates.Sync(ctx)
			return err
		})
		if err != nil {
			zapLogger.Fatal("Failed to watch catalog", zap.Error(err))
		}
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewStateRoutes(a, api.StateServices{
		Classes:     svc.Classes,
		Quests:      svc.Quests,
		Weekly:      svc.Weekly,
		Economy:     svc.Economy,
		Maintenance: svc.Maintenance,
	}, scheduler)
	api.NewQuestRoutes(a, svc.Quests, svc.Economy)
	api.NewClassRoutes(a, svc.Classes, svc.Economy)
	api.NewWeeklyRoutes(a, svc.Weekly, svc.Classes)
	api.NewTemplateRoutes(a, svc.Templates)
	api.NewHubRoutes(a, hub)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		zapLogger.Info("Starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Error("Server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shut down server", zap.Error(err))
	}
}

func openStore(cfg repository.Config) (store, error) {
	if cfg.Driver == repository.DriverMemory {
		return repository.NewMemory(), nil
	}
	return repository.New(cfg)
}
