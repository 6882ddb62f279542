package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/api"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/config"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/db"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/logger"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/replica"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/storage"
)

const (
	configPath      = "./cmd/app/config.yml"
	shutdownTimeout = 10 * time.Second
)

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	if err = logger.SetLevel(conf.API.LogLevel); err != nil {
		return fmt.Errorf("failed to set log level -> %w", err)
	}
	defer zap.L().Sync() //nolint:errcheck

	err = config.Watch(configPath, func(c *config.AppConfig) {
		if err := logger.SetLevel(c.API.LogLevel); err != nil {
			zap.L().Warn("ignoring log level from reloaded config", zap.Error(err))
		}
	}, func(err error) {
		zap.L().Warn("config reload failed", zap.Error(err))
	})
	if err != nil {
		return fmt.Errorf("failed to watch config -> %w", err)
	}

	primary, err := db.Open(conf.Database, os.Getenv("DATABASE_URL"))
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}
	defer func() {
		if err := db.Close(primary); err != nil {
			zap.L().Error("failed to close database", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := replica.Open(ctx, *conf.Replica)
	if err != nil {
		return fmt.Errorf("failed to initialize replica store -> %w", err)
	}
	syncer := replica.NewSyncer(store, conf.Replica.Timeout)

	images, err := storage.NewLocalStorage(conf.API.UploadDir, uploadsURL(conf.API.BaseURL))
	if err != nil {
		return fmt.Errorf("failed to initialize image storage -> %w", err)
	}

	s := api.NewServer(conf, primary, syncer, images)

	addr := ":" + s.Config.API.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
	case <-ctx.Done():
		zap.L().Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("failed to shut down the server", zap.Error(err))
	}
	if err = syncer.Close(shutdownCtx); err != nil {
		zap.L().Error("failed to drain replica mirrors", zap.Error(err))
	}

	return nil
}

func uploadsURL(baseURL string) string {
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	return strings.TrimSuffix(baseURL, "/") + "/uploads"
}
