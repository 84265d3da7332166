// @title           Tasker API
// @version         1.0
// @description     Per-user todos with categories, audit events and due-date reminders.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Tasker/internal/app"
	"Tasker/internal/config"
	"Tasker/internal/logger"

	"go.uber.org/zap"

	_ "Tasker/docs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	zl.Info("config loaded, connecting to DB and Redis")

	application, err := app.New(cfg, zl)
	if err != nil {
		zl.Fatal("app init", zap.Error(err))
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}

	go func() {
		zl.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	zl.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zl.Error("server shutdown", zap.Error(err))
	}

	if err := application.Close(ctx); err != nil {
		zl.Error("app close", zap.Error(err))
	}
}
