package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryan-buckman/condominio/internal/config"
	"github.com/bryan-buckman/condominio/internal/logger"
	"github.com/bryan-buckman/condominio/internal/server"
	"github.com/bryan-buckman/condominio/internal/session"
)

func main() {
	cfg, foundEnv := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLogger := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if !foundEnv {
		appLogger.Debug("No .env file found, using environment variables")
	}
	loc, _ := cfg.Location()

	sess := session.New(
		session.NewFetcher(cfg.Database.FetchTimeout, cfg.Server.MaxUploadBytes),
		cfg.Database.SampleURL,
		appLogger,
	)
	defer sess.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Database.FetchTimeout)
	ev, err := sess.Load(ctx, cfg.Database.URL)
	cancel()
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load database")
	}
	if ev.Fallback {
		appLogger.WithField("source", ev.Source).Warn("Serving sample database")
	}

	srv, err := server.New(sess, server.Options{
		Addr:           ":" + cfg.Server.Port,
		DatabaseURL:    cfg.Database.URL,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Location:       loc,
	}, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create server")
	}

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}
	appLogger.Info("Server exited")
}
