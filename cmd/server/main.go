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

	"studyshelf/internal/bootstrap"
	"studyshelf/internal/config"
	"studyshelf/internal/platform/logger"
	httptransport "studyshelf/internal/transport/http"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	appLog, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer appLog.Sync()

	app, err := bootstrap.New(ctx, cfg, appLog)
	if err != nil {
		appLog.Fatal("bootstrap failed", "error", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			appLog.Error("close resources failed", "error", err)
		}
	}()

	router := httptransport.NewRouter(app)
	server := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		appLog.Info("server starting", "addr", server.Addr, "collections", app.Collections.IDs())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("server failed", "error", err)
		}
	}()

	waitForShutdown(server, appLog)
}

func waitForShutdown(server *http.Server, appLog *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("server shutdown failed", "error", err)
	}
	appLog.Info("server stopped")
}
