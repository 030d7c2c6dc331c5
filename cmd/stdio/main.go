package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"smart-search-be/internal/bootstrap"
	"smart-search-be/internal/config"
	"smart-search-be/internal/stdio"
	"smart-search-be/pkg/database"

	"go.uber.org/zap/zapcore"
)

// stdout carries protocol frames only; every log goes to stderr.
func main() {
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	gormDB, err := bootstrap.OpenDatabase(cfg, database.WithLogOutput(os.Stderr))
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	container, err := bootstrap.NewContainer(ctx, gormDB, cfg, bootstrap.WithLogConsole(zapcore.Lock(os.Stderr)))
	if err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}
	defer container.Close()
	container.Start(ctx)

	srv := stdio.NewServer(container.Registry, container.Logger)
	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		log.Printf("stdio server stopped: %v", err)
	}
}
