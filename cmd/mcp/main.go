package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"smart-search-be/internal/bootstrap"
	"smart-search-be/internal/config"
	"smart-search-be/internal/tools"
	"smart-search-be/pkg/database"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap/zapcore"
)

const version = "0.1.0"

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

	mcpServer, err := tools.NewMCPServer(container.Registry, "smart-search", version)
	if err != nil {
		log.Fatalf("Failed to build MCP server: %v", err)
	}

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Printf("MCP server stopped: %v", err)
	}
}
