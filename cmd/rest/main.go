package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"smart-search-be/internal/bootstrap"
	"smart-search-be/internal/config"
	"smart-search-be/internal/server"
	"smart-search-be/internal/tracer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer("smart-search-backend")
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database (optional)
	gormDB, err := bootstrap.OpenDatabase(cfg)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if gormDB == nil {
		log.Println("DB_CONNECTION_STRING not set, turn and audit logs stay in memory/files")
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, gormDB, cfg)
	if err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}
	defer container.Close()

	// 4. Start Background Services
	container.Start(ctx)

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
