package main

import (
	"log"
	"os"

	"smart-search-be/internal/model"
	"smart-search-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. Pre-Migration: gen_random_uuid() comes from pgcrypto
	log.Println("Step 1: Setting up Extensions...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Printf("Warn: Failed to create pgcrypto: %v. Continuing...", err)
	}

	// 4. AutoMigrate
	log.Println("Step 2: Running AutoMigrate...")
	if err := db.AutoMigrate(&model.SearchTurn{}, &model.McpLog{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: indexes for the history and log queries
	log.Println("Step 3: Creating Indexes...")
	postMigrationSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_search_turns_session_ts ON search_turns (session_id, ts DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_mcp_logs_request ON mcp_logs (request_id);`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("Success: Database migration completed.")
}
