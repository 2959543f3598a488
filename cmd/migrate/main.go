package main

import (
	"context"
	"log"
	"os"

	"chat-agent-be/internal/model"
	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/internal/repository/implementation"
	"chat-agent-be/internal/service"
	"chat-agent-be/pkg/database"

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

	log.Println("Starting GORM Migration...")

	// 3. Pre-Migration: extensions GORM AutoMigrate cannot create itself
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.UserProfile{},
		&model.ChatMessage{},
		&model.Booking{},
		&model.KnowledgeEmbedding{},
		&model.Operator{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Seed the bootstrap operator account for the monitor dashboard
	email := os.Getenv("OPERATOR_EMAIL")
	password := os.Getenv("OPERATOR_PASSWORD")
	if email != "" && password != "" {
		log.Println("Step 3: Seeding bootstrap operator...")
		auth := service.NewAuthService(implementation.NewOperatorRepository(db), logger.NewNopLogger())
		if _, err := auth.CreateOperator(context.Background(), email, password, os.Getenv("OPERATOR_NAME")); err != nil {
			log.Printf("Warn: Failed to seed operator: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
