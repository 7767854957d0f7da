package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"

	"autoshop/internal/auth"
	"autoshop/internal/config"
	"autoshop/internal/db"
	"autoshop/internal/seed"
)

func main() {
	log.Println("Starting seed script...")

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not load .env: %v", err)
	}
	cfg := config.Load()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	if cfg.AdminEmail == "" {
		log.Println("ADMIN_EMAIL not set, skipping admin bootstrap")
	}

	result, err := seed.Run(context.Background(), gormDB, auth.NewPasswordHasher(cfg.BcryptCost), seed.Admin{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Name:     cfg.AdminName,
		Phone:    cfg.AdminPhone,
	})
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Admin created: %t, promoted: %t", result.AdminCreated, result.AdminPromoted)
	log.Printf("  - New mechanics created: %d", result.Mechanics)
	log.Printf("  - New parts created: %d", result.Parts)
}
