package main

import (
	"log"

	"subbridge-be/internal/config"
	"subbridge-be/internal/model"
	"subbridge-be/pkg/database"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// webhook_events uses gen_random_uuid() for its primary key.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		log.Fatalf("Failed to ensure pgcrypto extension: %v", err)
	}

	err = db.AutoMigrate(
		&model.SubscriptionRecord{},
		&model.WebhookEvent{},
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migration completed successfully")
}
