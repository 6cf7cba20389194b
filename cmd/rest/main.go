package main

import (
	"context"
	"log"

	"subbridge-be/internal/bootstrap"
	"subbridge-be/internal/config"
	"subbridge-be/internal/pkg/logger"
	"subbridge-be/internal/server"
	"subbridge-be/internal/tracer"
	"subbridge-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Warning: tracer shutdown: %v", err)
		}
	}()

	cfg := config.Load()

	appLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer appLogger.Sync()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	container := bootstrap.NewContainer(cfg, db, appLogger)
	if container.NatsPublisher != nil {
		defer container.NatsPublisher.Close()
	}

	if err := container.ConsumerService.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start event consumer: %v", err)
	}

	srv := server.NewServer(container)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
