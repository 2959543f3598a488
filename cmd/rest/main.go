package main

import (
	"context"
	"log"

	"chat-agent-be/internal/bootstrap"
	"chat-agent-be/internal/config"
	"chat-agent-be/internal/server"
	"chat-agent-be/internal/tracer"
	"chat-agent-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Ingress Consumer...")
		if err := container.IngressConsumer.Start(); err != nil {
			log.Printf("Background Ingress Consumer Error: %v", err)
		}
	}()
	go func() {
		log.Println("Background: Starting Turn Consumer...")
		if err := container.TurnConsumer.Consume(context.Background()); err != nil {
			log.Printf("Background Turn Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
