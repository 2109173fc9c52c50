package main

import (
	"context"
	"log"

	"medlit-rag-be/internal/bootstrap"
	"medlit-rag-be/internal/config"
	"medlit-rag-be/internal/server"
	"medlit-rag-be/internal/tracer"
	"medlit-rag-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
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

	// 4. Run Startup Checks
	// A service that cannot reach its chunk store must not come up half-alive.
	if err := container.ChatService.Initialize(context.Background()); err != nil {
		log.Fatalf("Startup checks failed: %v", err)
	}

	// 5. Start Background Services
	go func() {
		log.Println("Background: Starting Ingest Worker...")
		if err := container.IngestService.Consume(context.Background()); err != nil {
			log.Printf("Background Ingest Error: %v", err)
		}
	}()

	// 6. Initialize Server
	srv := server.New(cfg, container)

	// 7. Run Server
	log.Fatal(srv.Run())
}
