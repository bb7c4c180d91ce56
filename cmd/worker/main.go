package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gym_app_echo/internal/config"
	"gym_app_echo/internal/docstore"
	"gym_app_echo/internal/services"
	"gym_app_echo/internal/tasks"
)

const pollInterval = 5 * time.Minute

func main() {
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	db, err := services.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := services.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseProjectID, cfg.FirebaseStorageBucket)
	if err != nil {
		log.Fatalf("Firebase initialization failed: %v", err)
	}
	fs, err := app.Firestore(ctx)
	if err != nil {
		log.Fatalf("Firestore unavailable: %v", err)
	}
	store := docstore.NewFirestoreStore(fs)
	defer store.Close()

	var cache *services.RedisCache
	if cfg.RedisURL != "" {
		if cache, err = services.NewRedisCache(cfg.RedisURL); err != nil {
			log.Printf("Warning: Redis connection failed: %v", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	mailer := services.NewMailer(cfg.ResendAPIKey, cfg.EmailFrom)
	if mailer == nil {
		log.Println("Warning: RESEND_API_KEY not set, expiry reminders will fail")
	}

	registry := tasks.NewRegistry()
	tasks.DefineTasks(registry, tasks.Deps{
		Reports: services.NewKPIService(store, cache, cfg.Location()),
		Mailer:  mailer,
		Queue:   tasks.NewGormQueue(db),
		AppURL:  cfg.AppURL,
	})
	runner := tasks.NewRunner(db, registry)

	log.Printf("Worker started with tasks %v", registry.Names())

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down worker...")
		cancel()
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	// Run once on start, then on every tick
	for {
		if err := runner.ProcessDue(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Error processing tasks: %v", err)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
