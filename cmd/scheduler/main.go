package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/collectionvault/index-engine/internal/config"
	"github.com/collectionvault/index-engine/internal/docstore"
	"github.com/collectionvault/index-engine/internal/imgproc"
	"github.com/collectionvault/index-engine/internal/index"
	"github.com/collectionvault/index-engine/internal/jobs"
	"github.com/collectionvault/index-engine/internal/kvs"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	doc, err := docstore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to parse REDIS_URL: %v", err)
	}
	redisAddr := redisOpts.Addr
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	kv := kvs.NewRedisStore(redisClient)

	processor := imgproc.NewProcessor()
	thumbSettings := index.DefaultThumbnailSettings()
	thumbSettings.MaxDimension = cfg.ThumbnailMaxDimension
	thumbSettings.Quality = cfg.ThumbnailQuality
	engine := index.New(kv, doc, processor, index.FileThumbnailSource{}, thumbSettings)

	jobRepo := jobs.NewRepository(doc)

	schedulerConfig := jobs.DefaultSchedulerConfig(redisAddr)
	scheduler := jobs.NewScheduler(schedulerConfig)
	mux := scheduler.RegisterHandlers(engine, jobRepo)

	if err := scheduler.RegisterScheduledTasks(); err != nil {
		log.Fatalf("Failed to register scheduled tasks: %v", err)
	}

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","scheduler":"running"}`)
	})
	healthServer := &http.Server{Addr: ":8082", Handler: healthMux}

	go func() {
		log.Println("Health check server starting on :8082")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Health check server error: %v", err)
		}
	}()

	go func() {
		log.Println("Starting job scheduler...")
		if err := scheduler.Start(mux); err != nil {
			log.Fatalf("Scheduler error: %v", err)
		}
	}()

	log.Println("Job scheduler started successfully")
	log.Println("Scheduled tasks:")
	log.Println("  - Staleness rebuild (changed-only): every 5 minutes")
	log.Println("  - Cache cleanup tick: weekly Sunday 3 AM")

	<-ctx.Done()
	log.Println("Shutdown signal received, stopping scheduler...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Health server shutdown error: %v", err)
	}

	scheduler.Stop()
	log.Println("Scheduler stopped")
}
