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

	"github.com/collectionvault/index-engine/internal/cachefolder"
	"github.com/collectionvault/index-engine/internal/catalog"
	"github.com/collectionvault/index-engine/internal/config"
	"github.com/collectionvault/index-engine/internal/docstore"
	"github.com/collectionvault/index-engine/internal/imgproc"
	"github.com/collectionvault/index-engine/internal/index"
	"github.com/collectionvault/index-engine/internal/infra/events"
	"github.com/collectionvault/index-engine/internal/jobs"
	"github.com/collectionvault/index-engine/internal/kvs"
	"github.com/collectionvault/index-engine/internal/mbus"
	"github.com/collectionvault/index-engine/internal/worker"
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
	if err := doc.EnsureIndexes(ctx); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to parse REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	kv := kvs.NewRedisStore(redisClient)

	bus := mbus.NewAMQPBus(cfg.AMQPURL)
	defer bus.Close()
	if err := bus.DeclareTopology(ctx, cfg.AMQPExchange, jobs.QueueSpecs()); err != nil {
		log.Fatalf("failed to declare mbus topology: %v", err)
	}

	collections := catalog.NewRepository(doc)
	folders := cachefolder.NewRepository(doc)
	jobRepo := jobs.NewRepository(doc)
	processor := imgproc.NewProcessor()

	thumbSettings := index.DefaultThumbnailSettings()
	thumbSettings.MaxDimension = cfg.ThumbnailMaxDimension
	thumbSettings.Quality = cfg.ThumbnailQuality
	engine := index.New(kv, doc, processor, index.FileThumbnailSource{}, thumbSettings)

	handlers := jobs.NewHandlers(engine, collections, folders, processor, jobs.FileImageSource{}, bus)
	sup := worker.NewSupervisor(jobRepo, handlers, cfg.WorkerConcurrency, cfg.WorkerPollInterval)

	broadcaster := events.NewBroadcaster()
	sup.SetBroadcaster(broadcaster)

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","worker":"running"}`)
	})
	healthMux.HandleFunc("/events", broadcaster.ServeHTTP)
	healthServer := &http.Server{Addr: ":8081", Handler: healthMux}

	go func() {
		log.Println("Health check server starting on :8081")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Health check server error: %v", err)
		}
	}()

	go func() {
		log.Printf("Worker started, polling every %s with concurrency %d", cfg.WorkerPollInterval, cfg.WorkerConcurrency)
		if err := sup.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Worker stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received, stopping worker...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Health server shutdown error: %v", err)
	}

	time.Sleep(5 * time.Second)
	log.Println("Worker stopped")
}
