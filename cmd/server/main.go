package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/collectionvault/index-engine/internal/api"
	"github.com/collectionvault/index-engine/internal/auth"
	"github.com/collectionvault/index-engine/internal/config"
	"github.com/collectionvault/index-engine/internal/docstore"
	"github.com/collectionvault/index-engine/internal/imgproc"
	"github.com/collectionvault/index-engine/internal/index"
	"github.com/collectionvault/index-engine/internal/infra/events"
	"github.com/collectionvault/index-engine/internal/jobs"
	"github.com/collectionvault/index-engine/internal/kvs"
	"github.com/collectionvault/index-engine/internal/shared/jwt"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()

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

	processor := imgproc.NewProcessor()
	thumbSettings := index.DefaultThumbnailSettings()
	thumbSettings.MaxDimension = cfg.ThumbnailMaxDimension
	thumbSettings.Quality = cfg.ThumbnailQuality
	engine := index.New(kv, doc, processor, index.FileThumbnailSource{}, thumbSettings)

	jobRepo := jobs.NewRepository(doc)

	jwtSvc := jwt.NewService(cfg.JWTSecret, cfg.JWTExpirationHours)
	authSvc := auth.NewService(doc, jwtSvc)
	broadcaster := events.NewBroadcaster()

	router := api.NewRouter(api.Dependencies{
		Doc:         doc,
		KV:          kv,
		Engine:      engine,
		Jobs:        jobRepo,
		AuthService: authSvc,
		JWTService:  jwtSvc,
		Broadcaster: broadcaster,
		DebugMode:   cfg.DebugMode,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		fmt.Printf("Starting server on http://localhost:%s\n", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	fmt.Println("Server stopped")
}
