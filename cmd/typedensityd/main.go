// Command typedensityd is the typedensity study service.
// It holds one variant cache for the life of the process and serves the
// study endpoint, run lookups and a health check.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/typedensity/typedensity/internal/api"
	"github.com/typedensity/typedensity/internal/platform"
	"github.com/typedensity/typedensity/internal/reportdb"
	"github.com/typedensity/typedensity/internal/storage"
	"github.com/typedensity/typedensity/pkg/config"
	"github.com/typedensity/typedensity/pkg/dedup"
)

type serverConfig struct {
	Port        string
	DatabaseURL string
	APIKey      string
	Parallelism int
	Storage     config.StorageConfig
}

func loadConfig() serverConfig {
	parallelism, _ := strconv.Atoi(os.Getenv("STUDY_PARALLELISM"))
	return serverConfig{
		Port:        envOrDefault("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		APIKey:      os.Getenv("TYPEDENSITY_API_KEY"),
		Parallelism: parallelism,
		Storage: config.StorageConfig{
			Backend:  os.Getenv("STORAGE_BACKEND"),
			BaseDir:  os.Getenv("LOCAL_STORAGE_PATH"),
			Bucket:   firstNonEmpty(os.Getenv("S3_BUCKET"), os.Getenv("GCS_BUCKET")),
			Region:   os.Getenv("AWS_REGION"),
			Endpoint: os.Getenv("S3_ENDPOINT"),
		},
	}
}

func main() {
	cfg := loadConfig()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := api.Options{Parallelism: cfg.Parallelism}

	if cfg.DatabaseURL != "" {
		db, err := platform.OpenDB(cfg.DatabaseURL, true)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		opts.DB = reportdb.NewStore(db)
		log.Println("persisting runs to postgres")
	}

	if cfg.Storage.Backend != "" {
		blobs, err := storage.Open(ctx, cfg.Storage, "/tmp/typedensity-data")
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		defer storage.Close(blobs)
		opts.Blobs = blobs
		log.Printf("archiving reports to %s storage", cfg.Storage.Backend)
	}

	variants := dedup.NewVariantCache()
	handler := api.NewHandler(variants, opts)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.RequestLog(api.APIKeyAuth(cfg.APIKey)(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("starting typedensityd on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	log.Printf("variant cache held %d canonical types", variants.Len())
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
