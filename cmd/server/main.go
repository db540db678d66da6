package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	"github.com/docsync/server/internal/config"
	"github.com/docsync/server/internal/destination"
	"github.com/docsync/server/internal/handlers"
	custommw "github.com/docsync/server/internal/middleware"
	"github.com/docsync/server/internal/models"
	"github.com/docsync/server/internal/observability"
	"github.com/docsync/server/internal/repository"
	"github.com/docsync/server/internal/services"
	"github.com/docsync/server/internal/source"
)

const serviceVersion = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	// Initialize telemetry
	shutdownTelemetry, err := observability.Setup(ctx, "docsync-server", serviceVersion)
	if err != nil {
		log.Printf("Warning: telemetry initialization failed: %v", err)
	}

	// Initialize database and repositories
	var linkRepo repository.LinkRepo
	var documentRepo repository.DocumentRepo
	if cfg.UsePostgres() {
		log.Println("Using PostgreSQL database")
		db, err := repository.NewPostgresDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
		}
		defer db.Close()
		linkRepo = repository.NewLinkRepositoryPostgres(db)
		documentRepo = repository.NewDocumentRepositoryPostgres(db)
	} else {
		log.Println("Using SQLite database")
		db, err := repository.NewSQLiteDB(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite database: %v", err)
		}
		defer db.Close()
		linkRepo = repository.NewLinkRepository(db)
		documentRepo = repository.NewDocumentRepository(db)
	}

	// Source resolver: local filesystem always, S3 when a bucket is configured
	sources := source.Resolver{
		models.SourceClassLocal: source.NewLocalSource(afero.NewOsFs()),
	}
	if cfg.RemoteSource.Bucket != "" {
		s3Source, err := source.NewS3Source(ctx, cfg.RemoteSource)
		if err != nil {
			log.Fatalf("Failed to initialize S3 source: %v", err)
		}
		sources[models.SourceClassRemote] = s3Source
		log.Printf("Remote source enabled: s3://%s", cfg.RemoteSource.Bucket)
	} else {
		log.Println("Remote source disabled (no bucket configured)")
	}

	// Destination index client
	index := destination.NewHTTPIndex(cfg.Destination.BaseURL, destination.HTTPIndexOptions{
		APIKey:       cfg.Destination.APIKey,
		PollInterval: time.Duration(cfg.Destination.PollIntervalSeconds) * time.Second,
		MaxWait:      time.Duration(cfg.Destination.UploadTimeoutSeconds) * time.Second,
	})

	// Initialize services
	clock := clockwork.NewRealClock()
	hashService := services.NewHashService()
	detector := services.NewChangeDetector()

	syncService := services.NewSyncService(linkRepo, sources, index, hashService, detector, clock)
	versionService := services.NewVersionService(linkRepo, index, hashService, clock)
	documentService := services.NewDocumentService(documentRepo, index, hashService)

	// Event hub for live status updates
	eventHub := services.NewSyncEventHub()
	go eventHub.Run()
	defer eventHub.Stop()
	syncService.SetEventHub(eventHub)
	versionService.SetEventHub(eventHub)

	// Scheduler for auto-sync links
	scheduler := services.NewSchedulerService(syncService, clock,
		time.Duration(cfg.Scheduler.RemoteIntervalMinutes)*time.Minute,
		time.Duration(cfg.Scheduler.LocalIntervalMinutes)*time.Minute,
	)

	// Wire metrics when telemetry is up
	if syncMetrics, err := observability.NewSyncMetrics(); err != nil {
		log.Printf("Warning: sync metrics unavailable: %v", err)
	} else {
		syncService.SetMetrics(syncMetrics)
		scheduler.SetMetrics(syncMetrics)
	}
	if cfg.Scheduler.Enabled {
		scheduler.Start()
		defer scheduler.Stop()
	} else {
		log.Println("Scheduler disabled")
	}

	maxUploadBytes := cfg.MaxUploadMB << 20

	// Initialize handlers
	linkHandler := handlers.NewLinkHandler(syncService, versionService, maxUploadBytes)
	documentHandler := handlers.NewDocumentHandler(documentService, maxUploadBytes)
	healthHandler := handlers.NewHealthHandler()
	eventsHandler := handlers.NewEventsHandler(eventHub)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if httpTelemetry, err := observability.NewHTTPTelemetry(); err != nil {
		log.Printf("Warning: HTTP instrumentation unavailable: %v", err)
	} else {
		r.Use(httpTelemetry.Middleware)
	}
	r.Use(custommw.APIKeyAuth(cfg.Security.APIKey, cfg.Security.APIKeyHeader))

	// Routes
	r.Get("/health", healthHandler.HealthCheck)
	r.Get("/api/health", healthHandler.HealthCheck)

	r.Route("/api/links", func(r chi.Router) {
		r.Post("/", linkHandler.Create)
		r.Get("/", linkHandler.List)
		r.Post("/sync-all", linkHandler.SyncAll)
		r.Get("/{id}", linkHandler.Get)
		r.Delete("/{id}", linkHandler.Delete)
		r.Post("/{id}/sync", linkHandler.Sync)
		r.Post("/{id}/replace", linkHandler.Replace)
		r.Get("/{id}/versions", linkHandler.Versions)
	})

	r.Route("/api/documents", func(r chi.Router) {
		r.Post("/upload", documentHandler.Upload)
		r.Get("/", documentHandler.List)
		r.Delete("/{id}", documentHandler.Delete)
	})

	r.Get("/ws/events", eventsHandler.HandleConnection)

	// Create server
	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second, // Longer for uploads with indexing wait
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("DocSync Server starting on %s", cfg.ServerAddress)
		log.Printf("Destination index: %s", cfg.Destination.BaseURL)
		log.Printf("Max upload size: %dMB", cfg.MaxUploadMB)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if shutdownTelemetry != nil {
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Printf("Telemetry shutdown error: %v", err)
		}
	}

	log.Println("Server stopped")
}
