package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ekaya-inc/contig-alias/migrations"
	"github.com/ekaya-inc/contig-alias/pkg/config"
	"github.com/ekaya-inc/contig-alias/pkg/database"
	"github.com/ekaya-inc/contig-alias/pkg/handlers"
	"github.com/ekaya-inc/contig-alias/pkg/logging"
	"github.com/ekaya-inc/contig-alias/pkg/repositories"
	"github.com/ekaya-inc/contig-alias/pkg/retry"
	"github.com/ekaya-inc/contig-alias/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Configuration loaded",
		zap.String("version", cfg.Version),
		zap.String("base_url", cfg.BaseURL),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.URL())),
		zap.Int("default_page_size", cfg.Pagination.DefaultPageSize),
		zap.Int("max_page_size", cfg.Pagination.MaxPageSize))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The database may still be starting when the service comes up.
	db, err := retry.DoWithResult(ctx, retry.StartupConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:              cfg.Database.URL(),
			MaxConnections:   cfg.Database.MaxConnections,
			StatementTimeout: cfg.Database.StatementTimeout,
		})
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	if _, err := database.RunMigrations(cfg.Database.URL(), migrations.FS, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.String("error", logging.SanitizeError(err)))
	}

	assemblyRepo := repositories.NewAssemblyRepository()
	sequenceRepo := repositories.NewSequenceRepository()

	ingestService := services.NewIngestionService(assemblyRepo, retry.DefaultConfig(), logger)
	lookupService := services.NewLookupService(assemblyRepo, sequenceRepo, logger)

	scope := handlers.ScopeMiddleware(database.WithScope(db, logger))

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
	handlers.NewAssemblyHandler(ingestService, lookupService, cfg, logger.Named("http")).RegisterRoutes(mux, scope)
	handlers.NewSequenceHandler(lookupService, cfg, logger.Named("http")).RegisterRoutes(mux, scope)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting contig-alias", zap.String("addr", server.Addr), zap.String("version", cfg.Version))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
