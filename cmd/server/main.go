// Package main initializes and starts the vocabulary word server, setting
// up configuration, logging, the database connection, repositories,
// services and handlers.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/phihung0131/vocabulary-extension/internal/config"
	"github.com/phihung0131/vocabulary-extension/internal/db"
	"github.com/phihung0131/vocabulary-extension/internal/logger"
	"github.com/phihung0131/vocabulary-extension/internal/repository"
	"github.com/phihung0131/vocabulary-extension/internal/server/handler/http"
	"github.com/phihung0131/vocabulary-extension/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Purge soft-deleted collocations in the background.
	db.StartSoftDeleteCleaner(context.Background(), postgresDB,
		time.Hour,       // interval
		30*24*time.Hour, // retention: 30 days
		zapLogger,
	)

	// Initialize repository, service and handlers.
	wordRepo := repository.NewPostgresWordRepository(postgresDB)
	wordService := service.NewWordService(wordRepo)
	wordHandler := &http.WordHandler{WordService: wordService}

	// Build the router with middleware and routes.
	router := http.NewRouter(wordHandler, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Port,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
