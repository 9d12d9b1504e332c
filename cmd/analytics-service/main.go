package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/inflammetry/platform/pkg/common/config"
	"github.com/inflammetry/platform/pkg/common/database"
	"github.com/inflammetry/platform/pkg/common/kafka"
	"github.com/inflammetry/platform/pkg/common/logger"
	"github.com/inflammetry/platform/pkg/report"
)

func main() {
	logger.Init("analytics-service")
	cfg := config.Load()

	proto, err := report.LoadProtocol(cfg.ProtocolPath)
	if err != nil {
		logger.Log.WithError(err).Warn("falling back to default threshold protocol")
		proto = report.DefaultProtocol()
	}

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	repo := report.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate analysis tables")
	}

	cache := report.NewCache(database.GetRedis(), cfg.ReportCacheTTL)

	producer := kafka.NewProducer(cfg.AnalysisKafkaTopic)
	defer producer.Close()

	svc := report.NewService(repo, cache, producer, proto)
	watcher := report.NewWatcher(database.GetRedis())
	handler := report.NewHTTPHandler(svc, watcher, cfg.MaxRequestBody)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	handler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := kafka.NewConsumer(cfg.StudyKafkaTopic, "")
	defer consumer.Close()

	go func() {
		if err := consumer.Consume(ctx, watcher.Handle); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.WithError(err).Error("study event consumer stopped")
		}
	}()

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Analytics Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := svc.Cleanup(context.Background(), 30*24*time.Hour); err != nil {
					logger.Log.WithError(err).Warn("analysis cleanup failed")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Analytics Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	if err := database.CloseRedis(); err != nil {
		logger.Log.WithError(err).Warn("failed to close redis")
	}
	if err := database.ClosePostgres(); err != nil {
		logger.Log.WithError(err).Warn("failed to close postgres")
	}

	logger.Log.Info("Analytics Service stopped")
}
