package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/symptomcheck/internal/backend"
	"github.com/Skufu/symptomcheck/internal/cache"
	"github.com/Skufu/symptomcheck/internal/chat"
	"github.com/Skufu/symptomcheck/internal/composer"
	"github.com/Skufu/symptomcheck/internal/config"
	"github.com/Skufu/symptomcheck/internal/diagnosis"
	"github.com/Skufu/symptomcheck/internal/extractor"
	"github.com/Skufu/symptomcheck/internal/lexicon"
	"github.com/Skufu/symptomcheck/internal/llm"
	"github.com/Skufu/symptomcheck/internal/logging"
	"github.com/Skufu/symptomcheck/internal/server"
	"github.com/Skufu/symptomcheck/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	b, health := openBackend(ctx, cfg, logger)
	defer b.Close()

	var opts []diagnosis.Option
	if cfg.RedisURL != "" {
		dc, err := cache.NewDiagnosisCache(ctx, cfg.RedisURL, cfg.DiagnosisCacheTTL, logger)
		if err != nil {
			logger.WithError(err).Warn("Diagnosis cache disabled")
		} else {
			defer dc.Close()
			opts = append(opts, diagnosis.WithCache(dc))
		}
	}

	client, err := llm.New(ctx, cfg.LLM, logger)
	if err != nil {
		logger.WithError(err).Warn("LLM client unavailable, using template replies")
		client = nil
	}
	if closer, ok := client.(io.Closer); ok {
		defer closer.Close()
	}

	catalogue := withCatalogue(b.Store, cfg.SymptomCacheTTL)
	service := chat.NewService(
		extractor.New(catalogue, lexicon.Default, logger),
		diagnosis.NewScorer(b.Store, logger, opts...),
		composer.New(client, logger),
		b.History,
		logger,
	)

	router := server.NewRouter(server.Deps{
		Chat:       service,
		Symptoms:   catalogue,
		Health:     health,
		StaticRoot: server.DetectStaticRoot(),
		RateLimit:  server.RateLimitConfig{RPS: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
		Logger:     logger,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server error")
		}
	}()

	logger.WithFields(logrus.Fields{
		"port":  cfg.Port,
		"store": b.Driver,
		"llm":   cfg.LLM.Enabled(),
	}).Info("Server listening")
	waitForShutdown(srv, logger)
}

// openBackend falls back to the unavailable store when the configured one
// cannot be reached, so the service starts in degraded mode. The returned
// checker is nil only when no store was configured.
func openBackend(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*backend.Backend, server.HealthChecker) {
	if cfg.StoreDriver == config.DriverNone {
		logger.Warn("No store configured, running in degraded mode")
		return backend.Unavailable(), nil
	}

	b, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).WithField("driver", cfg.StoreDriver).Error("Store unreachable, running in degraded mode")
		return backend.Unavailable(), store.Unavailable{}
	}

	if cfg.SeedSampleData {
		if err := b.Seed(ctx, logger); err != nil {
			logger.WithError(err).Error("Seeding failed")
		}
	}
	return b, b.Store
}

func withCatalogue(st store.CorrelationStore, ttl time.Duration) store.CorrelationStore {
	if ttl <= 0 {
		return st
	}
	return cache.NewCatalogue(st, ttl)
}

func waitForShutdown(srv *http.Server, logger *logrus.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
}
