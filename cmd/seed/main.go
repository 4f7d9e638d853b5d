// Command seed creates the store schema and loads the sample symptom dataset
// into an empty store.
package main

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Skufu/symptomcheck/internal/backend"
	"github.com/Skufu/symptomcheck/internal/config"
	"github.com/Skufu/symptomcheck/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	err = run(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("Seeding failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	if cfg.StoreDriver == config.DriverNone {
		return errors.New("STORE_DRIVER must name a store to seed")
	}

	b, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.Seed(ctx, logger); err != nil {
		return err
	}
	logger.WithField("driver", b.Driver).Info("Seed complete")
	return nil
}
