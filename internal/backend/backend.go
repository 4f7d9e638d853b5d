// Package backend opens the correlation store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Skufu/symptomcheck/internal/config"
	"github.com/Skufu/symptomcheck/internal/database"
	"github.com/Skufu/symptomcheck/internal/seed"
	"github.com/Skufu/symptomcheck/internal/store"
)

// Seeder loads a dataset into an empty store.
type Seeder interface {
	SeedIfEmpty(ctx context.Context, ds *seed.Dataset) (bool, error)
}

// Backend is an opened store. Seeder is nil for the unavailable backend.
type Backend struct {
	Driver  string
	Store   store.CorrelationStore
	History store.InteractionLog
	Seeder  Seeder

	closers []func()
}

// Close releases connections in reverse order of acquisition.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// Unavailable is the degraded backend: every read reports store.ErrUnavailable
// and interactions are not recorded.
func Unavailable() *Backend {
	return &Backend{Driver: config.DriverNone, Store: store.Unavailable{}}
}

// Open connects to the configured driver and makes sure its schema exists.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverNone:
		return Unavailable(), nil
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case config.DriverSQLite:
		return openSQLite(ctx, cfg, logger)
	case config.DriverNeo4j:
		return openGraph(ctx, cfg, logger)
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Backend, error) {
	runner, err := database.NewMigrationRunner(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	err = runner.Up()
	if cerr := runner.Close(); cerr != nil {
		logger.WithError(cerr).Warn("Failed to close migration runner")
	}
	if err != nil {
		return nil, err
	}

	pg, err := database.ConnectPostgres(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	st := store.NewSQLStore(pg.DB, store.Postgres)
	return &Backend{
		Driver:  config.DriverPostgres,
		Store:   st,
		History: st,
		Seeder:  st,
		closers: []func(){pg.Close},
	}, nil
}

func openSQLite(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Backend, error) {
	db, err := database.OpenSQLite(ctx, cfg.SQLitePath, logger)
	if err != nil {
		return nil, err
	}
	st := store.NewSQLStore(db, store.SQLite)
	return &Backend{
		Driver:  config.DriverSQLite,
		Store:   st,
		History: st,
		Seeder:  st,
		closers: []func(){func() { _ = db.Close() }},
	}, nil
}

func openGraph(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Backend, error) {
	g, err := store.NewGraphStore(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		return nil, err
	}
	logger.WithField("uri", cfg.Neo4jURI).Info("Connected to graph store")
	return &Backend{
		Driver:  config.DriverNeo4j,
		Store:   g,
		History: g,
		Seeder:  g,
		closers: []func(){func() { _ = g.Close(context.Background()) }},
	}, nil
}

// Seed loads the canonical dataset unless the store already has symptoms.
func (b *Backend) Seed(ctx context.Context, logger *logrus.Logger) error {
	if b.Seeder == nil {
		return nil
	}
	ds, err := seed.Canonical()
	if err != nil {
		return err
	}
	wrote, err := b.Seeder.SeedIfEmpty(ctx, ds)
	if err != nil {
		return fmt.Errorf("seed %s store: %w", b.Driver, err)
	}

	entry := logger.WithField("driver", b.Driver)
	if wrote {
		entry.WithFields(logrus.Fields{
			"symptoms": len(ds.Symptoms),
			"diseases": len(ds.Diseases),
			"edges":    len(ds.Edges),
		}).Info("Seeded sample data")
	} else {
		entry.Info("Store already populated, skipping seed")
	}
	return nil
}
