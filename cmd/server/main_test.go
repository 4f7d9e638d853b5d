package main

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/symptomcheck/internal/cache"
	"github.com/Skufu/symptomcheck/internal/config"
	"github.com/Skufu/symptomcheck/internal/database"
	"github.com/Skufu/symptomcheck/internal/store"
)

func TestOpenBackendWithoutStore(t *testing.T) {
	logger, _ := test.NewNullLogger()
	b, health := openBackend(context.Background(), &config.Config{StoreDriver: config.DriverNone}, logger)
	defer b.Close()

	assert.Nil(t, health)
	assert.Equal(t, config.DriverNone, b.Driver)
}

func TestOpenBackendUnreachableStoreIsDegraded(t *testing.T) {
	logger, hook := test.NewNullLogger()
	cfg := &config.Config{StoreDriver: config.DriverSQLite, SQLitePath: t.TempDir()}

	b, health := openBackend(context.Background(), cfg, logger)
	defer b.Close()

	require.NotNil(t, health)
	assert.ErrorIs(t, health.Ping(context.Background()), store.ErrUnavailable)
	assert.NotEmpty(t, hook.Entries)
}

func TestOpenBackendSeedsSQLite(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := &config.Config{StoreDriver: config.DriverSQLite, SQLitePath: database.MemoryPath, SeedSampleData: true}

	b, health := openBackend(context.Background(), cfg, logger)
	defer b.Close()

	require.NoError(t, health.Ping(context.Background()))
	symptoms, err := b.Store.ListSymptoms(context.Background())
	require.NoError(t, err)
	assert.Len(t, symptoms, 16)
}

func TestWithCatalogue(t *testing.T) {
	st := store.Unavailable{}
	assert.Equal(t, store.CorrelationStore(st), withCatalogue(st, 0))
	assert.IsType(t, &cache.Catalogue{}, withCatalogue(st, time.Minute))
}
