// Package cache holds the in-process symptom catalogue cache and the Redis
// diagnosis result cache.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Skufu/symptomcheck/internal/store"
)

const catalogueKey = "symptoms"

// Catalogue decorates a CorrelationStore so the symptom list is read at most
// once per TTL. Failed reads are not cached.
type Catalogue struct {
	store.CorrelationStore
	lru *expirable.LRU[string, []store.Symptom]
}

func NewCatalogue(st store.CorrelationStore, ttl time.Duration) *Catalogue {
	return &Catalogue{
		CorrelationStore: st,
		lru:              expirable.NewLRU[string, []store.Symptom](1, nil, ttl),
	}
}

func (c *Catalogue) ListSymptoms(ctx context.Context) ([]store.Symptom, error) {
	if symptoms, ok := c.lru.Get(catalogueKey); ok {
		return symptoms, nil
	}
	symptoms, err := c.CorrelationStore.ListSymptoms(ctx)
	if err != nil {
		return nil, err
	}
	c.lru.Add(catalogueKey, symptoms)
	return symptoms, nil
}

func (c *Catalogue) SymptomNames(ctx context.Context) ([]string, error) {
	symptoms, err := c.ListSymptoms(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		names = append(names, s.Name)
	}
	return names, nil
}
