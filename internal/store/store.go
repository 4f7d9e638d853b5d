// Package store exposes the symptom-disease correlation graph and the
// interaction audit log.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable marks connection or query failures. Callers treat it as a
// signal to switch to degraded mode rather than as a fault.
var ErrUnavailable = errors.New("correlation store unavailable")

type Symptom struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Disease struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Treatment   string `json:"treatment"`
}

// DiseaseMatch is one aggregated row of a correlation lookup.
// TotalSymptoms counts every edge of the disease, not only matched ones.
type DiseaseMatch struct {
	DiseaseID        int64
	Name             string
	Description      string
	Treatment        string
	TotalCorrelation float64
	MatchingSymptoms int
	TotalSymptoms    int
}

type Interaction struct {
	UserID    string
	Message   string
	Response  string
	Timestamp time.Time
}

// CorrelationStore is the read path over symptoms, diseases and edges.
type CorrelationStore interface {
	ListSymptoms(ctx context.Context) ([]Symptom, error)
	SymptomNames(ctx context.Context) ([]string, error)
	// ResolveSymptomIDs skips names the store does not know.
	ResolveSymptomIDs(ctx context.Context, names []string) (map[string]int64, error)
	DiseasesForSymptoms(ctx context.Context, ids []int64) ([]DiseaseMatch, error)
	Ping(ctx context.Context) error
}

// InteractionLog is the append-only audit trail of processed messages.
type InteractionLog interface {
	Append(ctx context.Context, rec Interaction) error
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

// Unavailable is the store used when no backend is configured. Every call
// reports ErrUnavailable.
type Unavailable struct{}

func (Unavailable) ListSymptoms(context.Context) ([]Symptom, error) {
	return nil, ErrUnavailable
}

func (Unavailable) SymptomNames(context.Context) ([]string, error) {
	return nil, ErrUnavailable
}

func (Unavailable) ResolveSymptomIDs(context.Context, []string) (map[string]int64, error) {
	return nil, ErrUnavailable
}

func (Unavailable) DiseasesForSymptoms(context.Context, []int64) ([]DiseaseMatch, error) {
	return nil, ErrUnavailable
}

func (Unavailable) Ping(context.Context) error {
	return ErrUnavailable
}

func (Unavailable) Append(context.Context, Interaction) error {
	return ErrUnavailable
}
