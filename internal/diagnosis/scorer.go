// Package diagnosis ranks candidate diseases for a set of detected symptoms.
package diagnosis

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/Skufu/symptomcheck/internal/store"
)

const (
	correlationWeight = 0.7
	coverageWeight    = 0.3
	// MaxConfidence keeps every score visibly short of certainty.
	MaxConfidence = 95.0
)

// Result is one ranked candidate. Confidence is a percentage in [0, MaxConfidence].
type Result struct {
	Disease     string  `json:"disease"`
	Description string  `json:"description"`
	Treatment   string  `json:"treatment"`
	Confidence  float64 `json:"confidence"`
}

// Cache stores scored results keyed by symptom set. Implementations must be
// safe for concurrent use; a miss or an error is reported as ok == false.
type Cache interface {
	Get(ctx context.Context, symptoms []string) ([]Result, bool)
	Set(ctx context.Context, symptoms []string, results []Result)
}

// Scorer turns detected symptoms into ranked diagnoses using the correlation store.
type Scorer struct {
	store store.CorrelationStore
	cache Cache
	log   *logrus.Logger
}

type Option func(*Scorer)

// WithCache enables result caching for store-backed lookups.
func WithCache(c Cache) Option {
	return func(s *Scorer) { s.cache = c }
}

func NewScorer(st store.CorrelationStore, logger *logrus.Logger, opts ...Option) *Scorer {
	s := &Scorer{store: st, log: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score never fails: store errors switch to the fixed fallback list.
func (s *Scorer) Score(ctx context.Context, symptoms []string) []Result {
	symptoms = dedupe(symptoms)
	if len(symptoms) == 0 {
		return []Result{}
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, symptoms); ok {
			return cached
		}
	}

	results, err := s.score(ctx, symptoms)
	if err != nil {
		entry := s.log.WithError(err).WithField("symptoms", symptoms)
		if errors.Is(err, store.ErrUnavailable) {
			entry.Warn("Correlation store unavailable, using fallback diagnoses")
		} else {
			entry.Error("Scoring failed, using fallback diagnoses")
		}
		return Fallback(symptoms)
	}

	if s.cache != nil {
		s.cache.Set(ctx, symptoms, results)
	}
	return results
}

func (s *Scorer) score(ctx context.Context, symptoms []string) ([]Result, error) {
	resolved, err := s.store.ResolveSymptomIDs(ctx, symptoms)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(resolved))
	for _, name := range symptoms {
		if id, ok := resolved[name]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []Result{}, nil
	}

	matches, err := s.store.DiseasesForSymptoms(ctx, ids)
	if err != nil {
		return nil, err
	}
	return Rank(matches), nil
}

// Rank orders matches by total correlation, then by matching symptom count,
// and converts each to a Result. The raw correlation sum decides rank, so
// many weak matches can outrank a few strong ones.
func Rank(matches []store.DiseaseMatch) []Result {
	sorted := make([]store.DiseaseMatch, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalCorrelation != sorted[j].TotalCorrelation {
			return sorted[i].TotalCorrelation > sorted[j].TotalCorrelation
		}
		return sorted[i].MatchingSymptoms > sorted[j].MatchingSymptoms
	})

	results := make([]Result, 0, len(sorted))
	for _, m := range sorted {
		results = append(results, Result{
			Disease:     m.Name,
			Description: m.Description,
			Treatment:   m.Treatment,
			Confidence:  Confidence(m.TotalCorrelation, m.MatchingSymptoms, m.TotalSymptoms),
		})
	}
	return results
}

// Confidence blends correlation mass with symptom coverage, rounds to two
// decimals and caps at MaxConfidence.
func Confidence(totalCorrelation float64, matching, total int) float64 {
	coverage := 0.0
	if total > 0 {
		coverage = float64(matching) / float64(total)
	}
	c := (totalCorrelation*correlationWeight + coverage*coverageWeight) * 100
	c = math.Round(c*100) / 100
	if c > MaxConfidence {
		return MaxConfidence
	}
	if c < 0 {
		return 0
	}
	return c
}

func dedupe(symptoms []string) []string {
	seen := make(map[string]bool, len(symptoms))
	out := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
