package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/symptomcheck/internal/seed"
)

func TestDiseaseMatchFromRecord(t *testing.T) {
	rec := &neo4j.Record{
		Keys:   []string{"id", "name", "description", "treatment", "total_correlation", "matching_symptoms", "total_symptoms"},
		Values: []any{int64(2), "Influenza", "viral", "rest", 1.6, int64(2), int64(7)},
	}

	m := diseaseMatchFromRecord(rec)
	assert.Equal(t, int64(2), m.DiseaseID)
	assert.Equal(t, "Influenza", m.Name)
	assert.Equal(t, "rest", m.Treatment)
	assert.InDelta(t, 1.6, m.TotalCorrelation, 1e-9)
	assert.Equal(t, 2, m.MatchingSymptoms)
	assert.Equal(t, 7, m.TotalSymptoms)
}

func TestRecordHelpersTolerateMissingKeys(t *testing.T) {
	rec := &neo4j.Record{Keys: []string{"name"}, Values: []any{nil}}
	assert.Equal(t, "", recordString(rec, "name"))
	assert.Equal(t, int64(0), recordInt(rec, "id"))
	assert.Equal(t, 0.0, recordFloat(rec, "total_correlation"))
}

func TestRecordFloatAcceptsIntegers(t *testing.T) {
	rec := &neo4j.Record{Keys: []string{"total_correlation"}, Values: []any{int64(1)}}
	assert.Equal(t, 1.0, recordFloat(rec, "total_correlation"))
}

type scriptedRunner struct {
	existing int64
	failOn   string
	cyphers  []string
	params   []map[string]any
}

func (r *scriptedRunner) run(_ context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	r.cyphers = append(r.cyphers, cypher)
	r.params = append(r.params, params)
	if r.failOn != "" && strings.Contains(cypher, r.failOn) {
		return nil, errors.New("constraint violation")
	}
	if strings.Contains(cypher, "count(s)") {
		return []*neo4j.Record{{Keys: []string{"n"}, Values: []any{r.existing}}}, nil
	}
	return nil, nil
}

func canonicalDataset(t *testing.T) *seed.Dataset {
	t.Helper()
	ds, err := seed.Canonical()
	require.NoError(t, err)
	return ds
}

func TestSeedGraphWritesNodesThenEdges(t *testing.T) {
	r := &scriptedRunner{}
	wrote, err := seedGraph(context.Background(), r.run, canonicalDataset(t))
	require.NoError(t, err)
	assert.True(t, wrote)

	require.Len(t, r.cyphers, 4)
	assert.Contains(t, r.cyphers[1], "MERGE (s:Symptom")
	assert.Contains(t, r.cyphers[2], "MERGE (d:Disease")
	assert.Contains(t, r.cyphers[3], "MERGE (s)-[r:CORRELATES]->(d)")
	assert.Len(t, r.params[1]["rows"], 16)
	assert.Len(t, r.params[2]["rows"], 8)
	assert.Len(t, r.params[3]["rows"], 43)

	first := r.params[1]["rows"].([]map[string]any)[0]
	assert.Equal(t, int64(1), first["id"])
	assert.Equal(t, "fever", first["name"])
}

func TestSeedGraphSkipsPopulatedGraph(t *testing.T) {
	r := &scriptedRunner{existing: 3}
	wrote, err := seedGraph(context.Background(), r.run, canonicalDataset(t))
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Len(t, r.cyphers, 1)
}

func TestSeedGraphStopsAtFirstFailure(t *testing.T) {
	r := &scriptedRunner{failOn: "MERGE (d:Disease"}
	wrote, err := seedGraph(context.Background(), r.run, canonicalDataset(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed diseases")
	assert.False(t, wrote)
	assert.Len(t, r.cyphers, 3)
}

func TestSeedGraphCountFailureIsUnavailable(t *testing.T) {
	r := &scriptedRunner{failOn: "count(s)"}
	_, err := seedGraph(context.Background(), r.run, canonicalDataset(t))
	assert.ErrorIs(t, err, ErrUnavailable)
}
