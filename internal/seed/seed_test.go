package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalDataset(t *testing.T) {
	ds, err := Canonical()
	require.NoError(t, err)
	assert.Len(t, ds.Symptoms, 16)
	assert.Len(t, ds.Diseases, 8)
	assert.Len(t, ds.Edges, 43)
	assert.Equal(t, "fever", ds.Symptoms[0].Name)
	assert.Equal(t, "Common Cold", ds.Diseases[0].Name)
}

func TestParseRejectsBadStrength(t *testing.T) {
	_, err := Parse([]byte(`
[[symptoms]]
name = "fever"
[[diseases]]
name = "Flu"
[[edges]]
symptom = "fever"
disease = "Flu"
strength = 1.5
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside [0,1]")
}

func TestParseRejectsDuplicateEdge(t *testing.T) {
	_, err := Parse([]byte(`
[[symptoms]]
name = "fever"
[[diseases]]
name = "Flu"
[[edges]]
symptom = "fever"
disease = "Flu"
strength = 0.5
[[edges]]
symptom = "fever"
disease = "Flu"
strength = 0.7
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate edge")
}

func TestParseRejectsUnknownSymptom(t *testing.T) {
	_, err := Parse([]byte(`
[[diseases]]
name = "Flu"
[[edges]]
symptom = "cough"
disease = "Flu"
strength = 0.5
`))
	require.Error(t, err)
}
