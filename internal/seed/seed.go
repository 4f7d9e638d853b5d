// Package seed carries the sample correlation dataset loaded into an empty store.
package seed

import (
	_ "embed"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

//go:embed dataset.toml
var canonicalTOML []byte

type Symptom struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

type Disease struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Treatment   string `toml:"treatment"`
}

type Edge struct {
	Symptom  string  `toml:"symptom"`
	Disease  string  `toml:"disease"`
	Strength float64 `toml:"strength"`
}

type Dataset struct {
	Symptoms []Symptom `toml:"symptoms"`
	Diseases []Disease `toml:"diseases"`
	Edges    []Edge    `toml:"edges"`
}

// Canonical returns the built-in dataset.
func Canonical() (*Dataset, error) {
	return Parse(canonicalTOML)
}

// Parse decodes and validates a TOML dataset.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := toml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate enforces unique names, edges between known nodes, strengths in
// [0,1] and at most one edge per symptom/disease pair.
func (ds *Dataset) Validate() error {
	symptoms := make(map[string]bool, len(ds.Symptoms))
	for _, s := range ds.Symptoms {
		if s.Name == "" {
			return fmt.Errorf("symptom with empty name")
		}
		if symptoms[s.Name] {
			return fmt.Errorf("duplicate symptom %q", s.Name)
		}
		symptoms[s.Name] = true
	}

	diseases := make(map[string]bool, len(ds.Diseases))
	for _, d := range ds.Diseases {
		if d.Name == "" {
			return fmt.Errorf("disease with empty name")
		}
		if diseases[d.Name] {
			return fmt.Errorf("duplicate disease %q", d.Name)
		}
		diseases[d.Name] = true
	}

	pairs := make(map[[2]string]bool, len(ds.Edges))
	for _, e := range ds.Edges {
		if !symptoms[e.Symptom] {
			return fmt.Errorf("edge references unknown symptom %q", e.Symptom)
		}
		if !diseases[e.Disease] {
			return fmt.Errorf("edge references unknown disease %q", e.Disease)
		}
		if e.Strength < 0 || e.Strength > 1 {
			return fmt.Errorf("edge %s/%s: strength %v outside [0,1]", e.Symptom, e.Disease, e.Strength)
		}
		key := [2]string{e.Symptom, e.Disease}
		if pairs[key] {
			return fmt.Errorf("duplicate edge %s/%s", e.Symptom, e.Disease)
		}
		pairs[key] = true
	}
	return nil
}
