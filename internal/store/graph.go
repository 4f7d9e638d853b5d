package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Skufu/symptomcheck/internal/seed"
)

// GraphStore keeps the correlation graph in Neo4j or Memgraph:
// (:Symptom)-[:CORRELATES {strength}]->(:Disease).
type GraphStore struct {
	driver neo4j.DriverWithContext
}

// NewGraphStore connects and verifies connectivity.
func NewGraphStore(ctx context.Context, uri, username, password string) (*GraphStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create graph driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify graph connectivity: %w", err)
	}
	return &GraphStore{driver: driver}, nil
}

func (g *GraphStore) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}

func (g *GraphStore) query(ctx context.Context, op, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	res, err := neo4j.ExecuteQuery(ctx, g.driver, cypher, params, neo4j.EagerResultTransformer)
	if err != nil {
		return nil, unavailable(op, err)
	}
	return res.Records, nil
}

func (g *GraphStore) Ping(ctx context.Context) error {
	if err := g.driver.VerifyConnectivity(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (g *GraphStore) ListSymptoms(ctx context.Context) ([]Symptom, error) {
	records, err := g.query(ctx, "list symptoms",
		"MATCH (s:Symptom) RETURN s.id AS id, s.name AS name, coalesce(s.description, '') AS description ORDER BY s.id", nil)
	if err != nil {
		return nil, err
	}

	symptoms := make([]Symptom, 0, len(records))
	for _, rec := range records {
		symptoms = append(symptoms, Symptom{
			ID:          recordInt(rec, "id"),
			Name:        recordString(rec, "name"),
			Description: recordString(rec, "description"),
		})
	}
	return symptoms, nil
}

func (g *GraphStore) SymptomNames(ctx context.Context) ([]string, error) {
	records, err := g.query(ctx, "symptom names", "MATCH (s:Symptom) RETURN s.name AS name ORDER BY s.id", nil)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(records))
	for _, rec := range records {
		names = append(names, recordString(rec, "name"))
	}
	return names, nil
}

func (g *GraphStore) ResolveSymptomIDs(ctx context.Context, names []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(names))
	if len(names) == 0 {
		return ids, nil
	}

	records, err := g.query(ctx, "resolve symptoms",
		"MATCH (s:Symptom) WHERE s.name IN $names RETURN s.id AS id, s.name AS name",
		map[string]any{"names": names})
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		ids[recordString(rec, "name")] = recordInt(rec, "id")
	}
	return ids, nil
}

const diseasesForSymptomsCypher = `
MATCH (s:Symptom)-[r:CORRELATES]->(d:Disease)
WHERE s.id IN $ids
WITH d, sum(r.strength) AS total_correlation, count(r) AS matching_symptoms
MATCH (:Symptom)-[e:CORRELATES]->(d)
RETURN d.id AS id, d.name AS name,
       coalesce(d.description, '') AS description, coalesce(d.treatment, '') AS treatment,
       total_correlation, matching_symptoms, count(e) AS total_symptoms
ORDER BY total_correlation DESC, matching_symptoms DESC`

func (g *GraphStore) DiseasesForSymptoms(ctx context.Context, ids []int64) ([]DiseaseMatch, error) {
	if len(ids) == 0 {
		return []DiseaseMatch{}, nil
	}

	records, err := g.query(ctx, "diseases for symptoms", diseasesForSymptomsCypher, map[string]any{"ids": ids})
	if err != nil {
		return nil, err
	}

	matches := make([]DiseaseMatch, 0, len(records))
	for _, rec := range records {
		matches = append(matches, diseaseMatchFromRecord(rec))
	}
	// Memgraph does not guarantee ORDER BY across aggregation stages.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].TotalCorrelation != matches[j].TotalCorrelation {
			return matches[i].TotalCorrelation > matches[j].TotalCorrelation
		}
		return matches[i].MatchingSymptoms > matches[j].MatchingSymptoms
	})
	return matches, nil
}

func (g *GraphStore) Append(ctx context.Context, rec Interaction) error {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := g.query(ctx, "append interaction",
		"CREATE (:Interaction {user_id: $user_id, message: $message, response: $response, created_at: $created_at})",
		map[string]any{
			"user_id":    rec.UserID,
			"message":    rec.Message,
			"response":   rec.Response,
			"created_at": ts.Format(time.RFC3339Nano),
		})
	return err
}

// cypherRunner runs one statement and returns its records.
type cypherRunner func(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)

type cypherStatement struct {
	op     string
	cypher string
	params map[string]any
}

// SeedIfEmpty writes ds unless any Symptom node exists. The check and all
// writes share one transaction. Node ids follow dataset order starting at 1.
func (g *GraphStore) SeedIfEmpty(ctx context.Context, ds *seed.Dataset) (bool, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	wrote, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		run := func(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
			res, err := tx.Run(ctx, cypher, params)
			if err != nil {
				return nil, err
			}
			return res.Collect(ctx)
		}
		wrote, err := seedGraph(ctx, run, ds)
		return wrote, err
	})
	if err != nil {
		return false, fmt.Errorf("seed graph: %w", err)
	}
	return wrote.(bool), nil
}

func seedGraph(ctx context.Context, run cypherRunner, ds *seed.Dataset) (bool, error) {
	records, err := run(ctx, "MATCH (s:Symptom) RETURN count(s) AS n", nil)
	if err != nil {
		return false, unavailable("count symptoms", err)
	}
	if len(records) > 0 && recordInt(records[0], "n") > 0 {
		return false, nil
	}

	for _, st := range seedStatements(ds) {
		if _, err := run(ctx, st.cypher, st.params); err != nil {
			return false, fmt.Errorf("%s: %w", st.op, err)
		}
	}
	return true, nil
}

func seedStatements(ds *seed.Dataset) []cypherStatement {
	symptoms := make([]map[string]any, 0, len(ds.Symptoms))
	for i, s := range ds.Symptoms {
		symptoms = append(symptoms, map[string]any{"id": int64(i + 1), "name": s.Name, "description": s.Description})
	}
	diseases := make([]map[string]any, 0, len(ds.Diseases))
	for i, d := range ds.Diseases {
		diseases = append(diseases, map[string]any{"id": int64(i + 1), "name": d.Name, "description": d.Description, "treatment": d.Treatment})
	}
	edges := make([]map[string]any, 0, len(ds.Edges))
	for _, e := range ds.Edges {
		edges = append(edges, map[string]any{"symptom": e.Symptom, "disease": e.Disease, "strength": e.Strength})
	}

	return []cypherStatement{
		{"seed symptoms", "UNWIND $rows AS row MERGE (s:Symptom {name: row.name}) SET s.id = row.id, s.description = row.description", map[string]any{"rows": symptoms}},
		{"seed diseases", "UNWIND $rows AS row MERGE (d:Disease {name: row.name}) SET d.id = row.id, d.description = row.description, d.treatment = row.treatment", map[string]any{"rows": diseases}},
		{"seed edges", "UNWIND $rows AS row MATCH (s:Symptom {name: row.symptom}), (d:Disease {name: row.disease}) MERGE (s)-[r:CORRELATES]->(d) SET r.strength = row.strength", map[string]any{"rows": edges}},
	}
}

func diseaseMatchFromRecord(rec *neo4j.Record) DiseaseMatch {
	return DiseaseMatch{
		DiseaseID:        recordInt(rec, "id"),
		Name:             recordString(rec, "name"),
		Description:      recordString(rec, "description"),
		Treatment:        recordString(rec, "treatment"),
		TotalCorrelation: recordFloat(rec, "total_correlation"),
		MatchingSymptoms: int(recordInt(rec, "matching_symptoms")),
		TotalSymptoms:    int(recordInt(rec, "total_symptoms")),
	}
}

func recordString(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	s, _ := v.(string)
	return s
}

func recordInt(rec *neo4j.Record, key string) int64 {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}

func recordFloat(rec *neo4j.Record, key string) float64 {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}
