package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Skufu/symptomcheck/internal/seed"
)

// Dialect selects the placeholder syntax of the underlying database.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// SQLStore implements CorrelationStore and InteractionLog over database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *SQLStore) ListSymptoms(ctx context.Context) ([]Symptom, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, COALESCE(description, '') FROM symptoms ORDER BY id")
	if err != nil {
		return nil, unavailable("list symptoms", err)
	}
	defer rows.Close()

	symptoms := []Symptom{}
	for rows.Next() {
		var sym Symptom
		if err := rows.Scan(&sym.ID, &sym.Name, &sym.Description); err != nil {
			return nil, unavailable("scan symptom", err)
		}
		symptoms = append(symptoms, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list symptoms", err)
	}
	return symptoms, nil
}

func (s *SQLStore) SymptomNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM symptoms ORDER BY id")
	if err != nil {
		return nil, unavailable("symptom names", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, unavailable("scan symptom name", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("symptom names", err)
	}
	return names, nil
}

func (s *SQLStore) ResolveSymptomIDs(ctx context.Context, names []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(names))
	if len(names) == 0 {
		return ids, nil
	}

	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}
	query := s.rebind("SELECT id, name FROM symptoms WHERE name IN (" + placeholders(len(names)) + ")")

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("resolve symptoms", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, unavailable("scan symptom id", err)
		}
		ids[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("resolve symptoms", err)
	}
	return ids, nil
}

const diseasesForSymptomsQuery = `
SELECT d.id, d.name, COALESCE(d.description, ''), COALESCE(d.treatment, ''),
       SUM(sd.correlation_strength) AS total_correlation,
       COUNT(sd.symptom_id) AS matching_symptoms,
       (SELECT COUNT(*) FROM symptoms_diseases t WHERE t.disease_id = d.id) AS total_symptoms
FROM diseases d
JOIN symptoms_diseases sd ON d.id = sd.disease_id
WHERE sd.symptom_id IN (%s)
GROUP BY d.id, d.name, d.description, d.treatment
ORDER BY total_correlation DESC, matching_symptoms DESC`

func (s *SQLStore) DiseasesForSymptoms(ctx context.Context, ids []int64) ([]DiseaseMatch, error) {
	if len(ids) == 0 {
		return []DiseaseMatch{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := s.rebind(fmt.Sprintf(diseasesForSymptomsQuery, placeholders(len(ids))))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("diseases for symptoms", err)
	}
	defer rows.Close()

	matches := []DiseaseMatch{}
	for rows.Next() {
		var (
			m               DiseaseMatch
			matching, total int64
		)
		if err := rows.Scan(&m.DiseaseID, &m.Name, &m.Description, &m.Treatment,
			&m.TotalCorrelation, &matching, &total); err != nil {
			return nil, unavailable("scan disease match", err)
		}
		m.MatchingSymptoms = int(matching)
		m.TotalSymptoms = int(total)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("diseases for symptoms", err)
	}
	return matches, nil
}

func (s *SQLStore) Append(ctx context.Context, rec Interaction) error {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	query := s.rebind("INSERT INTO user_interactions (user_id, message, response, created_at) VALUES (?, ?, ?, ?)")
	if _, err := s.db.ExecContext(ctx, query, rec.UserID, rec.Message, rec.Response, ts); err != nil {
		return unavailable("append interaction", err)
	}
	return nil
}

// SeedIfEmpty loads ds in a single transaction unless symptoms already exist.
// It reports whether data was written.
func (s *SQLStore) SeedIfEmpty(ctx context.Context, ds *seed.Dataset) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM symptoms").Scan(&count); err != nil {
		return false, unavailable("count symptoms", err)
	}
	if count > 0 {
		return false, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, unavailable("begin seed", err)
	}
	defer tx.Rollback()

	insertSymptom := s.rebind("INSERT INTO symptoms (name, description) VALUES (?, ?)")
	for _, sym := range ds.Symptoms {
		if _, err := tx.ExecContext(ctx, insertSymptom, sym.Name, sym.Description); err != nil {
			return false, fmt.Errorf("insert symptom %q: %w", sym.Name, err)
		}
	}

	insertDisease := s.rebind("INSERT INTO diseases (name, description, treatment) VALUES (?, ?, ?)")
	for _, d := range ds.Diseases {
		if _, err := tx.ExecContext(ctx, insertDisease, d.Name, d.Description, d.Treatment); err != nil {
			return false, fmt.Errorf("insert disease %q: %w", d.Name, err)
		}
	}

	symptomIDs, err := idsByName(ctx, tx, "SELECT id, name FROM symptoms")
	if err != nil {
		return false, err
	}
	diseaseIDs, err := idsByName(ctx, tx, "SELECT id, name FROM diseases")
	if err != nil {
		return false, err
	}

	insertEdge := s.rebind("INSERT INTO symptoms_diseases (symptom_id, disease_id, correlation_strength) VALUES (?, ?, ?)")
	for _, e := range ds.Edges {
		if _, err := tx.ExecContext(ctx, insertEdge, symptomIDs[e.Symptom], diseaseIDs[e.Disease], e.Strength); err != nil {
			return false, fmt.Errorf("insert edge %s/%s: %w", e.Symptom, e.Disease, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit seed: %w", err)
	}
	return true, nil
}

func idsByName(ctx context.Context, tx *sql.Tx, query string) (map[string]int64, error) {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load ids: %w", err)
	}
	defer rows.Close()

	ids := map[string]int64{}
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids[name] = id
	}
	return ids, rows.Err()
}
