// Package snapshots persists completed feasibility runs so past analyses can
// be reviewed without recomputation. Results are stored as msgpack blobs
// keyed by run ID.
package snapshots

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"
)

// RunSummary is the listing view of a stored run, without the full payload.
type RunSummary struct {
	RunID          string    `json:"run_id"`
	Jurisdiction   string    `json:"jurisdiction"`
	District       string    `json:"district"`
	Typology       string    `json:"typology"`
	CreatedAt      time.Time `json:"created_at"`
	CompliantCount int       `json:"compliant_count"`
}

// Repository stores run snapshots in the runs database.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save persists one run. Snapshots are immutable; saving the same run ID
// twice replaces the row.
func (r *Repository) Save(result *domain.OptimizationResult) error {
	blob, err := msgpack.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", result.RunID, err)
	}

	_, err = r.db.Exec(`
		INSERT OR REPLACE INTO run_snapshots (run_id, jurisdiction, district, typology, created_at, compliant_count, data)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.RunID,
		result.Site.Jurisdiction,
		result.Site.ZoningDistrict,
		string(result.Typology),
		result.CreatedAt.Unix(),
		result.CompliantCount,
		blob,
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", result.RunID, err)
	}
	return nil
}

// GetByID loads one full run. Returns nil when the run is unknown.
func (r *Repository) GetByID(runID string) (*domain.OptimizationResult, error) {
	var blob []byte
	err := r.db.QueryRow(`SELECT data FROM run_snapshots WHERE run_id = ?`, runID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	return decode(blob)
}

// LatestForSite loads the most recent run for a jurisdiction/district pair.
// Returns nil when the site has never been analyzed.
func (r *Repository) LatestForSite(jurisdiction, district string) (*domain.OptimizationResult, error) {
	var blob []byte
	err := r.db.QueryRow(`
		SELECT data FROM run_snapshots
		WHERE jurisdiction = ? AND district = ?
		ORDER BY created_at DESC LIMIT 1`, jurisdiction, district).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest run for %s/%s: %w", jurisdiction, district, err)
	}
	return decode(blob)
}

// List returns run summaries, newest first.
func (r *Repository) List(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(`
		SELECT run_id, jurisdiction, district, typology, created_at, compliant_count
		FROM run_snapshots
		ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var s RunSummary
		var createdAt int64
		if err := rows.Scan(&s.RunID, &s.Jurisdiction, &s.District, &s.Typology, &createdAt, &s.CompliantCount); err != nil {
			return nil, err
		}
		s.CreatedAt = time.Unix(createdAt, 0).UTC()
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// TrimOlderThan deletes snapshots created before the cutoff and returns the
// number of rows removed.
func (r *Repository) TrimOlderThan(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM run_snapshots WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to trim run snapshots: %w", err)
	}
	return result.RowsAffected()
}

// Count returns the number of stored runs.
func (r *Repository) Count() (int64, error) {
	var n int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM run_snapshots`).Scan(&n)
	return n, err
}

func decode(blob []byte) (*domain.OptimizationResult, error) {
	var result domain.OptimizationResult
	if err := msgpack.Unmarshal(blob, &result); err != nil {
		return nil, fmt.Errorf("failed to decode run snapshot: %w", err)
	}
	return &result, nil
}
