// Package rules provides the zoning rule store: a TTL'd, SQLite-backed cache
// in front of the external municipal-code source, with single-flight fetch
// semantics and a graceful stale-fallback policy.
package rules

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"
)

// Repository provides cache operations for zoning rules. Rows are JSON blobs
// with expiration timestamps; expired rows are kept until cleanup so the store
// can fall back to stale data when the external source fails.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new zoning rule repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Store saves a rule with expiration = now + ttl.
// Uses INSERT OR REPLACE to upsert, so a refetch replaces the row atomically.
func (r *Repository) Store(rule *domain.ZoningRule, ttl time.Duration) error {
	// Copy so the caller's struct is never mutated. The stale flag describes
	// a lookup outcome, never stored state.
	row := *rule
	row.Stale = false
	if row.FetchedAt.IsZero() {
		row.FetchedAt = time.Now().UTC()
	}

	jsonData, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to marshal zoning rule: %w", err)
	}

	expiresAt := time.Now().Add(ttl).Unix()

	_, err = r.db.Exec(
		"INSERT OR REPLACE INTO zoning_rules (key, data, fetched_at, expires_at) VALUES (?, ?, ?, ?)",
		row.Key(), string(jsonData), row.FetchedAt.Unix(), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store zoning rule %s: %w", row.Key(), err)
	}

	return nil
}

// GetIfFresh returns the rule only if expires_at > now.
// Returns nil, nil if the key doesn't exist or the row is expired.
// Use Get() to retrieve stale data as a fallback when fetches fail.
func (r *Repository) GetIfFresh(jurisdiction, district string) (*domain.ZoningRule, error) {
	now := time.Now().Unix()

	var data string
	err := r.db.QueryRow(
		"SELECT data FROM zoning_rules WHERE key = ? AND expires_at > ?",
		domain.RuleKey(jurisdiction, district), now,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get zoning rule: %w", err)
	}

	return unmarshalRule(data)
}

// Get returns the rule regardless of expiration status, along with whether
// the row is still fresh. Stale data is better than no data when the external
// source is unreachable. Returns nil, false, nil if the key doesn't exist.
func (r *Repository) Get(jurisdiction, district string) (*domain.ZoningRule, bool, error) {
	var data string
	var expiresAt int64
	err := r.db.QueryRow(
		"SELECT data, expires_at FROM zoning_rules WHERE key = ?",
		domain.RuleKey(jurisdiction, district),
	).Scan(&data, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get zoning rule: %w", err)
	}

	rule, err := unmarshalRule(data)
	if err != nil {
		return nil, false, err
	}

	fresh := expiresAt > time.Now().Unix()
	return rule, fresh, nil
}

// Delete removes a specific entry.
func (r *Repository) Delete(jurisdiction, district string) error {
	_, err := r.db.Exec("DELETE FROM zoning_rules WHERE key = ?", domain.RuleKey(jurisdiction, district))
	if err != nil {
		return fmt.Errorf("failed to delete zoning rule: %w", err)
	}
	return nil
}

// DeleteExpired removes all rows where expires_at < now.
// Returns the number of rows deleted. Run by the maintenance scheduler; the
// store itself never deletes stale rows because they back the fallback policy.
func (r *Repository) DeleteExpired() (int64, error) {
	now := time.Now().Unix()

	result, err := r.db.Exec("DELETE FROM zoning_rules WHERE expires_at < ?", now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired zoning rules: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

// Count returns the number of cached rules (fresh and stale).
func (r *Repository) Count() (int64, error) {
	var count int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM zoning_rules").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count zoning rules: %w", err)
	}
	return count, nil
}

func unmarshalRule(data string) (*domain.ZoningRule, error) {
	var rule domain.ZoningRule
	if err := json.Unmarshal([]byte(data), &rule); err != nil {
		return nil, fmt.Errorf("failed to unmarshal zoning rule: %w", err)
	}
	return &rule, nil
}
