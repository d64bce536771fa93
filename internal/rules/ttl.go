package rules

import "time"

// TTL constants for cached zoning data.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Municipal codes change through ordinance cycles, not day to day.
	// A fetched rule set is treated as authoritative for 30 days.
	TTLZoningRule = 30 * 24 * time.Hour

	// DefaultFetchTimeout bounds a single external fetch. After this the
	// stale-cache-or-fail policy applies.
	DefaultFetchTimeout = 15 * time.Second
)
