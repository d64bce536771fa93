package database

// schemas maps database names to their embedded DDL. Each schema is
// idempotent so Migrate can run on every startup.
var schemas = map[string]string{
	"rules": rulesSchema,
	"runs":  runsSchema,
}

// rulesSchema backs the zoning rule cache. Rows are JSON blobs with an
// expiration timestamp for cache-first behavior; stale rows are kept so the
// store can degrade gracefully when the external source is down.
const rulesSchema = `
CREATE TABLE IF NOT EXISTS zoning_rules (
    key        TEXT PRIMARY KEY,  -- jurisdiction|district
    data       TEXT NOT NULL,     -- JSON-encoded ZoningRule
    fetched_at INTEGER NOT NULL,  -- unix seconds
    expires_at INTEGER NOT NULL   -- unix seconds
);

CREATE INDEX IF NOT EXISTS idx_zoning_rules_expires_at ON zoning_rules(expires_at);
`

// runsSchema stores feasibility run snapshots as msgpack blobs. Listing
// columns are duplicated out of the blob so List never has to decode it.
const runsSchema = `
CREATE TABLE IF NOT EXISTS run_snapshots (
    run_id          TEXT PRIMARY KEY,
    jurisdiction    TEXT NOT NULL,
    district        TEXT NOT NULL,
    typology        TEXT NOT NULL,
    created_at      INTEGER NOT NULL,  -- unix seconds
    compliant_count INTEGER NOT NULL,
    data            BLOB NOT NULL      -- msgpack-encoded OptimizationResult
);

CREATE INDEX IF NOT EXISTS idx_run_snapshots_site ON run_snapshots(jurisdiction, district, created_at);
`
