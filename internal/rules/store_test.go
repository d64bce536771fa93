package rules

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"
)

const testSchema = `
CREATE TABLE zoning_rules (
	key TEXT PRIMARY KEY,
	data TEXT NOT NULL,
	fetched_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX idx_zoning_rules_expires ON zoning_rules(expires_at);
`

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// A pooled in-memory database would open a fresh empty DB per connection
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return db
}

const sampleRawText = `
Section 4.2 R-2 Medium Density Residential.
Minimum front setback: 25 feet.
Minimum rear setback: 20 feet.
Minimum side setback: 10 feet.
Maximum building height: 35 feet.
Maximum floor area ratio: 0.5.
Maximum lot coverage: 40%.
Parking: 2 spaces per dwelling unit.
Maximum density: 10 units per acre.
`

// fakeFetcher counts upstream calls and can be configured to fail or block.
type fakeFetcher struct {
	calls   atomic.Int64
	err     error
	delay   time.Duration
	rawText string
}

func (f *fakeFetcher) FetchRawZoningText(ctx context.Context, jurisdiction, district string) (string, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.rawText, nil
}

func newTestStore(t *testing.T, fetcher Fetcher, cfg StoreConfig) (*Store, *Repository) {
	repo := NewRepository(setupTestDB(t))
	return NewStore(repo, fetcher, cfg, zerolog.Nop()), repo
}

func TestGetRuleFetchesOnMissAndCaches(t *testing.T) {
	fetcher := &fakeFetcher{rawText: sampleRawText}
	store, _ := newTestStore(t, fetcher, StoreConfig{})

	rule, err := store.GetRule(context.Background(), "brevard_county", "R-2")
	require.NoError(t, err)
	assert.Equal(t, 25.0, rule.MinFrontSetbackFt)
	assert.Equal(t, 35.0, rule.MaxHeightFt)
	assert.Equal(t, 0.40, rule.MaxLotCoverage)
	assert.Equal(t, 10.0, rule.MaxDensityPerAcre)
	assert.False(t, rule.Stale)

	// Second lookup within TTL must be served from cache
	rule2, err := store.GetRule(context.Background(), "brevard_county", "R-2")
	require.NoError(t, err)
	assert.Equal(t, rule.MaxFAR, rule2.MaxFAR)
	assert.Equal(t, int64(1), fetcher.calls.Load())
}

func TestGetRuleSingleFlight(t *testing.T) {
	fetcher := &fakeFetcher{rawText: sampleRawText, delay: 50 * time.Millisecond}
	store, _ := newTestStore(t, fetcher, StoreConfig{})

	const concurrency = 10
	var wg sync.WaitGroup
	errs := make([]error, concurrency)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.GetRule(context.Background(), "brevard_county", "R-2")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), fetcher.calls.Load(), "concurrent lookups should coalesce into one fetch")
}

func TestGetRuleStaleFallback(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("upstream down")}
	store, repo := newTestStore(t, fetcher, StoreConfig{AllowStale: true})

	expired := &domain.ZoningRule{
		Jurisdiction: "brevard_county",
		District:     "R-2",
		MaxHeightFt:  35,
	}
	require.NoError(t, repo.Store(expired, -time.Hour))

	rule, err := store.GetRule(context.Background(), "brevard_county", "R-2")
	require.NoError(t, err)
	assert.True(t, rule.Stale)
	assert.Equal(t, 35.0, rule.MaxHeightFt)
}

func TestGetRuleStaleFallbackDisabled(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("upstream down")}
	store, repo := newTestStore(t, fetcher, StoreConfig{AllowStale: false})

	expired := &domain.ZoningRule{Jurisdiction: "brevard_county", District: "R-2"}
	require.NoError(t, repo.Store(expired, -time.Hour))

	_, err := store.GetRule(context.Background(), "brevard_county", "R-2")
	require.Error(t, err)
	assert.True(t, domain.IsRuleFetchError(err))
}

func TestGetRuleFetchErrorWithEmptyCache(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("503 from municipal portal")}
	store, _ := newTestStore(t, fetcher, StoreConfig{AllowStale: true})

	_, err := store.GetRule(context.Background(), "brevard_county", "R-2")
	require.Error(t, err)

	var rfe *domain.RuleFetchError
	require.ErrorAs(t, err, &rfe)
	assert.Equal(t, "brevard_county", rfe.Jurisdiction)
	assert.Equal(t, "R-2", rfe.District)
}

func TestGetRuleCallerCancellation(t *testing.T) {
	fetcher := &fakeFetcher{rawText: sampleRawText, delay: 5 * time.Second}
	store, _ := newTestStore(t, fetcher, StoreConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := store.GetRule(ctx, "brevard_county", "R-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInvalidateForcesRefetch(t *testing.T) {
	fetcher := &fakeFetcher{rawText: sampleRawText}
	store, _ := newTestStore(t, fetcher, StoreConfig{})

	_, err := store.GetRule(context.Background(), "brevard_county", "R-2")
	require.NoError(t, err)
	require.NoError(t, store.Invalidate("brevard_county", "R-2"))

	_, err = store.GetRule(context.Background(), "brevard_county", "R-2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), fetcher.calls.Load())
}
