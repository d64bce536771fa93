package rules

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"
)

// Fetcher retrieves raw zoning text for a jurisdiction/district pair from an
// external source. Implementations are expected to be slow and unreliable,
// which is why the Store fronts them with a cache and single-flight.
type Fetcher interface {
	FetchRawZoningText(ctx context.Context, jurisdiction, district string) (string, error)
}

// StoreConfig controls cache and fetch behavior.
type StoreConfig struct {
	// TTL is how long a cached rule is considered fresh.
	TTL time.Duration
	// FetchTimeout bounds a single upstream fetch.
	FetchTimeout time.Duration
	// AllowStale permits serving an expired cached rule, flagged stale,
	// when a refresh fetch fails.
	AllowStale bool
}

// Store is the cache-first access point for zoning rules. Lookups hit the
// SQLite cache, fall through to the fetcher on miss or expiry, and coalesce
// concurrent fetches for the same district into one upstream call.
type Store struct {
	repo    *Repository
	fetcher Fetcher
	cfg     StoreConfig
	group   singleflight.Group
	log     zerolog.Logger
}

// NewStore creates a rule store. Zero config fields fall back to package
// defaults.
func NewStore(repo *Repository, fetcher Fetcher, cfg StoreConfig, log zerolog.Logger) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = TTLZoningRule
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	return &Store{
		repo:    repo,
		fetcher: fetcher,
		cfg:     cfg,
		log:     log.With().Str("component", "rule_store").Logger(),
	}
}

type flightResult struct {
	rule *domain.ZoningRule
}

// GetRule returns the zoning rule for a jurisdiction/district, serving from
// cache when fresh. On miss or expiry it fetches, parses, and stores the
// result. When the fetch fails and an expired row exists, the stale rule is
// returned with Stale set if AllowStale is enabled; with no cached row at
// all, a RuleFetchError is returned.
func (s *Store) GetRule(ctx context.Context, jurisdiction, district string) (*domain.ZoningRule, error) {
	rule, err := s.repo.GetIfFresh(jurisdiction, district)
	if err != nil {
		return nil, err
	}
	if rule != nil {
		return rule, nil
	}

	key := domain.RuleKey(jurisdiction, district)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return s.refresh(jurisdiction, district)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(flightResult).rule, nil
	case <-ctx.Done():
		// The flight keeps running so other waiters still benefit.
		return nil, ctx.Err()
	}
}

// refresh runs inside a single-flight and must not depend on any one
// caller's context. It re-checks freshness first since a concurrent flight
// may have just populated the cache.
func (s *Store) refresh(jurisdiction, district string) (interface{}, error) {
	if rule, err := s.repo.GetIfFresh(jurisdiction, district); err == nil && rule != nil {
		return flightResult{rule: rule}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.FetchTimeout)
	defer cancel()

	raw, fetchErr := s.fetcher.FetchRawZoningText(ctx, jurisdiction, district)
	if fetchErr == nil {
		rule, parseErr := Parse(raw, jurisdiction, district)
		if parseErr == nil {
			if err := s.repo.Store(&rule, s.cfg.TTL); err != nil {
				s.log.Error().Err(err).Str("key", domain.RuleKey(jurisdiction, district)).
					Msg("Failed to cache fetched rule")
			}
			return flightResult{rule: &rule}, nil
		}
		fetchErr = parseErr
	}

	s.log.Warn().Err(fetchErr).
		Str("jurisdiction", jurisdiction).
		Str("district", district).
		Msg("Rule fetch failed")

	if s.cfg.AllowStale {
		stale, _, err := s.repo.Get(jurisdiction, district)
		if err != nil {
			return nil, err
		}
		if stale != nil {
			stale.Stale = true
			s.log.Info().Str("key", domain.RuleKey(jurisdiction, district)).
				Time("fetched_at", stale.FetchedAt).
				Msg("Serving stale cached rule")
			return flightResult{rule: stale}, nil
		}
	}

	return nil, &domain.RuleFetchError{
		Jurisdiction: jurisdiction,
		District:     district,
		Err:          fetchErr,
	}
}

// Invalidate drops any cached rule for the pair, forcing the next lookup to
// fetch.
func (s *Store) Invalidate(jurisdiction, district string) error {
	return s.repo.Delete(jurisdiction, district)
}
