package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"
)

func TestRepositoryStoreAndGetIfFresh(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	rule := &domain.ZoningRule{
		Jurisdiction:      "melbourne",
		District:          "C-1",
		MaxHeightFt:       45,
		MaxFAR:            1.5,
		MinParkingPerUnit: 1.5,
	}
	require.NoError(t, repo.Store(rule, time.Hour))

	got, err := repo.GetIfFresh("melbourne", "C-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 45.0, got.MaxHeightFt)
	assert.Equal(t, 1.5, got.MaxFAR)
	assert.False(t, got.FetchedAt.IsZero())
}

func TestRepositoryStoreDoesNotMutateCaller(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	rule := &domain.ZoningRule{
		Jurisdiction: "melbourne",
		District:     "C-1",
		MaxHeightFt:  45,
		Stale:        true,
	}
	require.NoError(t, repo.Store(rule, time.Hour))

	assert.True(t, rule.Stale, "caller's struct must be left untouched")
	assert.True(t, rule.FetchedAt.IsZero())

	got, err := repo.GetIfFresh("melbourne", "C-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Stale, "stale flag is a lookup outcome, never persisted")
	assert.False(t, got.FetchedAt.IsZero())
}

func TestRepositoryGetIfFreshMiss(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	got, err := repo.GetIfFresh("melbourne", "C-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepositoryExpiredNotFresh(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	rule := &domain.ZoningRule{Jurisdiction: "melbourne", District: "C-1", MaxHeightFt: 45}
	require.NoError(t, repo.Store(rule, -time.Minute))

	got, err := repo.GetIfFresh("melbourne", "C-1")
	require.NoError(t, err)
	assert.Nil(t, got, "expired entry must not be served as fresh")

	// Get still returns the row, flagged not fresh
	stale, fresh, err := repo.Get("melbourne", "C-1")
	require.NoError(t, err)
	require.NotNil(t, stale)
	assert.False(t, fresh)
	assert.Equal(t, 45.0, stale.MaxHeightFt)
}

func TestRepositoryStoreReplaces(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Store(&domain.ZoningRule{Jurisdiction: "j", District: "d", MaxHeightFt: 30}, time.Hour))
	require.NoError(t, repo.Store(&domain.ZoningRule{Jurisdiction: "j", District: "d", MaxHeightFt: 60}, time.Hour))

	got, err := repo.GetIfFresh("j", "d")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 60.0, got.MaxHeightFt)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepositoryDeleteExpired(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Store(&domain.ZoningRule{Jurisdiction: "a", District: "1"}, -time.Hour))
	require.NoError(t, repo.Store(&domain.ZoningRule{Jurisdiction: "b", District: "2"}, time.Hour))

	deleted, err := repo.DeleteExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
