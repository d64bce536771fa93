package feasibility

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/config"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/proforma"
)

type staticRuleSource struct {
	rule  *domain.ZoningRule
	err   error
	calls atomic.Int64
}

func (s *staticRuleSource) GetRule(ctx context.Context, jurisdiction, district string) (*domain.ZoningRule, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.rule, nil
}

func permissiveRule() *domain.ZoningRule {
	return &domain.ZoningRule{
		Jurisdiction:      "brevard_county",
		District:          "R-2",
		MinFrontSetbackFt: 25,
		MinRearSetbackFt:  20,
		MinSideSetbackFt:  10,
		MaxHeightFt:       60,
		MaxFAR:            2.0,
		MaxLotCoverage:    0.85,
		MinParkingPerUnit: 1,
		MaxDensityPerAcre: 40,
	}
}

func newTestService(rule *domain.ZoningRule) (*Service, *staticRuleSource) {
	source := &staticRuleSource{rule: rule}
	model := proforma.NewModel(config.DefaultMarketAssumptions())
	return NewService(source, model, 4, zerolog.Nop()), source
}

func testRequest() AnalysisRequest {
	return AnalysisRequest{
		Site:     domain.Site{Acreage: 5, Jurisdiction: "brevard_county", ZoningDistrict: "R-2"},
		Typology: "multifamily",
		Count:    500,
		Seed:     42,
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	svc, source := newTestService(permissiveRule())

	result, err := svc.Analyze(context.Background(), testRequest(), nil)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, domain.TypologyMultifamily, result.Typology)
	assert.Equal(t, int64(42), result.Seed)
	assert.Greater(t, result.GeneratedCount, 0)
	assert.Greater(t, result.CompliantCount, 0)
	assert.False(t, result.RulesStale)
	assert.Equal(t, int64(1), source.calls.Load(), "rule fetch must happen once per batch")

	require.NotNil(t, result.Recommended)
	assert.True(t, result.Recommended.Compliance.Compliant)
	require.NotNil(t, result.Recommended.ProForma)
	assert.Len(t, result.Alternatives, len(domain.DefaultObjectives))

	// The recommended pick is the profit maximizer
	assert.Equal(t,
		result.Alternatives[domain.ObjectiveMaxProfit].Candidate.ID,
		result.Recommended.Candidate.ID)
}

func TestAnalyzeDeterministicWithSeed(t *testing.T) {
	svc, _ := newTestService(permissiveRule())

	first, err := svc.Analyze(context.Background(), testRequest(), nil)
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), testRequest(), nil)
	require.NoError(t, err)

	assert.Equal(t, first.GeneratedCount, second.GeneratedCount)
	assert.Equal(t, first.CompliantCount, second.CompliantCount)
	assert.Equal(t, first.Recommended.Candidate, second.Recommended.Candidate)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestAnalyzeNoFeasibleDesignIsNotAnError(t *testing.T) {
	// A rule set nothing can satisfy: 1 ft height limit
	rule := permissiveRule()
	rule.MaxHeightFt = 1
	svc, _ := newTestService(rule)

	result, err := svc.Analyze(context.Background(), testRequest(), nil)
	require.NoError(t, err)

	assert.Equal(t, 0, result.CompliantCount)
	assert.Nil(t, result.Recommended)
	assert.Empty(t, result.Alternatives)
	assert.Zero(t, result.Summary)
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	svc, source := newTestService(permissiveRule())

	req := testRequest()
	req.Site.Acreage = -1
	_, err := svc.Analyze(context.Background(), req, nil)
	require.Error(t, err)
	assert.True(t, domain.IsValidationInputError(err))

	req = testRequest()
	req.Typology = "spaceport"
	_, err = svc.Analyze(context.Background(), req, nil)
	require.Error(t, err)
	assert.True(t, domain.IsValidationInputError(err))

	assert.Equal(t, int64(0), source.calls.Load(), "malformed input must be rejected before any fetch")
}

func TestAnalyzePropagatesRuleFetchError(t *testing.T) {
	source := &staticRuleSource{err: &domain.RuleFetchError{Jurisdiction: "j", District: "d"}}
	model := proforma.NewModel(config.DefaultMarketAssumptions())
	svc := NewService(source, model, 4, zerolog.Nop())

	_, err := svc.Analyze(context.Background(), testRequest(), nil)
	require.Error(t, err)
	assert.True(t, domain.IsRuleFetchError(err))
}

func TestAnalyzeStaleRulesFlagged(t *testing.T) {
	rule := permissiveRule()
	rule.Stale = true
	svc, _ := newTestService(rule)

	result, err := svc.Analyze(context.Background(), testRequest(), nil)
	require.NoError(t, err)
	assert.True(t, result.RulesStale)
}

func TestAnalyzeCancellation(t *testing.T) {
	svc, _ := newTestService(permissiveRule())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := testRequest()
	req.Count = 5000
	_, err := svc.Analyze(ctx, req, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeReportsProgress(t *testing.T) {
	svc, _ := newTestService(permissiveRule())

	var last atomic.Int64
	var calls atomic.Int64
	progress := func(done, total int) {
		calls.Add(1)
		last.Store(int64(total))
	}

	result, err := svc.Analyze(context.Background(), testRequest(), progress)
	require.NoError(t, err)
	assert.Greater(t, calls.Load(), int64(0))
	assert.Equal(t, int64(result.GeneratedCount), last.Load())
}
