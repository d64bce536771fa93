package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"
)

func scored(id string, compliant bool, score int, profit float64, units, parking int, far float64) domain.ScoredCandidate {
	sc := domain.ScoredCandidate{
		Candidate: domain.DesignCandidate{
			ID:            id,
			TotalUnits:    units,
			ParkingSpaces: parking,
			FAR:           far,
		},
		Compliance: domain.ComplianceResult{
			CandidateID:     id,
			Compliant:       compliant,
			ComplianceScore: score,
		},
	}
	if compliant {
		sc.ProForma = &domain.ProForma{
			Profit:    profit,
			TotalCost: 1_000_000,
			MarginPct: profit / 1_000_000 * 100,
		}
	}
	return sc
}

func TestRankSelectsPerObjective(t *testing.T) {
	o := New()
	batch := []domain.ScoredCandidate{
		scored("c0001", true, 100, 500_000, 40, 90, 0.45), // best profit
		scored("c0002", true, 100, 300_000, 50, 110, 0.30), // most units
		scored("c0003", true, 100, 100_000, 20, 40, 0.50),  // best FAR, least parking
		scored("c0004", false, 70, 0, 80, 10, 0.60),        // non-compliant, ignored
	}

	recommended, alternatives, summary := o.Rank(batch, domain.DefaultObjectives, "")

	require.NotNil(t, recommended)
	assert.Equal(t, "c0001", recommended.Candidate.ID, "recommended defaults to max profit")
	assert.Equal(t, "c0001", alternatives[domain.ObjectiveMaxProfit].Candidate.ID)
	assert.Equal(t, "c0002", alternatives[domain.ObjectiveMaxUnits].Candidate.ID)
	assert.Equal(t, "c0003", alternatives[domain.ObjectiveMaxFAR].Candidate.ID)
	assert.Equal(t, "c0003", alternatives[domain.ObjectiveMinParking].Candidate.ID)

	assert.InDelta(t, 300_000, summary.ProfitMean, 0.01)
	assert.Equal(t, 100_000.0, summary.ProfitMin)
	assert.Equal(t, 500_000.0, summary.ProfitMax)
	assert.InDelta(t, 100, summary.MeanComplianceScore, 0.001)
}

func TestRankObjectivesCanDisagree(t *testing.T) {
	o := New()
	batch := []domain.ScoredCandidate{
		scored("c0001", true, 100, 900_000, 10, 30, 0.20),
		scored("c0002", true, 100, 100_000, 90, 200, 0.80),
	}

	_, alternatives, _ := o.Rank(batch, []domain.Objective{domain.ObjectiveMaxProfit, domain.ObjectiveMaxUnits}, "")

	assert.Equal(t, "c0001", alternatives[domain.ObjectiveMaxProfit].Candidate.ID)
	assert.Equal(t, "c0002", alternatives[domain.ObjectiveMaxUnits].Candidate.ID)
	assert.NotEqual(t,
		alternatives[domain.ObjectiveMaxProfit].Candidate.ID,
		alternatives[domain.ObjectiveMaxUnits].Candidate.ID)
}

func TestRankWithoutProfitObjective(t *testing.T) {
	o := New()
	batch := []domain.ScoredCandidate{
		scored("c0001", true, 100, 500_000, 40, 90, 0.45),
		scored("c0002", true, 100, 300_000, 50, 110, 0.30),
	}

	// max_profit was not evaluated and no primary was given; the
	// recommendation must still be one of the evaluated picks.
	recommended, alternatives, _ := o.Rank(batch, []domain.Objective{domain.ObjectiveMaxUnits}, "")

	require.NotNil(t, recommended)
	require.NotEmpty(t, recommended.Candidate.ID)
	require.NotNil(t, recommended.ProForma)
	assert.Equal(t, "c0002", recommended.Candidate.ID)
	assert.Equal(t, "c0002", alternatives[domain.ObjectiveMaxUnits].Candidate.ID)
	_, evaluated := alternatives[domain.ObjectiveMaxProfit]
	assert.False(t, evaluated, "unrequested objectives are not evaluated")
}

func TestRankEmptyCompliantSet(t *testing.T) {
	o := New()
	batch := []domain.ScoredCandidate{
		scored("c0001", false, 55, 0, 40, 90, 0.45),
		scored("c0002", false, 70, 0, 50, 110, 0.30),
	}

	recommended, alternatives, summary := o.Rank(batch, domain.DefaultObjectives, "")

	assert.Nil(t, recommended)
	assert.Nil(t, alternatives)
	assert.Zero(t, summary)
}

func TestRankEmptyBatch(t *testing.T) {
	o := New()
	recommended, alternatives, _ := o.Rank(nil, domain.DefaultObjectives, "")
	assert.Nil(t, recommended)
	assert.Nil(t, alternatives)
}

func TestRankTieBreaks(t *testing.T) {
	o := New()

	// Equal profit, higher compliance score wins
	batch := []domain.ScoredCandidate{
		scored("c0001", true, 85, 500_000, 40, 90, 0.45),
		scored("c0002", true, 100, 500_000, 40, 90, 0.45),
	}
	_, alternatives, _ := o.Rank(batch, []domain.Objective{domain.ObjectiveMaxProfit}, "")
	assert.Equal(t, "c0002", alternatives[domain.ObjectiveMaxProfit].Candidate.ID)

	// Fully tied, lower ID wins
	batch = []domain.ScoredCandidate{
		scored("c0009", true, 100, 500_000, 40, 90, 0.45),
		scored("c0002", true, 100, 500_000, 40, 90, 0.45),
	}
	_, alternatives, _ = o.Rank(batch, []domain.Objective{domain.ObjectiveMaxProfit}, "")
	assert.Equal(t, "c0002", alternatives[domain.ObjectiveMaxProfit].Candidate.ID)
}

func TestRankCustomPrimaryObjective(t *testing.T) {
	o := New()
	batch := []domain.ScoredCandidate{
		scored("c0001", true, 100, 900_000, 10, 30, 0.20),
		scored("c0002", true, 100, 100_000, 90, 200, 0.80),
	}

	recommended, _, _ := o.Rank(batch, domain.DefaultObjectives, domain.ObjectiveMaxUnits)
	require.NotNil(t, recommended)
	assert.Equal(t, "c0002", recommended.Candidate.ID)
}

func TestRankSingleCandidateSummary(t *testing.T) {
	o := New()
	batch := []domain.ScoredCandidate{scored("c0001", true, 100, 250_000, 40, 90, 0.45)}

	_, _, summary := o.Rank(batch, domain.DefaultObjectives, "")
	assert.Equal(t, 250_000.0, summary.ProfitMean)
	assert.Zero(t, summary.ProfitStdDev)
}
