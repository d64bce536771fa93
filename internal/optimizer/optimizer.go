// Package optimizer filters a scored batch to its compliant subset and
// selects the extremal candidate per objective. An empty compliant set is a
// valid outcome, not an error.
package optimizer

import (
	"gonum.org/v1/gonum/stat"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"
)

// Optimizer ranks scored candidates. Stateless and safe for concurrent use.
type Optimizer struct{}

func New() *Optimizer {
	return &Optimizer{}
}

// objectiveMetric extracts the value an objective ranks by. Higher is better;
// minimizing objectives negate.
func objectiveMetric(obj domain.Objective, sc *domain.ScoredCandidate) float64 {
	switch obj {
	case domain.ObjectiveMaxProfit:
		return sc.ProForma.Profit
	case domain.ObjectiveMaxUnits:
		return float64(sc.Candidate.TotalUnits)
	case domain.ObjectiveMaxFAR:
		return sc.Candidate.FAR
	case domain.ObjectiveMaxROI:
		return sc.ProForma.MarginPct
	case domain.ObjectiveMinParking:
		return -float64(sc.Candidate.ParkingSpaces)
	default:
		return sc.ProForma.Profit
	}
}

// Rank selects the best compliant candidate per objective. Ties break by
// higher compliance score, then lower candidate ID, so results are stable
// across runs. The recommended pick is the max_profit selection unless the
// caller asks for a different primary objective.
func (o *Optimizer) Rank(scored []domain.ScoredCandidate, objectives []domain.Objective, primary domain.Objective) (recommended *domain.ScoredCandidate, alternatives map[domain.Objective]domain.ScoredCandidate, summary domain.BatchSummary) {
	if len(objectives) == 0 {
		objectives = domain.DefaultObjectives
	}
	if primary == "" {
		primary = domain.ObjectiveMaxProfit
	}

	compliant := make([]*domain.ScoredCandidate, 0, len(scored))
	for i := range scored {
		if scored[i].Compliance.Compliant && scored[i].ProForma != nil {
			compliant = append(compliant, &scored[i])
		}
	}
	if len(compliant) == 0 {
		return nil, nil, domain.BatchSummary{}
	}

	alternatives = make(map[domain.Objective]domain.ScoredCandidate, len(objectives))
	for _, obj := range objectives {
		best := compliant[0]
		bestMetric := objectiveMetric(obj, best)
		for _, sc := range compliant[1:] {
			m := objectiveMetric(obj, sc)
			switch {
			case m > bestMetric:
				best, bestMetric = sc, m
			case m == bestMetric:
				if sc.Compliance.ComplianceScore > best.Compliance.ComplianceScore ||
					(sc.Compliance.ComplianceScore == best.Compliance.ComplianceScore &&
						sc.Candidate.ID < best.Candidate.ID) {
					best = sc
				}
			}
		}
		alternatives[obj] = *best
	}

	// The primary may name an objective the caller didn't evaluate; fall back
	// through max_profit to the first evaluated objective so the recommendation
	// is always a real pick.
	pick, ok := alternatives[primary]
	if !ok {
		pick, ok = alternatives[domain.ObjectiveMaxProfit]
	}
	if !ok {
		pick = alternatives[objectives[0]]
	}
	recommended = &pick

	return recommended, alternatives, summarize(compliant)
}

// summarize computes descriptive statistics over the compliant subset.
func summarize(compliant []*domain.ScoredCandidate) domain.BatchSummary {
	profits := make([]float64, len(compliant))
	scores := make([]float64, len(compliant))
	min, max := compliant[0].ProForma.Profit, compliant[0].ProForma.Profit
	for i, sc := range compliant {
		profits[i] = sc.ProForma.Profit
		scores[i] = float64(sc.Compliance.ComplianceScore)
		if profits[i] < min {
			min = profits[i]
		}
		if profits[i] > max {
			max = profits[i]
		}
	}

	mean, std := stat.MeanStdDev(profits, nil)
	if len(profits) == 1 {
		std = 0
	}
	return domain.BatchSummary{
		MeanComplianceScore: stat.Mean(scores, nil),
		ProfitMean:          mean,
		ProfitStdDev:        std,
		ProfitMin:           min,
		ProfitMax:           max,
	}
}
