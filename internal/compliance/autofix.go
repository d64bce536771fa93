package compliance

import (
	"fmt"
	"math"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"
)

// FixSuggestion describes the single monotonic adjustment that would clear
// one violation. Suggestions are advisory; candidates are never mutated.
type FixSuggestion struct {
	Category    domain.ViolationCategory `json:"category"`
	Dimension   string                   `json:"dimension,omitempty"`
	Description string                   `json:"description"`
	Amount      float64                  `json:"amount"`
}

// SuggestFixes maps each auto-fixable violation to its corrective
// adjustment. The amount is the violation delta, which is exactly the
// distance to the rule boundary since every check is a linear inequality.
func SuggestFixes(violations []domain.Violation) []FixSuggestion {
	if len(violations) == 0 {
		return nil
	}

	fixes := make([]FixSuggestion, 0, len(violations))
	for _, v := range violations {
		if !v.AutoFixable {
			continue
		}
		fix := FixSuggestion{Category: v.Category, Dimension: v.Dimension, Amount: v.Delta}
		switch v.Category {
		case domain.CategorySetback:
			fix.Description = fmt.Sprintf("increase %s setback by %.1f ft", v.Dimension, v.Delta)
		case domain.CategoryHeight:
			fix.Description = fmt.Sprintf("reduce height by %.1f ft", v.Delta)
		case domain.CategoryFAR:
			fix.Description = fmt.Sprintf("reduce gross floor area to bring FAR down by %.2f", v.Delta)
		case domain.CategoryLotCoverage:
			fix.Description = fmt.Sprintf("shrink footprint to cut lot coverage by %.1f%%", v.Delta*100)
		case domain.CategoryParking:
			fix.Amount = math.Ceil(v.Delta)
			fix.Description = fmt.Sprintf("add %d parking spaces", int(fix.Amount))
		case domain.CategoryDensity:
			fix.Amount = math.Ceil(v.Delta)
			fix.Description = fmt.Sprintf("remove %d units to meet the density ceiling", int(fix.Amount))
		default:
			fix.Description = fmt.Sprintf("adjust %s by %.2f", v.Category, v.Delta)
		}
		fixes = append(fixes, fix)
	}
	return fixes
}
