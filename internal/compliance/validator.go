// Package compliance checks design candidates against zoning rules. The
// validator is pure: same candidate and rule in, same result out, no I/O.
package compliance

import (
	"math"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"
)

// DefaultViolationPenalty is subtracted from the compliance score per
// violation, floored at zero.
const DefaultViolationPenalty = 15

// Validator runs the per-dimension rule checks. Zero-valued rule dimensions
// mean the district does not regulate that dimension and the check is
// skipped.
type Validator struct {
	penalty int
}

// NewValidator creates a validator with the default per-violation penalty.
func NewValidator() *Validator {
	return &Validator{penalty: DefaultViolationPenalty}
}

// NewValidatorWithPenalty overrides the per-violation score penalty.
func NewValidatorWithPenalty(penalty int) *Validator {
	if penalty <= 0 {
		penalty = DefaultViolationPenalty
	}
	return &Validator{penalty: penalty}
}

// Validate checks one candidate against one rule set. Each dimension
// produces zero or one violation. Setback, height, FAR and density breaches
// are CRITICAL; lot coverage and parking are MAJOR. Every violation here is
// a single linear inequality, so all are auto-fixable.
func (v *Validator) Validate(c *domain.DesignCandidate, rule *domain.ZoningRule, site domain.Site) domain.ComplianceResult {
	var violations []domain.Violation

	addMin := func(category domain.ViolationCategory, dimension string, required, actual float64, severity domain.Severity) {
		if required <= 0 || actual >= required {
			return
		}
		violations = append(violations, domain.Violation{
			Category:    category,
			Dimension:   dimension,
			Requirement: required,
			Actual:      actual,
			Delta:       required - actual,
			Severity:    severity,
			AutoFixable: true,
		})
	}
	addMax := func(category domain.ViolationCategory, dimension string, limit, actual float64, severity domain.Severity) {
		if limit <= 0 || actual <= limit {
			return
		}
		violations = append(violations, domain.Violation{
			Category:    category,
			Dimension:   dimension,
			Requirement: limit,
			Actual:      actual,
			Delta:       actual - limit,
			Severity:    severity,
			AutoFixable: true,
		})
	}

	addMin(domain.CategorySetback, "front", rule.MinFrontSetbackFt, c.FrontSetback, domain.SeverityCritical)
	addMin(domain.CategorySetback, "rear", rule.MinRearSetbackFt, c.RearSetback, domain.SeverityCritical)
	addMin(domain.CategorySetback, "side", rule.MinSideSetbackFt, c.SideSetback, domain.SeverityCritical)
	addMax(domain.CategoryHeight, "", rule.MaxHeightFt, c.HeightFt, domain.SeverityCritical)
	addMax(domain.CategoryFAR, "", rule.MaxFAR, c.FAR, domain.SeverityCritical)
	addMax(domain.CategoryLotCoverage, "", rule.MaxLotCoverage, c.LotCoverage, domain.SeverityMajor)

	if rule.MinParkingPerUnit > 0 && c.TotalUnits > 0 {
		required := math.Ceil(float64(c.TotalUnits) * rule.MinParkingPerUnit)
		addMin(domain.CategoryParking, "", required, float64(c.ParkingSpaces), domain.SeverityMajor)
	}

	if rule.MaxDensityPerAcre > 0 && c.TotalUnits > 0 {
		maxUnits := math.Floor(rule.MaxDensityPerAcre * site.Acreage)
		addMax(domain.CategoryDensity, "", maxUnits, float64(c.TotalUnits), domain.SeverityCritical)
	}

	score := 100 - v.penalty*len(violations)
	if score < 0 {
		score = 0
	}

	return domain.ComplianceResult{
		CandidateID:     c.ID,
		Compliant:       len(violations) == 0,
		ComplianceScore: score,
		Violations:      violations,
	}
}
