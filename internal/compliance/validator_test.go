package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"
)

func r2Rule() *domain.ZoningRule {
	return &domain.ZoningRule{
		Jurisdiction:      "brevard_county",
		District:          "R-2",
		MinFrontSetbackFt: 25,
		MinRearSetbackFt:  20,
		MinSideSetbackFt:  10,
		MaxHeightFt:       35,
		MaxFAR:            0.5,
		MaxLotCoverage:    0.40,
		MinParkingPerUnit: 2,
		MaxDensityPerAcre: 10,
	}
}

func r2Site() domain.Site {
	return domain.Site{Acreage: 5, Jurisdiction: "brevard_county", ZoningDistrict: "R-2"}
}

// compliantCandidate is well inside every R-2 limit on a 5-acre site.
func compliantCandidate() *domain.DesignCandidate {
	return &domain.DesignCandidate{
		ID:            "c0001",
		HeightFt:      30,
		Stories:       3,
		FrontSetback:  30,
		RearSetback:   25,
		SideSetback:   15,
		FootprintSqFt: 20000,

		GrossFloorAreaSqFt: 60000,
		FAR:                60000 / (5 * domain.SqFtPerAcre),
		LotCoverage:        20000 / (5 * domain.SqFtPerAcre),
		TotalUnits:         45,
		ParkingSpaces:      95,
	}
}

func TestValidateCompliant(t *testing.T) {
	v := NewValidator()

	result := v.Validate(compliantCandidate(), r2Rule(), r2Site())

	assert.True(t, result.Compliant)
	assert.Equal(t, 100, result.ComplianceScore)
	assert.Empty(t, result.Violations)
	assert.Equal(t, "c0001", result.CandidateID)
}

func TestValidateSideSetbackViolation(t *testing.T) {
	v := NewValidator()
	c := compliantCandidate()
	c.SideSetback = 5 // minimum is 10

	result := v.Validate(c, r2Rule(), r2Site())

	assert.False(t, result.Compliant)
	require.Len(t, result.Violations, 1)

	viol := result.Violations[0]
	assert.Equal(t, domain.CategorySetback, viol.Category)
	assert.Equal(t, "side", viol.Dimension)
	assert.Equal(t, 10.0, viol.Requirement)
	assert.Equal(t, 5.0, viol.Actual)
	assert.Equal(t, 5.0, viol.Delta)
	assert.Equal(t, domain.SeverityCritical, viol.Severity)
	assert.True(t, viol.AutoFixable)
	assert.Equal(t, 85, result.ComplianceScore)
}

func TestValidateSeverities(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*domain.DesignCandidate)
		category domain.ViolationCategory
		severity domain.Severity
	}{
		{
			name:     "height over limit",
			mutate:   func(c *domain.DesignCandidate) { c.HeightFt = 50 },
			category: domain.CategoryHeight,
			severity: domain.SeverityCritical,
		},
		{
			name:     "FAR over limit",
			mutate:   func(c *domain.DesignCandidate) { c.FAR = 0.75 },
			category: domain.CategoryFAR,
			severity: domain.SeverityCritical,
		},
		{
			name:     "lot coverage over limit",
			mutate:   func(c *domain.DesignCandidate) { c.LotCoverage = 0.55 },
			category: domain.CategoryLotCoverage,
			severity: domain.SeverityMajor,
		},
		{
			name:     "parking shortfall",
			mutate:   func(c *domain.DesignCandidate) { c.ParkingSpaces = 60 },
			category: domain.CategoryParking,
			severity: domain.SeverityMajor,
		},
		{
			name:     "density over ceiling",
			mutate:   func(c *domain.DesignCandidate) { c.TotalUnits = 60; c.ParkingSpaces = 130 },
			category: domain.CategoryDensity,
			severity: domain.SeverityCritical,
		},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := compliantCandidate()
			tt.mutate(c)

			result := v.Validate(c, r2Rule(), r2Site())

			assert.False(t, result.Compliant)
			require.Len(t, result.Violations, 1)
			assert.Equal(t, tt.category, result.Violations[0].Category)
			assert.Equal(t, tt.severity, result.Violations[0].Severity)
		})
	}
}

func TestValidateScoreFloorsAtZero(t *testing.T) {
	v := NewValidator()
	c := &domain.DesignCandidate{
		ID:            "c0002",
		HeightFt:      80,
		FrontSetback:  1,
		RearSetback:   1,
		SideSetback:   1,
		FAR:           2.0,
		LotCoverage:   0.9,
		TotalUnits:    200,
		ParkingSpaces: 0,
	}

	result := v.Validate(c, r2Rule(), r2Site())

	assert.False(t, result.Compliant)
	assert.Len(t, result.Violations, 8)
	assert.Equal(t, 0, result.ComplianceScore)
}

func TestValidateSkipsUnregulatedDimensions(t *testing.T) {
	v := NewValidator()
	c := compliantCandidate()
	c.HeightFt = 500
	c.FrontSetback = 0
	c.ParkingSpaces = 0

	// A rule with all-zero limits regulates nothing
	result := v.Validate(c, &domain.ZoningRule{Jurisdiction: "j", District: "d"}, r2Site())

	assert.True(t, result.Compliant)
	assert.Empty(t, result.Violations)
}

func TestValidateIdempotent(t *testing.T) {
	v := NewValidator()
	c := compliantCandidate()
	c.SideSetback = 5
	rule := r2Rule()
	site := r2Site()

	first := v.Validate(c, rule, site)
	second := v.Validate(c, rule, site)

	assert.Equal(t, first, second)
}

func TestSuggestFixes(t *testing.T) {
	v := NewValidator()
	c := compliantCandidate()
	c.SideSetback = 5
	c.ParkingSpaces = 60

	result := v.Validate(c, r2Rule(), r2Site())
	fixes := SuggestFixes(result.Violations)

	require.Len(t, fixes, 2)
	assert.Equal(t, domain.CategorySetback, fixes[0].Category)
	assert.Equal(t, 5.0, fixes[0].Amount)
	assert.Contains(t, fixes[0].Description, "side setback")
	assert.Equal(t, domain.CategoryParking, fixes[1].Category)
	assert.Equal(t, 30.0, fixes[1].Amount)
}

func TestSuggestFixesEmpty(t *testing.T) {
	assert.Nil(t, SuggestFixes(nil))
}
