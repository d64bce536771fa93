package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteAreaSqFt(t *testing.T) {
	site := Site{Acreage: 5, Jurisdiction: "PalmBay", ZoningDistrict: "RS-4"}
	assert.InDelta(t, 217800.0, site.AreaSqFt(), 0.001)
}

func TestSiteValidate(t *testing.T) {
	tests := []struct {
		name    string
		site    Site
		wantErr bool
	}{
		{"valid", Site{Acreage: 2.5, Jurisdiction: "PalmBay", ZoningDistrict: "RS-4"}, false},
		{"zero acreage", Site{Acreage: 0, Jurisdiction: "PalmBay", ZoningDistrict: "RS-4"}, true},
		{"negative acreage", Site{Acreage: -1, Jurisdiction: "PalmBay", ZoningDistrict: "RS-4"}, true},
		{"missing jurisdiction", Site{Acreage: 2.5, ZoningDistrict: "RS-4"}, true},
		{"missing district", Site{Acreage: 2.5, Jurisdiction: "PalmBay"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.site.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidationInputError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseTypology(t *testing.T) {
	for _, typ := range AllTypologies {
		parsed, err := ParseTypology(string(typ))
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}

	_, err := ParseTypology("casino")
	require.Error(t, err)
	assert.True(t, IsValidationInputError(err))
}

func TestTypologyClassification(t *testing.T) {
	assert.False(t, TypologySingleFamily.IsIncomeProducing())
	assert.True(t, TypologyMultifamily.IsIncomeProducing())
	assert.True(t, TypologyHotel.IsIncomeProducing())

	assert.True(t, TypologyMultifamily.IsUnitBased())
	assert.True(t, TypologyHotel.IsUnitBased())
	assert.False(t, TypologyIndustrial.IsUnitBased())
	assert.False(t, TypologyMedicalOffice.IsUnitBased())
}

func TestUnitMixTotal(t *testing.T) {
	mix := UnitMix{Studios: 10, OneBed: 20, TwoBed: 15, ThreeBed: 5}
	assert.Equal(t, 50, mix.Total())
}

func TestRuleKey(t *testing.T) {
	rule := ZoningRule{Jurisdiction: "PalmBay", District: "RS-4"}
	assert.Equal(t, "PalmBay|RS-4", rule.Key())
	assert.Equal(t, rule.Key(), RuleKey("PalmBay", "RS-4"))
}
