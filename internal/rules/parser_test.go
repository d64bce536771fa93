package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFullText(t *testing.T) {
	rule, err := Parse(sampleRawText, "brevard_county", "R-2")
	require.NoError(t, err)

	assert.Equal(t, "brevard_county", rule.Jurisdiction)
	assert.Equal(t, "R-2", rule.District)
	assert.Equal(t, 25.0, rule.MinFrontSetbackFt)
	assert.Equal(t, 20.0, rule.MinRearSetbackFt)
	assert.Equal(t, 10.0, rule.MinSideSetbackFt)
	assert.Equal(t, 35.0, rule.MaxHeightFt)
	assert.Equal(t, 0.5, rule.MaxFAR)
	assert.Equal(t, 0.40, rule.MaxLotCoverage)
	assert.Equal(t, 2.0, rule.MinParkingPerUnit)
	assert.Equal(t, 10.0, rule.MaxDensityPerAcre)
}

func TestParsePhrasings(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T)
	}{
		{
			name: "abbreviated labels",
			raw:  "Max. height: 45 ft. Max FAR 2.0. Max. lot coverage 60 percent.",
		},
		{
			name: "yard setbacks",
			raw:  "Front yard setback of 15 feet. Side yard setback of 7.5 feet.",
		},
		{
			name: "density with slash",
			raw:  "Density: 24 units/acre maximum. Height limited to 50 feet... maximum height of 50 feet.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := Parse(tt.raw, "j", "d")
			require.NoError(t, err)

			switch tt.name {
			case "abbreviated labels":
				assert.Equal(t, 45.0, rule.MaxHeightFt)
				assert.Equal(t, 2.0, rule.MaxFAR)
				assert.Equal(t, 0.60, rule.MaxLotCoverage)
			case "yard setbacks":
				assert.Equal(t, 15.0, rule.MinFrontSetbackFt)
				assert.Equal(t, 7.5, rule.MinSideSetbackFt)
			case "density with slash":
				assert.Equal(t, 24.0, rule.MaxDensityPerAcre)
			}
		})
	}
}

func TestParsePartialTextLeavesZeroes(t *testing.T) {
	rule, err := Parse("Maximum building height: 35 feet.", "j", "d")
	require.NoError(t, err)

	assert.Equal(t, 35.0, rule.MaxHeightFt)
	assert.Zero(t, rule.MaxFAR)
	assert.Zero(t, rule.MinFrontSetbackFt)
	assert.Zero(t, rule.MaxDensityPerAcre)
}

func TestParseFractionalCoverageKept(t *testing.T) {
	rule, err := Parse("Maximum lot coverage: 0.35", "j", "d")
	require.NoError(t, err)
	assert.Equal(t, 0.35, rule.MaxLotCoverage)
}

func TestParseUnrecognizedText(t *testing.T) {
	_, err := Parse("This page intentionally left blank.", "j", "d")
	require.Error(t, err)
}
