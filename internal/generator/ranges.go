package generator

import "github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"

// typologyProfile bounds the sampling space for one development typology.
// Heights are in feet, AvgUnitSqFt is gross building area consumed per unit
// (net area divided by efficiency), SpacesPer1000SqFt sizes parking for
// typologies that have no unit count.
type typologyProfile struct {
	MinHeightFt       float64
	MaxHeightFt       float64
	StoryHeightFt     float64
	Efficiency        float64
	AvgUnitSqFt       float64
	SpacesPer1000SqFt float64
	MixFractions      *mixFractions
}

// mixFractions splits a unit count across bedroom types. Fractions sum to 1;
// rounding remainders land on two-bedroom units.
type mixFractions struct {
	Studios  float64
	OneBed   float64
	TwoBed   float64
	ThreeBed float64
}

var profiles = map[domain.Typology]typologyProfile{
	domain.TypologyMultifamily: {
		MinHeightFt:   20,
		MaxHeightFt:   60,
		StoryHeightFt: 10,
		Efficiency:    0.85,
		AvgUnitSqFt:   950,
		MixFractions:  &mixFractions{Studios: 0.10, OneBed: 0.35, TwoBed: 0.40, ThreeBed: 0.15},
	},
	domain.TypologySelfStorage: {
		MinHeightFt:   10,
		MaxHeightFt:   40,
		StoryHeightFt: 10,
		Efficiency:    0.78,
		AvgUnitSqFt:   120,
	},
	domain.TypologyIndustrial: {
		MinHeightFt:       24,
		MaxHeightFt:       45,
		StoryHeightFt:     24,
		Efficiency:        0.95,
		SpacesPer1000SqFt: 1.0,
	},
	domain.TypologySingleFamily: {
		MinHeightFt:   15,
		MaxHeightFt:   35,
		StoryHeightFt: 10,
		Efficiency:    1.0,
		AvgUnitSqFt:   2200,
		MixFractions:  &mixFractions{TwoBed: 0.30, ThreeBed: 0.70},
	},
	domain.TypologySeniorLiving: {
		MinHeightFt:   20,
		MaxHeightFt:   50,
		StoryHeightFt: 10,
		Efficiency:    0.80,
		AvgUnitSqFt:   750,
		MixFractions:  &mixFractions{Studios: 0.30, OneBed: 0.50, TwoBed: 0.20},
	},
	domain.TypologyMedicalOffice: {
		MinHeightFt:       14,
		MaxHeightFt:       60,
		StoryHeightFt:     14,
		Efficiency:        0.88,
		SpacesPer1000SqFt: 4.5,
	},
	domain.TypologyRetail: {
		MinHeightFt:       16,
		MaxHeightFt:       35,
		StoryHeightFt:     16,
		Efficiency:        0.92,
		SpacesPer1000SqFt: 4.0,
	},
	domain.TypologyHotel: {
		MinHeightFt:   25,
		MaxHeightFt:   60,
		StoryHeightFt: 10,
		Efficiency:    0.70,
		AvgUnitSqFt:   550,
	},
}

// Footprint fraction of buildable area, per the sampling contract.
const (
	minFootprintFraction = 0.15
	maxFootprintFraction = 0.85
)

// Setback sampling: rule minimum plus a margin, or a default band when the
// dimension is unregulated.
const (
	setbackMarginFt     = 15.0
	defaultSetbackMinFt = 5.0
	defaultSetbackMaxFt = 20.0
)
