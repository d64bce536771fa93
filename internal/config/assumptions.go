package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"
)

// Assumptions holds the per-typology market inputs the financial model prices
// with. All values are configurable defaults, not verified market data - they
// are supplied by configuration so the same engine serves multiple markets.
type Assumptions struct {
	LandCostPerAcre float64 `json:"land_cost_per_acre"`
	HardCostPerSqFt float64 `json:"hard_cost_per_sq_ft"`
	SoftCostPct     float64 `json:"soft_cost_pct"`    // fraction of hard costs
	ContingencyPct  float64 `json:"contingency_pct"`  // fraction of hard+soft

	// Revenue drivers. Unit-based typologies use RevenuePerUnitPerYear
	// (rent, ADR x occupancy x 365, storage rates); floor-area typologies
	// use RevenuePerSqFtPerYear. For-sale typologies use SalePricePerUnit.
	RevenuePerUnitPerYear float64 `json:"revenue_per_unit_per_year,omitempty"`
	RevenuePerSqFtPerYear float64 `json:"revenue_per_sq_ft_per_year,omitempty"`
	SalePricePerUnit      float64 `json:"sale_price_per_unit,omitempty"`

	VacancyPct      float64 `json:"vacancy_pct"`      // gross-to-effective haircut
	OperatingMargin float64 `json:"operating_margin"` // NOI as fraction of effective revenue
	CapRate         float64 `json:"cap_rate,omitempty"`
}

// MarketAssumptions is the full assumption set for one market.
type MarketAssumptions struct {
	Typologies          map[domain.Typology]Assumptions `json:"typologies"`
	ParkingCostPerSpace map[domain.ParkingType]float64  `json:"parking_cost_per_space"`
}

// ForTypology returns the assumptions for a typology.
func (m MarketAssumptions) ForTypology(t domain.Typology) (Assumptions, bool) {
	a, ok := m.Typologies[t]
	return a, ok
}

// Validate checks the assumption set covers every typology with sane values.
func (m MarketAssumptions) Validate() error {
	for _, t := range domain.AllTypologies {
		a, ok := m.Typologies[t]
		if !ok {
			return fmt.Errorf("missing assumptions for typology %s", t)
		}
		if a.LandCostPerAcre <= 0 || a.HardCostPerSqFt <= 0 {
			return fmt.Errorf("typology %s: land and hard costs must be positive", t)
		}
		if a.SoftCostPct < 0 || a.SoftCostPct > 1 {
			return fmt.Errorf("typology %s: soft cost pct out of range [0,1]", t)
		}
		if t.IsIncomeProducing() && a.CapRate <= 0 {
			return fmt.Errorf("typology %s: cap rate must be positive for income-producing typology", t)
		}
		if t == domain.TypologySingleFamily && a.SalePricePerUnit <= 0 {
			return fmt.Errorf("typology %s: sale price per unit must be positive", t)
		}
	}
	for _, p := range []domain.ParkingType{domain.ParkingSurface, domain.ParkingStructured, domain.ParkingUnderground} {
		if m.ParkingCostPerSpace[p] <= 0 {
			return fmt.Errorf("missing parking cost for %s", p)
		}
	}
	return nil
}

// DefaultMarketAssumptions returns the compiled-in assumption set. The values
// are illustrative placeholders from the originating research, not verified
// market data; production deployments override them via MARKET_ASSUMPTIONS_PATH.
func DefaultMarketAssumptions() MarketAssumptions {
	return MarketAssumptions{
		Typologies: map[domain.Typology]Assumptions{
			domain.TypologyMultifamily: {
				LandCostPerAcre:       500_000,
				HardCostPerSqFt:       165,
				SoftCostPct:           0.20,
				ContingencyPct:        0.05,
				RevenuePerUnitPerYear: 21_600, // $1,800/mo asking rent
				VacancyPct:            0.05,
				OperatingMargin:       0.62,
				CapRate:               0.0525,
			},
			domain.TypologySelfStorage: {
				LandCostPerAcre:       300_000,
				HardCostPerSqFt:       55,
				SoftCostPct:           0.15,
				ContingencyPct:        0.05,
				RevenuePerUnitPerYear: 1_560, // $130/mo blended unit rate
				VacancyPct:            0.10,
				OperatingMargin:       0.65,
				CapRate:               0.0575,
			},
			domain.TypologyIndustrial: {
				LandCostPerAcre:       250_000,
				HardCostPerSqFt:       95,
				SoftCostPct:           0.15,
				ContingencyPct:        0.05,
				RevenuePerSqFtPerYear: 9.50, // NNN
				VacancyPct:            0.04,
				OperatingMargin:       0.95,
				CapRate:               0.06,
			},
			domain.TypologySingleFamily: {
				LandCostPerAcre:  150_000,
				HardCostPerSqFt:  140,
				SoftCostPct:      0.12,
				ContingencyPct:   0.05,
				SalePricePerUnit: 425_000,
			},
			domain.TypologySeniorLiving: {
				LandCostPerAcre:       400_000,
				HardCostPerSqFt:       220,
				SoftCostPct:           0.22,
				ContingencyPct:        0.05,
				RevenuePerUnitPerYear: 54_000, // $4,500/mo care-inclusive
				VacancyPct:            0.08,
				OperatingMargin:       0.32,
				CapRate:               0.065,
			},
			domain.TypologyMedicalOffice: {
				LandCostPerAcre:       600_000,
				HardCostPerSqFt:       280,
				SoftCostPct:           0.22,
				ContingencyPct:        0.05,
				RevenuePerSqFtPerYear: 28,
				VacancyPct:            0.07,
				OperatingMargin:       0.70,
				CapRate:               0.0625,
			},
			domain.TypologyRetail: {
				LandCostPerAcre:       700_000,
				HardCostPerSqFt:       180,
				SoftCostPct:           0.18,
				ContingencyPct:        0.05,
				RevenuePerSqFtPerYear: 24,
				VacancyPct:            0.08,
				OperatingMargin:       0.85,
				CapRate:               0.065,
			},
			domain.TypologyHotel: {
				LandCostPerAcre:       800_000,
				HardCostPerSqFt:       240,
				SoftCostPct:           0.25,
				ContingencyPct:        0.05,
				RevenuePerUnitPerYear: 37_230, // $150 ADR x 68% occupancy x 365
				VacancyPct:            0,      // occupancy already in the room revenue
				OperatingMargin:       0.30,
				CapRate:               0.075,
			},
		},
		ParkingCostPerSpace: map[domain.ParkingType]float64{
			domain.ParkingSurface:     5_000,
			domain.ParkingStructured:  25_000,
			domain.ParkingUnderground: 45_000,
		},
	}
}

// LoadMarketAssumptions returns the defaults, optionally overridden per
// typology by a JSON file. The file is validated against an embedded schema
// before any value is applied, so a malformed override fails at startup
// instead of producing silent garbage pro formas.
func LoadMarketAssumptions(path string) (MarketAssumptions, error) {
	assumptions := DefaultMarketAssumptions()
	if path == "" {
		return assumptions, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return MarketAssumptions{}, fmt.Errorf("failed to read market assumptions file: %w", err)
	}

	if err := validateAssumptionsDocument(raw); err != nil {
		return MarketAssumptions{}, fmt.Errorf("market assumptions file %s: %w", path, err)
	}

	var override MarketAssumptions
	if err := json.Unmarshal(raw, &override); err != nil {
		return MarketAssumptions{}, fmt.Errorf("failed to parse market assumptions file: %w", err)
	}

	// Typology overrides replace the default entry wholesale
	for t, a := range override.Typologies {
		if _, err := domain.ParseTypology(string(t)); err != nil {
			return MarketAssumptions{}, fmt.Errorf("market assumptions file: %w", err)
		}
		assumptions.Typologies[t] = a
	}
	for p, cost := range override.ParkingCostPerSpace {
		assumptions.ParkingCostPerSpace[p] = cost
	}

	if err := assumptions.Validate(); err != nil {
		return MarketAssumptions{}, fmt.Errorf("market assumptions after override: %w", err)
	}

	return assumptions, nil
}

// validateAssumptionsDocument checks a raw override document against the
// embedded JSON schema.
func validateAssumptionsDocument(raw []byte) error {
	schema, err := jsonschema.CompileString("market_assumptions.schema.json", assumptionsSchema)
	if err != nil {
		return fmt.Errorf("failed to compile assumptions schema: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("not valid JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}

// assumptionsSchema validates market assumption override files.
const assumptionsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "typologies": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "land_cost_per_acre": {"type": "number", "exclusiveMinimum": 0},
          "hard_cost_per_sq_ft": {"type": "number", "exclusiveMinimum": 0},
          "soft_cost_pct": {"type": "number", "minimum": 0, "maximum": 1},
          "contingency_pct": {"type": "number", "minimum": 0, "maximum": 1},
          "revenue_per_unit_per_year": {"type": "number", "minimum": 0},
          "revenue_per_sq_ft_per_year": {"type": "number", "minimum": 0},
          "sale_price_per_unit": {"type": "number", "minimum": 0},
          "vacancy_pct": {"type": "number", "minimum": 0, "maximum": 1},
          "operating_margin": {"type": "number", "minimum": 0, "maximum": 1},
          "cap_rate": {"type": "number", "minimum": 0, "maximum": 1}
        },
        "required": ["land_cost_per_acre", "hard_cost_per_sq_ft"],
        "additionalProperties": false
      }
    },
    "parking_cost_per_space": {
      "type": "object",
      "additionalProperties": {"type": "number", "exclusiveMinimum": 0}
    }
  },
  "additionalProperties": false
}`
