// Package domain defines the core data model for the feasibility engine:
// sites, zoning rules, design candidates, compliance results and pro formas.
// The domain layer is pure - no infrastructure dependencies.
package domain

import (
	"time"
)

// SqFtPerAcre converts acreage to square feet.
const SqFtPerAcre = 43560.0

// Site describes the parcel under analysis. Immutable input.
type Site struct {
	Acreage        float64 `json:"acreage"`
	Jurisdiction   string  `json:"jurisdiction"`
	ZoningDistrict string  `json:"zoning_district"`
}

// AreaSqFt returns the gross site area in square feet.
func (s Site) AreaSqFt() float64 {
	return s.Acreage * SqFtPerAcre
}

// Validate rejects malformed sites before any generation work starts.
func (s Site) Validate() error {
	if s.Acreage <= 0 {
		return &ValidationInputError{Field: "acreage", Reason: "must be positive"}
	}
	if s.Jurisdiction == "" {
		return &ValidationInputError{Field: "jurisdiction", Reason: "must not be empty"}
	}
	if s.ZoningDistrict == "" {
		return &ValidationInputError{Field: "zoning_district", Reason: "must not be empty"}
	}
	return nil
}

// ZoningRule holds the per-district development constraints the validator
// checks candidates against. Sourced externally, cached with a 30-day TTL.
// Setbacks and height are in feet; MaxLotCoverage is a fraction of lot area.
type ZoningRule struct {
	Jurisdiction      string  `json:"jurisdiction"`
	District          string  `json:"district"`
	MinFrontSetbackFt float64 `json:"min_front_setback_ft"`
	MinRearSetbackFt  float64 `json:"min_rear_setback_ft"`
	MinSideSetbackFt  float64 `json:"min_side_setback_ft"`
	MaxHeightFt       float64 `json:"max_height_ft"`
	MaxFAR            float64 `json:"max_far"`
	MaxLotCoverage    float64 `json:"max_lot_coverage"`
	MinParkingPerUnit float64 `json:"min_parking_per_unit"`
	MaxDensityPerAcre float64 `json:"max_density_per_acre"`

	// Stale marks a rule served from an expired cache row because the
	// external source was unreachable. Callers decide whether that is
	// acceptable for their use case.
	Stale     bool      `json:"stale,omitempty"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
}

// Key returns the cache key for a (jurisdiction, district) pair.
func (r ZoningRule) Key() string {
	return RuleKey(r.Jurisdiction, r.District)
}

// RuleKey builds the canonical cache key for a (jurisdiction, district) pair.
func RuleKey(jurisdiction, district string) string {
	return jurisdiction + "|" + district
}

// ParkingType identifies the parking strategy of a candidate.
type ParkingType string

const (
	ParkingSurface     ParkingType = "surface"
	ParkingStructured  ParkingType = "structured"
	ParkingUnderground ParkingType = "underground"
)

// UnitMix breaks a residential candidate's units down by bedroom count.
type UnitMix struct {
	Studios  int `json:"studios"`
	OneBed   int `json:"one_bed"`
	TwoBed   int `json:"two_bed"`
	ThreeBed int `json:"three_bed"`
}

// Total returns the unit count across the mix.
func (m UnitMix) Total() int {
	return m.Studios + m.OneBed + m.TwoBed + m.ThreeBed
}

// DesignCandidate is one sampled building configuration. Candidates are
// immutable after generation: the derived fields (FAR, lot coverage, unit
// count, parking demand) are computed once at creation and never recomputed
// downstream.
type DesignCandidate struct {
	ID            string      `json:"id"`
	HeightFt      float64     `json:"height_ft"`
	Stories       int         `json:"stories"`
	FrontSetback  float64     `json:"front_setback_ft"`
	RearSetback   float64     `json:"rear_setback_ft"`
	SideSetback   float64     `json:"side_setback_ft"`
	FootprintSqFt float64     `json:"footprint_sq_ft"`
	ParkingType   ParkingType `json:"parking_type"`
	UnitMix       *UnitMix    `json:"unit_mix,omitempty"`

	// Derived at creation from the sampled fields and the site.
	GrossFloorAreaSqFt float64 `json:"gross_floor_area_sq_ft"`
	FAR                float64 `json:"far"`
	LotCoverage        float64 `json:"lot_coverage"`
	TotalUnits         int     `json:"total_units"`
	ParkingSpaces      int     `json:"parking_spaces"`
}

// Severity classifies how hard a violation blocks the design.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityMajor    Severity = "MAJOR"
)

// ViolationCategory names the rule dimension a violation belongs to.
type ViolationCategory string

const (
	CategorySetback     ViolationCategory = "setback"
	CategoryHeight      ViolationCategory = "height"
	CategoryFAR         ViolationCategory = "far"
	CategoryLotCoverage ViolationCategory = "lot_coverage"
	CategoryParking     ViolationCategory = "parking"
	CategoryDensity     ViolationCategory = "density"
)

// Violation records a single failed rule check. Violations are domain data,
// never errors.
type Violation struct {
	Category    ViolationCategory `json:"category"`
	Dimension   string            `json:"dimension,omitempty"` // front/rear/side for setbacks
	Requirement float64           `json:"requirement"`
	Actual      float64           `json:"actual"`
	Delta       float64           `json:"delta"`
	Severity    Severity          `json:"severity"`
	AutoFixable bool              `json:"auto_fixable"`
}

// ComplianceResult is the validator's verdict for one candidate against one
// rule set. Violations is empty iff Compliant is true.
type ComplianceResult struct {
	CandidateID     string      `json:"candidate_id"`
	Compliant       bool        `json:"compliant"`
	ComplianceScore int         `json:"compliance_score"` // 0-100
	Violations      []Violation `json:"violations"`
}

// ProForma is the typology-specific financial projection for a compliant
// candidate. Income-producing typologies are valued off NOI and cap rate;
// for-sale typologies off total revenue. All monetary values are USD.
// TotalCost always equals LandCost + HardCosts + SoftCosts + Contingency.
type ProForma struct {
	LandCost    float64 `json:"land_cost"`
	HardCosts   float64 `json:"hard_costs"`
	SoftCosts   float64 `json:"soft_costs"`
	Contingency float64 `json:"contingency,omitempty"`
	TotalCost   float64 `json:"total_cost"`

	AnnualRevenue  float64 `json:"annual_revenue,omitempty"`
	NOI            float64 `json:"noi,omitempty"`
	CapRate        float64 `json:"cap_rate,omitempty"`
	EstimatedValue float64 `json:"estimated_value,omitempty"`
	TotalRevenue   float64 `json:"total_revenue,omitempty"` // for-sale typologies

	Profit         float64 `json:"profit"`
	MarginPct      float64 `json:"margin_pct"`
	YieldOnCostPct float64 `json:"yield_on_cost_pct,omitempty"`
}

// Objective names a ranking criterion for the optimizer.
type Objective string

const (
	ObjectiveMaxProfit  Objective = "max_profit"
	ObjectiveMaxUnits   Objective = "max_units"
	ObjectiveMaxFAR     Objective = "max_far"
	ObjectiveMaxROI     Objective = "max_roi"
	ObjectiveMinParking Objective = "min_parking"
)

// DefaultObjectives is the full objective set evaluated per run.
var DefaultObjectives = []Objective{
	ObjectiveMaxProfit,
	ObjectiveMaxUnits,
	ObjectiveMaxFAR,
	ObjectiveMaxROI,
	ObjectiveMinParking,
}

// ScoredCandidate bundles a candidate with its compliance verdict and, when
// compliant, its pro forma.
type ScoredCandidate struct {
	Candidate  DesignCandidate  `json:"candidate"`
	Compliance ComplianceResult `json:"compliance"`
	ProForma   *ProForma        `json:"pro_forma,omitempty"`
}

// BatchSummary carries descriptive statistics over the compliant subset of a
// run. Zero-valued when no candidate was compliant.
type BatchSummary struct {
	MeanComplianceScore float64 `json:"mean_compliance_score"`
	ProfitMean          float64 `json:"profit_mean"`
	ProfitStdDev        float64 `json:"profit_std_dev"`
	ProfitMin           float64 `json:"profit_min"`
	ProfitMax           float64 `json:"profit_max"`
}

// OptimizationResult is the output of one feasibility run. An empty compliant
// set is a valid result (CompliantCount == 0, Recommended == nil), not an
// error: callers present it as "no compliant design found".
type OptimizationResult struct {
	RunID          string    `json:"run_id"`
	Site           Site      `json:"site"`
	Typology       Typology  `json:"typology"`
	Seed           int64     `json:"seed"`
	GeneratedCount int       `json:"generated_count"`
	CompliantCount int       `json:"compliant_count"`
	RulesStale     bool      `json:"rules_stale,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	ElapsedMs      int64     `json:"elapsed_ms"`

	Recommended  *ScoredCandidate              `json:"recommended,omitempty"`
	Alternatives map[Objective]ScoredCandidate `json:"alternatives,omitempty"`
	Summary      BatchSummary                  `json:"summary"`
}
