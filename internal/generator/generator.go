// Package generator samples candidate building configurations for a site.
// Generation is stochastic but fully reproducible: the same (site, typology,
// rule, count, seed) tuple always yields the same candidate set.
package generator

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"
)

// Generator produces batches of design candidates. Stateless; safe for
// concurrent use since every Generate call builds its own random source.
type Generator struct{}

func New() *Generator {
	return &Generator{}
}

// Generate samples up to count candidates for the site and typology. Samples
// that are not geometrically realizable (no buildable area left inside the
// minimum setbacks) are discarded, so the returned slice may be shorter than
// count. Candidate IDs are sequential within the batch, which gives the
// optimizer a deterministic tie-break.
func (g *Generator) Generate(site domain.Site, typology domain.Typology, rule *domain.ZoningRule, count int, seed int64) ([]domain.DesignCandidate, error) {
	profile, ok := profiles[typology]
	if !ok {
		return nil, &domain.ValidationInputError{Field: "typology", Reason: fmt.Sprintf("no sampling profile for %q", typology)}
	}
	if count <= 0 {
		return nil, &domain.ValidationInputError{Field: "count", Reason: "must be positive"}
	}

	// One shared source keeps the sample stream deterministic. All draws
	// happen on a single goroutine for the same reason.
	src := rand.NewSource(uint64(seed))
	uniform := func(min, max float64) float64 {
		if max <= min {
			return min
		}
		return distuv.Uniform{Min: min, Max: max, Src: src}.Rand()
	}

	siteArea := site.AreaSqFt()
	// Parcel modeled as a square for setback geometry.
	sideLen := math.Sqrt(siteArea)

	// Density ceiling applies at generation time too, so unit-based
	// typologies never sample a unit count the site cannot legally hold.
	unitCap := math.MaxInt32
	if rule.MaxDensityPerAcre > 0 && profile.AvgUnitSqFt > 0 {
		unitCap = int(math.Floor(rule.MaxDensityPerAcre * site.Acreage))
	}

	candidates := make([]domain.DesignCandidate, 0, count)
	for i := 0; i < count; i++ {
		front := sampleSetback(uniform, rule.MinFrontSetbackFt)
		rear := sampleSetback(uniform, rule.MinRearSetbackFt)
		side := sampleSetback(uniform, rule.MinSideSetbackFt)

		// Geometric pre-filter: the building envelope must fit inside
		// the sampled setbacks. Not a compliance check.
		buildableW := sideLen - 2*side
		buildableD := sideLen - front - rear
		if buildableW <= 0 || buildableD <= 0 {
			continue
		}
		buildable := buildableW * buildableD

		height := uniform(profile.MinHeightFt, profile.MaxHeightFt)
		stories := int(math.Max(1, math.Floor(height/profile.StoryHeightFt)))
		footprint := uniform(minFootprintFraction, maxFootprintFraction) * buildable

		gfa := footprint * float64(stories)

		units := 0
		if profile.AvgUnitSqFt > 0 {
			units = int(math.Floor(gfa * profile.Efficiency / profile.AvgUnitSqFt))
			if units > unitCap {
				units = unitCap
			}
		}

		parkingType := sampleParkingType(uniform, stories)
		spaces := sampleParkingSpaces(uniform, profile, rule, units, gfa)

		c := domain.DesignCandidate{
			ID:            fmt.Sprintf("c%04d", len(candidates)+1),
			HeightFt:      height,
			Stories:       stories,
			FrontSetback:  front,
			RearSetback:   rear,
			SideSetback:   side,
			FootprintSqFt: footprint,
			ParkingType:   parkingType,

			GrossFloorAreaSqFt: gfa,
			FAR:                gfa / siteArea,
			LotCoverage:        footprint / siteArea,
			TotalUnits:         units,
			ParkingSpaces:      spaces,
		}
		if profile.MixFractions != nil {
			c.UnitMix = splitUnitMix(units, *profile.MixFractions)
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}

// sampleSetback draws at or above the rule minimum. Unregulated dimensions
// fall back to a plausible default band.
func sampleSetback(uniform func(min, max float64) float64, ruleMin float64) float64 {
	if ruleMin <= 0 {
		return uniform(defaultSetbackMinFt, defaultSetbackMaxFt)
	}
	return ruleMin + uniform(0, setbackMarginFt)
}

// sampleParkingType weights the parking strategy by building height. Surface
// lots dominate low-rise, structured and underground become viable as
// stories climb.
func sampleParkingType(uniform func(min, max float64) float64, stories int) domain.ParkingType {
	u := uniform(0, 1)
	switch {
	case stories >= 5:
		if u < 0.25 {
			return domain.ParkingUnderground
		}
		if u < 0.80 {
			return domain.ParkingStructured
		}
		return domain.ParkingSurface
	case stories >= 3:
		if u < 0.40 {
			return domain.ParkingStructured
		}
		return domain.ParkingSurface
	default:
		return domain.ParkingSurface
	}
}

// sampleParkingSpaces sizes parking above the rule minimum for unit-based
// typologies, or per thousand square feet otherwise.
func sampleParkingSpaces(uniform func(min, max float64) float64, profile typologyProfile, rule *domain.ZoningRule, units int, gfa float64) int {
	if profile.AvgUnitSqFt > 0 {
		ratio := rule.MinParkingPerUnit
		if ratio <= 0 {
			ratio = 1.0
		}
		return int(math.Ceil(float64(units) * uniform(ratio, ratio+0.5)))
	}
	return int(math.Ceil(gfa / 1000 * uniform(profile.SpacesPer1000SqFt*0.8, profile.SpacesPer1000SqFt*1.2)))
}

// splitUnitMix distributes units across bedroom types, dropping any rounding
// remainder on two-bedroom units.
func splitUnitMix(units int, f mixFractions) *domain.UnitMix {
	mix := &domain.UnitMix{
		Studios:  int(math.Floor(float64(units) * f.Studios)),
		OneBed:   int(math.Floor(float64(units) * f.OneBed)),
		ThreeBed: int(math.Floor(float64(units) * f.ThreeBed)),
	}
	mix.TwoBed = units - mix.Studios - mix.OneBed - mix.ThreeBed
	return mix
}
