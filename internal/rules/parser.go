package rules

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"
)

// Parse extracts a structured ZoningRule from raw municipal-code text as
// delivered by the scraping collaborator. The extraction is labeled-number
// matching, not legal interpretation: each dimension is located by its common
// code phrasings and the first numeric value after the label wins.
//
// Dimensions absent from the text are left at zero, which the validator
// treats as "not regulated". Returns an error only when no dimension at all
// could be recognized, since that almost always means the scraper delivered
// the wrong page.
func Parse(raw, jurisdiction, district string) (domain.ZoningRule, error) {
	rule := domain.ZoningRule{
		Jurisdiction: jurisdiction,
		District:     district,
	}

	matched := 0
	for _, f := range fieldPatterns {
		if m := f.re.FindStringSubmatch(raw); m != nil {
			value, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			f.assign(&rule, value)
			matched++
		}
	}

	if matched == 0 {
		return domain.ZoningRule{}, fmt.Errorf("no zoning dimensions recognized in raw text for %s/%s", jurisdiction, district)
	}

	return rule, nil
}

// number matches an integer or decimal value.
const number = `(\d+(?:\.\d+)?)`

var fieldPatterns = []struct {
	name   string
	re     *regexp.Regexp
	assign func(*domain.ZoningRule, float64)
}{
	{
		name:   "front setback",
		re:     regexp.MustCompile(`(?i)front\s+(?:yard\s+)?setback[^\d]*` + number),
		assign: func(r *domain.ZoningRule, v float64) { r.MinFrontSetbackFt = v },
	},
	{
		name:   "rear setback",
		re:     regexp.MustCompile(`(?i)rear\s+(?:yard\s+)?setback[^\d]*` + number),
		assign: func(r *domain.ZoningRule, v float64) { r.MinRearSetbackFt = v },
	},
	{
		name:   "side setback",
		re:     regexp.MustCompile(`(?i)side\s+(?:yard\s+)?setback[^\d]*` + number),
		assign: func(r *domain.ZoningRule, v float64) { r.MinSideSetbackFt = v },
	},
	{
		name:   "max height",
		re:     regexp.MustCompile(`(?i)(?:maximum|max\.?)\s+(?:building\s+)?height[^\d]*` + number),
		assign: func(r *domain.ZoningRule, v float64) { r.MaxHeightFt = v },
	},
	{
		name:   "max FAR",
		re:     regexp.MustCompile(`(?i)(?:maximum\s+|max\.?\s+)?(?:floor\s+area\s+ratio|FAR)[^\d]*` + number),
		assign: func(r *domain.ZoningRule, v float64) { r.MaxFAR = v },
	},
	{
		name: "max lot coverage",
		re:   regexp.MustCompile(`(?i)(?:maximum\s+|max\.?\s+)?lot\s+coverage[^\d]*` + number),
		assign: func(r *domain.ZoningRule, v float64) {
			// Codes express coverage as a percentage; store as a fraction
			if v > 1 {
				v = v / 100
			}
			r.MaxLotCoverage = v
		},
	},
	{
		name:   "min parking",
		re:     regexp.MustCompile(`(?i)parking[^\d]*` + number + `\s*(?:space|spaces|stalls?)?\s*per\s+(?:dwelling\s+)?unit`),
		assign: func(r *domain.ZoningRule, v float64) { r.MinParkingPerUnit = v },
	},
	{
		name:   "max density",
		re:     regexp.MustCompile(`(?i)(?:maximum\s+|max\.?\s+)?density[^\d]*` + number + `\s*(?:dwelling\s+)?units?\s*(?:per|/)\s*acre`),
		assign: func(r *domain.ZoningRule, v float64) { r.MaxDensityPerAcre = v },
	},
}
