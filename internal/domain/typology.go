package domain

import "fmt"

// Typology identifies a development product type. The financial model and the
// candidate generator both dispatch on this enum, so an unknown string is
// rejected at the boundary instead of falling through silently.
type Typology string

const (
	TypologyMultifamily   Typology = "multifamily"
	TypologySelfStorage   Typology = "self_storage"
	TypologyIndustrial    Typology = "industrial"
	TypologySingleFamily  Typology = "single_family"
	TypologySeniorLiving  Typology = "senior_living"
	TypologyMedicalOffice Typology = "medical_office"
	TypologyRetail        Typology = "retail"
	TypologyHotel         Typology = "hotel"
)

// AllTypologies lists every supported typology in a stable order.
var AllTypologies = []Typology{
	TypologyMultifamily,
	TypologySelfStorage,
	TypologyIndustrial,
	TypologySingleFamily,
	TypologySeniorLiving,
	TypologyMedicalOffice,
	TypologyRetail,
	TypologyHotel,
}

// ParseTypology converts a raw string into a Typology.
// Returns a ValidationInputError for unknown values.
func ParseTypology(s string) (Typology, error) {
	for _, t := range AllTypologies {
		if string(t) == s {
			return t, nil
		}
	}
	return "", &ValidationInputError{Field: "typology", Reason: fmt.Sprintf("unknown typology %q", s)}
}

// IsIncomeProducing reports whether the typology is valued on NOI and cap rate.
// Single-family is the only for-sale typology; it is valued on total revenue.
func (t Typology) IsIncomeProducing() bool {
	return t != TypologySingleFamily
}

// IsUnitBased reports whether revenue and parking demand scale with a unit
// count (dwelling units, beds, rooms, storage units) rather than floor area.
func (t Typology) IsUnitBased() bool {
	switch t {
	case TypologyMultifamily, TypologySingleFamily, TypologySeniorLiving, TypologyHotel, TypologySelfStorage:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (t Typology) String() string {
	return string(t)
}
