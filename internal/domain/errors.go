package domain

import (
	"errors"
	"fmt"
)

// ValidationInputError rejects malformed input (non-positive acreage, unknown
// typology, zero batch size) before the generation loop starts. Fatal to the
// call.
type ValidationInputError struct {
	Field  string
	Reason string
}

func (e *ValidationInputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

// IsValidationInputError reports whether err is (or wraps) a ValidationInputError.
func IsValidationInputError(err error) bool {
	var vie *ValidationInputError
	return errors.As(err, &vie)
}

// RuleFetchError is raised only when the external rule source is unreachable
// and no cached rule (even stale) exists for the key. When a stale row exists
// the store degrades to a stale-flagged result instead.
type RuleFetchError struct {
	Jurisdiction string
	District     string
	Err          error
}

func (e *RuleFetchError) Error() string {
	return fmt.Sprintf("failed to fetch zoning rules for %s/%s: %v", e.Jurisdiction, e.District, e.Err)
}

func (e *RuleFetchError) Unwrap() error {
	return e.Err
}

// IsRuleFetchError reports whether err is (or wraps) a RuleFetchError.
func IsRuleFetchError(err error) bool {
	var rfe *RuleFetchError
	return errors.As(err, &rfe)
}
