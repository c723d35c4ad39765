package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Invalid is returned when the request fails validation; it is rejected
// before any provider call happens.
var Invalid = errors.New("invalid input")

// Unavailable indicates a single provider call failed, timed out, or
// returned a non-success response. It is absorbed by the cascade and never
// surfaced to the caller directly.
var Unavailable = errors.New("provider unavailable")

// Submission indicates the chain write failed. It is always surfaced,
// together with the already-computed outcome.
var Submission = errors.New("blockchain submission failed")

// MissingParams is a validation failure that names the absent query
// parameters, so the 400 body can list them.
type MissingParams struct {
	Required []string
}

func (e *MissingParams) Error() string {
	return fmt.Sprintf("missing required parameters: %s", strings.Join(e.Required, ", "))
}

// Is makes MissingParams match apperr.Invalid under errors.Is.
func (e *MissingParams) Is(target error) bool {
	return target == Invalid
}
