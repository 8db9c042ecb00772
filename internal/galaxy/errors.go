package galaxy

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedScan indicates a Scan payload is missing a field, or carries
	// a field of the wrong type, for the body variant it describes.
	ErrMalformedScan = errors.New("malformed scan")
	// ErrVariantMismatch indicates an event describes a known body as a
	// different variant than the one it was created as.
	ErrVariantMismatch = errors.New("body variant mismatch")
)

// VariantError records a body whose recorded kind disagrees with an event.
type VariantError struct {
	SystemAddress int64
	BodyID        int
	Have          Kind // kind the body was created with
	Want          Kind // kind the rejected event implies
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("system %d body %d: %s is not %s", e.SystemAddress, e.BodyID, e.Have, e.Want)
}

// Unwrap returns ErrVariantMismatch for use with errors.Is.
func (e *VariantError) Unwrap() error {
	return ErrVariantMismatch
}
