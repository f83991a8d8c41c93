package capsule

import (
	"errors"

	"github.com/pthm/capsule/lib/encoding"
)

// Sentinel errors for registry and binding operations. Returned errors
// wrap one of these; test with errors.Is.
var (
	ErrInvalidName      = errors.New("capsule: invalid component name")
	ErrDuplicateName    = errors.New("capsule: component already declared")
	ErrUnknownComponent = errors.New("capsule: component not declared")
	ErrInvalidHandler   = errors.New("capsule: invalid event handler")
	ErrInvalidSelector  = errors.New("capsule: invalid delegation selector")
	ErrInvalidEvent     = errors.New("capsule: invalid event name")
	ErrNoProps          = errors.New("capsule: element has no props")
	ErrNoEncoder        = errors.New("capsule: registry has no props encoder")
)

// Props decoding errors, re-exported from lib/encoding.
var (
	ErrInvalidFormat    = encoding.ErrInvalidFormat
	ErrSignatureInvalid = encoding.ErrSignatureInvalid
	ErrDecryptFailed    = encoding.ErrDecryptFailed
)

// IsUnknownComponent checks if err reports an undeclared component name.
func IsUnknownComponent(err error) bool {
	return errors.Is(err, ErrUnknownComponent)
}

// IsBindError checks if err was returned for a rejected binding.
func IsBindError(err error) bool {
	return errors.Is(err, ErrInvalidHandler) ||
		errors.Is(err, ErrInvalidSelector) ||
		errors.Is(err, ErrInvalidEvent)
}

// IsDecodeError checks if err is a props decoding failure.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrSignatureInvalid) ||
		errors.Is(err, ErrDecryptFailed)
}
