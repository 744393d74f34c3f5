package operator

import (
	"errors"
	"fmt"
)

// Sentinel errors for classified backend faults. Backends wrap these with
// operation and path context via fmt.Errorf so callers can match with
// errors.Is while still seeing a descriptive message.
var (
	ErrNotFound      = errors.New("operator: not found")
	ErrPermission    = errors.New("operator: permission denied")
	ErrAlreadyExists = errors.New("operator: already exists")
	ErrUnsupported   = errors.New("operator: operation not supported")
	ErrConnection    = errors.New("operator: connection failure")
)

// Sentinel errors for configuration translation.
var (
	ErrUnknownScheme = errors.New("operator: unknown service scheme")
	ErrMissingKey    = errors.New("operator: missing config key")
	ErrInvalidType   = errors.New("operator: invalid config value type")
)

func wrapScheme(service string) error {
	return fmt.Errorf("%w: %q", ErrUnknownScheme, service)
}

// Error kinds as reported to callers.
const (
	KindNotFound    = "not_found"
	KindPermission  = "permission_denied"
	KindExists      = "already_exists"
	KindUnsupported = "unsupported_operation"
	KindConnection  = "connection_failure"
	KindConfig      = "config"
	KindOther       = "other"
)

// Classify maps an error to its wire kind. Unrecognised errors classify
// as KindOther; Classify never fails.
func Classify(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrPermission):
		return KindPermission
	case errors.Is(err, ErrAlreadyExists):
		return KindExists
	case errors.Is(err, ErrUnsupported):
		return KindUnsupported
	case errors.Is(err, ErrConnection):
		return KindConnection
	case errors.Is(err, ErrUnknownScheme), errors.Is(err, ErrMissingKey), errors.Is(err, ErrInvalidType):
		return KindConfig
	default:
		return KindOther
	}
}
