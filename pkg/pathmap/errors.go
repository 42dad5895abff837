package pathmap

import "errors"

// Sentinel errors for path resolution.
var (
	// ErrUnrecognizedPath indicates no resolution rule matched the input.
	ErrUnrecognizedPath = errors.New("unrecognized path format")

	// ErrIdentityRequired indicates the rule needs the caller's identity
	// but none was configured.
	ErrIdentityRequired = errors.New("identity required")

	// ErrProjectResolution indicates a project id could not be resolved to
	// exactly one storage system.
	ErrProjectResolution = errors.New("project resolution failed")
)

// IsUnrecognizedPath reports whether err indicates no rule matched.
func IsUnrecognizedPath(err error) bool {
	return errors.Is(err, ErrUnrecognizedPath)
}

// IsIdentityRequired reports whether err indicates a missing identity.
func IsIdentityRequired(err error) bool {
	return errors.Is(err, ErrIdentityRequired)
}

// IsProjectResolution reports whether err indicates an ambiguous or empty
// project lookup.
func IsProjectResolution(err error) bool {
	return errors.Is(err, ErrProjectResolution)
}
