package jobspec

import "errors"

// Sentinel errors for request building.
var (
	// ErrTemplateNotFound indicates the app id/version is unknown to the
	// gateway.
	ErrTemplateNotFound = errors.New("app template not found")

	// ErrScriptPlacement indicates the template declares no accepted slot
	// for the script parameter.
	ErrScriptPlacement = errors.New("no script parameter slot in app template")

	// ErrInvalidInput indicates the build input is structurally incomplete.
	ErrInvalidInput = errors.New("invalid build input")
)

// IsTemplateNotFound reports whether err indicates an unknown app template.
func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

// IsScriptPlacement reports whether err indicates the script parameter
// could not be placed.
func IsScriptPlacement(err error) bool {
	return errors.Is(err, ErrScriptPlacement)
}

// IsInvalidInput reports whether err indicates an incomplete build input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
