package jobspec

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// Application family variants.
//
// The variant set is closed: each supported family gets a Builder with
// family-specific slot names and defaults, selected by app id, with the
// generic builder as fallback. There is no runtime registration.

// openSeesOptions tunes the builder for the OpenSees family, whose
// templates declare the script slot as the tclScript environment variable.
func openSeesOptions(base Options) Options {
	base.ScriptParamNames = []string{"tclScript", "Input Script", "Main Script"}
	return base
}

// mpmOptions tunes the builder for the material point method family.
func mpmOptions(base Options) Options {
	base.ScriptParamNames = []string{"Input Script"}
	return base
}

// variantFamilies maps an app id fragment to its option transform, checked
// in order. The first fragment contained in the lowercased app id wins.
var variantFamilies = []struct {
	fragment  string
	transform func(Options) Options
}{
	{fragment: "opensees", transform: openSeesOptions},
	{fragment: "mpm", transform: mpmOptions},
}

// ForApp returns the builder variant for appID, falling back to the
// generic builder when no family matches.
func ForApp(appID string, opts Options) Builder {
	id := strings.ToLower(appID)
	for _, fam := range variantFamilies {
		if strings.Contains(id, fam.fragment) {
			return NewGenericBuilder(fam.transform(opts))
		}
	}
	return NewGenericBuilder(opts)
}

// NewBuilderForApp is a convenience for CLI callers that only carry a
// logger and clock.
func NewBuilderForApp(appID string, logger *zap.Logger, now func() time.Time) Builder {
	return ForApp(appID, Options{Logger: logger, Now: now})
}
