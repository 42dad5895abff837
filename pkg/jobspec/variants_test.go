package jobspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/gostratus/pkg/gridapi"
)

func TestForAppSelectsVariant(t *testing.T) {
	cases := []struct {
		appID     string
		wantSlots []string
	}{
		{"opensees-express", []string{"tclScript", "Input Script", "Main Script"}},
		{"OpenSees-MP-3.5", []string{"tclScript", "Input Script", "Main Script"}},
		{"mpm-cb-geo", []string{"Input Script"}},
		{"matlab-r2024a", DefaultScriptParamNames},
		{"unknown-app", DefaultScriptParamNames},
	}

	for _, tc := range cases {
		b := ForApp(tc.appID, Options{Now: fixedClock})
		gb, ok := b.(*GenericBuilder)
		require.True(t, ok, tc.appID)
		assert.Equal(t, tc.wantSlots, gb.opts.ScriptParamNames, tc.appID)
	}
}

func TestOpenSeesVariantPlacesTclScript(t *testing.T) {
	tpl := &gridapi.AppTemplate{
		ID:      "opensees-express",
		Version: "3.5.0",
		JobAttributes: gridapi.JobAttributes{
			ExecSystemID: "cluster.primary",
			MaxMinutes:   60,
			ParameterSet: gridapi.ParameterSetDecl{
				EnvVariables: []gridapi.EnvDecl{{Key: "tclScript"}},
			},
		},
	}

	b := ForApp("opensees-express", Options{Now: fixedClock})
	gb := b.(*GenericBuilder)

	req, err := gb.BuildFromTemplate(tpl, BuildInput{
		AppID:    "opensees-express",
		InputURI: "hpcs://sys/alice/truss",
		Script:   "model.tcl",
	})
	require.NoError(t, err)

	require.NotNil(t, req.ParameterSet)
	require.Len(t, req.ParameterSet.EnvVariables, 1)
	assert.Equal(t, gridapi.EnvVar{Key: "tclScript", Value: "model.tcl"}, req.ParameterSet.EnvVariables[0])
}
