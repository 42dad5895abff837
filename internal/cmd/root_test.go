package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandRegistration(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"resolve", "submit", "jobs", "apps"} {
		assert.True(t, names[want], "root should register %q", want)
	}
}

func TestJobsSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range jobsCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"list", "status", "monitor", "cancel", "history", "runtime", "outputs"} {
		assert.True(t, names[want], "jobs should register %q", want)
	}
}

func TestShortUUID(t *testing.T) {
	assert.Equal(t, "0f9b7a4e", shortUUID("0f9b7a4e-3f7c-4be2-9d3a-9a51b1c2d301"))
	assert.Equal(t, "abc", shortUUID("abc"))
}

func TestSubmitManifestFlag(t *testing.T) {
	flag := submitCmd.Flags().Lookup("job")
	require.NotNil(t, flag)
	assert.Empty(t, flag.DefValue)
}
