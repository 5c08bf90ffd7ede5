package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "emrdebug", cmd.Use)
	assert.Equal(t, "Declare infrastructure for remote debugging of EMR Spark jobs", cmd.Short)
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := Root()

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}

	for _, expected := range []string{
		"init", "synth", "plan", "stage", "keygen", "doctor", "version", "completion",
	} {
		assert.True(t, subcommands[expected], "Expected subcommand %s not found", expected)
	}
	assert.Len(t, cmd.Commands(), 8)
}

func TestFlags(t *testing.T) {
	tests := []struct {
		name     string
		cmd      string
		flag     string
		short    string
		defValue string
	}{
		{"init output", "init", "output", "o", "emrdebug.yaml"},
		{"synth config", "synth", "config", "c", ""},
		{"synth output", "synth", "output", "o", ""},
		{"synth manifests", "synth", "manifests", "m", ""},
		{"plan json", "plan", "json", "", "false"},
		{"stage bucket", "stage", "bucket", "b", ""},
		{"stage prefix", "stage", "prefix", "p", "jobs"},
		{"keygen type", "keygen", "type", "t", "ed25519"},
		{"keygen bits", "keygen", "bits", "", "4096"},
		{"doctor port", "doctor", "port", "", "3535"},
		{"doctor wait", "doctor", "wait", "", "0s"},
	}

	root := Root()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, _, err := root.Find([]string{tt.cmd})
			require.NoError(t, err)

			f := sub.Flags().Lookup(tt.flag)
			require.NotNil(t, f, "flag %s on %s", tt.flag, tt.cmd)
			assert.Equal(t, tt.short, f.Shorthand)
			assert.Equal(t, tt.defValue, f.DefValue)
		})
	}
}

func TestStage_RequiresFiles(t *testing.T) {
	root := Root()
	root.SetArgs([]string{"stage", "--bucket", "b"})

	err := root.Execute()
	assert.Error(t, err)
}
