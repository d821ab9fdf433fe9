package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "lineage", cmd.Use)
	assert.Contains(t, cmd.Long, "provenance")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"artifact", "link", "unlink", "graph", "check", "audit"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("yaml"))
	assert.False(t, isValidFormat(""))
}

func TestActingUser(t *testing.T) {
	t.Setenv("LINEAGE_USER", "carol")
	t.Setenv("USER", "ignored")
	assert.Equal(t, "carol", actingUser())

	t.Setenv("LINEAGE_USER", "")
	t.Setenv("USER", "dave")
	assert.Equal(t, "dave", actingUser())

	t.Setenv("USER", "")
	assert.Equal(t, "unknown", actingUser())
}

func TestLinkCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	linkCmd, _, err := cmd.Find([]string{"link"})
	require.NoError(t, err)

	relationFlag := linkCmd.Flags().Lookup("relation")
	require.NotNil(t, relationFlag)
	assert.Equal(t, "derived_from", relationFlag.DefValue)
}

func TestGraphCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	graphCmd, _, err := cmd.Find([]string{"graph"})
	require.NoError(t, err)

	depthFlag := graphCmd.Flags().Lookup("depth")
	require.NotNil(t, depthFlag)

	directionFlag := graphCmd.Flags().Lookup("direction")
	require.NotNil(t, directionFlag)
	assert.Equal(t, "both", directionFlag.DefValue)
}
