package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimulateCmd_PrintsTableAndWinner(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"simulate", "--turns", "4", "--human-strategy", "fixed:vault", "--seed", "11"})

	require.NoError(t, root.Execute())
	s := out.String()
	require.Contains(t, s, "human=fixed:vault")
	require.Contains(t, s, "seed=11")
	require.Contains(t, s, "vault")
	require.Contains(t, s, "phase=commit")
	require.Regexp(t, `Winner: (human|clawbot)|Result: draw`, s)
}

func TestSimulateCmd_RejectsBadStrategy(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"simulate", "--human-strategy", "fixed:flee"})
	require.Error(t, root.Execute())
}

func TestSigned(t *testing.T) {
	require.Equal(t, "+2", signed(2))
	require.Equal(t, "0", signed(0))
	require.Equal(t, "-1", signed(-1))
}
