package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	for in, want := range map[string]Action{
		"attack":  ActionAttack,
		"Defend":  ActionDefend,
		" VAULT ": ActionVault,
	} {
		got, err := ParseAction(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseAction("flee")
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCommitmentFromBytes_RequiresThirtyTwoBytes(t *testing.T) {
	_, err := CommitmentFromBytes(make([]byte, 31))
	require.ErrorIs(t, err, ErrInvalidRequest)

	c, err := CommitmentFromBytes(make([]byte, 32))
	require.NoError(t, err)
	require.Equal(t, Commitment{}, c)
}

func TestVaultCommit_JSONUsesHex(t *testing.T) {
	var c Commitment
	c[0], c[31] = 0xab, 0x01
	bz, err := json.Marshal(VaultCommit{Commitment: c, Session: 2, Turn: 3})
	require.NoError(t, err)
	require.JSONEq(t, `{"commitment":"ab00000000000000000000000000000000000000000000000000000000000001","session":2,"turn":3}`, string(bz))

	var out VaultCommit
	require.NoError(t, json.Unmarshal(bz, &out))
	require.Equal(t, c, out.Commitment)

	require.Error(t, json.Unmarshal([]byte(`{"commitment":"abcd"}`), &out))
}

func TestGameState_CurrentCommitAndRevealed(t *testing.T) {
	st := GameState{Session: 2, Turn: 3, RevealTurns: [2]uint32{3, 2}}
	require.True(t, st.CurrentCommit(VaultCommit{Session: 2, Turn: 3}))
	require.False(t, st.CurrentCommit(VaultCommit{Session: 1, Turn: 3}))
	require.False(t, st.CurrentCommit(VaultCommit{Session: 2, Turn: 2}))

	require.True(t, st.Revealed(SlotOne))
	require.False(t, st.Revealed(SlotTwo))
}

func TestSlotOf(t *testing.T) {
	st := GameState{Players: [2]Address{"alice", "bob"}}
	slot, ok := st.SlotOf("alice")
	require.True(t, ok)
	require.Equal(t, SlotOne, slot)
	slot, ok = st.SlotOf("bob")
	require.True(t, ok)
	require.Equal(t, SlotTwo, slot)
	_, ok = st.SlotOf("mallory")
	require.False(t, ok)

	require.Equal(t, SlotTwo, SlotOne.Other())
	require.Equal(t, SlotOne, SlotTwo.Other())
}

func TestParseProofPolicy(t *testing.T) {
	p, err := ParseProofPolicy("")
	require.NoError(t, err)
	require.Equal(t, ProofPolicyClear, p)
	p, err = ParseProofPolicy("Keep")
	require.NoError(t, err)
	require.Equal(t, ProofPolicyKeep, p)
	_, err = ParseProofPolicy("shred")
	require.Error(t, err)
}
