package game

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Address is an opaque, already authenticated participant identity.
type Address string

type Phase string

const (
	// PhaseWaitingForPlayers is declared for client compatibility; no operation enters it.
	PhaseWaitingForPlayers Phase = "waitingForPlayers"
	PhaseCommit            Phase = "commit"
	PhaseReveal            Phase = "reveal"
	PhaseFinished          Phase = "finished"
)

type Action string

const (
	ActionAttack Action = "attack"
	ActionDefend Action = "defend"
	ActionVault  Action = "vault"
)

// Actions lists every legal action in a stable order.
var Actions = []Action{ActionAttack, ActionDefend, ActionVault}

// ParseAction accepts an action name in any letter case.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionAttack, ActionDefend, ActionVault:
		return a, nil
	default:
		return "", ErrInvalidRequest.Wrapf("unknown action %q", s)
	}
}

// Commitment is an opaque 32-byte commitment to an action (hex in JSON).
type Commitment [32]byte

func CommitmentFromBytes(b []byte) (Commitment, error) {
	var c Commitment
	if len(b) != len(c) {
		return c, ErrInvalidRequest.Wrapf("commitment must be %d bytes, got %d", len(c), len(b))
	}
	copy(c[:], b)
	return c, nil
}

func (c Commitment) String() string { return hex.EncodeToString(c[:]) }

func (c Commitment) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(c[:])), nil
}

func (c *Commitment) UnmarshalText(b []byte) error {
	raw, err := hex.DecodeString(string(b))
	if err != nil {
		return fmt.Errorf("decode commitment: %w", err)
	}
	out, err := CommitmentFromBytes(raw)
	if err != nil {
		return err
	}
	*c = out
	return nil
}

// VaultCommit is a player's commitment for a turn, stored under CommitKey(slot).
type VaultCommit struct {
	Commitment Commitment `json:"commitment"`

	// Session and Turn the commitment was made in. A commitment from another
	// session or an earlier turn is stale.
	Session uint64 `json:"session"`
	Turn    uint32 `json:"turn"`
}

// GameState is the full session record. Per-player fields are indexed by
// Slot.index(): [0] is player one, [1] is player two.
type GameState struct {
	// Session increases with every InitGame.
	Session uint64     `json:"session"`
	Players [2]Address `json:"players"`
	Phase   Phase      `json:"phase"`
	Turn    uint32     `json:"turn"`
	Scores  [2]int32   `json:"scores"`
	Proofs  [2][]byte  `json:"proofs"`

	// RevealTurns holds the turn of each slot's last reveal, 0 if none.
	RevealTurns [2]uint32 `json:"revealTurns"`
}

func (s GameState) PlayerOne() Address { return s.Players[0] }
func (s GameState) PlayerTwo() Address { return s.Players[1] }

// SlotOf resolves a player to its slot. Player one wins if both slots hold the same address.
func (s GameState) SlotOf(player Address) (Slot, bool) {
	switch player {
	case s.Players[0]:
		return SlotOne, true
	case s.Players[1]:
		return SlotTwo, true
	default:
		return 0, false
	}
}

func (s GameState) Score(slot Slot) int32 { return s.Scores[slot.index()] }

func (s GameState) Proof(slot Slot) []byte { return s.Proofs[slot.index()] }

// Revealed reports whether slot revealed during the current turn. Under
// ProofPolicyKeep a non-empty proof may belong to an earlier turn.
func (s GameState) Revealed(slot Slot) bool { return s.RevealTurns[slot.index()] == s.Turn }

// CurrentCommit reports whether c was made during the current turn of this session.
func (s GameState) CurrentCommit(c VaultCommit) bool {
	return c.Session == s.Session && c.Turn == s.Turn
}

// ProofPolicy decides what happens to revealed proofs when a new turn begins.
type ProofPolicy string

const (
	// ProofPolicyClear empties both proof slots when the next turn starts.
	ProofPolicyClear ProofPolicy = "clear"
	// ProofPolicyKeep leaves the previous turn's proofs visible until overwritten.
	ProofPolicyKeep ProofPolicy = "keep"
)

func ParseProofPolicy(s string) (ProofPolicy, error) {
	switch p := ProofPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", ProofPolicyClear:
		return ProofPolicyClear, nil
	case ProofPolicyKeep:
		return p, nil
	default:
		return "", fmt.Errorf("unknown proof policy %q", s)
	}
}
