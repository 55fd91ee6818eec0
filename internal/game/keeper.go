package game

import (
	"encoding/json"
	"errors"
	"fmt"

	"cosmossdk.io/log"
)

// Keeper is the game session state machine. It reads the session from its
// store, validates preconditions, mutates and writes back. A failed
// operation returns before any Set, so it never leaves a partial write.
type Keeper struct {
	store  KVStore
	auth   Authenticator
	logger log.Logger
	events *EventManager

	proofPolicy ProofPolicy
}

type Option func(*Keeper)

// WithProofPolicy overrides the default ProofPolicyClear.
func WithProofPolicy(p ProofPolicy) Option {
	return func(k *Keeper) { k.proofPolicy = p }
}

// WithEventManager makes the keeper emit into em instead of a private manager.
func WithEventManager(em *EventManager) Option {
	return func(k *Keeper) { k.events = em }
}

func NewKeeper(store KVStore, auth Authenticator, logger log.Logger, opts ...Option) *Keeper {
	if store == nil {
		panic("vaultwars keeper: store is nil")
	}
	if auth == nil {
		panic("vaultwars keeper: authenticator is nil")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	k := &Keeper{
		store:       store,
		auth:        auth,
		logger:      logger,
		events:      NewEventManager(),
		proofPolicy: ProofPolicyClear,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

func (k *Keeper) Logger() log.Logger {
	return k.logger.With("module", "x/"+ModuleName)
}

func (k *Keeper) EventManager() *EventManager { return k.events }

// ---- Storage ----

// GetState returns the session record, or ErrUninitialized before InitGame.
func (k *Keeper) GetState() (GameState, error) {
	bz, err := k.store.Get(GameStateKey)
	if err != nil {
		return GameState{}, fmt.Errorf("read game state: %w", err)
	}
	if bz == nil {
		return GameState{}, ErrUninitialized
	}
	var st GameState
	if err := json.Unmarshal(bz, &st); err != nil {
		return GameState{}, fmt.Errorf("decode game state: %w", err)
	}
	return st, nil
}

func (k *Keeper) setState(st GameState) error {
	bz, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode game state: %w", err)
	}
	return k.store.Set(GameStateKey, bz)
}

// GetCommit returns the last commitment stored for slot.
func (k *Keeper) GetCommit(slot Slot) (VaultCommit, error) {
	if !slot.Valid() {
		return VaultCommit{}, ErrInvalidRequest.Wrapf("invalid slot %d", slot)
	}
	bz, err := k.store.Get(CommitKey(slot))
	if err != nil {
		return VaultCommit{}, fmt.Errorf("read commit: %w", err)
	}
	if bz == nil {
		return VaultCommit{}, ErrNotFound.Wrapf("no commitment for slot %d", slot)
	}
	var c VaultCommit
	if err := json.Unmarshal(bz, &c); err != nil {
		return VaultCommit{}, fmt.Errorf("decode commit: %w", err)
	}
	return c, nil
}

func (k *Keeper) setCommit(slot Slot, c VaultCommit) error {
	bz, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode commit: %w", err)
	}
	return k.store.Set(CommitKey(slot), bz)
}

// participant resolves player to a slot of st.
func (k *Keeper) participant(st GameState, player Address) (Slot, error) {
	slot, ok := st.SlotOf(player)
	if !ok {
		return 0, ErrUnknownPlayer.Wrapf("%q is not seated in this game", player)
	}
	return slot, nil
}

// ---- Operations ----

// InitGame starts a fresh session, overwriting any previous one.
func (k *Keeper) InitGame(playerOne, playerTwo Address) error {
	if playerOne == "" || playerTwo == "" {
		return ErrInvalidRequest.Wrap("missing player")
	}
	if err := k.auth.RequireAuth(playerOne); err != nil {
		return err
	}

	var session uint64 = 1
	prev, err := k.GetState()
	switch {
	case err == nil:
		session = prev.Session + 1
	case !errors.Is(err, ErrUninitialized):
		return err
	}

	st := GameState{
		Session: session,
		Players: [2]Address{playerOne, playerTwo},
		Phase:   PhaseCommit,
		Turn:    1,
		Proofs:  [2][]byte{{}, {}},
	}
	if err := k.setState(st); err != nil {
		return err
	}

	k.Logger().Info("game initialised", "session", session, "player_one", playerOne, "player_two", playerTwo)
	k.events.Emit(NewEvent(EventTypeGameInitialised, map[string]string{
		"playerOne": string(playerOne),
		"playerTwo": string(playerTwo),
		"turn":      u32(st.Turn),
	}))
	return nil
}

// CommitAction stores player's commitment for the current turn. It does not change the phase.
func (k *Keeper) CommitAction(player Address, commitment Commitment) error {
	if err := k.auth.RequireAuth(player); err != nil {
		return err
	}
	st, err := k.GetState()
	if err != nil {
		return err
	}
	if st.Phase != PhaseCommit {
		return ErrWrongPhase.Wrapf("not in commit phase (phase=%s)", st.Phase)
	}
	slot, err := k.participant(st, player)
	if err != nil {
		return err
	}

	if err := k.setCommit(slot, VaultCommit{Commitment: commitment, Session: st.Session, Turn: st.Turn}); err != nil {
		return err
	}

	k.Logger().Info("action committed", "player", player, "slot", slot, "turn", st.Turn)
	k.events.Emit(NewEvent(EventTypeActionCommitted, map[string]string{
		"player":     string(player),
		"slot":       slot.String(),
		"turn":       u32(st.Turn),
		"commitment": commitment.String(),
	}))
	return nil
}

// AdvancePhase moves the session from Commit to Reveal once both players
// have committed during the current turn. The relayer calls it.
func (k *Keeper) AdvancePhase() error {
	st, err := k.GetState()
	if err != nil {
		return err
	}
	if st.Phase != PhaseCommit {
		return ErrWrongPhase.Wrapf("not in commit phase (phase=%s)", st.Phase)
	}
	for _, slot := range []Slot{SlotOne, SlotTwo} {
		c, err := k.GetCommit(slot)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrCommitMissing.Wrapf("slot %d has not committed", slot)
			}
			return err
		}
		if !st.CurrentCommit(c) {
			return ErrCommitMissing.Wrapf("slot %d has not committed for turn %d of session %d", slot, st.Turn, st.Session)
		}
	}

	st.Phase = PhaseReveal
	if err := k.setState(st); err != nil {
		return err
	}

	k.Logger().Info("phase advanced", "turn", st.Turn, "phase", st.Phase)
	k.events.Emit(NewEvent(EventTypePhaseAdvanced, map[string]string{
		"turn":  u32(st.Turn),
		"phase": string(st.Phase),
	}))
	return nil
}

// RevealAction attaches player's proof to its slot. The action is published
// in the emitted event; matching it against the commitment is the relayer's job.
func (k *Keeper) RevealAction(player Address, action Action, proof []byte) error {
	if err := k.auth.RequireAuth(player); err != nil {
		return err
	}
	action, err := ParseAction(string(action))
	if err != nil {
		return err
	}
	st, err := k.GetState()
	if err != nil {
		return err
	}
	if st.Phase != PhaseReveal {
		return ErrWrongPhase.Wrapf("not in reveal phase (phase=%s)", st.Phase)
	}
	slot, err := k.participant(st, player)
	if err != nil {
		return err
	}

	st.Proofs[slot.index()] = append([]byte{}, proof...)
	st.RevealTurns[slot.index()] = st.Turn
	if err := k.setState(st); err != nil {
		return err
	}

	k.Logger().Info("action revealed", "player", player, "slot", slot, "turn", st.Turn)
	k.events.Emit(NewEvent(EventTypeActionRevealed, map[string]string{
		"player": string(player),
		"slot":   slot.String(),
		"turn":   u32(st.Turn),
		"action": string(action),
	}))
	return nil
}

// FinaliseTurn applies relayer-verified score deltas and closes the turn.
// It has no phase guard: calling it after the game finished still adds the
// deltas, and the turn stays at MaxTurns.
func (k *Keeper) FinaliseTurn(deltaOne, deltaTwo int32) error {
	st, err := k.GetState()
	if err != nil {
		return err
	}

	st.Scores[0] = saturatingAddInt32(st.Scores[0], deltaOne)
	st.Scores[1] = saturatingAddInt32(st.Scores[1], deltaTwo)

	completed := st.Turn
	if st.Turn >= MaxTurns {
		st.Phase = PhaseFinished
	} else {
		st.Turn++
		st.Phase = PhaseCommit
		if k.proofPolicy == ProofPolicyClear {
			st.Proofs = [2][]byte{{}, {}}
		}
	}

	if err := k.setState(st); err != nil {
		return err
	}

	k.Logger().Info("turn finalised", "turn", completed, "score_one", st.Scores[0], "score_two", st.Scores[1])
	k.events.Emit(NewEvent(EventTypeTurnFinalised, map[string]string{
		"turn":     u32(completed),
		"deltaOne": i32(deltaOne),
		"deltaTwo": i32(deltaTwo),
		"scoreOne": i32(st.Scores[0]),
		"scoreTwo": i32(st.Scores[1]),
		"phase":    string(st.Phase),
	}))
	if st.Phase == PhaseFinished {
		k.events.Emit(NewEvent(EventTypeGameFinished, map[string]string{
			"scoreOne": i32(st.Scores[0]),
			"scoreTwo": i32(st.Scores[1]),
			"winner":   string(Winner(st)),
		}))
	}
	return nil
}

// Winner returns the leading player, or "" on a draw.
func Winner(st GameState) Address {
	switch {
	case st.Scores[0] > st.Scores[1]:
		return st.Players[0]
	case st.Scores[1] > st.Scores[0]:
		return st.Players[1]
	default:
		return ""
	}
}
