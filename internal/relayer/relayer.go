package relayer

import (
	"context"
	"fmt"

	"cosmossdk.io/log"

	"github.com/leocagli/Human-vs-bots/internal/game"
)

// Verifier checks that proof shows action opens commitment. Proof systems
// live outside this repository and plug in here.
type Verifier interface {
	Verify(ctx context.Context, commitment game.Commitment, action game.Action, proof []byte) (bool, error)
}

// AcceptAll trusts every reveal. Use it only where no prover is available.
type AcceptAll struct{}

func (AcceptAll) Verify(context.Context, game.Commitment, game.Action, []byte) (bool, error) {
	return true, nil
}

// Outcome describes a settled turn.
type Outcome struct {
	Turn    uint32
	Actions [2]game.Action
	Valid   [2]bool
	Deltas  [2]int32
}

type Relayer struct {
	chain    Chain
	verifier Verifier
	logger   log.Logger
}

func New(chain Chain, verifier Verifier, logger log.Logger) *Relayer {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Relayer{chain: chain, verifier: verifier, logger: logger.With("module", "relayer")}
}

// Advance opens the reveal phase once both commitments are on chain.
func (r *Relayer) Advance(ctx context.Context) error {
	if err := r.chain.AdvancePhase(ctx); err != nil {
		return fmt.Errorf("advance phase: %w", err)
	}
	return nil
}

// Settle verifies both revealed actions against their commitments and the
// proofs stored on chain, then finalises the turn with the resulting deltas.
// A reveal that fails verification costs its player 1 point and hands the
// opponent 1 point.
func (r *Relayer) Settle(ctx context.Context, actions [2]game.Action) (Outcome, error) {
	st, err := r.chain.State(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("load state: %w", err)
	}
	if st.Phase != game.PhaseReveal {
		return Outcome{}, game.ErrWrongPhase.Wrapf("cannot settle in phase %s", st.Phase)
	}

	out := Outcome{Turn: st.Turn, Actions: actions}
	for _, slot := range []game.Slot{game.SlotOne, game.SlotTwo} {
		i := int(slot) - 1
		c, err := r.chain.Commit(ctx, slot)
		if err != nil {
			return Outcome{}, fmt.Errorf("load commit %d: %w", slot, err)
		}
		proof := st.Proof(slot)
		if !st.CurrentCommit(c) || !st.Revealed(slot) || len(proof) == 0 {
			r.logger.Warn("reveal missing", "slot", slot, "turn", st.Turn)
			continue
		}
		ok, err := r.verifier.Verify(ctx, c.Commitment, actions[i], proof)
		if err != nil {
			return Outcome{}, fmt.Errorf("verify slot %d: %w", slot, err)
		}
		out.Valid[i] = ok
		if !ok {
			r.logger.Warn("proof rejected", "slot", slot, "turn", st.Turn)
		}
	}

	switch {
	case out.Valid[0] && out.Valid[1]:
		d1, d2, err := ResolveTurn(actions[0], actions[1])
		if err != nil {
			return Outcome{}, err
		}
		out.Deltas = [2]int32{d1, d2}
	case out.Valid[0]:
		out.Deltas = [2]int32{1, -1}
	case out.Valid[1]:
		out.Deltas = [2]int32{-1, 1}
	default:
		out.Deltas = [2]int32{-1, -1}
	}

	if err := r.chain.FinaliseTurn(ctx, out.Deltas[0], out.Deltas[1]); err != nil {
		return Outcome{}, fmt.Errorf("finalise turn: %w", err)
	}
	r.logger.Info("turn settled", "turn", out.Turn, "delta_one", out.Deltas[0], "delta_two", out.Deltas[1])
	return out, nil
}
