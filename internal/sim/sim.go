// Package sim plays a full Vault Wars session in process: a human strategy
// against Clawbot, through the game keeper and the relayer.
package sim

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"math/rand"

	"cosmossdk.io/log"

	"github.com/leocagli/Human-vs-bots/internal/bot"
	"github.com/leocagli/Human-vs-bots/internal/game"
	"github.com/leocagli/Human-vs-bots/internal/relayer"
	"github.com/leocagli/Human-vs-bots/internal/store"
)

const (
	HumanAddress   game.Address = "human"
	ClawbotAddress game.Address = "clawbot"
)

type Config struct {
	// Turns to play, capped at game.MaxTurns. Zero plays a full game.
	Turns uint32
	Human Strategy
	Seed  int64

	ProofPolicy game.ProofPolicy
}

// TurnResult is one settled turn. Scores are running totals after the turn.
type TurnResult struct {
	Turn          uint32
	HumanAction   game.Action
	BotAction     game.Action
	HumanDelta    int32
	BotDelta      int32
	HumanScore    int32
	BotScore      int32
	PhaseAfter    game.Phase
	Commitments   [2]game.Commitment
	HumanVerified bool
	BotVerified   bool
}

type Result struct {
	Turns  []TurnResult
	Final  game.GameState
	Winner game.Address
}

// Run plays cfg.Turns turns. The human sits in slot 1 and Clawbot in slot 2.
func Run(ctx context.Context, cfg Config, logger log.Logger) (Result, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if cfg.Human == nil {
		cfg.Human = randomStrategy{}
	}
	if cfg.Turns == 0 || cfg.Turns > game.MaxTurns {
		cfg.Turns = game.MaxTurns
	}
	if cfg.ProofPolicy == "" {
		cfg.ProofPolicy = game.ProofPolicyClear
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	claw := bot.New(rng)

	// Every caller is trusted in process; the keeper still checks seats.
	allow := game.AuthFunc(func(game.Address) error { return nil })
	k := game.NewKeeper(store.NewMemStore(), allow, logger, game.WithProofPolicy(cfg.ProofPolicy))
	r := relayer.New(relayer.NewKeeperChain(k), OpeningVerifier{}, logger)

	if err := k.InitGame(HumanAddress, ClawbotAddress); err != nil {
		return Result{}, fmt.Errorf("init game: %w", err)
	}

	var (
		res     Result
		history []bot.Turn
	)
	for i := uint32(0); i < cfg.Turns; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		st, err := k.GetState()
		if err != nil {
			return Result{}, err
		}

		humanAction := cfg.Human.Next(rng)
		botAction := claw.Decide(bot.State{
			Turn:          st.Turn,
			Score:         st.Scores[1],
			OpponentScore: st.Scores[0],
			History:       history,
		})

		tr, err := playTurn(ctx, k, r, rng, st.Turn, humanAction, botAction)
		if err != nil {
			return Result{}, fmt.Errorf("turn %d: %w", st.Turn, err)
		}
		history = append(history, bot.Turn{
			Number:         tr.Turn,
			Action:         botAction,
			OpponentAction: humanAction,
			Delta:          tr.BotDelta,
			OpponentDelta:  tr.HumanDelta,
		})
		res.Turns = append(res.Turns, tr)
	}

	final, err := k.GetState()
	if err != nil {
		return Result{}, err
	}
	res.Final = final
	res.Winner = game.Winner(final)
	return res, nil
}

func playTurn(ctx context.Context, k *game.Keeper, r *relayer.Relayer, rng *rand.Rand, turn uint32, humanAction, botAction game.Action) (TurnResult, error) {
	actions := [2]game.Action{humanAction, botAction}
	players := [2]game.Address{HumanAddress, ClawbotAddress}

	var (
		commitments [2]game.Commitment
		salts       [2][]byte
	)
	for i := range players {
		salts[i] = salt(rng)
		commitments[i] = Commit(actions[i], salts[i])
		if err := k.CommitAction(players[i], commitments[i]); err != nil {
			return TurnResult{}, fmt.Errorf("commit %s: %w", players[i], err)
		}
	}
	if err := r.Advance(ctx); err != nil {
		return TurnResult{}, err
	}
	for i := range players {
		if err := k.RevealAction(players[i], actions[i], salts[i]); err != nil {
			return TurnResult{}, fmt.Errorf("reveal %s: %w", players[i], err)
		}
	}
	out, err := r.Settle(ctx, actions)
	if err != nil {
		return TurnResult{}, err
	}

	st, err := k.GetState()
	if err != nil {
		return TurnResult{}, err
	}
	return TurnResult{
		Turn:          turn,
		HumanAction:   humanAction,
		BotAction:     botAction,
		HumanDelta:    out.Deltas[0],
		BotDelta:      out.Deltas[1],
		HumanScore:    st.Scores[0],
		BotScore:      st.Scores[1],
		PhaseAfter:    st.Phase,
		Commitments:   commitments,
		HumanVerified: out.Valid[0],
		BotVerified:   out.Valid[1],
	}, nil
}

func salt(rng *rand.Rand) []byte {
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], rng.Uint64())
	binary.BigEndian.PutUint64(b[8:], rng.Uint64())
	return b[:]
}

// Commit binds action to salt as sha256(action || salt). It stands in for the
// Pedersen commitment a real client would produce.
func Commit(action game.Action, salt []byte) game.Commitment {
	h := sha256.New()
	h.Write([]byte(action))
	h.Write(salt)
	var c game.Commitment
	copy(c[:], h.Sum(nil))
	return c
}

// OpeningVerifier accepts a reveal when the proof is the salt that opens the
// commitment produced by Commit.
type OpeningVerifier struct{}

func (OpeningVerifier) Verify(_ context.Context, c game.Commitment, action game.Action, proof []byte) (bool, error) {
	want := Commit(action, proof)
	return subtle.ConstantTimeCompare(want[:], c[:]) == 1, nil
}
