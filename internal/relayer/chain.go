package relayer

import (
	"context"

	"github.com/leocagli/Human-vs-bots/internal/game"
)

// Chain is the relayer's view of the game session.
type Chain interface {
	State(ctx context.Context) (game.GameState, error)
	Commit(ctx context.Context, slot game.Slot) (game.VaultCommit, error)
	AdvancePhase(ctx context.Context) error
	FinaliseTurn(ctx context.Context, deltaOne, deltaTwo int32) error
}

// KeeperChain drives a keeper in-process.
type KeeperChain struct {
	k *game.Keeper
}

func NewKeeperChain(k *game.Keeper) *KeeperChain {
	return &KeeperChain{k: k}
}

func (c *KeeperChain) State(ctx context.Context) (game.GameState, error) {
	if err := ctx.Err(); err != nil {
		return game.GameState{}, err
	}
	return c.k.GetState()
}

func (c *KeeperChain) Commit(ctx context.Context, slot game.Slot) (game.VaultCommit, error) {
	if err := ctx.Err(); err != nil {
		return game.VaultCommit{}, err
	}
	return c.k.GetCommit(slot)
}

func (c *KeeperChain) AdvancePhase(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.k.AdvancePhase()
}

func (c *KeeperChain) FinaliseTurn(ctx context.Context, deltaOne, deltaTwo int32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.k.FinaliseTurn(deltaOne, deltaTwo)
}
