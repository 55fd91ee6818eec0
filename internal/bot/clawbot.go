// Package bot implements Clawbot, the rule-based opponent used by the
// simulator.
package bot

import (
	"math/rand"

	"github.com/leocagli/Human-vs-bots/internal/game"
)

const (
	// EarlyTurns are played at random.
	EarlyTurns uint32 = 2
	// Margin is the score difference at which Clawbot stops countering.
	Margin int32 = 3
	// Window is how many recent turns are inspected for the opponent's habit.
	Window = 3
)

// Turn is one settled turn as seen from Clawbot's side.
type Turn struct {
	Number         uint32
	Action         game.Action
	OpponentAction game.Action
	Delta          int32
	OpponentDelta  int32
}

// State is what Clawbot knows when it picks an action.
type State struct {
	Turn          uint32
	Score         int32
	OpponentScore int32
	History       []Turn
}

// Clawbot picks actions. It is not safe for concurrent use because it owns
// its random source.
type Clawbot struct {
	rng *rand.Rand
}

func New(rng *rand.Rand) *Clawbot {
	if rng == nil {
		panic("clawbot: rng is nil")
	}
	return &Clawbot{rng: rng}
}

// Decide returns the action for st.Turn. Rules apply in order:
// early turns are random, a deficit of Margin or more plays Attack or Vault,
// a lead of Margin or more plays Defend or Vault, and anything else counters
// the opponent's most frequent action over the last Window turns.
func (c *Clawbot) Decide(st State) game.Action {
	if st.Turn <= EarlyTurns {
		return c.pick(game.Actions...)
	}

	diff := int64(st.Score) - int64(st.OpponentScore)
	switch {
	case diff <= -int64(Margin):
		return c.pick(game.ActionAttack, game.ActionVault)
	case diff >= int64(Margin):
		return c.pick(game.ActionDefend, game.ActionVault)
	}

	return Counter(MostFrequent(st.History, Window))
}

func (c *Clawbot) pick(actions ...game.Action) game.Action {
	return actions[c.rng.Intn(len(actions))]
}

// MostFrequent returns the opponent action seen most often in the last n
// turns of history. Ties go to the earlier action in Attack, Defend, Vault
// order, so an empty history yields Attack.
func MostFrequent(history []Turn, n int) game.Action {
	if len(history) > n {
		history = history[len(history)-n:]
	}
	counts := make(map[game.Action]int, len(game.Actions))
	for _, t := range history {
		counts[t.OpponentAction]++
	}

	best, bestCount := game.ActionAttack, -1
	for _, a := range game.Actions {
		if counts[a] > bestCount {
			best, bestCount = a, counts[a]
		}
	}
	return best
}

// Counter returns the action that beats a.
func Counter(a game.Action) game.Action {
	switch a {
	case game.ActionAttack:
		return game.ActionDefend
	case game.ActionDefend:
		return game.ActionVault
	default:
		return game.ActionAttack
	}
}
