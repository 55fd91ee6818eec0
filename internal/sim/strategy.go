package sim

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/leocagli/Human-vs-bots/internal/game"
)

// Strategy picks the human side's action each turn.
type Strategy interface {
	Next(rng *rand.Rand) game.Action
	String() string
}

type randomStrategy struct{}

func (randomStrategy) Next(rng *rand.Rand) game.Action {
	return game.Actions[rng.Intn(len(game.Actions))]
}

func (randomStrategy) String() string { return "random" }

type fixedStrategy struct {
	action game.Action
}

func (s fixedStrategy) Next(*rand.Rand) game.Action { return s.action }

func (s fixedStrategy) String() string { return "fixed:" + string(s.action) }

// ParseStrategy accepts "random" or "fixed:<action>".
func ParseStrategy(s string) (Strategy, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || strings.EqualFold(s, "random"):
		return randomStrategy{}, nil
	case strings.HasPrefix(strings.ToLower(s), "fixed:"):
		a, err := game.ParseAction(s[len("fixed:"):])
		if err != nil {
			return nil, fmt.Errorf("human strategy %q: %w", s, err)
		}
		return fixedStrategy{action: a}, nil
	default:
		return nil, fmt.Errorf("unknown human strategy %q (want random or fixed:<action>)", s)
	}
}
