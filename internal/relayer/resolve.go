package relayer

import "github.com/leocagli/Human-vs-bots/internal/game"

// resolution[a][b] is the (delta for a, delta for b) of one turn.
var resolution = map[game.Action]map[game.Action][2]int32{
	game.ActionAttack: {
		game.ActionAttack: {0, 0},
		game.ActionDefend: {-1, 1},
		game.ActionVault:  {2, -1},
	},
	game.ActionDefend: {
		game.ActionAttack: {1, -1},
		game.ActionDefend: {0, 0},
		game.ActionVault:  {0, 0},
	},
	game.ActionVault: {
		game.ActionAttack: {-1, 2},
		game.ActionDefend: {0, 0},
		game.ActionVault:  {1, 1},
	},
}

// ResolveTurn returns the score deltas for player one (a) and player two (b).
func ResolveTurn(a, b game.Action) (int32, int32, error) {
	row, ok := resolution[a]
	if !ok {
		return 0, 0, game.ErrInvalidRequest.Wrapf("unknown action %q", a)
	}
	d, ok := row[b]
	if !ok {
		return 0, 0, game.ErrInvalidRequest.Wrapf("unknown action %q", b)
	}
	return d[0], d[1], nil
}
