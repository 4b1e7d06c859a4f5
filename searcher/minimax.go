package searcher

import (
	"context"
	"math"

	"fish/game"
)

// DefaultDepth is how many of its own turns the strategy looks ahead.
const DefaultDepth = 2

// MinimaxScore returns the score color can guarantee within depth of its own
// turns, counting the turn that led to t. Opponent nodes never consume depth,
// so skipped turns (BuildTree passes over players without a move) need no
// special casing. Once color cannot move its score is final.
func MinimaxScore(t *Tree, color game.Color, depth int) int {
	score, _ := minimax(context.Background(), t, color, depth)
	return score
}

func minimax(ctx context.Context, t *Tree, color game.Color, depth int) (int, error) {
	if depth <= 1 || t.Terminal() || !t.State.CanMove(color) {
		return t.State.Scores[color], nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	maximising := t.State.CurrentPlayer().Color == color
	remaining := depth
	if maximising {
		remaining--
	}

	best := math.MaxInt
	if maximising {
		best = math.MinInt
	}
	for i := range t.Moves {
		value, err := minimax(ctx, t.child(i), color, remaining)
		if err != nil {
			return 0, err
		}
		if maximising {
			best = max(best, value)
		} else {
			best = min(best, value)
		}
	}
	return best, nil
}

// ChooseNextAction picks the current player's movement with the best minimax
// score. Ties go to the lexicographically smallest movement.
func ChooseNextAction(g game.MovementGame, depth int) (game.Movement, bool) {
	m, ok, _ := ChooseNextActionContext(context.Background(), g, depth)
	return m, ok
}

// ChooseNextActionContext is ChooseNextAction that gives up with ctx's error
// once ctx is done.
func ChooseNextActionContext(ctx context.Context, g game.MovementGame, depth int) (game.Movement, bool, error) {
	color := g.CurrentPlayer().Color
	if !g.CanMove(color) {
		return game.Movement{}, false, nil
	}

	tree := BuildTree(g)
	var (
		best      game.Movement
		bestScore int
		found     bool
	)
	for i, m := range tree.Moves {
		score, err := minimax(ctx, tree.child(i), color, depth)
		if err != nil {
			return game.Movement{}, false, err
		}
		if !found || score > bestScore || (score == bestScore && m.Less(best)) {
			best, bestScore, found = m, score, true
		}
	}
	return best, found, nil
}

type Option func(s *Strategy)

func WithDepth(depth int) Option {
	return func(s *Strategy) {
		if depth > 0 {
			s.Depth = depth
		}
	}
}

// Strategy places penguins zig-zag and moves them by minimax.
type Strategy struct {
	Depth int
}

func NewStrategy(options ...Option) Strategy {
	s := Strategy{Depth: DefaultDepth}
	for _, option := range options {
		option(&s)
	}
	return s
}

func (s Strategy) Place(g game.Game) (game.Position, bool) {
	return NextZigzagPosition(g)
}

// Move returns false if the current player cannot move, and ctx's error if
// the search is cut short.
func (s Strategy) Move(ctx context.Context, g game.MovementGame) (game.Movement, bool, error) {
	return ChooseNextActionContext(ctx, g, s.Depth)
}
