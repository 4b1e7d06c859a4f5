package player

import (
	"context"
	"errors"
	"sync"

	"fish/game"
	"fish/referee"
	"fish/searcher"

	"github.com/rs/zerolog/log"
)

var ErrNoAction = errors.New("no legal action available")

// AI is an in-process player: zig-zag placements and minimax movements.
type AI struct {
	name     string
	strategy searcher.Strategy

	mu           sync.Mutex
	played       int
	disqualified string
}

// NewAI creates a player named name. Options tune the movement search.
func NewAI(name string, options ...searcher.Option) *AI {
	return &AI{
		name:     name,
		strategy: searcher.NewStrategy(options...),
	}
}

func (a *AI) Name() string {
	return a.name
}

func (a *AI) GameStarting(ctx context.Context, g game.Game) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.played++

	p, _ := g.Player(a.name)
	log.Debug().Str("player", a.name).Str("color", string(p.Color)).Int("opponents", len(g.Players)-1).Msg("joined game")
	return nil
}

func (a *AI) RequestPlacement(ctx context.Context, g game.Game) (game.Position, error) {
	if err := ctx.Err(); err != nil {
		return game.Position{}, err
	}
	pos, ok := a.strategy.Place(g)
	if !ok {
		return game.Position{}, ErrNoAction
	}
	return pos, nil
}

func (a *AI) RequestMovement(ctx context.Context, g game.MovementGame) (game.Movement, error) {
	if err := ctx.Err(); err != nil {
		return game.Movement{}, err
	}
	m, ok, err := a.strategy.Move(ctx, g)
	if err != nil {
		return game.Movement{}, err
	}
	if !ok {
		return game.Movement{}, ErrNoAction
	}
	return m, nil
}

func (a *AI) GameEnded(ctx context.Context, d referee.Debrief) error {
	log.Debug().Str("player", a.name).Str("game", d.GameID).Strs("standings", d.ActiveNames()).Msg("game ended")
	return nil
}

func (a *AI) Disqualify(reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.disqualified = reason
	log.Warn().Str("player", a.name).Str("reason", reason).Msg("disqualified")
}

// AcceptResult always accepts.
func (a *AI) AcceptResult(ctx context.Context, won bool) (bool, error) {
	log.Info().Str("player", a.name).Bool("won", won).Msg("tournament result")
	return true, nil
}

// Played returns how many games the player has started.
func (a *AI) Played() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.played
}

// Disqualified returns the reason of the last disqualification, if any.
func (a *AI) Disqualified() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.disqualified
}
