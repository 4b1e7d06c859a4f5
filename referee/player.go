package referee

import (
	"context"

	"fish/game"
)

// Player is a tournament participant as seen by the referee. Every method that
// takes a context is called under the referee's timeout; implementations
// should return once ctx is done.
type Player interface {
	Name() string
	GameStarting(ctx context.Context, g game.Game) error
	RequestPlacement(ctx context.Context, g game.Game) (game.Position, error)
	RequestMovement(ctx context.Context, g game.MovementGame) (game.Movement, error)
	GameEnded(ctx context.Context, d Debrief) error
	Disqualify(reason string)
	AcceptResult(ctx context.Context, won bool) (bool, error)
}

// Observer follows a game without taking part in it.
type Observer interface {
	GameStarting(g game.Game)
	GameChanged(g game.Game)
	GameEnded(d Debrief)
}

const (
	Cheating = "cheating"
	Failing  = "failing"
)

type Standing struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type Kick struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Debrief is the outcome of one game. Active players are sorted by descending
// score; kicked players list cheaters before failures.
type Debrief struct {
	GameID string     `json:"game"`
	Active []Standing `json:"active"`
	Kicked []Kick     `json:"kicked"`
}

func (d Debrief) ActiveNames() []string {
	names := make([]string, len(d.Active))
	for i, s := range d.Active {
		names[i] = s.Name
	}
	return names
}

func (d Debrief) KickedNames() []string {
	names := make([]string, len(d.Kicked))
	for i, k := range d.Kicked {
		names[i] = k.Name
	}
	return names
}

// TopScorers returns the active players sharing the highest score.
func (d Debrief) TopScorers() []string {
	var names []string
	for _, s := range d.Active {
		if s.Score != d.Active[0].Score {
			break
		}
		names = append(names, s.Name)
	}
	return names
}
