package searcher

import (
	"errors"
	"fmt"

	"fish/game"
)

var ErrNoOpenTile = errors.New("no open tile left")

// NextZigzagPosition scans rows top to bottom and columns left to right for the
// first tile a penguin can be placed on.
func NextZigzagPosition(g game.Game) (game.Position, bool) {
	occupied := g.Occupied()
	for r := 0; r < g.Board.Rows(); r++ {
		for c := 0; c < g.Board.Cols(); c++ {
			pos := game.Position{Row: r, Col: c}
			if g.Board.Open(pos, occupied) {
				return pos, true
			}
		}
	}
	return game.Position{}, false
}

// PlaceAllZigzag places every remaining penguin, in turn order, on the next zig-zag tile.
func PlaceAllZigzag(g game.Game) (game.MovementGame, error) {
	for !g.IsMovementGame() {
		player := g.CurrentPlayer()
		pos, ok := NextZigzagPosition(g)
		if !ok {
			return game.MovementGame{}, fmt.Errorf("placing for %s: %w", player.Name, ErrNoOpenTile)
		}

		next, err := g.PlacePenguin(player, pos)
		if err != nil {
			return game.MovementGame{}, err
		}
		g = next
	}

	mg, _ := g.MovementGame()
	return mg, nil
}
