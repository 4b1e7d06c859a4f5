package game

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDimensions = errors.New("board dimensions must be positive and rectangular")
	ErrInvalidFishCount  = errors.New("fish count out of range")
	ErrHoleOutOfRange    = errors.New("hole is not on the board")
	ErrNotEnoughTiles    = errors.New("not enough tiles on the board")
	ErrOutOfBounds       = errors.New("position is not on the board")

	ErrTooFewPlayers  = errors.New("minimum of 2 players required")
	ErrTooManyPlayers = errors.New("maximum of 4 players allowed")
	ErrDuplicateColor = errors.New("players must have distinct colors")
	ErrDuplicateName  = errors.New("players must have distinct names")

	ErrNotPlayable      = errors.New("tile is not playable")
	ErrNoPenguinsLeft   = errors.New("no penguins left to place")
	ErrOutOfTurn        = errors.New("not the player's turn")
	ErrUnreachable      = errors.New("destination is not reachable")
	ErrNotOwnedByPlayer = errors.New("no penguin of the player at start")
)

// PlacementError is a rejected placement.
type PlacementError struct {
	Player   string
	Position Position
	Err      error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("placement by %s at %s: %v", e.Player, e.Position, e.Err)
}

func (e *PlacementError) Unwrap() error {
	return e.Err
}

// MovementError is a rejected movement.
type MovementError struct {
	Player   string
	Movement Movement
	Err      error
}

func (e *MovementError) Error() string {
	return fmt.Sprintf("movement by %s %s: %v", e.Player, e.Movement, e.Err)
}

func (e *MovementError) Unwrap() error {
	return e.Err
}
