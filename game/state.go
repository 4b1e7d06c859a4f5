package game

import (
	"fish/utils"
)

const (
	MinPlayers = 2
	MaxPlayers = 4
	// Each player starts with PenguinBudget minus the number of players penguins.
	PenguinBudget = 6
)

// Color identifies a player's penguins.
type Color string

const (
	Red   Color = "red"
	White Color = "white"
	Brown Color = "brown"
	Black Color = "black"
)

// Colors lists the colors in the order they are handed out.
var Colors = []Color{Red, White, Brown, Black}

// Player is a participant of a single game. Players are identified by name.
type Player struct {
	Name  string `json:"name"`
	Color Color  `json:"color"`
}

// PenguinsPerPlayer returns how many penguins each of n players places.
func PenguinsPerPlayer(n int) int {
	return PenguinBudget - n
}

// Game is a snapshot of a game. It is treated as a value: every transition
// returns a new Game and never modifies the receiver.
type Game struct {
	Players  []Player             `json:"players"` // turn order
	Board    Board                `json:"board"`
	Penguins map[Color][]Position `json:"penguins"`
	Unplaced map[Color]int        `json:"unplaced"`
	Scores   map[Color]int        `json:"scores"`
	Turn     int                  `json:"turn"` // index into Players
}

// CreateGame starts a game on board with players taking turns in the given order.
func CreateGame(players []Player, board Board) (Game, error) {
	if len(players) < MinPlayers {
		return Game{}, ErrTooFewPlayers
	}
	if len(players) > MaxPlayers {
		return Game{}, ErrTooManyPlayers
	}

	colors := map[Color]bool{}
	names := map[string]bool{}
	for _, p := range players {
		if colors[p.Color] {
			return Game{}, ErrDuplicateColor
		}
		if names[p.Name] {
			return Game{}, ErrDuplicateName
		}
		colors[p.Color] = true
		names[p.Name] = true
	}

	g := Game{
		Players:  append([]Player(nil), players...),
		Board:    board.Copy(),
		Penguins: make(map[Color][]Position, len(players)),
		Unplaced: make(map[Color]int, len(players)),
		Scores:   make(map[Color]int, len(players)),
	}
	for _, p := range players {
		g.Penguins[p.Color] = []Position{}
		g.Unplaced[p.Color] = PenguinsPerPlayer(len(players))
		g.Scores[p.Color] = 0
	}
	return g, nil
}

// Copy returns a deep copy of the game.
func (g Game) Copy() Game {
	penguins := make(map[Color][]Position, len(g.Penguins))
	for c, positions := range g.Penguins {
		penguins[c] = append([]Position{}, positions...)
	}
	unplaced := make(map[Color]int, len(g.Unplaced))
	for c, n := range g.Unplaced {
		unplaced[c] = n
	}
	scores := make(map[Color]int, len(g.Scores))
	for c, n := range g.Scores {
		scores[c] = n
	}

	return Game{
		Players:  append([]Player(nil), g.Players...),
		Board:    g.Board.Copy(),
		Penguins: penguins,
		Unplaced: unplaced,
		Scores:   scores,
		Turn:     g.Turn,
	}
}

// CurrentPlayer returns the player whose turn it is; the zero Player if nobody is left.
func (g Game) CurrentPlayer() Player {
	if len(g.Players) == 0 {
		return Player{}
	}
	return g.Players[g.Turn]
}

// Player looks up a player by name.
func (g Game) Player(name string) (Player, bool) {
	for _, p := range g.Players {
		if p.Name == name {
			return p, true
		}
	}
	return Player{}, false
}

func (g Game) colors() []Color {
	colors := make([]Color, len(g.Players))
	for i, p := range g.Players {
		colors[i] = p.Color
	}
	return colors
}

// Index returns the turn-order index of color, or -1.
func (g Game) Index(color Color) int {
	return utils.FindIndex(g.colors(), color)
}

func (g Game) nextTurn() int {
	if len(g.Players) == 0 {
		return 0
	}
	return (g.Turn + 1) % len(g.Players)
}

// Occupied returns the set of positions holding a penguin.
func (g Game) Occupied() map[Position]bool {
	occupied := map[Position]bool{}
	for _, positions := range g.Penguins {
		for _, pos := range positions {
			occupied[pos] = true
		}
	}
	return occupied
}

// IsMovementGame reports whether every penguin has been placed.
func (g Game) IsMovementGame() bool {
	for _, n := range g.Unplaced {
		if n > 0 {
			return false
		}
	}
	return true
}

// MovementGame returns the game as a MovementGame once placement is over.
func (g Game) MovementGame() (MovementGame, bool) {
	if !g.IsMovementGame() {
		return MovementGame{}, false
	}
	return MovementGame{Game: g}, true
}

// PlacePenguin places one of player's penguins at pos and passes the turn.
func (g Game) PlacePenguin(player Player, pos Position) (Game, error) {
	if !g.Board.Open(pos, g.Occupied()) {
		return Game{}, &PlacementError{Player: player.Name, Position: pos, Err: ErrNotPlayable}
	}
	if g.Unplaced[player.Color] <= 0 {
		return Game{}, &PlacementError{Player: player.Name, Position: pos, Err: ErrNoPenguinsLeft}
	}
	if current := g.CurrentPlayer(); current.Name != player.Name || current.Color != player.Color {
		return Game{}, &PlacementError{Player: player.Name, Position: pos, Err: ErrOutOfTurn}
	}

	next := g.Copy()
	next.Unplaced[player.Color]--
	next.Penguins[player.Color] = append(next.Penguins[player.Color], pos)
	next.Turn = next.nextTurn()
	return next, nil
}

// MovePenguin slides one of player's penguins. The vacated tile becomes a hole
// and its fish are added to the player's score.
func (g Game) MovePenguin(player Player, m Movement) (Game, error) {
	if current := g.CurrentPlayer(); current.Name != player.Name || current.Color != player.Color {
		return Game{}, &MovementError{Player: player.Name, Movement: m, Err: ErrOutOfTurn}
	}

	owned := g.Penguins[player.Color]
	idx := utils.FindIndex(owned, m.Start)
	if idx < 0 {
		return Game{}, &MovementError{Player: player.Name, Movement: m, Err: ErrNotOwnedByPlayer}
	}
	if utils.FindIndex(g.Board.Reachable(g.Occupied(), m.Start), m.End) < 0 {
		return Game{}, &MovementError{Player: player.Name, Movement: m, Err: ErrUnreachable}
	}

	tile, err := g.Board.TileAt(m.Start)
	if err != nil {
		return Game{}, &MovementError{Player: player.Name, Movement: m, Err: err}
	}
	board, err := g.Board.SetHole(m.Start)
	if err != nil {
		return Game{}, &MovementError{Player: player.Name, Movement: m, Err: err}
	}

	next := g.Copy()
	next.Board = board
	next.Penguins[player.Color] = append(utils.RemoveAt(owned, idx), m.End)
	next.Scores[player.Color] += tile.Fish
	next.Turn = next.nextTurn()
	return next, nil
}

// MovesFor lists color's movements: penguins in placement order, then
// destinations in reachability scan order.
func (g Game) MovesFor(color Color) []Movement {
	occupied := g.Occupied()
	var moves []Movement
	for _, start := range g.Penguins[color] {
		for _, end := range g.Board.Reachable(occupied, start) {
			moves = append(moves, Movement{Start: start, End: end})
		}
	}
	return moves
}

// CanMove reports whether any of color's penguins can slide.
func (g Game) CanMove(color Color) bool {
	occupied := g.Occupied()
	for _, start := range g.Penguins[color] {
		if len(g.Board.Reachable(occupied, start)) > 0 {
			return true
		}
	}
	return false
}

// AnyCanMove reports whether some player can slide a penguin.
func (g Game) AnyCanMove() bool {
	for _, p := range g.Players {
		if g.CanMove(p.Color) {
			return true
		}
	}
	return false
}

// RemovePlayer drops the current player from the game. Once placement is over
// the turn passes to the next player able to move, if there is one.
func (g Game) RemovePlayer() Game {
	if len(g.Players) == 0 {
		return g.Copy()
	}

	gone := g.CurrentPlayer()
	next := g.Copy()
	delete(next.Penguins, gone.Color)
	delete(next.Unplaced, gone.Color)
	delete(next.Scores, gone.Color)
	next.Players = utils.RemoveAt(g.Players, g.Turn)

	if len(next.Players) == 0 {
		next.Turn = 0
		return next
	}
	next.Turn = g.Turn % len(next.Players)

	if mg, ok := next.MovementGame(); ok {
		return mg.SkipStuck().Game
	}
	return next
}

// SettleScores credits every player with the fish under their penguins.
func (g Game) SettleScores() Game {
	next := g.Copy()
	for color, positions := range next.Penguins {
		for _, pos := range positions {
			if tile, err := next.Board.TileAt(pos); err == nil {
				next.Scores[color] += tile.Fish
			}
		}
	}
	return next
}

// MovementGame is a game in which every penguin has been placed.
type MovementGame struct {
	Game
}

// Move slides a penguin of the current player.
func (g MovementGame) Move(m Movement) (MovementGame, error) {
	next, err := g.MovePenguin(g.CurrentPlayer(), m)
	if err != nil {
		return MovementGame{}, err
	}
	return MovementGame{Game: next}, nil
}

// SkipStuck passes the turn until it reaches a player able to move, going
// around the table at most once. If nobody can move the turn is unchanged.
func (g MovementGame) SkipStuck() MovementGame {
	next := g.Copy()
	for range next.Players {
		if next.CanMove(next.CurrentPlayer().Color) {
			return MovementGame{Game: next}
		}
		next.Turn = next.nextTurn()
	}
	return MovementGame{Game: next}
}

// RemovePlayer drops the current player; removing a player never undoes placement.
func (g MovementGame) RemovePlayer() MovementGame {
	return MovementGame{Game: g.Game.RemovePlayer()}
}
