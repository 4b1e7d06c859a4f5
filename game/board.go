package game

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"
)

const (
	MinFish = 1
	MaxFish = 5
)

// Tile is a board tile; a tile without fish is a hole.
type Tile struct {
	Fish int `json:"fish"`
}

func (t Tile) IsHole() bool {
	return t.Fish <= 0
}

// Position addresses a tile by row and column. Validity depends on the board.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Less orders positions row-major.
func (p Position) Less(q Position) bool {
	if p.Row != q.Row {
		return p.Row < q.Row
	}
	return p.Col < q.Col
}

// Direction is one of the six hex directions.
type Direction int

const (
	North Direction = iota
	NorthEast
	SouthEast
	South
	SouthWest
	NorthWest
)

// Directions lists the hex directions in reachability scan order.
var Directions = []Direction{North, NorthEast, SouthEast, South, SouthWest, NorthWest}

// Step returns the neighbour of p in direction d. Rows are doubled: a straight
// vertical step moves two rows, a diagonal one row. Odd rows sit half a tile to
// the right of even rows, so the column shift of a diagonal depends on parity.
func (p Position) Step(d Direction) Position {
	odd := p.Row%2 != 0
	east, west := p.Col, p.Col-1
	if odd {
		east, west = p.Col+1, p.Col
	}

	switch d {
	case North:
		return Position{p.Row - 2, p.Col}
	case South:
		return Position{p.Row + 2, p.Col}
	case NorthEast:
		return Position{p.Row - 1, east}
	case SouthEast:
		return Position{p.Row + 1, east}
	case NorthWest:
		return Position{p.Row - 1, west}
	case SouthWest:
		return Position{p.Row + 1, west}
	}
	return p
}

// BoardParameters describes a board to build.
type BoardParameters struct {
	Rows            int        `json:"rows"`
	Cols            int        `json:"cols"`
	FishPerTile     int        `json:"fish,omitempty"` // 0 draws each tile from [MinFish, MaxFish]
	Holes           []Position `json:"holes,omitempty"`
	MinOneFishTiles int        `json:"min_one_fish_tiles,omitempty"`
}

// Usable returns the number of tiles that will not be holes.
func (p BoardParameters) Usable() int {
	holes := map[Position]bool{}
	for _, h := range p.Holes {
		if h.Row >= 0 && h.Row < p.Rows && h.Col >= 0 && h.Col < p.Cols {
			holes[h] = true
		}
	}
	return p.Rows*p.Cols - len(holes)
}

// Board is a rectangular, row-major grid of tiles. Boards are values: every
// transition returns a new board and leaves the receiver untouched.
type Board struct {
	Tiles [][]Tile `json:"tiles"`
}

// BuildBoard creates a board from the given parameters. When FishPerTile is 0
// the first MinOneFishTiles non-hole tiles (row-major) get a single fish and the
// rest are drawn from src; a nil src is seeded from the clock.
func BuildBoard(p BoardParameters, src rand.Source) (Board, error) {
	if p.Rows < 1 || p.Cols < 1 {
		return Board{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, p.Rows, p.Cols)
	}
	if p.FishPerTile < 0 || p.FishPerTile > MaxFish {
		return Board{}, fmt.Errorf("%w: %d", ErrInvalidFishCount, p.FishPerTile)
	}

	holes := make(map[Position]bool, len(p.Holes))
	for _, h := range p.Holes {
		if h.Row < 0 || h.Row >= p.Rows || h.Col < 0 || h.Col >= p.Cols {
			return Board{}, fmt.Errorf("%w: %s", ErrHoleOutOfRange, h)
		}
		holes[h] = true
	}
	if p.Rows*p.Cols-len(holes) < p.MinOneFishTiles {
		return Board{}, fmt.Errorf("%w: need %d one-fish tiles", ErrNotEnoughTiles, p.MinOneFishTiles)
	}

	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	rng := rand.New(src)

	ones := p.MinOneFishTiles
	tiles := make([][]Tile, p.Rows)
	for r := range tiles {
		tiles[r] = make([]Tile, p.Cols)
		for c := range tiles[r] {
			switch {
			case holes[Position{r, c}]:
				continue
			case p.FishPerTile > 0:
				tiles[r][c] = Tile{Fish: p.FishPerTile}
			case ones > 0:
				tiles[r][c] = Tile{Fish: 1}
				ones--
			default:
				tiles[r][c] = Tile{Fish: MinFish + rng.Intn(MaxFish-MinFish+1)}
			}
		}
	}

	return Board{Tiles: tiles}, nil
}

// NewBoard creates a board from a matrix of fish counts.
func NewBoard(fish [][]int) (Board, error) {
	if len(fish) == 0 || len(fish[0]) == 0 {
		return Board{}, ErrInvalidDimensions
	}
	tiles := make([][]Tile, len(fish))
	for r, row := range fish {
		if len(row) != len(fish[0]) {
			return Board{}, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidDimensions, r, len(row), len(fish[0]))
		}
		tiles[r] = make([]Tile, len(row))
		for c, n := range row {
			if n < 0 || n > MaxFish {
				return Board{}, fmt.Errorf("%w: %d at %s", ErrInvalidFishCount, n, Position{r, c})
			}
			tiles[r][c] = Tile{Fish: n}
		}
	}
	return Board{Tiles: tiles}, nil
}

func (b Board) Rows() int {
	return len(b.Tiles)
}

func (b Board) Cols() int {
	if len(b.Tiles) == 0 {
		return 0
	}
	return len(b.Tiles[0])
}

func (b Board) Contains(pos Position) bool {
	return pos.Row >= 0 && pos.Row < b.Rows() && pos.Col >= 0 && pos.Col < b.Cols()
}

// TileAt returns the tile at pos.
func (b Board) TileAt(pos Position) (Tile, error) {
	if !b.Contains(pos) {
		return Tile{}, fmt.Errorf("%w: %s", ErrOutOfBounds, pos)
	}
	return b.Tiles[pos.Row][pos.Col], nil
}

// SetHole returns a copy of the board with the tile at pos removed.
func (b Board) SetHole(pos Position) (Board, error) {
	if !b.Contains(pos) {
		return Board{}, fmt.Errorf("%w: %s", ErrOutOfBounds, pos)
	}
	c := b.Copy()
	c.Tiles[pos.Row][pos.Col] = Tile{}
	return c, nil
}

func (b Board) Copy() Board {
	tiles := make([][]Tile, len(b.Tiles))
	for r, row := range b.Tiles {
		tiles[r] = make([]Tile, len(row))
		copy(tiles[r], row)
	}
	return Board{Tiles: tiles}
}

// Usable counts the tiles that are not holes.
func (b Board) Usable() int {
	n := 0
	for _, row := range b.Tiles {
		for _, t := range row {
			if !t.IsHole() {
				n++
			}
		}
	}
	return n
}

// Open reports whether a penguin could stand on pos.
func (b Board) Open(pos Position, occupied map[Position]bool) bool {
	return b.Contains(pos) && !b.Tiles[pos.Row][pos.Col].IsHole() && !occupied[pos]
}

// Reachable returns every position a penguin at start can slide to: for each
// direction, the tiles up to (excluding) the first edge, hole, or occupied tile.
func (b Board) Reachable(occupied map[Position]bool, start Position) []Position {
	var reachable []Position
	for _, d := range Directions {
		for pos := start.Step(d); b.Open(pos, occupied); pos = pos.Step(d) {
			reachable = append(reachable, pos)
		}
	}
	return reachable
}
