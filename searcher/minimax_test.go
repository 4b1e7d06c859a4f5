package searcher

import (
	"context"
	"testing"
	"time"

	"fish/game"

	"github.com/stretchr/testify/require"
)

func TestPlaceAllZigzag(t *testing.T) {
	t.Run("fills tiles in scan order alternating owners", func(t *testing.T) {
		mg := zigzagGame(t, ones(t, 3, 3))
		require.Equal(t, []game.Position{{Row: 0, Col: 0}, {Row: 0, Col: 2}, {Row: 1, Col: 1}, {Row: 2, Col: 0}}, mg.Penguins[game.Red])
		require.Equal(t, []game.Position{{Row: 0, Col: 1}, {Row: 1, Col: 0}, {Row: 1, Col: 2}, {Row: 2, Col: 1}}, mg.Penguins[game.White])
		require.Equal(t, 0, mg.Unplaced[game.Red])
		require.Equal(t, 0, mg.Unplaced[game.White])
		require.True(t, mg.IsMovementGame())
	})

	t.Run("next position skips holes and penguins", func(t *testing.T) {
		b, err := game.NewBoard([][]int{{0, 1}, {1, 1}})
		require.NoError(t, err)
		g, err := game.CreateGame([]game.Player{alice, bob}, b)
		require.NoError(t, err)

		pos, ok := NextZigzagPosition(g)
		require.True(t, ok)
		require.Equal(t, game.Position{Row: 0, Col: 1}, pos)

		g, err = g.PlacePenguin(alice, pos)
		require.NoError(t, err)
		pos, ok = NextZigzagPosition(g)
		require.True(t, ok)
		require.Equal(t, game.Position{Row: 1, Col: 0}, pos)
	})

	t.Run("board too small", func(t *testing.T) {
		g, err := game.CreateGame([]game.Player{alice, bob}, ones(t, 2, 2))
		require.NoError(t, err)
		_, err = PlaceAllZigzag(g)
		require.ErrorIs(t, err, ErrNoOpenTile)
	})
}

// lookahead: alice can reach (0,1), (2,1) or (3,0). Every first slide scores
// one fish, but only (3,0) lets her vacate a five-fish tile next turn. bob is
// boxed in on (0,2).
var lookahead = [][]int{
	{0, 1, 1},
	{1, 0, 0},
	{0, 2, 0},
	{5, 0, 0},
}

func TestMinimaxScore(t *testing.T) {
	mg := fixture(t, lookahead, game.Position{Row: 1, Col: 0}, game.Position{Row: 0, Col: 2})
	tree := BuildTree(mg)
	require.Len(t, tree.Moves, 3)

	t.Run("depth one is the current score", func(t *testing.T) {
		require.Equal(t, 0, MinimaxScore(tree, game.Red, 1))
		for _, m := range tree.Moves {
			child, _ := tree.Child(m)
			require.Equal(t, 1, MinimaxScore(child, game.Red, 1))
		}
	})

	t.Run("depth two looks at the next own turn", func(t *testing.T) {
		expected := map[game.Position]int{{Row: 0, Col: 1}: 2, {Row: 2, Col: 1}: 3, {Row: 3, Col: 0}: 6}
		for _, m := range tree.Moves {
			child, _ := tree.Child(m)
			require.Equal(t, expected[m.End], MinimaxScore(child, game.Red, 2), "after %s", m)
		}
	})

	t.Run("a boxed-in player scores nothing", func(t *testing.T) {
		require.Equal(t, 0, MinimaxScore(tree, game.White, 3))
	})
}

func TestChooseNextAction(t *testing.T) {
	t.Run("ties go to the smallest movement", func(t *testing.T) {
		mg := zigzagGame(t, ones(t, 4, 3))
		m, ok := ChooseNextAction(mg, 1)
		require.True(t, ok)
		require.Equal(t, game.Movement{Start: game.Position{Row: 0, Col: 2}, End: game.Position{Row: 2, Col: 2}}, m)
	})

	t.Run("deeper search changes the choice", func(t *testing.T) {
		mg := fixture(t, lookahead, game.Position{Row: 1, Col: 0}, game.Position{Row: 0, Col: 2})

		m, ok := ChooseNextAction(mg, 1)
		require.True(t, ok)
		require.Equal(t, game.Movement{Start: game.Position{Row: 1, Col: 0}, End: game.Position{Row: 0, Col: 1}}, m)

		m, ok = ChooseNextAction(mg, 2)
		require.True(t, ok)
		require.Equal(t, game.Movement{Start: game.Position{Row: 1, Col: 0}, End: game.Position{Row: 3, Col: 0}}, m)
	})

	t.Run("is deterministic", func(t *testing.T) {
		mg := zigzagGame(t, ones(t, 5, 4))
		first, ok := ChooseNextAction(mg, 2)
		require.True(t, ok)
		for i := 0; i < 3; i++ {
			copied, ok := mg.Copy().MovementGame()
			require.True(t, ok)
			again, _ := ChooseNextAction(copied, 2)
			require.Equal(t, first, again)
		}
	})

	t.Run("no movement when stuck", func(t *testing.T) {
		mg := fixture(t, boxedIn, game.Position{Row: 0, Col: 0}, game.Position{Row: 2, Col: 1})
		_, ok := ChooseNextAction(mg, 2)
		require.False(t, ok)
	})
}

// strandedBoard: alice's only slide from (0,0) is into the dead end at
// (2,0), while bob roams a thirty-tile region below.
func strandedBoard() [][]int {
	tiles := make([][]int, 10)
	for r := range tiles {
		tiles[r] = make([]int, 6)
		if r >= 5 {
			for c := range tiles[r] {
				tiles[r][c] = 1
			}
		}
	}
	tiles[0][0] = 1
	tiles[2][0] = 1
	return tiles
}

func TestMinimaxStrandedSearcher(t *testing.T) {
	mg := fixture(t, strandedBoard(), game.Position{Row: 0, Col: 0}, game.Position{Row: 7, Col: 2})

	type choice struct {
		m     game.Movement
		ok    bool
		score int
	}
	done := make(chan choice, 1)
	go func() {
		m, ok := ChooseNextAction(mg, 3)
		done <- choice{m, ok, MinimaxScore(BuildTree(mg), game.Red, 3)}
	}()

	select {
	case c := <-done:
		require.True(t, c.ok)
		require.Equal(t, game.Movement{Start: game.Position{Row: 0, Col: 0}, End: game.Position{Row: 2, Col: 0}}, c.m)
		require.Equal(t, 1, c.score, "Once stranded, only the fish already collected count")
	case <-time.After(2 * time.Second):
		t.Fatal("search kept expanding the opponent's moves after alice was stranded")
	}
}

func TestChooseNextActionContext(t *testing.T) {
	mg := zigzagGame(t, ones(t, 5, 4))

	t.Run("matches the uncancellable search", func(t *testing.T) {
		want, _ := ChooseNextAction(mg, 2)
		m, ok, err := ChooseNextActionContext(context.Background(), mg, 2)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, want, m)
	})

	t.Run("gives up once cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, ok, err := ChooseNextActionContext(ctx, mg, 2)
		require.ErrorIs(t, err, context.Canceled)
		require.False(t, ok)

		_, _, err = NewStrategy().Move(ctx, mg)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestStrategy(t *testing.T) {
	s := NewStrategy(WithDepth(0))
	require.Equal(t, DefaultDepth, s.Depth, "Non-positive depth keeps the default")
	require.Equal(t, 3, NewStrategy(WithDepth(3)).Depth)

	g, err := game.CreateGame([]game.Player{alice, bob}, ones(t, 3, 3))
	require.NoError(t, err)
	pos, ok := s.Place(g)
	require.True(t, ok)
	require.Equal(t, game.Position{Row: 0, Col: 0}, pos)
}
