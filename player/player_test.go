package player

import (
	"context"
	"testing"

	"fish/game"
	"fish/referee"
	"fish/searcher"

	"github.com/stretchr/testify/require"
)

func TestAI(t *testing.T) {
	board, err := game.BuildBoard(game.BoardParameters{Rows: 4, Cols: 3, FishPerTile: 1}, nil)
	require.NoError(t, err)
	g, err := game.CreateGame([]game.Player{{Name: "alice", Color: game.Red}, {Name: "bob", Color: game.White}}, board)
	require.NoError(t, err)
	ai := NewAI("alice", searcher.WithDepth(1))

	t.Run("places zig-zag", func(t *testing.T) {
		pos, err := ai.RequestPlacement(context.Background(), g)
		require.NoError(t, err)
		require.Equal(t, game.Position{Row: 0, Col: 0}, pos)
	})

	t.Run("moves by minimax", func(t *testing.T) {
		mg, err := searcher.PlaceAllZigzag(g)
		require.NoError(t, err)
		m, err := ai.RequestMovement(context.Background(), mg)
		require.NoError(t, err)
		require.Equal(t, game.Movement{Start: game.Position{Row: 0, Col: 2}, End: game.Position{Row: 2, Col: 2}}, m)
	})

	t.Run("no placement on a full board", func(t *testing.T) {
		small, err := game.BuildBoard(game.BoardParameters{Rows: 2, Cols: 2, FishPerTile: 1}, nil)
		require.NoError(t, err)
		full, err := game.CreateGame(g.Players, small)
		require.NoError(t, err)
		for _, pos := range []game.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 0}, {Row: 1, Col: 1}} {
			full, err = full.PlacePenguin(full.CurrentPlayer(), pos)
			require.NoError(t, err)
		}
		_, err = ai.RequestPlacement(context.Background(), full)
		require.ErrorIs(t, err, ErrNoAction)
	})

	t.Run("gives up once the request is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := ai.RequestPlacement(ctx, g)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestAIPlaysRefereedGames(t *testing.T) {
	alice, bob := NewAI("alice"), NewAI("bob")
	params := game.BoardParameters{Rows: 4, Cols: 4, MinOneFishTiles: 4}

	debrief, err := referee.New().RunGame(context.Background(), []referee.Player{alice, bob}, params)
	require.NoError(t, err)
	require.Empty(t, debrief.Kicked, "The AI never cheats nor fails")
	require.ElementsMatch(t, []string{"alice", "bob"}, debrief.ActiveNames())
	require.Equal(t, 1, alice.Played())
	require.Empty(t, alice.Disqualified())

	accepted, err := alice.AcceptResult(context.Background(), true)
	require.NoError(t, err)
	require.True(t, accepted)
}
