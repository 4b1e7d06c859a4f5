package tournament

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"fish/game"
	"fish/player"
	"fish/referee"
	"fish/searcher"

	"github.com/stretchr/testify/require"
)

func TestAssignParties(t *testing.T) {
	sizes := func(parties [][]int) []int {
		var s []int
		for _, p := range parties {
			s = append(s, len(p))
		}
		return s
	}
	pool := func(n int) []int {
		p := make([]int, n)
		for i := range p {
			p[i] = i
		}
		return p
	}

	tests := []struct {
		players  int
		maxSize  int
		expected []int
	}{
		{13, 4, []int{4, 4, 3, 2}},
		{8, 4, []int{4, 4}},
		{9, 4, []int{4, 3, 2}},
		{6, 4, []int{4, 2}},
		{5, 4, []int{3, 2}},
		{4, 3, []int{2, 2}},
		{2, 4, []int{2}},
		{3, 2, []int{3}},
		{5, 2, []int{2, 3}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d players of at most %d", tt.players, tt.maxSize), func(t *testing.T) {
			parties := AssignParties(pool(tt.players), tt.maxSize)
			require.Equal(t, tt.expected, sizes(parties))

			var flat []int
			for _, p := range parties {
				flat = append(flat, p...)
			}
			require.Equal(t, pool(tt.players), flat, "Players keep their order")
		})
	}

	t.Run("lone player", func(t *testing.T) {
		require.Empty(t, AssignParties([]int{1}, 4))
	})

	t.Run("never over four", func(t *testing.T) {
		require.Equal(t, []int{4, 4, 2}, sizes(AssignParties(pool(10), 6)))
	})
}

type mockPlayer struct {
	name   string
	accept func(ctx context.Context, won bool) (bool, error)

	mu      sync.Mutex
	results []bool
}

func newMockPlayer(name string) *mockPlayer {
	return &mockPlayer{
		name: name,
		accept: func(context.Context, bool) (bool, error) {
			return true, nil
		},
	}
}

func (p *mockPlayer) Name() string                                        { return p.name }
func (p *mockPlayer) GameStarting(ctx context.Context, g game.Game) error { return nil }
func (p *mockPlayer) RequestPlacement(ctx context.Context, g game.Game) (game.Position, error) {
	return game.Position{}, errors.New("not refereed")
}
func (p *mockPlayer) RequestMovement(ctx context.Context, g game.MovementGame) (game.Movement, error) {
	return game.Movement{}, errors.New("not refereed")
}
func (p *mockPlayer) GameEnded(ctx context.Context, d referee.Debrief) error { return nil }
func (p *mockPlayer) Disqualify(reason string)                              {}

func (p *mockPlayer) AcceptResult(ctx context.Context, won bool) (bool, error) {
	p.mu.Lock()
	p.results = append(p.results, won)
	p.mu.Unlock()
	return p.accept(ctx, won)
}

// mockRunner scores players by their seat: earlier seats score higher. Players
// named in kick are disqualified in every game they play.
type mockRunner struct {
	kick map[string]string

	mu    sync.Mutex
	games [][]string
}

func (r *mockRunner) RunGame(ctx context.Context, players []referee.Player, params game.BoardParameters) (referee.Debrief, error) {
	var names []string
	d := referee.Debrief{GameID: fmt.Sprintf("game-%d", len(players))}
	for i, p := range players {
		names = append(names, p.Name())
		if reason, ok := r.kick[p.Name()]; ok {
			d.Kicked = append(d.Kicked, referee.Kick{Name: p.Name(), Reason: reason})
			continue
		}
		d.Active = append(d.Active, referee.Standing{Name: p.Name(), Score: 10 - i})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.games = append(r.games, names)
	return d, nil
}

func roster(names ...string) ([]referee.Player, []*mockPlayer) {
	players := make([]referee.Player, len(names))
	mocks := make([]*mockPlayer, len(names))
	for i, name := range names {
		mocks[i] = newMockPlayer(name)
		players[i] = mocks[i]
	}
	return players, mocks
}

var params = game.BoardParameters{Rows: 5, Cols: 5, FishPerTile: 1}

func TestRun(t *testing.T) {
	t.Run("survivors advance until nobody is eliminated", func(t *testing.T) {
		players, mocks := roster("p0", "p1", "p2", "p3", "p4", "p5", "p6", "p7")
		runner := &mockRunner{kick: map[string]string{"p3": referee.Cheating, "p7": referee.Failing}}

		result, err := New(runner).Run(context.Background(), params, players)
		require.NoError(t, err)
		require.Equal(t, 2, result.Rounds)
		require.Equal(t, []string{"p0", "p1", "p2", "p4", "p5", "p6"}, result.Winners)
		require.Equal(t, []string{"p3", "p7"}, result.CheatingOrFailing)
		require.ElementsMatch(t, [][]string{
			{"p0", "p1", "p2", "p3"}, {"p4", "p5", "p6", "p7"},
			{"p0", "p1", "p2", "p4"}, {"p5", "p6"},
		}, runner.games)

		require.Equal(t, []bool{true}, mocks[0].results)
		require.Empty(t, mocks[3].results, "Kicked players are not asked to accept")
	})

	t.Run("top scorers advance until one is left", func(t *testing.T) {
		players, mocks := roster("p0", "p1", "p2", "p3", "p4")
		runner := &mockRunner{}

		result, err := New(runner, WithAdvancement(AdvanceTopScorers)).Run(context.Background(), params, players)
		require.NoError(t, err)
		require.Equal(t, 2, result.Rounds)
		require.Equal(t, []string{"p0"}, result.Winners)
		require.Empty(t, result.CheatingOrFailing)

		for _, m := range mocks[1:] {
			require.Equal(t, []bool{false}, m.results, "%s should be told it lost", m.name)
		}
	})

	t.Run("everyone kicked", func(t *testing.T) {
		players, _ := roster("p0", "p1")
		runner := &mockRunner{kick: map[string]string{"p0": referee.Failing, "p1": referee.Failing}}

		result, err := New(runner).Run(context.Background(), params, players)
		require.NoError(t, err)
		require.Empty(t, result.Winners)
		require.Equal(t, []string{"p0", "p1"}, result.CheatingOrFailing)
	})

	t.Run("winners who decline or stall are dropped", func(t *testing.T) {
		players, mocks := roster("p0", "p1", "p2")
		mocks[0].accept = func(context.Context, bool) (bool, error) { return false, nil }
		mocks[1].accept = func(context.Context, bool) (bool, error) {
			time.Sleep(200 * time.Millisecond)
			return true, nil
		}

		result, err := New(&mockRunner{}, WithAcceptTimeout(20*time.Millisecond)).Run(context.Background(), params, players)
		require.NoError(t, err)
		require.Equal(t, []string{"p2"}, result.Winners)
		require.Empty(t, result.CheatingOrFailing, "Declining is not a disqualification")
	})

	t.Run("party size", func(t *testing.T) {
		players, _ := roster("p0", "p1", "p2", "p3", "p4")
		runner := &mockRunner{}
		_, err := New(runner, WithPartySize(2)).Run(context.Background(), params, players)
		require.NoError(t, err)
		require.ElementsMatch(t, [][]string{{"p0", "p1"}, {"p2", "p3", "p4"}}, runner.games)
	})
}

type failingRunner struct{}

func (failingRunner) RunGame(ctx context.Context, players []referee.Player, params game.BoardParameters) (referee.Debrief, error) {
	return referee.Debrief{}, referee.ErrBoardTooSmall
}

func TestRunSetup(t *testing.T) {
	players, _ := roster("p0", "p1", "p2")

	t.Run("too few players", func(t *testing.T) {
		_, err := New(&mockRunner{}).Run(context.Background(), params, players[:1])
		require.ErrorIs(t, err, ErrTooFewPlayers)
	})

	t.Run("duplicate names", func(t *testing.T) {
		_, err := New(&mockRunner{}).Run(context.Background(), params, []referee.Player{players[0], players[0]})
		require.ErrorIs(t, err, ErrDuplicateName)
	})

	t.Run("board must fit the largest game", func(t *testing.T) {
		// Three players need 9 tiles, more than two or four players.
		_, err := New(&mockRunner{}).Run(context.Background(), game.BoardParameters{Rows: 4, Cols: 2, FishPerTile: 1}, players)
		require.ErrorIs(t, err, ErrBoardTooSmall)

		_, err = New(&mockRunner{}).Run(context.Background(), game.BoardParameters{Rows: 3, Cols: 3, FishPerTile: 1}, players)
		require.NoError(t, err)
	})

	t.Run("invalid board", func(t *testing.T) {
		_, err := New(&mockRunner{}).Run(context.Background(), game.BoardParameters{Rows: 3, Cols: 3, FishPerTile: 9}, players)
		require.ErrorIs(t, err, game.ErrInvalidFishCount)
	})

	t.Run("game errors abort the tournament", func(t *testing.T) {
		_, err := New(failingRunner{}).Run(context.Background(), params, players)
		require.ErrorIs(t, err, referee.ErrBoardTooSmall)
	})
}

func TestRunRefereedTournament(t *testing.T) {
	names := []string{"ann", "ben", "cat", "dov", "eli"}
	players := make([]referee.Player, len(names))
	for i, name := range names {
		players[i] = player.NewAI(name, searcher.WithDepth(1))
	}

	result, err := New(referee.New()).Run(context.Background(), game.BoardParameters{Rows: 4, Cols: 4, MinOneFishTiles: 3}, players)
	require.NoError(t, err)
	require.Equal(t, 1, result.Rounds, "Honest players are never eliminated")
	require.Equal(t, names, result.Winners)
	require.Empty(t, result.CheatingOrFailing)
}
