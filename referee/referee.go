package referee

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fish/game"
	"fish/metrics"
	"fish/searcher"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
)

const DefaultTimeout = 5 * time.Second

var ErrBoardTooSmall = errors.New("board cannot hold every penguin")

type Phase int

const (
	AwaitingPlacements Phase = iota
	AwaitingMovements
	Complete
)

func (p Phase) String() string {
	switch p {
	case AwaitingPlacements:
		return "placement"
	case AwaitingMovements:
		return "movement"
	case Complete:
		return "complete"
	}
	return "unknown"
}

type Option func(r *Referee)

func WithTimeout(timeout time.Duration) Option {
	return func(r *Referee) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

func WithObservers(observers ...Observer) Option {
	return func(r *Referee) {
		r.observers = append(r.observers, observers...)
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(r *Referee) {
		if collector != nil {
			r.metrics = collector
		}
	}
}

// WithRandSource seeds the fish drawn for boards without a fixed fish count.
func WithRandSource(src rand.Source) Option {
	return func(r *Referee) {
		r.src = src
	}
}

// Referee runs games. A single Referee can run several games concurrently.
type Referee struct {
	timeout   time.Duration
	observers []Observer
	metrics   metrics.Collector

	mu  sync.Mutex // guards src
	src rand.Source
}

func New(options ...Option) *Referee {
	r := &Referee{ // Default values
		timeout: DefaultTimeout,
		metrics: metrics.NewDummyCollector(),
		src:     rand.NewSource(uint64(time.Now().UnixNano())),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *Referee) Timeout() time.Duration {
	return r.timeout
}

func (r *Referee) buildBoard(params game.BoardParameters) (game.Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return game.BuildBoard(params, r.src)
}

// match is the state of one game in progress.
type match struct {
	id      string
	log     zerolog.Logger
	players map[string]Player
	cheats  []Kick
	fails   []Kick
	turns   int
}

// RunGame plays one game with players seated in the given order and returns
// its debrief. Setup errors are returned before any player is contacted;
// misbehaving players are disqualified and never abort the game.
func (r *Referee) RunGame(ctx context.Context, players []Player, params game.BoardParameters) (Debrief, error) {
	if len(players) < game.MinPlayers {
		return Debrief{}, game.ErrTooFewPlayers
	}
	if len(players) > len(game.Colors) {
		return Debrief{}, game.ErrTooManyPlayers
	}
	board, err := r.buildBoard(params)
	if err != nil {
		return Debrief{}, fmt.Errorf("failed to build board: %w", err)
	}
	if len(players)*game.PenguinsPerPlayer(len(players)) > board.Usable() {
		return Debrief{}, ErrBoardTooSmall
	}

	seats := make([]game.Player, len(players))
	m := &match{
		id:      uuid.NewString(),
		players: make(map[string]Player, len(players)),
	}
	for i, p := range players {
		seats[i] = game.Player{Name: p.Name(), Color: game.Colors[i]}
		m.players[p.Name()] = p
	}
	g, err := game.CreateGame(seats, board)
	if err != nil {
		return Debrief{}, fmt.Errorf("failed to create game: %w", err)
	}
	m.log = log.With().Str("game", m.id).Logger()

	start := time.Now()
	m.log.Info().Int("players", len(seats)).Msg("game starting")
	for _, seat := range seats {
		p := m.players[seat.Name]
		snapshot := g.Copy()
		err := notify(ctx, r.timeout, func(ctx context.Context) error { return p.GameStarting(ctx, snapshot) })
		if err != nil {
			m.log.Warn().Err(err).Str("player", seat.Name).Msg("game start notification failed")
		}
	}
	for _, o := range r.observers {
		o.GameStarting(g.Copy())
	}

	g, err = r.placements(ctx, m, g)
	if err != nil {
		return Debrief{}, err
	}
	mg, _ := g.MovementGame()
	mg, err = r.movements(ctx, m, mg)
	if err != nil {
		return Debrief{}, err
	}

	m.log.Debug().Stringer("phase", Complete).Msg("phase changed")
	debrief := m.debrief(mg.SettleScores())
	r.report(m, debrief, start)

	for _, s := range debrief.Active {
		p := m.players[s.Name]
		err := notify(ctx, r.timeout, func(ctx context.Context) error { return p.GameEnded(ctx, debrief) })
		if err != nil {
			m.log.Warn().Err(err).Str("player", s.Name).Msg("game end notification failed")
		}
	}
	for _, o := range r.observers {
		o.GameEnded(debrief)
	}
	return debrief, nil
}

func (r *Referee) placements(ctx context.Context, m *match, g game.Game) (game.Game, error) {
	m.log.Debug().Stringer("phase", AwaitingPlacements).Msg("phase changed")
	for !g.IsMovementGame() {
		if err := ctx.Err(); err != nil {
			return game.Game{}, err
		}

		current := g.CurrentPlayer()
		p := m.players[current.Name]
		snapshot := g.Copy()
		requested := time.Now()
		pos, err := Call(ctx, r.timeout, func(ctx context.Context) (game.Position, error) {
			return p.RequestPlacement(ctx, snapshot)
		})
		if err != nil {
			if ctx.Err() != nil {
				return game.Game{}, ctx.Err()
			}
			g = r.kick(m, g, Failing, err)
			continue
		}

		next, err := g.PlacePenguin(current, pos)
		if err != nil {
			g = r.kick(m, g, Cheating, err)
			continue
		}

		r.metrics.AddTurn(AwaitingPlacements.String(), time.Since(requested))
		m.turns++
		m.log.Debug().Str("player", current.Name).Stringer("position", pos).Msg("penguin placed")
		g = next
		r.changed(g)
	}
	return g, nil
}

func (r *Referee) movements(ctx context.Context, m *match, g game.MovementGame) (game.MovementGame, error) {
	m.log.Debug().Stringer("phase", AwaitingMovements).Msg("phase changed")
	tree := searcher.BuildTree(g)
	for !tree.Terminal() {
		if err := ctx.Err(); err != nil {
			return game.MovementGame{}, err
		}

		current := tree.State.CurrentPlayer()
		p := m.players[current.Name]
		snapshot := game.MovementGame{Game: tree.State.Copy()}
		requested := time.Now()
		movement, err := Call(ctx, r.timeout, func(ctx context.Context) (game.Movement, error) {
			return p.RequestMovement(ctx, snapshot)
		})
		if err != nil {
			if ctx.Err() != nil {
				return game.MovementGame{}, ctx.Err()
			}
			tree = searcher.BuildTree(game.MovementGame{Game: r.kick(m, tree.State.Game, Failing, err)})
			continue
		}

		if _, err := tree.CheckMovementLegal(movement); err != nil {
			tree = searcher.BuildTree(game.MovementGame{Game: r.kick(m, tree.State.Game, Cheating, err)})
			continue
		}

		r.metrics.AddTurn(AwaitingMovements.String(), time.Since(requested))
		m.turns++
		m.log.Debug().Str("player", current.Name).Stringer("movement", movement).Msg("penguin moved")
		tree, _ = tree.Child(movement)
		r.changed(tree.State.Game)
	}
	return tree.State, nil
}

// kick disqualifies the current player of g and returns g without them.
func (r *Referee) kick(m *match, g game.Game, reason string, cause error) game.Game {
	name := g.CurrentPlayer().Name
	m.log.Warn().Err(cause).Str("player", name).Str("reason", reason).Msg("player disqualified")

	kick := Kick{Name: name, Reason: reason}
	if reason == Cheating {
		m.cheats = append(m.cheats, kick)
	} else {
		m.fails = append(m.fails, kick)
	}
	p := m.players[name]
	delete(m.players, name)
	p.Disqualify(reason)
	r.metrics.AddKick(reason)

	next := g.RemovePlayer()
	r.changed(next)
	return next
}

func (r *Referee) changed(g game.Game) {
	for _, o := range r.observers {
		o.GameChanged(g.Copy())
	}
}

func (m *match) debrief(g game.Game) Debrief {
	active := make([]Standing, len(g.Players))
	for i, p := range g.Players {
		active[i] = Standing{Name: p.Name, Score: g.Scores[p.Color]}
	}
	slices.SortStableFunc(active, func(a, b Standing) int {
		return b.Score - a.Score
	})

	return Debrief{
		GameID: m.id,
		Active: active,
		Kicked: append(append([]Kick{}, m.cheats...), m.fails...),
	}
}

func (r *Referee) report(m *match, d Debrief, start time.Time) {
	metric := metrics.GameMetric{
		ID:        m.id,
		Players:   len(d.Active) + len(d.Kicked),
		Kicked:    len(d.Kicked),
		Turns:     m.turns,
		StartTime: start,
		EndTime:   time.Now(),
	}
	metric.Duration = metric.EndTime.Sub(start)
	if len(d.Active) > 0 {
		metric.Winner = d.Active[0].Name
		metric.TopScore = d.Active[0].Score
	}
	r.metrics.AddGame(metric)

	m.log.Info().
		Strs("active", d.ActiveNames()).
		Strs("kicked", d.KickedNames()).
		Int("turns", m.turns).
		Dur("duration", metric.Duration).
		Msg("game ended")
}
