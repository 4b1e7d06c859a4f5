package tournament

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fish/game"
	"fish/metrics"
	"fish/referee"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const DefaultAcceptTimeout = 5 * time.Second

var (
	ErrTooFewPlayers = errors.New("tournament needs at least two players")
	ErrDuplicateName = errors.New("player names must be unique")
	ErrBoardTooSmall = errors.New("board cannot hold the largest game")
)

// GameRunner plays a single game; *referee.Referee is the usual one.
type GameRunner interface {
	RunGame(ctx context.Context, players []referee.Player, params game.BoardParameters) (referee.Debrief, error)
}

// Advancement picks the players of a finished game who go on to the next round.
type Advancement func(d referee.Debrief) []string

// AdvanceSurvivors keeps every player who was not disqualified.
func AdvanceSurvivors(d referee.Debrief) []string {
	return d.ActiveNames()
}

// AdvanceTopScorers keeps the players tied for the best score.
func AdvanceTopScorers(d referee.Debrief) []string {
	return d.TopScorers()
}

type Result struct {
	Winners           []string `json:"winners"`
	CheatingOrFailing []string `json:"cheating_or_failing"`
	Rounds            int      `json:"rounds"`
}

type Option func(m *Manager)

func WithPartySize(size int) Option {
	return func(m *Manager) {
		if size >= MinPartySize && size <= MaxPartySize {
			m.partySize = size
		}
	}
}

func WithAcceptTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		if timeout > 0 {
			m.acceptTimeout = timeout
		}
	}
}

func WithAdvancement(advance Advancement) Option {
	return func(m *Manager) {
		if advance != nil {
			m.advance = advance
		}
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(m *Manager) {
		if collector != nil {
			m.metrics = collector
		}
	}
}

type Manager struct {
	runner        GameRunner
	partySize     int
	acceptTimeout time.Duration
	advance       Advancement
	metrics       metrics.Collector
}

func New(runner GameRunner, options ...Option) *Manager {
	m := &Manager{ // Default values
		runner:        runner,
		partySize:     MaxPartySize,
		acceptTimeout: DefaultAcceptTimeout,
		advance:       AdvanceSurvivors,
		metrics:       metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// roundState is carried from one round to the next.
type roundState struct {
	pool       []referee.Player
	eliminated []referee.Player // lost a game without being kicked
	kicked     []string
	rounds     int
}

// Run plays rounds until a round eliminates nobody or fewer than two players
// remain, then asks the remaining players to accept their win.
func (m *Manager) Run(ctx context.Context, params game.BoardParameters, players []referee.Player) (Result, error) {
	if err := m.validate(params, players); err != nil {
		return Result{}, err
	}

	state := roundState{pool: append([]referee.Player(nil), players...)}
	for {
		parties := AssignParties(state.pool, m.partySize)
		log.Info().
			Int("round", state.rounds+1).
			Int("players", len(state.pool)).
			Int("games", len(parties)).
			Msg("round starting")

		debriefs, err := m.round(ctx, params, parties)
		if err != nil {
			return Result{}, err
		}
		m.metrics.AddRound(len(parties))

		next := state.next(parties, debriefs, m.advance)
		log.Info().
			Int("round", next.rounds).
			Int("advancing", len(next.pool)).
			Int("kicked", len(next.kicked)-len(state.kicked)).
			Msg("round finished")

		done := len(next.pool) == len(state.pool) || len(next.pool) < MinPartySize
		state = next
		if done {
			break
		}
	}

	result := m.finish(ctx, state)
	log.Info().Strs("winners", result.Winners).Strs("kicked", result.CheatingOrFailing).Int("rounds", result.Rounds).Msg("tournament finished")
	return result, nil
}

func (m *Manager) validate(params game.BoardParameters, players []referee.Player) error {
	if len(players) < MinPartySize {
		return ErrTooFewPlayers
	}

	names := map[string]bool{}
	for _, p := range players {
		if names[p.Name()] {
			return fmt.Errorf("%w: %s", ErrDuplicateName, p.Name())
		}
		names[p.Name()] = true
	}

	if _, err := game.BuildBoard(params, nil); err != nil {
		return fmt.Errorf("invalid board: %w", err)
	}
	biggest := min(m.partySize, len(players))
	if m.partySize == MinPartySize && len(players) > MinPartySize {
		biggest++ // an odd player joins the last pair
	}
	largest := 0
	for k := MinPartySize; k <= biggest; k++ {
		largest = max(largest, k*game.PenguinsPerPlayer(k))
	}
	if largest > params.Usable() {
		return fmt.Errorf("%w: %d penguins on %d tiles", ErrBoardTooSmall, largest, params.Usable())
	}
	return nil
}

// round plays every party concurrently; each game writes only its own slot.
func (m *Manager) round(ctx context.Context, params game.BoardParameters, parties [][]referee.Player) ([]referee.Debrief, error) {
	debriefs := make([]referee.Debrief, len(parties))
	g, ctx := errgroup.WithContext(ctx)
	for i, party := range parties {
		g.Go(func() error {
			d, err := m.runner.RunGame(ctx, party, params)
			if err != nil {
				return fmt.Errorf("failed to run game %d: %w", i, err)
			}
			debriefs[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return debriefs, nil
}

func (s roundState) next(parties [][]referee.Player, debriefs []referee.Debrief, advance Advancement) roundState {
	next := roundState{
		eliminated: append([]referee.Player(nil), s.eliminated...),
		kicked:     append([]string(nil), s.kicked...),
		rounds:     s.rounds + 1,
	}
	for i, party := range parties {
		d := debriefs[i]
		advancing := map[string]bool{}
		for _, name := range advance(d) {
			advancing[name] = true
		}
		kicked := map[string]bool{}
		for _, name := range d.KickedNames() {
			kicked[name] = true
		}

		for _, p := range party {
			switch {
			case kicked[p.Name()]:
				next.kicked = append(next.kicked, p.Name())
			case advancing[p.Name()]:
				next.pool = append(next.pool, p)
			default:
				next.eliminated = append(next.eliminated, p)
			}
		}
	}
	return next
}

// finish asks the final pool to accept their win and tells the other players
// they lost. Players that decline or do not answer in time are not winners.
func (m *Manager) finish(ctx context.Context, state roundState) Result {
	accepted := make([]bool, len(state.pool))

	var g errgroup.Group
	for i, p := range state.pool {
		g.Go(func() error {
			ok, err := referee.Call(ctx, m.acceptTimeout, func(ctx context.Context) (bool, error) {
				return p.AcceptResult(ctx, true)
			})
			if err != nil {
				log.Warn().Err(err).Str("player", p.Name()).Msg("winner did not accept")
			}
			accepted[i] = err == nil && ok
			return nil
		})
	}
	for _, p := range state.eliminated {
		g.Go(func() error {
			_, err := referee.Call(ctx, m.acceptTimeout, func(ctx context.Context) (bool, error) {
				return p.AcceptResult(ctx, false)
			})
			if err != nil {
				log.Debug().Err(err).Str("player", p.Name()).Msg("loss notification failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	result := Result{
		Winners:           []string{},
		CheatingOrFailing: state.kicked,
		Rounds:            state.rounds,
	}
	for i, p := range state.pool {
		if accepted[i] {
			result.Winners = append(result.Winners, p.Name())
		}
	}
	if result.CheatingOrFailing == nil {
		result.CheatingOrFailing = []string{}
	}
	return result
}
