package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fish"

type GameMetric struct {
	ID        string
	Players   int
	Winner    string // top scorer, empty when nobody finished
	TopScore  int
	Kicked    int
	Turns     int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

type Collector interface {
	AddTurn(phase string, elapsed time.Duration)
	AddKick(reason string)
	AddGame(metric GameMetric)
	AddRound(games int)
	Games() []GameMetric
}

type collector struct {
	turns     *prometheus.CounterVec
	turnTimes *prometheus.HistogramVec
	kicks     *prometheus.CounterVec
	games     prometheus.Counter
	rounds    prometheus.Counter
	parties   prometheus.Histogram

	mu      sync.Mutex
	records []GameMetric
}

// NewCollector registers the fish metrics with reg. A nil reg uses the default registerer.
func NewCollector(reg prometheus.Registerer) Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &collector{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Turns applied by referees, by phase.",
		}, []string{"phase"}),
		turnTimes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Time players took to answer a turn request.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"phase"}),
		kicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kicks_total",
			Help:      "Players disqualified, by reason.",
		}, []string{"reason"}),
		games: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_total",
			Help:      "Games run to completion.",
		}),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Tournament rounds completed.",
		}),
		parties: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "round_games",
			Help:      "Games per tournament round.",
			Buckets:   prometheus.LinearBuckets(1, 2, 8),
		}),
	}
	reg.MustRegister(c.turns, c.turnTimes, c.kicks, c.games, c.rounds, c.parties)
	return c
}

func (c *collector) AddTurn(phase string, elapsed time.Duration) {
	c.turns.WithLabelValues(phase).Inc()
	c.turnTimes.WithLabelValues(phase).Observe(elapsed.Seconds())
}

func (c *collector) AddKick(reason string) {
	c.kicks.WithLabelValues(reason).Inc()
}

func (c *collector) AddGame(metric GameMetric) {
	c.games.Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, metric)
}

func (c *collector) AddRound(games int) {
	c.rounds.Inc()
	c.parties.Observe(float64(games))
}

// Games returns the completed games in the order they were reported.
func (c *collector) Games() []GameMetric {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]GameMetric(nil), c.records...)
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (c *dummyCollector) AddTurn(phase string, elapsed time.Duration) {}
func (c *dummyCollector) AddKick(reason string)                       {}
func (c *dummyCollector) AddGame(metric GameMetric)                   {}
func (c *dummyCollector) AddRound(games int)                          {}
func (c *dummyCollector) Games() []GameMetric                         { return nil }
