package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fish/communication"
	"fish/config"
	"fish/metrics"
	"fish/player"
	"fish/referee"
	"fish/searcher"
	"fish/tournament"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	mode := flag.String("mode", "local", "local, serve or join")
	players := flag.Int("players", 4, "Number of AI players in a local tournament")
	addr := flag.String("addr", "", "Address to serve the lobby on (overrides FISH_ADDR)")
	url := flag.String("url", "ws://localhost:8080/play", "Lobby to join")
	name := flag.String("name", "", "Player's name when joining")
	records := flag.String("records", "", "Directory for game records (overrides FISH_RECORDS_DIR)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *records != "" {
		cfg.RecordsDir = *records
	}

	zerolog.SetGlobalLevel(cfg.Level())
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "local":
		err = runLocal(ctx, cfg, *players)
	case "serve":
		err = runServer(ctx, cfg)
	case "join":
		err = runClient(ctx, cfg, *url, *name)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatal().Err(err).Str("mode", *mode).Msg("fish exited")
	}
}

// runLocal plays a tournament between in-process AI players.
func runLocal(ctx context.Context, cfg config.Config, n int) error {
	players := make([]referee.Player, n)
	for i := range players {
		players[i] = player.NewAI(fmt.Sprintf("ai-%d", i+1), searcher.WithDepth(cfg.Depth))
	}

	collector := metrics.NewCollector(nil)
	return playTournament(ctx, cfg, collector, players)
}

// runServer collects remote players for one sign-up window, then plays a
// tournament between them. Metrics are exposed while the server is up.
func runServer(ctx context.Context, cfg config.Config) error {
	collector := metrics.NewCollector(nil)
	lobby := communication.NewLobby()

	mux := http.NewServeMux()
	mux.Handle("/play", lobby)
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: cfg.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Dur("window", cfg.SignUpWindow).Msg("lobby open")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("failed to shut down server")
		}
	}()

	signUp, cancel := context.WithTimeout(ctx, cfg.SignUpWindow)
	defer cancel()
	go func() {
		if err := <-serveErr; err != nil {
			log.Error().Err(err).Msg("server failed")
			cancel()
		}
	}()

	players, err := lobby.Wait(signUp, cfg.MinPlayers, cfg.MaxPlayers)
	if err != nil {
		return err
	}
	return playTournament(ctx, cfg, collector, players)
}

// runClient signs an AI player up with a remote lobby and plays until the
// tournament is over.
func runClient(ctx context.Context, cfg config.Config, url, name string) error {
	if name == "" {
		return errors.New("a name is required to join")
	}
	client, err := communication.Dial(ctx, url, player.NewAI(name, searcher.WithDepth(cfg.Depth)))
	if err != nil {
		return err
	}
	log.Info().Str("player", name).Str("url", url).Msg("signed up")

	won, err := client.Run(ctx)
	if err != nil {
		return err
	}
	log.Info().Str("player", name).Bool("won", won).Msg("tournament over")
	return nil
}

func playTournament(ctx context.Context, cfg config.Config, collector metrics.Collector, players []referee.Player) error {
	advance := tournament.AdvanceSurvivors
	if cfg.Advancement == "top-scorers" {
		advance = tournament.AdvanceTopScorers
	}

	ref := referee.New(referee.WithTimeout(cfg.Timeout), referee.WithMetrics(collector))
	manager := tournament.New(ref,
		tournament.WithPartySize(cfg.PartySize),
		tournament.WithAcceptTimeout(cfg.AcceptTimeout),
		tournament.WithAdvancement(advance),
		tournament.WithMetrics(collector),
	)

	result, err := manager.Run(ctx, cfg.Board(), players)
	if err != nil {
		return err
	}

	if cfg.RecordsDir != "" {
		writer, err := metrics.NewWriter(cfg.RecordsDir)
		if err != nil {
			return err
		}
		if err := writer.WriteGameRecords(collector.Games()); err != nil {
			return err
		}
		log.Info().Str("dir", writer.Dir()).Msg("game records written")
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
