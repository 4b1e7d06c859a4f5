package communication

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"fish/referee"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Lobby collects sign-ups over websockets until a tournament starts.
type Lobby struct {
	mu      sync.Mutex
	players []*RemotePlayer
	names   map[string]bool
	closed  bool
	joined  chan struct{}
}

func NewLobby() *Lobby {
	return &Lobby{
		names:  map[string]bool{},
		joined: make(chan struct{}, 1),
	}
}

func (l *Lobby) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("failed to upgrade connection")
		return
	}

	conn.SetReadDeadline(time.Now().Add(signUpWait))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		log.Warn().Err(err).Msg("failed to read sign-up")
		conn.Close()
		return
	}
	conn.SetReadDeadline(time.Time{})

	if err := l.join(msg); err != nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteJSON(Message{Kind: SignUp, Error: err.Error()})
		conn.Close()
		log.Info().Err(err).Str("player", msg.Name).Msg("sign-up rejected")
		return
	}

	p := NewRemotePlayer(msg.Name, conn)
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(Message{Kind: SignUp, Name: msg.Name}); err != nil {
		l.leave(msg.Name)
		conn.Close()
		return
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		p.Close()
		return
	}
	l.players = append(l.players, p)
	l.mu.Unlock()
	select {
	case l.joined <- struct{}{}:
	default:
	}
	log.Info().Str("player", msg.Name).Msg("player signed up")
}

func (l *Lobby) join(msg Message) error {
	if msg.Kind != SignUp || msg.Name == "" {
		return fmt.Errorf("expected a %s with a name", SignUp)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return fmt.Errorf("sign-up is closed")
	}
	if l.names[msg.Name] {
		return fmt.Errorf("name %q is taken", msg.Name)
	}
	l.names[msg.Name] = true
	return nil
}

func (l *Lobby) leave(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.names, name)
}

// Wait returns once atMost players have signed up, or when ctx is done if at
// least atLeast have. Sign-up is closed afterwards.
func (l *Lobby) Wait(ctx context.Context, atLeast, atMost int) ([]referee.Player, error) {
	for {
		l.mu.Lock()
		n := len(l.players)
		if n >= atMost || ctx.Err() != nil {
			l.closed = true
			players := l.players[:min(n, atMost)]
			extra := l.players[len(players):]
			l.mu.Unlock()

			for _, p := range extra {
				p.Close()
			}
			if len(players) < atLeast {
				for _, p := range players {
					p.Close()
				}
				return nil, fmt.Errorf("%w: %d of %d", ErrNotEnough, len(players), atLeast)
			}

			result := make([]referee.Player, len(players))
			for i, p := range players {
				result[i] = p
			}
			return result, nil
		}
		l.mu.Unlock()

		select {
		case <-l.joined:
		case <-ctx.Done():
		}
	}
}
