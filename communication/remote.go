package communication

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fish/game"
	"fish/referee"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// RemotePlayer is a referee.Player whose decisions come from a client on the
// other end of a websocket. Exchanges are strictly request then reply.
type RemotePlayer struct {
	name string

	mu   sync.Mutex // one exchange at a time
	conn *websocket.Conn
}

func NewRemotePlayer(name string, conn *websocket.Conn) *RemotePlayer {
	conn.SetReadLimit(readLimit)
	return &RemotePlayer{name: name, conn: conn}
}

func (p *RemotePlayer) Name() string {
	return p.name
}

// exchange writes req and reads the reply. Cancelling ctx expires the
// connection deadlines, which breaks the connection for good; the player is
// disqualified by then anyway.
func (p *RemotePlayer) exchange(ctx context.Context, req Message) (Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(writeWait)
	}
	stop := context.AfterFunc(ctx, func() {
		p.conn.SetReadDeadline(time.Now())
		p.conn.SetWriteDeadline(time.Now())
	})
	defer stop()

	p.conn.SetWriteDeadline(deadline)
	if err := p.conn.WriteJSON(req); err != nil {
		return Message{}, fmt.Errorf("failed to send %s: %w", req.Kind, err)
	}

	if ok {
		p.conn.SetReadDeadline(deadline)
	} else {
		p.conn.SetReadDeadline(time.Time{})
	}
	var reply Message
	if err := p.conn.ReadJSON(&reply); err != nil {
		return Message{}, fmt.Errorf("failed to read %s reply: %w", req.Kind, err)
	}
	if reply.Kind != req.Kind {
		return Message{}, fmt.Errorf("%w: expected %s, got %q", ErrUnexpectedReply, req.Kind, reply.Kind)
	}
	if reply.Error != "" {
		return Message{}, fmt.Errorf("%w: %s", ErrPlayerError, reply.Error)
	}
	return reply, nil
}

func (p *RemotePlayer) GameStarting(ctx context.Context, g game.Game) error {
	_, err := p.exchange(ctx, Message{Kind: Start, Game: &g})
	return err
}

func (p *RemotePlayer) RequestPlacement(ctx context.Context, g game.Game) (game.Position, error) {
	reply, err := p.exchange(ctx, Message{Kind: Place, Game: &g})
	if err != nil {
		return game.Position{}, err
	}
	if reply.Position == nil {
		return game.Position{}, fmt.Errorf("%w: position", ErrMissingField)
	}
	return *reply.Position, nil
}

func (p *RemotePlayer) RequestMovement(ctx context.Context, g game.MovementGame) (game.Movement, error) {
	reply, err := p.exchange(ctx, Message{Kind: Move, Game: &g.Game})
	if err != nil {
		return game.Movement{}, err
	}
	if reply.Movement == nil {
		return game.Movement{}, fmt.Errorf("%w: movement", ErrMissingField)
	}
	return *reply.Movement, nil
}

func (p *RemotePlayer) GameEnded(ctx context.Context, d referee.Debrief) error {
	_, err := p.exchange(ctx, Message{Kind: End, Debrief: &d})
	return err
}

// Disqualify tells the client why it was removed and hangs up.
func (p *RemotePlayer) Disqualify(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := p.conn.WriteJSON(Message{Kind: Disqualified, Reason: reason}); err != nil {
		log.Debug().Err(err).Str("player", p.name).Msg("failed to send disqualification")
	}
	p.conn.Close()
}

func (p *RemotePlayer) AcceptResult(ctx context.Context, won bool) (bool, error) {
	reply, err := p.exchange(ctx, Message{Kind: Result, Won: won})
	if err != nil {
		return false, err
	}
	return reply.Accept, nil
}

func (p *RemotePlayer) Close() error {
	return p.conn.Close()
}
