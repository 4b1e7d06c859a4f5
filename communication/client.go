package communication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fish/game"
	"fish/referee"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Client connects a local player to a remote tournament.
type Client struct {
	conn   *websocket.Conn
	player referee.Player
}

// Dial signs player up with the lobby at url.
func Dial(ctx context.Context, url string, player referee.Player) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	conn.SetReadLimit(readLimit)

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(Message{Kind: SignUp, Name: player.Name()}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(signUpWait))
	var ack Message
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read sign-up reply: %w", err)
	}
	if ack.Kind != SignUp || ack.Error != "" {
		conn.Close()
		return nil, fmt.Errorf("%w: %s", ErrRejected, ack.Error)
	}
	conn.SetReadDeadline(time.Time{})

	return &Client{conn: conn, player: player}, nil
}

// Run answers the server's requests until the tournament result arrives, the
// player is disqualified, or ctx is done. It reports whether the player won.
func (c *Client) Run(ctx context.Context) (bool, error) {
	defer c.conn.Close()
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		var req Message
		if err := c.conn.ReadJSON(&req); err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			return false, fmt.Errorf("connection lost: %w", err)
		}

		if req.Kind == Disqualified {
			c.player.Disqualify(req.Reason)
			return false, nil
		}

		reply := c.handle(ctx, req)
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(reply); err != nil {
			return false, fmt.Errorf("failed to reply to %s: %w", req.Kind, err)
		}

		if req.Kind == Result {
			return req.Won && reply.Accept, nil
		}
	}
}

func (c *Client) handle(ctx context.Context, req Message) Message {
	reply := Message{Kind: req.Kind}
	var err error

	switch req.Kind {
	case Start:
		if req.Game == nil {
			err = errors.New("no game")
			break
		}
		err = c.player.GameStarting(ctx, *req.Game)
	case Place:
		if req.Game == nil {
			err = errors.New("no game")
			break
		}
		var pos game.Position
		pos, err = c.player.RequestPlacement(ctx, *req.Game)
		reply.Position = &pos
	case Move:
		mg, ok := game.MovementGame{}, false
		if req.Game != nil {
			mg, ok = req.Game.MovementGame()
		}
		if !ok {
			err = errors.New("not a movement game")
			break
		}
		var m game.Movement
		m, err = c.player.RequestMovement(ctx, mg)
		reply.Movement = &m
	case End:
		if req.Debrief == nil {
			err = errors.New("no debrief")
			break
		}
		err = c.player.GameEnded(ctx, *req.Debrief)
	case Result:
		reply.Accept, err = c.player.AcceptResult(ctx, req.Won)
	default:
		err = fmt.Errorf("unknown request %q", req.Kind)
	}

	if err != nil {
		log.Warn().Err(err).Str("player", c.player.Name()).Str("kind", string(req.Kind)).Msg("request failed")
		return Message{Kind: req.Kind, Error: err.Error()}
	}
	return reply
}
