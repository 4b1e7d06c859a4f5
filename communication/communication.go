package communication

import (
	"errors"
	"time"

	"fish/game"
	"fish/referee"
)

// Kind names a message exchange. A request and its reply share the same kind.
type Kind string

const (
	SignUp       Kind = "sign-up"
	Start        Kind = "start"
	Place        Kind = "place"
	Move         Kind = "move"
	End          Kind = "end"
	Disqualified Kind = "disqualified"
	Result       Kind = "result"
)

// Message is the single envelope exchanged over the socket. Which fields are
// set depends on Kind.
type Message struct {
	Kind     Kind             `json:"kind"`
	Name     string           `json:"name,omitempty"`
	Game     *game.Game       `json:"game,omitempty"`
	Debrief  *referee.Debrief `json:"debrief,omitempty"`
	Reason   string           `json:"reason,omitempty"`
	Won      bool             `json:"won,omitempty"`
	Position *game.Position   `json:"position,omitempty"`
	Movement *game.Movement   `json:"movement,omitempty"`
	Accept   bool             `json:"accept,omitempty"`
	Error    string           `json:"error,omitempty"`
}

var (
	ErrUnexpectedReply = errors.New("unexpected reply")
	ErrMissingField    = errors.New("reply is missing a field")
	ErrRejected        = errors.New("sign-up rejected")
	ErrNotEnough       = errors.New("not enough players signed up")
	ErrPlayerError     = errors.New("player reported an error")
)

const (
	writeWait  = 10 * time.Second
	signUpWait = 10 * time.Second
	readLimit  = 1 << 20
)
