package chat

import (
	"context"
	"errors"
)

var (
	// ErrGoodbye signals the server asked the client to reconnect.
	ErrGoodbye = errors.New("server said goodbye")
	// ErrInvalidAuth signals the token was rejected.
	ErrInvalidAuth = errors.New("invalid auth")
	// ErrStreamClosed signals the event channel closed unexpectedly.
	ErrStreamClosed = errors.New("event stream closed")
)

// Event is an inbound chat event reduced to the fields the bot inspects.
type Event struct {
	Type    string
	Channel string
	Text    string
	User    string
	SubType string
}

// EventSource delivers inbound events one at a time. Stream blocks until
// the connection ends, returning the reason.
type EventSource interface {
	Stream(ctx context.Context, handle func(Event)) error
}

// Poster sends a plain text reply to a channel.
type Poster interface {
	PostMessage(ctx context.Context, channel, text string) error
}
