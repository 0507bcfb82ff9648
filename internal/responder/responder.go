package responder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/duong2179/slack-hodor/internal/chat"
	"github.com/duong2179/slack-hodor/internal/logger"
)

const (
	DefaultPace           = 100 * time.Millisecond
	DefaultReconnectDelay = 3 * time.Second
	DefaultRetryDelay     = 1 * time.Second
)

// ErrInvalidHome is returned by Run when the home channel cannot be used.
var ErrInvalidHome = errors.New("invalid home channel")

// CommandHandler produces the reply for a command line sent by user.
type CommandHandler interface {
	Handle(ctx context.Context, user, line string) string
}

// HomeValidator checks the bot can read the home channel before serving.
type HomeValidator interface {
	Validate(ctx context.Context, botID string) error
}

// Responder reads chat events, runs the commands addressed to the bot and
// posts the replies back to the originating channel.
type Responder struct {
	Logger  *logger.Logger
	Source  chat.EventSource
	Poster  chat.Poster
	Handler CommandHandler
	Home    HomeValidator
	BotID   string

	// Pace is the pause after each handled command.
	Pace           time.Duration
	ReconnectDelay time.Duration
	RetryDelay     time.Duration

	sleep func(ctx context.Context, d time.Duration) bool
}

// Run validates the home channel, then consumes the event stream until it
// ends. Events are handled strictly one after another.
func (r *Responder) Run(ctx context.Context) error {
	if r.Home != nil {
		if err := r.Home.Validate(ctx, r.BotID); err != nil {
			r.Logger.Error("Invalid home channel", logger.Action("startup"), logger.Error(err))
			return fmt.Errorf("%w: %v", ErrInvalidHome, err)
		}
	}

	r.Logger.Info("Listening for commands", logger.Action("startup"), logger.Status("listening"))
	return r.Source.Stream(ctx, func(ev chat.Event) {
		r.HandleEvent(ctx, ev)
	})
}

// HandleEvent dispatches ev if it is a user message that starts with a
// mention of the bot. It reports whether a command was handled.
func (r *Responder) HandleEvent(ctx context.Context, ev chat.Event) bool {
	if !r.accepts(ev) {
		return false
	}
	line, ok := ExtractCommand(ev.Text, r.BotID)
	if !ok {
		return false
	}

	reply := r.Handler.Handle(ctx, ev.User, line)
	if err := r.Poster.PostMessage(ctx, ev.Channel, reply); err != nil {
		r.Logger.Error("Failed to post reply", logger.Channel(ev.Channel), logger.User(ev.User), logger.Error(err))
	}

	r.pause(ctx, r.Pace)
	return true
}

func (r *Responder) accepts(ev chat.Event) bool {
	switch {
	case ev.Type != "message":
		return false
	case ev.Text == "", ev.User == "":
		return false
	case ev.User == r.BotID:
		return false
	case ev.SubType == "bot_message":
		return false
	}
	return true
}

// ExtractCommand returns the trimmed text following a leading mention of
// botID. Messages that do not start with the mention are not commands.
func ExtractCommand(text, botID string) (string, bool) {
	tag := fmt.Sprintf("<@%s>", botID)
	if botID == "" || !strings.HasPrefix(text, tag) {
		return "", false
	}
	return strings.TrimSpace(text[len(tag):]), true
}

// Supervise keeps the responder running until ctx is cancelled. A goodbye
// or an unusable home channel waits ReconnectDelay before the next attempt;
// any other failure, panics included, waits RetryDelay.
func (r *Responder) Supervise(ctx context.Context) error {
	for {
		err := r.runRecovered(ctx)
		if ctx.Err() != nil {
			r.Logger.Info("Responder stopped", logger.Action("shutdown"))
			return ctx.Err()
		}

		delay := r.retryDelay()
		if err == nil || errors.Is(err, chat.ErrGoodbye) || errors.Is(err, ErrInvalidHome) {
			delay = r.reconnectDelay()
		}
		r.Logger.Warn("Responder interrupted, restarting",
			logger.Action("supervise"),
			logger.Reason(errString(err)),
			logger.Delay(delay))

		if !r.pause(ctx, delay) {
			r.Logger.Info("Responder stopped", logger.Action("shutdown"))
			return ctx.Err()
		}
	}
}

func (r *Responder) runRecovered(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("recovered panic: %v", rec)
		}
	}()
	return r.Run(ctx)
}

func (r *Responder) reconnectDelay() time.Duration {
	if r.ReconnectDelay > 0 {
		return r.ReconnectDelay
	}
	return DefaultReconnectDelay
}

func (r *Responder) retryDelay() time.Duration {
	if r.RetryDelay > 0 {
		return r.RetryDelay
	}
	return DefaultRetryDelay
}

func (r *Responder) pause(ctx context.Context, d time.Duration) bool {
	if r.sleep != nil {
		return r.sleep(ctx, d)
	}
	return sleepContext(ctx, d)
}

// sleepContext waits for d and reports false if ctx ended first.
func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func errString(err error) string {
	if err == nil {
		return "stream ended"
	}
	return err.Error()
}
