package chat

import (
	"context"
	"fmt"
	"io"

	"github.com/duong2179/slack-hodor/internal/logger"
	"github.com/slack-go/slack"
)

const pageLimit = 200

// SlackTransport talks to a Slack workspace over RTM for inbound events and
// the Web API for replies and channel lookups.
type SlackTransport struct {
	client *slack.Client
	logger *logger.Logger
}

// NewSlackTransport creates a transport authenticated with a bot token.
func NewSlackTransport(token string, log *logger.Logger) *SlackTransport {
	if log == nil {
		log = logger.NewWithWriter(io.Discard)
	}
	return &SlackTransport{
		client: slack.New(token),
		logger: log,
	}
}

// Stream opens an RTM connection and calls handle for every message event,
// sequentially, until the server says goodbye, auth fails or ctx ends.
func (t *SlackTransport) Stream(ctx context.Context, handle func(Event)) error {
	rtm := t.client.NewRTM()
	go rtm.ManageConnection()
	defer func() {
		if err := rtm.Disconnect(); err != nil {
			t.logger.Debug("RTM disconnect", logger.Error(err))
		}
	}()

	t.logger.Info("Connecting to Slack", logger.Action("connect"))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-rtm.IncomingEvents:
			if !ok {
				return ErrStreamClosed
			}
			switch ev := msg.Data.(type) {
			case *slack.ConnectedEvent:
				t.logger.Info("Connected to Slack", logger.Action("connect"), logger.Status("connected"))
			case *slack.MessageEvent:
				handle(FromMessageEvent(ev))
			case *slack.InvalidAuthEvent:
				return ErrInvalidAuth
			case *slack.RTMError:
				return fmt.Errorf("rtm error: %w", ev)
			case *slack.DisconnectedEvent:
				if ev.Intentional {
					return ErrGoodbye
				}
				t.logger.Warn("Slack connection dropped", logger.Error(ev.Cause))
			default:
				if msg.Type == "goodbye" {
					return ErrGoodbye
				}
				t.logger.Debug("Ignoring event", logger.EventType(msg.Type))
			}
		}
	}
}

// FromMessageEvent converts an RTM message into an Event.
func FromMessageEvent(ev *slack.MessageEvent) Event {
	return Event{
		Type:    ev.Type,
		Channel: ev.Channel,
		Text:    ev.Text,
		User:    ev.User,
		SubType: ev.SubType,
	}
}

// PostMessage replies in channel as the bot user.
func (t *SlackTransport) PostMessage(ctx context.Context, channel, text string) error {
	_, _, err := t.client.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionAsUser(true))
	if err != nil {
		return fmt.Errorf("failed to post message to %s: %w", channel, err)
	}
	return nil
}

// ChannelID resolves a public or private channel name, skipping archived ones.
func (t *SlackTransport) ChannelID(ctx context.Context, name string) (string, error) {
	params := &slack.GetConversationsParameters{
		ExcludeArchived: true,
		Types:           []string{"public_channel", "private_channel"},
		Limit:           pageLimit,
	}
	for {
		channels, cursor, err := t.client.GetConversationsContext(ctx, params)
		if err != nil {
			return "", fmt.Errorf("failed to list conversations: %w", err)
		}
		for _, ch := range channels {
			if ch.Name == name {
				return ch.ID, nil
			}
		}
		if cursor == "" {
			return "", fmt.Errorf("channel %s not found", name)
		}
		params.Cursor = cursor
	}
}

// ChannelMembers lists every member id of a channel.
func (t *SlackTransport) ChannelMembers(ctx context.Context, channelID string) ([]string, error) {
	params := &slack.GetUsersInConversationParameters{
		ChannelID: channelID,
		Limit:     pageLimit,
	}
	var members []string
	for {
		page, cursor, err := t.client.GetUsersInConversationContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list members of %s: %w", channelID, err)
		}
		members = append(members, page...)
		if cursor == "" {
			return members, nil
		}
		params.Cursor = cursor
	}
}
