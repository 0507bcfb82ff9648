package service

import (
	"context"

	"github.com/duong2179/slack-hodor/internal/models"
	"google.golang.org/api/calendar/v3"
)

// MembershipDirectory abstracts channel lookups on the chat workspace for testability.
type MembershipDirectory interface {
	ChannelID(ctx context.Context, name string) (string, error)
	ChannelMembers(ctx context.Context, channelID string) ([]string, error)
}

// CalendarMirror publishes reservations to an external calendar.
type CalendarMirror interface {
	Publish(ctx context.Context, r *models.Reservation) error
	Withdraw(ctx context.Context, r *models.Reservation) error
}

// CalendarEvents abstracts the Google Calendar events API for testability.
type CalendarEvents interface {
	Insert(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error)
	Delete(ctx context.Context, calendarID, eventID string) error
}
