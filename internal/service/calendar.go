package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/duong2179/slack-hodor/internal/civiltime"
	"github.com/duong2179/slack-hodor/internal/models"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleCalendarMirror copies reservations into a shared Google Calendar.
type GoogleCalendarMirror struct {
	events     CalendarEvents
	calendarID string
	zone       civiltime.Zone
}

type googleEvents struct {
	srv *calendar.Service
}

func (g *googleEvents) Insert(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	return g.srv.Events.Insert(calendarID, event).Context(ctx).Do()
}

func (g *googleEvents) Delete(ctx context.Context, calendarID, eventID string) error {
	return g.srv.Events.Delete(calendarID, eventID).Context(ctx).Do()
}

// NewGoogleCalendarMirror authenticates with the configured service account.
func NewGoogleCalendarMirror(ctx context.Context, config CalendarConfig, zone civiltime.Zone) (*GoogleCalendarMirror, error) {
	if config.CalendarID == "" {
		return nil, fmt.Errorf("calendar_id is not configured")
	}
	tokenJSON, err := config.LoadServiceAccountToken()
	if err != nil {
		return nil, err
	}

	srv, err := calendar.NewService(ctx, option.WithAuthCredentialsJSON(option.ServiceAccount, tokenJSON))
	if err != nil {
		return nil, err
	}

	return NewCalendarMirrorWithEvents(&googleEvents{srv: srv}, config.CalendarID, zone), nil
}

// NewCalendarMirrorWithEvents builds a mirror over an arbitrary events API.
func NewCalendarMirrorWithEvents(events CalendarEvents, calendarID string, zone civiltime.Zone) *GoogleCalendarMirror {
	return &GoogleCalendarMirror{events: events, calendarID: calendarID, zone: zone}
}

// Publish creates the calendar event for a new reservation.
func (m *GoogleCalendarMirror) Publish(ctx context.Context, r *models.Reservation) error {
	if _, err := m.events.Insert(ctx, m.calendarID, EventFor(r, m.zone)); err != nil {
		return fmt.Errorf("failed to publish reservation %s: %w", r.ID, err)
	}
	return nil
}

// Withdraw deletes the calendar event of a canceled or dropped reservation.
func (m *GoogleCalendarMirror) Withdraw(ctx context.Context, r *models.Reservation) error {
	if err := m.events.Delete(ctx, m.calendarID, EventID(r)); err != nil {
		return fmt.Errorf("failed to withdraw reservation %s: %w", r.ID, err)
	}
	return nil
}

// EventID derives a Google Calendar event id from the reservation id.
// Event ids only allow base32hex characters, which a dash-less uuid satisfies.
func EventID(r *models.Reservation) string {
	return strings.ReplaceAll(r.ID, "-", "")
}

// EventFor renders a reservation as a calendar event. The end shown is one
// second past the stored inclusive end.
func EventFor(r *models.Reservation, zone civiltime.Zone) *calendar.Event {
	return &calendar.Event{
		Id:          EventID(r),
		Summary:     fmt.Sprintf("%s reserved by %s", r.Room, r.ReservedBy),
		Location:    r.Room,
		Description: fmt.Sprintf("Reserved at %s", zone.FromEpoch(r.ReservedAt, civiltime.StampLayout)),
		Start: &calendar.EventDateTime{
			DateTime: zone.FromEpoch(r.Start, time.RFC3339),
			TimeZone: zone.Name(),
		},
		End: &calendar.EventDateTime{
			DateTime: zone.FromEpoch(r.End+1, time.RFC3339),
			TimeZone: zone.Name(),
		},
	}
}
