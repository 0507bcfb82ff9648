package store

import (
	"context"
	"time"

	"github.com/duong2179/slack-hodor/internal/models"
	"github.com/google/uuid"
)

// Action names a change recorded in the journal.
type Action string

const (
	ActionAddRoom    Action = "add_room"
	ActionRemoveRoom Action = "remove_room"
	ActionReserve    Action = "reserve"
	ActionCancel     Action = "cancel"
	ActionExpire     Action = "expire"
)

// Entry is one row of the audit journal.
type Entry struct {
	ID            string    `json:"id"`
	Action        Action    `json:"action"`
	Room          string    `json:"room"`
	User          string    `json:"user,omitempty"`
	ReservationID string    `json:"reservation_id,omitempty"`
	Start         int64     `json:"start,omitempty"`
	End           int64     `json:"end,omitempty"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// NewEntry builds a journal entry for a room-level action.
func NewEntry(action Action, room, user string, at time.Time) Entry {
	return Entry{
		ID:         uuid.New().String(),
		Action:     action,
		Room:       room,
		User:       user,
		RecordedAt: at,
	}
}

// ReservationEntry builds a journal entry describing a reservation change.
func ReservationEntry(action Action, r *models.Reservation, user string, at time.Time) Entry {
	e := NewEntry(action, r.Room, user, at)
	e.ReservationID = r.ID
	e.Start = r.Start
	e.End = r.End
	return e
}

// Journal is an append-only audit sink. It is never read back into the
// RoomKeeper: reservations live in memory only.
type Journal interface {
	Record(ctx context.Context, entry Entry) error
	Close() error
}

// NopJournal discards every entry.
type NopJournal struct{}

func (NopJournal) Record(context.Context, Entry) error { return nil }
func (NopJournal) Close() error                        { return nil }
