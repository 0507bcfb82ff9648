package store

import (
	"slices"
	"time"

	"github.com/duong2179/slack-hodor/internal/civiltime"
	"github.com/duong2179/slack-hodor/internal/models"
	"github.com/google/uuid"
)

// Policy bounds the lead time and the length of a reservation.
type Policy struct {
	MinLead     time.Duration
	MaxLead     time.Duration
	MinDuration time.Duration
	MaxDuration time.Duration
}

// DefaultPolicy allows slots of 5 minutes to 12 hours, starting between
// 5 minutes and 7 days from now.
func DefaultPolicy() Policy {
	return Policy{
		MinLead:     5 * time.Minute,
		MaxLead:     7 * 24 * time.Hour,
		MinDuration: 5 * time.Minute,
		MaxDuration: 12 * time.Hour,
	}
}

type room struct {
	name         string
	reservations []*models.Reservation
}

func (r *room) sort() {
	slices.SortStableFunc(r.reservations, func(a, b *models.Reservation) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})
}

// RoomKeeper holds the active reservations of every room in memory.
//
// It is not safe for concurrent use. Callers serialize all access, which
// keeps the no-overlap and ordering invariants trivially true.
type RoomKeeper struct {
	policy Policy
	rooms  map[string]*room
	order  []string
	newID  func() string
}

// NewRoomKeeper returns an empty store enforcing the given policy.
func NewRoomKeeper(policy Policy) *RoomKeeper {
	return &RoomKeeper{
		policy: policy,
		rooms:  make(map[string]*room),
		newID:  func() string { return uuid.New().String() },
	}
}

// Policy returns the limits enforced by Reserve.
func (k *RoomKeeper) Policy() Policy {
	return k.policy
}

// Rooms lists room names in the order they were added.
func (k *RoomKeeper) Rooms() []string {
	return slices.Clone(k.order)
}

// HasRoom reports whether the room exists.
func (k *RoomKeeper) HasRoom(name string) bool {
	_, ok := k.rooms[name]
	return ok
}

// AddRoom creates an empty room.
func (k *RoomKeeper) AddRoom(name string) error {
	if k.HasRoom(name) {
		return ErrRoomExists
	}
	k.rooms[name] = &room{name: name}
	k.order = append(k.order, name)
	return nil
}

// RemoveRoom deletes a room and returns the reservations it still held.
func (k *RoomKeeper) RemoveRoom(name string) ([]*models.Reservation, error) {
	r, ok := k.rooms[name]
	if !ok {
		return nil, ErrRoomNotFound
	}
	delete(k.rooms, name)
	k.order = slices.DeleteFunc(k.order, func(n string) bool { return n == name })
	return r.reservations, nil
}

// Reservations returns every active reservation, grouped by room in room
// order and sorted by start within each room.
func (k *RoomKeeper) Reservations() []*models.Reservation {
	var all []*models.Reservation
	for _, name := range k.order {
		all = append(all, k.rooms[name].reservations...)
	}
	return all
}

// RoomReservations returns the active reservations of a single room.
func (k *RoomKeeper) RoomReservations(name string) ([]*models.Reservation, error) {
	r, ok := k.rooms[name]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return slices.Clone(r.reservations), nil
}

// Reserve books [start, end) in the room for user. The stored interval is
// closed, ending one second before end, so back-to-back bookings that share
// a boundary minute do not collide.
func (k *RoomKeeper) Reserve(roomName string, start, end civiltime.Instant, user string, now int64) (*models.Reservation, error) {
	r, ok := k.rooms[roomName]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if !start.Valid || !end.Valid || start.Unix >= end.Unix {
		return nil, ErrInvalidRange
	}

	lead := start.Unix - now
	length := end.Unix - start.Unix
	switch {
	case lead < seconds(k.policy.MinLead):
		return nil, ErrTooLate
	case lead > seconds(k.policy.MaxLead):
		return nil, ErrTooEarly
	case length < seconds(k.policy.MinDuration):
		return nil, ErrTooShort
	case length > seconds(k.policy.MaxDuration):
		return nil, ErrTooLong
	}

	desired := models.Slot{Start: start.Unix, End: end.Unix - 1}
	for _, existing := range r.reservations {
		if models.Distance(desired, existing.Slot()) == 0 {
			return nil, &ConflictError{Existing: existing}
		}
	}

	reservation := &models.Reservation{
		ID:         k.newID(),
		Room:       roomName,
		Start:      desired.Start,
		End:        desired.End,
		ReservedBy: user,
		ReservedAt: now,
	}
	r.reservations = append(r.reservations, reservation)
	r.sort()
	return reservation, nil
}

// Cancel removes the first reservation in the room starting exactly at
// start. privileged is consulted only when user does not own the
// reservation; it may be nil when the caller has no elevated rights.
func (k *RoomKeeper) Cancel(roomName string, start civiltime.Instant, user string, now int64, privileged func() bool) (*models.Reservation, error) {
	r, ok := k.rooms[roomName]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if !start.Valid {
		return nil, ErrInvalidRange
	}

	idx := slices.IndexFunc(r.reservations, func(res *models.Reservation) bool {
		return res.Start == start.Unix
	})
	if idx < 0 {
		return nil, ErrReservationNotFound
	}

	reservation := r.reservations[idx]
	if reservation.ReservedBy != user && (privileged == nil || !privileged()) {
		return nil, &ForbiddenError{Reservation: reservation}
	}

	reservation.Cancel(user, now)
	r.reservations = slices.Delete(r.reservations, idx, idx+1)
	r.sort()
	return reservation, nil
}

// Cleanup drops every reservation that ended before now and returns them.
func (k *RoomKeeper) Cleanup(now int64) []*models.Reservation {
	var expired []*models.Reservation
	for _, name := range k.order {
		r := k.rooms[name]
		r.reservations = slices.DeleteFunc(r.reservations, func(res *models.Reservation) bool {
			if res.End < now {
				expired = append(expired, res)
				return true
			}
			return false
		})
	}
	return expired
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}
