package command

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/duong2179/slack-hodor/internal/logger"
	"github.com/duong2179/slack-hodor/internal/models"
	"github.com/duong2179/slack-hodor/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hour int64 = 3600
	day  int64 = 24 * hour
	// 2024-01-01 10:00 in Asia/Seoul.
	tenAM int64 = 1704070800
)

// --- mocks ---

type mockGuard struct {
	members map[string]bool
	calls   int
}

func (m *mockGuard) IsPrivileged(_ context.Context, user string) bool {
	m.calls++
	return m.members[user]
}

type mockJournal struct {
	entries []store.Entry
	err     error
}

func (m *mockJournal) Record(_ context.Context, entry store.Entry) error {
	m.entries = append(m.entries, entry)
	return m.err
}

func (m *mockJournal) Close() error { return nil }

func (m *mockJournal) actions() []store.Action {
	var actions []store.Action
	for _, e := range m.entries {
		actions = append(actions, e.Action)
	}
	return actions
}

type mockCalendar struct {
	published []string
	withdrawn []string
	err       error
}

func (m *mockCalendar) Publish(_ context.Context, r *models.Reservation) error {
	m.published = append(m.published, r.Room)
	return m.err
}

func (m *mockCalendar) Withdraw(_ context.Context, r *models.Reservation) error {
	m.withdrawn = append(m.withdrawn, r.Room)
	return m.err
}

// --- helpers ---

type fixture struct {
	d       *Dispatcher
	guard   *mockGuard
	journal *mockJournal
	cal     *mockCalendar
	now     int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		guard:   &mockGuard{members: map[string]bool{"UADMIN": true}},
		journal: &mockJournal{},
		cal:     &mockCalendar{},
		now:     tenAM - day,
	}
	f.d = NewDispatcher(store.NewRoomKeeper(store.DefaultPolicy()), f.guard, seoul(t), "hodor", "admins")
	f.d.Journal = f.journal
	f.d.Calendar = f.cal
	f.d.Now = func() time.Time { return time.Unix(f.now, 0) }
	return f
}

func (f *fixture) handle(user, line string) string {
	return f.d.Handle(context.Background(), user, line)
}

func (f *fixture) addRoom(t *testing.T, room string) {
	t.Helper()
	require.Contains(t, f.handle("UADMIN", "add "+room), "Successfully added")
}

const firstBooking = "[A101, 2024-01-01 10:00 ~ 11:00] reserved by <@U1> at 2023-12-31 10:00:00"

// --- tests ---

func TestHandle_HelpAndUnknown(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, msgGreeting+HelpText("hodor"), f.handle("U1", "help"))
	assert.Equal(t, msgNotFound+HelpText("hodor"), f.handle("U1", "book A101"))
	assert.Equal(t, msgNotFound+HelpText("hodor"), f.handle("U1", ""))
	assert.Equal(t, msgNotFound+HelpText("hodor"), f.handle("U1", "reserve A101"))
}

func TestHandle_EmptyListings(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "No meeting rooms added yet.", f.handle("U1", "rooms"))
	assert.Equal(t, "No reserves made yet.", f.handle("U1", "reserves"))

	f.addRoom(t, "A101")
	assert.Equal(t, "Meeting rooms:\n```A101\n```", f.handle("U1", "rooms"))
	assert.Equal(t, "No reserves made yet.", f.handle("U1", "reserves"))
}

func TestHandle_AddRemove(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t,
		"You don't have permission to add new meeting rooms.\nPlease join admins first!",
		f.handle("U1", "add A101"))
	assert.Equal(t, "No meeting rooms added yet.", f.handle("U1", "rooms"))

	assert.Equal(t,
		"Successfully added. Congrats!!!\nMeeting rooms:\n```A101\n```",
		f.handle("UADMIN", "add A101"))
	assert.Equal(t,
		"Successfully added. Congrats!!!\nMeeting rooms:\n```A101\nB202\n```",
		f.handle("UADMIN", "add B202"))
	assert.Equal(t, "A101 already existed. Please double-check!", f.handle("UADMIN", "add A101"))

	assert.Equal(t,
		"You don't have permission to remove meeting rooms.\nPlease join admins first!",
		f.handle("U1", "remove A101"))
	assert.Equal(t, "C303 NOT existed. Please double-check!", f.handle("UADMIN", "remove C303"))
	assert.Equal(t,
		"Successfully removed. Congrats!!!\nMeeting rooms:\n```B202\n```",
		f.handle("UADMIN", "remove A101"))

	assert.Equal(t,
		[]store.Action{store.ActionAddRoom, store.ActionAddRoom, store.ActionRemoveRoom},
		f.journal.actions())
}

func TestHandle_RemoveRoomWithdrawsReservations(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "A101")
	require.Contains(t, f.handle("U1", "reserve A101 2024-01-01 10:00 11:00"), "Successfully reserved")

	require.Contains(t, f.handle("UADMIN", "remove A101"), "Successfully removed")
	assert.Equal(t, []string{"A101"}, f.cal.withdrawn)
	assert.Equal(t, "No reserves made yet.", f.handle("U1", "reserves"))
}

// Scenario A: a privileged user adds a room, then a reservation succeeds and
// is stored as a closed interval ending one second before the requested end.
func TestHandle_ScenarioA_ReserveSucceeds(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "A101")

	reply := f.handle("U1", "reserve A101 2024-01-01 10:00 11:00")
	assert.Equal(t, "Successfully reserved. Congrats!!!\n```"+firstBooking+"```", reply)

	reservations := f.d.keeper.Reservations()
	require.Len(t, reservations, 1)
	assert.Equal(t, tenAM, reservations[0].Start)
	assert.Equal(t, tenAM+hour-1, reservations[0].End)
	assert.Equal(t, "U1", reservations[0].ReservedBy)

	assert.Equal(t, "Reserves:\n```"+firstBooking+"\n```", f.handle("U2", "reserves"))
	assert.Equal(t, []string{"A101"}, f.cal.published)
	assert.Contains(t, f.journal.actions(), store.ActionReserve)
}

// Scenario B: an overlapping request is rejected and echoes the holder.
func TestHandle_ScenarioB_SlotOccupied(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "A101")
	require.Contains(t, f.handle("U1", "reserve A101 2024-01-01 10:00 11:00"), "Successfully reserved")

	reply := f.handle("U2", "reserve A101 2024-01-01 10:30 11:30")
	assert.Equal(t,
		"The time slot has been occupied. Please choose another room / time slot!\n```"+firstBooking+"```",
		reply)
	assert.Len(t, f.d.keeper.Reservations(), 1)

	assert.Contains(t, f.handle("U2", "reserve A101 2024-01-01 11:00 12:00"), "Successfully reserved")
	assert.Contains(t, f.handle("U2", "reserve A101 2024-01-01 09:00 10:00"), "Successfully reserved")
	assert.Len(t, f.d.keeper.Reservations(), 3)
}

// Scenario C: a user who neither owns the reservation nor is privileged
// cannot cancel it.
func TestHandle_ScenarioC_CancelForbidden(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "A101")
	require.Contains(t, f.handle("U1", "reserve A101 2024-01-01 10:00 11:00"), "Successfully reserved")
	f.guard.calls = 0

	reply := f.handle("U2", "cancel A101 2024-01-01 10:00")
	assert.Equal(t, "You don't have permission to cancel the reservation.```"+firstBooking+"```", reply)
	assert.Equal(t, 1, f.guard.calls)
	assert.Len(t, f.d.keeper.Reservations(), 1)
	assert.Empty(t, f.cal.withdrawn)
}

// Scenario D: once now passes the end, the next command drops the reservation.
func TestHandle_ScenarioD_ExpiredReservationDisappears(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "A101")
	require.Contains(t, f.handle("U1", "reserve A101 2024-01-01 10:00 11:00"), "Successfully reserved")

	f.now = tenAM + hour - 1
	assert.Contains(t, f.handle("U1", "reserves"), firstBooking)

	f.now = tenAM + hour
	assert.Equal(t, "No reserves made yet.", f.handle("U1", "reserves"))
	assert.Equal(t, store.ActionExpire, f.journal.entries[len(f.journal.entries)-1].Action)
}

func TestHandle_ReserveRejections(t *testing.T) {
	tests := []struct {
		name string
		now  int64
		line string
		want string
	}{
		{
			name: "unknown room",
			now:  tenAM - day,
			line: "reserve Z999 2024-01-01 10:00 11:00",
			want: "Z999 NOT existed. Please double-check!",
		},
		{
			name: "unparseable date",
			now:  tenAM - day,
			line: "reserve A101 2024-13-01 10:00 11:00",
			want: "Invalid date, start / end. Please double-check!",
		},
		{
			name: "unparseable end",
			now:  tenAM - day,
			line: "reserve A101 2024-01-01 10:00 25:00",
			want: "Invalid date, start / end. Please double-check!",
		},
		{
			name: "start after end",
			now:  tenAM - day,
			line: "reserve A101 2024-01-01 11:00 10:00",
			want: "Invalid date, start / end. Please double-check!",
		},
		{
			name: "start equals end",
			now:  tenAM - day,
			line: "reserve A101 2024-01-01 10:00 10:00",
			want: "Invalid date, start / end. Please double-check!",
		},
		{
			name: "under five minutes ahead",
			now:  tenAM - 5*60 + 1,
			line: "reserve A101 2024-01-01 10:00 11:00",
			want: "Too late for reservation. Please reserve at least 5 mins in advance!",
		},
		{
			name: "in the past",
			now:  tenAM + day,
			line: "reserve A101 2024-01-01 10:00 11:00",
			want: "Too late for reservation. Please reserve at least 5 mins in advance!",
		},
		{
			name: "over seven days ahead",
			now:  tenAM - 7*day - 1,
			line: "reserve A101 2024-01-01 10:00 11:00",
			want: "Too early for reservation. Please reserve at most 7 days in future!",
		},
		{
			name: "under five minutes long",
			now:  tenAM - day,
			line: "reserve A101 2024-01-01 10:00 10:04",
			want: "Too short time slot. Please reserve a time slot of at least 5 mins!",
		},
		{
			name: "over twelve hours long",
			now:  tenAM - day,
			line: "reserve A101 2024-01-01 10:00 22:01",
			want: "Too long time slot. Please reserve a time slot of at most 12 hours!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.addRoom(t, "A101")
			f.now = tt.now

			assert.Equal(t, tt.want, f.handle("U1", tt.line))
			assert.Empty(t, f.d.keeper.Reservations())
			assert.Empty(t, f.cal.published)
		})
	}
}

func TestHandle_ReserveBoundaries(t *testing.T) {
	tests := []struct {
		name string
		now  int64
		line string
	}{
		{name: "exactly five minutes ahead", now: tenAM - 5*60, line: "reserve A101 2024-01-01 10:00 11:00"},
		{name: "exactly seven days ahead", now: tenAM - 7*day, line: "reserve A101 2024-01-01 10:00 11:00"},
		{name: "exactly five minutes long", now: tenAM - day, line: "reserve A101 2024-01-01 10:00 10:05"},
		{name: "exactly twelve hours long", now: tenAM - day, line: "reserve A101 2024-01-01 10:00 22:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.addRoom(t, "A101")
			f.now = tt.now

			assert.Contains(t, f.handle("U1", tt.line), "Successfully reserved")
		})
	}
}

func TestHandle_CancelByOwner(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "A101")
	require.Contains(t, f.handle("U1", "reserve A101 2024-01-01 10:00 11:00"), "Successfully reserved")
	f.guard.calls = 0
	f.now = tenAM - hour

	reply := f.handle("U1", "cancel A101 2024-01-01 10:00")
	assert.Equal(t,
		"Successfully canceled. Congrats!!!\n```[A101, 2024-01-01 10:00 ~ 11:00] canceled by <@U1> at 2024-01-01 09:00:00```",
		reply)
	assert.Equal(t, 0, f.guard.calls)
	assert.Empty(t, f.d.keeper.Reservations())
	assert.Equal(t, []string{"A101"}, f.cal.withdrawn)
	assert.Equal(t, store.ActionCancel, f.journal.entries[len(f.journal.entries)-1].Action)
}

func TestHandle_CancelByPrivilegedUser(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "A101")
	require.Contains(t, f.handle("U1", "reserve A101 2024-01-01 10:00 11:00"), "Successfully reserved")

	reply := f.handle("UADMIN", "cancel A101 2024-01-01 10:00")
	assert.Contains(t, reply, "Successfully canceled. Congrats!!!")
	assert.Contains(t, reply, "canceled by <@UADMIN>")
	assert.Empty(t, f.d.keeper.Reservations())
}

func TestHandle_CancelRejections(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "unknown room", line: "cancel Z999 2024-01-01 10:00", want: "Z999 NOT existed. Please double-check!"},
		{name: "unparseable start", line: "cancel A101 2024-01-01 1000", want: "Invalid date, start. Please double-check!"},
		{name: "no reservation at start", line: "cancel A101 2024-01-01 10:30", want: "Target room & time slot NOT existed. Please double-check!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.addRoom(t, "A101")
			require.Contains(t, f.handle("U1", "reserve A101 2024-01-01 10:00 11:00"), "Successfully reserved")

			assert.Equal(t, tt.want, f.handle("U1", tt.line))
			assert.Len(t, f.d.keeper.Reservations(), 1)
		})
	}
}

func TestHandle_HookFailuresDoNotChangeReply(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	f.d.Logger = logger.NewWithWriter(&buf)
	f.journal.err = errors.New("disk full")
	f.cal.err = errors.New("quota exceeded")

	f.addRoom(t, "A101")
	reply := f.handle("U1", "reserve A101 2024-01-01 10:00 11:00")
	assert.Equal(t, "Successfully reserved. Congrats!!!\n```"+firstBooking+"```", reply)
	assert.Len(t, f.d.keeper.Reservations(), 1)

	assert.Contains(t, buf.String(), "Failed to record journal entry")
	assert.Contains(t, buf.String(), "Failed to publish reservation")
}

func TestHandle_NilGuardDeniesPrivilege(t *testing.T) {
	d := NewDispatcher(store.NewRoomKeeper(store.DefaultPolicy()), nil, seoul(t), "hodor", "admins")
	assert.Contains(t, d.Handle(context.Background(), "U1", "add A101"), "You don't have permission")
}

func TestHandle_ListingsOrderedByRoomThenStart(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "B202")
	f.addRoom(t, "A101")
	require.Contains(t, f.handle("U1", "reserve A101 2024-01-01 14:00 15:00"), "Successfully reserved")
	require.Contains(t, f.handle("U2", "reserve A101 2024-01-01 10:00 11:00"), "Successfully reserved")
	require.Contains(t, f.handle("U3", "reserve B202 2024-01-01 12:00 13:00"), "Successfully reserved")

	want := "Reserves:\n```" +
		"[B202, 2024-01-01 12:00 ~ 13:00] reserved by <@U3> at 2023-12-31 10:00:00\n" +
		"[A101, 2024-01-01 10:00 ~ 11:00] reserved by <@U2> at 2023-12-31 10:00:00\n" +
		"[A101, 2024-01-01 14:00 ~ 15:00] reserved by <@U1> at 2023-12-31 10:00:00\n" +
		"```"
	assert.Equal(t, want, f.handle("U1", "reserves"))
}
