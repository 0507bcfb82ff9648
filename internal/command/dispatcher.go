package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/duong2179/slack-hodor/internal/civiltime"
	"github.com/duong2179/slack-hodor/internal/logger"
	"github.com/duong2179/slack-hodor/internal/models"
	"github.com/duong2179/slack-hodor/internal/service"
	"github.com/duong2179/slack-hodor/internal/store"
)

// PermissionGuard decides whether a user may manage rooms and cancel other
// users' reservations.
type PermissionGuard interface {
	IsPrivileged(ctx context.Context, user string) bool
}

type request struct {
	user string
	args []string
	now  time.Time
}

type handlerFunc func(ctx context.Context, req request) string

// Dispatcher turns command lines into replies, applying every change to the
// RoomKeeper. Journal and Calendar are optional sinks notified after a
// successful change; their failures are logged and never alter the reply.
type Dispatcher struct {
	Journal  store.Journal
	Calendar service.CalendarMirror
	Logger   *logger.Logger
	Now      func() time.Time

	keeper   *store.RoomKeeper
	guard    PermissionGuard
	zone     civiltime.Zone
	homeName string
	help     string
	handlers map[Kind]handlerFunc
}

// NewDispatcher wires the handler table. guard may be nil, in which case
// nobody is privileged.
func NewDispatcher(keeper *store.RoomKeeper, guard PermissionGuard, zone civiltime.Zone, botName, homeName string) *Dispatcher {
	d := &Dispatcher{
		Logger:   logger.NewWithWriter(io.Discard),
		Now:      time.Now,
		keeper:   keeper,
		guard:    guard,
		zone:     zone,
		homeName: homeName,
		help:     HelpText(botName),
	}
	d.handlers = map[Kind]handlerFunc{
		KindNone:     d.handleNone,
		KindHelp:     d.handleHelp,
		KindRooms:    d.handleRooms,
		KindReserves: d.handleReserves,
		KindAdd:      d.handleAdd,
		KindRemove:   d.handleRemove,
		KindReserve:  d.handleReserve,
		KindCancel:   d.handleCancel,
	}
	return d
}

// Handle expires finished reservations, then parses and executes line on
// behalf of user and returns the reply text.
func (d *Dispatcher) Handle(ctx context.Context, user, line string) string {
	now := d.Now()
	d.expire(ctx, now)

	cmd := Parse(line)
	handler, ok := d.handlers[cmd.Kind]
	if !ok {
		handler = d.handleNone
	}

	d.Logger.Debug("Dispatching command", logger.Command(cmd.Kind.String()), logger.User(user))
	return handler(ctx, request{user: user, args: cmd.Args, now: now})
}

func (d *Dispatcher) expire(ctx context.Context, now time.Time) {
	expired := d.keeper.Cleanup(now.Unix())
	if len(expired) == 0 {
		return
	}
	d.Logger.Info("Expired reservations removed", logger.Action("cleanup"), logger.Count(len(expired)))
	for _, r := range expired {
		d.record(ctx, store.ReservationEntry(store.ActionExpire, r, "", now))
	}
}

func (d *Dispatcher) privileged(ctx context.Context, user string) bool {
	return d.guard != nil && d.guard.IsPrivileged(ctx, user)
}

func (d *Dispatcher) handleNone(context.Context, request) string {
	return msgNotFound + d.help
}

func (d *Dispatcher) handleHelp(context.Context, request) string {
	return msgGreeting + d.help
}

func (d *Dispatcher) handleRooms(context.Context, request) string {
	rooms := d.keeper.Rooms()
	if len(rooms) == 0 {
		return msgNoRooms
	}
	return msgRooms + formatRooms(rooms)
}

func (d *Dispatcher) handleReserves(context.Context, request) string {
	reservations := d.keeper.Reservations()
	if len(reservations) == 0 {
		return msgNoReserves
	}
	return msgReserves + formatReservations(reservations, d.zone)
}

func (d *Dispatcher) handleAdd(ctx context.Context, req request) string {
	if !d.privileged(ctx, req.user) {
		d.reject("add", req.user, "", "not privileged")
		return fmt.Sprintf(msgAddDenied, d.homeName)
	}

	room := req.args[0]
	if err := d.keeper.AddRoom(room); err != nil {
		d.reject("add", req.user, room, err.Error())
		return fmt.Sprintf(msgRoomExists, room)
	}

	d.Logger.Info("Room added", logger.Action("add"), logger.Room(room), logger.User(req.user))
	d.record(ctx, store.NewEntry(store.ActionAddRoom, room, req.user, req.now))
	return msgAdded + msgRooms + formatRooms(d.keeper.Rooms())
}

func (d *Dispatcher) handleRemove(ctx context.Context, req request) string {
	if !d.privileged(ctx, req.user) {
		d.reject("remove", req.user, "", "not privileged")
		return fmt.Sprintf(msgRemoveDenied, d.homeName)
	}

	room := req.args[0]
	dropped, err := d.keeper.RemoveRoom(room)
	if err != nil {
		d.reject("remove", req.user, room, err.Error())
		return fmt.Sprintf(msgRoomMissing, room)
	}

	d.Logger.Info("Room removed",
		logger.Action("remove"),
		logger.Room(room),
		logger.User(req.user),
		logger.Count(len(dropped)))
	d.record(ctx, store.NewEntry(store.ActionRemoveRoom, room, req.user, req.now))
	for _, r := range dropped {
		d.withdraw(ctx, r)
	}
	return msgRemoved + msgRooms + formatRooms(d.keeper.Rooms())
}

func (d *Dispatcher) handleReserve(ctx context.Context, req request) string {
	room, date := req.args[0], req.args[1]
	start := d.zone.Compose(date, req.args[2])
	end := d.zone.Compose(date, req.args[3])

	r, err := d.keeper.Reserve(room, start, end, req.user, req.now.Unix())
	if err != nil {
		d.reject("reserve", req.user, room, err.Error())
		return d.reserveError(room, err)
	}

	d.Logger.Info("Room reserved",
		logger.Action("reserve"),
		logger.Room(room),
		logger.User(req.user),
		logger.Reservation(r.ID))
	d.record(ctx, store.ReservationEntry(store.ActionReserve, r, req.user, req.now))
	d.publish(ctx, r)
	return msgReserved + tripleQuote(FormatReservation(r, d.zone))
}

func (d *Dispatcher) reserveError(room string, err error) string {
	policy := d.keeper.Policy()
	var conflict *store.ConflictError
	switch {
	case errors.As(err, &conflict):
		return msgOccupied + tripleQuote(FormatReservation(conflict.Existing, d.zone))
	case errors.Is(err, store.ErrRoomNotFound):
		return fmt.Sprintf(msgRoomMissing, room)
	case errors.Is(err, store.ErrInvalidRange):
		return msgInvalidRange
	case errors.Is(err, store.ErrTooLate):
		return fmt.Sprintf(msgTooLate, humanDuration(int64(policy.MinLead/time.Second)))
	case errors.Is(err, store.ErrTooEarly):
		return fmt.Sprintf(msgTooEarly, humanDuration(int64(policy.MaxLead/time.Second)))
	case errors.Is(err, store.ErrTooShort):
		return fmt.Sprintf(msgTooShort, humanDuration(int64(policy.MinDuration/time.Second)))
	case errors.Is(err, store.ErrTooLong):
		return fmt.Sprintf(msgTooLong, humanDuration(int64(policy.MaxDuration/time.Second)))
	}
	return msgInternalError
}

func (d *Dispatcher) handleCancel(ctx context.Context, req request) string {
	room := req.args[0]
	start := d.zone.Compose(req.args[1], req.args[2])

	r, err := d.keeper.Cancel(room, start, req.user, req.now.Unix(), func() bool {
		return d.privileged(ctx, req.user)
	})
	if err != nil {
		d.reject("cancel", req.user, room, err.Error())
		return d.cancelError(room, err)
	}

	d.Logger.Info("Reservation canceled",
		logger.Action("cancel"),
		logger.Room(room),
		logger.User(req.user),
		logger.Reservation(r.ID))
	d.record(ctx, store.ReservationEntry(store.ActionCancel, r, req.user, req.now))
	d.withdraw(ctx, r)
	return msgCanceled + tripleQuote(FormatReservation(r, d.zone))
}

func (d *Dispatcher) cancelError(room string, err error) string {
	var forbidden *store.ForbiddenError
	switch {
	case errors.As(err, &forbidden):
		return msgCancelDenied + tripleQuote(FormatReservation(forbidden.Reservation, d.zone))
	case errors.Is(err, store.ErrRoomNotFound):
		return fmt.Sprintf(msgRoomMissing, room)
	case errors.Is(err, store.ErrInvalidRange):
		return msgInvalidStart
	case errors.Is(err, store.ErrReservationNotFound):
		return msgSlotMissing
	}
	return msgInternalError
}

func (d *Dispatcher) reject(action, user, room, reason string) {
	fields := []logger.Field{logger.Action(action), logger.Status("rejected"), logger.User(user), logger.Reason(reason)}
	if room != "" {
		fields = append(fields, logger.Room(room))
	}
	d.Logger.Info("Command rejected", fields...)
}

func (d *Dispatcher) record(ctx context.Context, entry store.Entry) {
	if d.Journal == nil {
		return
	}
	if err := d.Journal.Record(ctx, entry); err != nil {
		d.Logger.Error("Failed to record journal entry",
			logger.Action(string(entry.Action)),
			logger.Room(entry.Room),
			logger.Error(err))
	}
}

func (d *Dispatcher) publish(ctx context.Context, r *models.Reservation) {
	if d.Calendar == nil {
		return
	}
	if err := d.Calendar.Publish(ctx, r); err != nil {
		d.Logger.Error("Failed to publish reservation", logger.Reservation(r.ID), logger.Error(err))
	}
}

func (d *Dispatcher) withdraw(ctx context.Context, r *models.Reservation) {
	if d.Calendar == nil {
		return
	}
	if err := d.Calendar.Withdraw(ctx, r); err != nil {
		d.Logger.Error("Failed to withdraw reservation", logger.Reservation(r.ID), logger.Error(err))
	}
}
