package store

import (
	"errors"
	"fmt"

	"github.com/duong2179/slack-hodor/internal/models"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomExists          = errors.New("room already exists")
	ErrInvalidRange        = errors.New("invalid time range")
	ErrTooLate             = errors.New("reservation starts too soon")
	ErrTooEarly            = errors.New("reservation starts too far in the future")
	ErrTooShort            = errors.New("time slot too short")
	ErrTooLong             = errors.New("time slot too long")
	ErrSlotOccupied        = errors.New("time slot occupied")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrForbidden           = errors.New("not allowed to cancel reservation")
)

// ConflictError is returned by Reserve when the requested slot overlaps an
// existing reservation. It matches ErrSlotOccupied with errors.Is.
type ConflictError struct {
	Existing *models.Reservation
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: held by %s in %s", ErrSlotOccupied, e.Existing.ReservedBy, e.Existing.Room)
}

func (e *ConflictError) Unwrap() error { return ErrSlotOccupied }

// ForbiddenError is returned by Cancel when the caller neither owns the
// reservation nor is privileged. It matches ErrForbidden with errors.Is.
type ForbiddenError struct {
	Reservation *models.Reservation
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: owned by %s", ErrForbidden, e.Reservation.ReservedBy)
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }
