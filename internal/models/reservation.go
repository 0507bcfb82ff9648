package models

// Reservation represents a booked time slot in a meeting room.
// Start and End are unix seconds and both are inclusive.
type Reservation struct {
	ID         string `json:"id"`
	Room       string `json:"room"`
	Start      int64  `json:"start"`
	End        int64  `json:"end"`
	ReservedBy string `json:"reserved_by"`
	ReservedAt int64  `json:"reserved_at"`
	CanceledBy string `json:"canceled_by,omitempty"`
	CanceledAt int64  `json:"canceled_at,omitempty"`
}

// Slot returns the closed interval covered by the reservation.
func (r *Reservation) Slot() Slot {
	return Slot{Start: r.Start, End: r.End}
}

// Cancel records who canceled the reservation and when.
func (r *Reservation) Cancel(by string, at int64) {
	r.CanceledBy = by
	r.CanceledAt = at
}

// Canceled reports whether Cancel has been called.
func (r *Reservation) Canceled() bool {
	return r.CanceledBy != ""
}
