package models

// Slot is a closed [Start, End] interval in unix seconds.
type Slot struct {
	Start int64
	End   int64
}

// Distance returns the gap in seconds between two closed intervals.
// Overlapping or touching intervals are at distance 0.
func Distance(p1, p2 Slot) int64 {
	switch {
	case p1.End < p2.Start:
		return p2.Start - p1.End
	case p2.End < p1.Start:
		return p1.Start - p2.End
	default:
		return 0
	}
}

// Overlaps reports whether the two intervals share at least one second.
func (s Slot) Overlaps(other Slot) bool {
	return Distance(s, other) == 0
}
