package appointment

import "time"

// Slot is a half-open time interval [Start, Start+Duration) on a provider's
// calendar. Two slots that merely touch at an endpoint do not overlap, so an
// appointment ending at 10:00 never blocks one starting at 10:00.
type Slot struct {
	Start        time.Time
	DurationMins int
}

func NewSlot(start time.Time, durationMins int) (Slot, error) {
	if durationMins <= 0 {
		return Slot{}, ErrInvalidDuration
	}
	return Slot{Start: start, DurationMins: durationMins}, nil
}

func (s Slot) End() time.Time {
	return s.Start.Add(time.Duration(s.DurationMins) * time.Minute)
}

// Overlaps reports whether the two half-open intervals intersect. An empty
// interval intersects nothing.
func (s Slot) Overlaps(other Slot) bool {
	if s.DurationMins <= 0 || other.DurationMins <= 0 {
		return false
	}
	return s.Start.Before(other.End()) && s.End().After(other.Start)
}

// Day returns the slot's calendar date at midnight in the slot's location.
func (s Slot) Day() time.Time {
	y, m, d := s.Start.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.Start.Location())
}
