package booking

import "time"

// Overlaps reports whether the closed intervals [s1, e1] and [s2, e2] share at
// least one instant. Touching endpoints overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return !s1.After(e2) && !s2.After(e1)
}

// CheckConflict returns ErrTimeConflict if [start, end] overlaps any of the
// existing bookings. Status is ignored: a pending or rejected booking still
// blocks its window.
func CheckConflict(existing []*Booking, start, end time.Time) error {
	for _, b := range existing {
		if Overlaps(b.StartTime, b.EndTime, start, end) {
			return ErrTimeConflict
		}
	}
	return nil
}
