package booking

import (
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
)

// Category selects bookings by their position relative to now or by status.
type Category string

const (
	CategoryAll      Category = "ALL"
	CategoryCurrent  Category = "CURRENT"
	CategoryPast     Category = "PAST"
	CategoryFuture   Category = "FUTURE"
	CategoryPending  Category = "PENDING"
	CategoryRejected Category = "REJECTED"
)

type rule struct {
	Match func(b *Booking, now time.Time) bool
	// Where returns the SQL predicate for the rule, or nil for no predicate.
	// Column names are qualified with the bookings alias "b".
	Where func(now time.Time) squirrel.Sqlizer
}

var rules = map[Category]rule{
	CategoryAll: {
		Match: func(*Booking, time.Time) bool { return true },
		Where: func(time.Time) squirrel.Sqlizer { return nil },
	},
	CategoryCurrent: {
		Match: func(b *Booking, now time.Time) bool {
			return !b.StartTime.After(now) && !now.After(b.EndTime)
		},
		Where: func(now time.Time) squirrel.Sqlizer {
			return squirrel.And{
				squirrel.LtOrEq{"b.start_time": now},
				squirrel.GtOrEq{"b.end_time": now},
			}
		},
	},
	CategoryPast: {
		Match: func(b *Booking, now time.Time) bool { return b.EndTime.Before(now) },
		Where: func(now time.Time) squirrel.Sqlizer { return squirrel.Lt{"b.end_time": now} },
	},
	CategoryFuture: {
		Match: func(b *Booking, now time.Time) bool { return b.StartTime.After(now) },
		Where: func(now time.Time) squirrel.Sqlizer { return squirrel.Gt{"b.start_time": now} },
	},
	CategoryPending: {
		Match: func(b *Booking, _ time.Time) bool { return b.Status == StatusPending },
		Where: func(time.Time) squirrel.Sqlizer { return squirrel.Eq{"b.status": StatusPending} },
	},
	CategoryRejected: {
		Match: func(b *Booking, _ time.Time) bool { return b.Status == StatusRejected },
		Where: func(time.Time) squirrel.Sqlizer { return squirrel.Eq{"b.status": StatusRejected} },
	},
}

// ParseCategory maps a case-sensitive category name to a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := rules[c]; !ok {
		return "", ErrUnknownCategory
	}
	return c, nil
}

// Matches reports whether b belongs to c at instant now.
func (c Category) Matches(b *Booking, now time.Time) bool {
	r, ok := rules[c]
	return ok && r.Match(b, now)
}

// Where returns the SQL predicate selecting c at instant now, or nil for ALL.
func (c Category) Where(now time.Time) squirrel.Sqlizer {
	r, ok := rules[c]
	if !ok {
		return nil
	}
	return r.Where(now)
}

// Classify returns the bookings in c at instant now, latest start first.
func Classify(bookings []*Booking, c Category, now time.Time) []*Booking {
	out := make([]*Booking, 0, len(bookings))
	for _, b := range bookings {
		if c.Matches(b, now) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out
}
