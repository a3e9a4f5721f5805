package term

import (
	"time"

	serrors "github.com/a3tai/schedule2ical/internal/errors"
)

var weekdays = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

// DayOffsetTable maps weekday names to their distance in days from the term's
// anchor weekday. Offsets are in [0, 6].
type DayOffsetTable struct {
	anchor time.Weekday
}

// NewDayOffsetTable builds the table for a term kind
func NewDayOffsetTable(kind Kind) (DayOffsetTable, error) {
	r, ok := rules[kind]
	if !ok {
		return DayOffsetTable{}, serrors.Newf(serrors.KindInvalidTerm, "invalid term", "term kind %d", int(kind))
	}
	return DayOffsetTable{anchor: r.start.weekday}, nil
}

// Anchor returns the weekday with offset 0
func (t DayOffsetTable) Anchor() time.Weekday {
	return t.anchor
}

// Offset returns the offset for a weekday name such as "Tuesday"
func (t DayOffsetTable) Offset(day string) (int, error) {
	wd, ok := weekdays[day]
	if !ok {
		return 0, serrors.Newf(serrors.KindMalformedSchedule, "malformed schedule", "unknown weekday %q", day)
	}
	return (int(wd) - int(t.anchor) + 7) % 7, nil
}

// IsWeekday reports whether s is a full English weekday name
func IsWeekday(s string) bool {
	_, ok := weekdays[s]
	return ok
}
