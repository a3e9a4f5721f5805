package calendar

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

const utcStamp = "20060102T150405Z"

// WeeklyRule renders "FREQ=WEEKLY;UNTIL=<until>T235959Z". The bound is the
// last second of until's date in UTC, so sessions on that day still recur.
func WeeklyRule(until time.Time) string {
	day := time.Date(until.Year(), until.Month(), until.Day(), 23, 59, 59, 0, time.UTC)
	return fmt.Sprintf("FREQ=WEEKLY;UNTIL=%s", day.Format(utcStamp))
}

// Occurrences expands the event's weekly rule from its start
func Occurrences(e Event) ([]time.Time, error) {
	opt, err := rrule.StrToROption(e.Rule())
	if err != nil {
		return nil, fmt.Errorf("parse rule %q: %w", e.Rule(), err)
	}
	opt.Dtstart = e.Start

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("build rule %q: %w", e.Rule(), err)
	}
	return r.All(), nil
}
