// Package term computes academic term anchor dates.
//
// A term starts on a fixed nth weekday of its start month and its last class
// day is a fixed nth weekday of its final month:
//
//	Fall:   2nd Wednesday of September .. 3rd Thursday of December
//	Spring: 4th Tuesday of January     .. 1st Saturday of May
//
// All dates are civil dates represented as midnight UTC.
package term

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	serrors "github.com/a3tai/schedule2ical/internal/errors"
)

// Kind identifies the academic term
type Kind int

const (
	KindUnknown Kind = iota
	Fall
	Spring
)

// String returns the term name as it appears in schedule headers
func (k Kind) String() string {
	switch k {
	case Fall:
		return "Fall"
	case Spring:
		return "Spring"
	default:
		return "Unknown"
	}
}

// ParseKind maps a term name to its Kind
func ParseKind(s string) (Kind, error) {
	switch strings.TrimSpace(s) {
	case "Fall":
		return Fall, nil
	case "Spring":
		return Spring, nil
	}
	return KindUnknown, serrors.Newf(serrors.KindInvalidTerm, "invalid term", "term %q (only Fall and Spring are supported)", s)
}

type rule struct {
	month   time.Month
	weekday time.Weekday
	nth     int
}

type termRules struct {
	start rule
	end   rule
}

var rules = map[Kind]termRules{
	Fall: {
		start: rule{month: time.September, weekday: time.Wednesday, nth: 2},
		end:   rule{month: time.December, weekday: time.Thursday, nth: 3},
	},
	Spring: {
		start: rule{month: time.January, weekday: time.Tuesday, nth: 4},
		end:   rule{month: time.May, weekday: time.Saturday, nth: 1},
	},
}

// Anchor holds the computed boundaries of one term
type Anchor struct {
	Kind         Kind
	Year         int
	FirstDay     time.Time
	LastClassDay time.Time
}

// NewAnchor resolves both boundary dates for a term
func NewAnchor(kind Kind, year int) (Anchor, error) {
	first, err := FirstDayOfTerm(kind, year)
	if err != nil {
		return Anchor{}, err
	}
	last, err := LastClassDay(first)
	if err != nil {
		return Anchor{}, err
	}
	return Anchor{Kind: kind, Year: year, FirstDay: first, LastClassDay: last}, nil
}

// FirstDayOfTerm returns the first day of instruction
func FirstDayOfTerm(kind Kind, year int) (time.Time, error) {
	r, ok := rules[kind]
	if !ok {
		return time.Time{}, serrors.Newf(serrors.KindInvalidTerm, "invalid term", "term kind %d", int(kind))
	}
	return nthWeekday(year, r.start)
}

// LastClassDay returns the last class day of the term that starts on firstDay.
// The term is recovered from firstDay's month.
func LastClassDay(firstDay time.Time) (time.Time, error) {
	for _, r := range rules {
		if r.start.month == firstDay.Month() {
			return nthWeekday(firstDay.Year(), r.end)
		}
	}
	return time.Time{}, serrors.Newf(serrors.KindInvalidTerm, "invalid term", "no term starts in %s", firstDay.Month())
}

var rruleWeekdays = [...]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// nthWeekday returns the nth r.weekday of r.month, i.e. the first occurrence
// of FREQ=MONTHLY;BYMONTH=<month>;BYDAY=+<nth><weekday> in year.
func nthWeekday(year int, r rule) (time.Time, error) {
	rr, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.MONTHLY,
		Dtstart:   time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		Count:     1,
		Bymonth:   []int{int(r.month)},
		Byweekday: []rrule.Weekday{rruleWeekdays[r.weekday].Nth(r.nth)},
	})
	if err != nil {
		return time.Time{}, serrors.Wrap(err, serrors.KindInvalidTerm, "invalid term rule")
	}

	days := rr.All()
	if len(days) == 0 {
		return time.Time{}, serrors.Newf(serrors.KindInvalidTerm, "invalid term",
			"no %d. %s in %s %d", r.nth, r.weekday, r.month, year)
	}
	return days[0], nil
}

var headerPattern = regexp.MustCompile(`Course Schedule\s*-\s*(\S+)\s+(\d{4})(?:\s*-\s*(\d{4}))?`)

// HeaderPrefix marks the title block on the first page of a schedule
const HeaderPrefix = "Course Schedule - "

// ParseHeader extracts the term and calendar year from a title such as
// "Course Schedule - Fall 2023-2024". Fall uses the first year of the span,
// Spring the second.
func ParseHeader(text string) (Kind, int, error) {
	m := headerPattern.FindStringSubmatch(text)
	if m == nil {
		return KindUnknown, 0, serrors.Newf(serrors.KindInvalidTerm, "invalid term", "unrecognised header %q", text)
	}
	kind, err := ParseKind(m[1])
	if err != nil {
		return KindUnknown, 0, err
	}

	yearText := m[2]
	if kind == Spring && m[3] != "" {
		yearText = m[3]
	}
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return KindUnknown, 0, serrors.Wrap(err, serrors.KindInvalidTerm, "invalid term year")
	}
	return kind, year, nil
}
