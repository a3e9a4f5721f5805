package schedule

import (
	"strings"

	serrors "github.com/a3tai/schedule2ical/internal/errors"
	"github.com/a3tai/schedule2ical/internal/term"
)

const (
	fieldsWithoutDay = 4
	fieldsWithDay    = 5
)

// Fields are the four lines every session block carries
type Fields struct {
	Name     string
	Section  string
	Location string
	Duration string
}

// LineGroup is a classified block: either WithDay or WithoutDay.
type LineGroup interface {
	fields() Fields
}

// WithDay is a block whose first line names the weekday
type WithDay struct {
	Day string
	Fields
}

// WithoutDay is a block that inherits the weekday of the previous record
type WithoutDay struct {
	Fields
}

func (g WithDay) fields() Fields    { return g.Fields }
func (g WithoutDay) fields() Fields { return g.Fields }

// Classify dispatches a 4 or 5 line group to its variant.
func Classify(lines []string) (LineGroup, error) {
	switch len(lines) {
	case fieldsWithDay:
		if !term.IsWeekday(lines[0]) {
			return nil, serrors.Newf(serrors.KindMalformedSchedule, "malformed schedule",
				"expected weekday, got %q in %q", lines[0], strings.Join(lines, " | "))
		}
		return WithDay{Day: lines[0], Fields: fieldsOf(lines[1:])}, nil
	case fieldsWithoutDay:
		return WithoutDay{Fields: fieldsOf(lines)}, nil
	default:
		return nil, serrors.Newf(serrors.KindMalformedSchedule, "malformed schedule",
			"group has %d lines: %q", len(lines), strings.Join(lines, " | "))
	}
}

func fieldsOf(lines []string) Fields {
	return Fields{Name: lines[0], Section: lines[1], Location: lines[2], Duration: lines[3]}
}

func validLength(n int) bool {
	return n == fieldsWithoutDay || n == fieldsWithDay
}

// MergePageBreaks repairs blocks that a page break split in two. A group
// whose length is neither 4 nor 5 is joined with the group that follows it;
// if the result is still not 4 or 5 lines long, the schedule is malformed.
func MergePageBreaks(groups [][]string) ([][]string, error) {
	out := make([][]string, 0, len(groups))
	for i := 0; i < len(groups); i++ {
		g := groups[i]
		if validLength(len(g)) {
			out = append(out, g)
			continue
		}
		if i+1 >= len(groups) {
			return nil, serrors.Newf(serrors.KindMalformedSchedule, "malformed schedule",
				"group %d has %d lines and nothing follows it", i, len(g))
		}

		merged := make([]string, 0, len(g)+len(groups[i+1]))
		merged = append(merged, g...)
		merged = append(merged, groups[i+1]...)
		if !validLength(len(merged)) {
			return nil, serrors.Newf(serrors.KindMalformedSchedule, "malformed schedule",
				"groups %d and %d merge to %d lines: %q", i, i+1, len(merged), strings.Join(merged, " | "))
		}
		out = append(out, merged)
		i++
	}
	return out, nil
}
