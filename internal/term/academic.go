package term

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	serrors "github.com/a3tai/schedule2ical/internal/errors"
)

// EventInstructionBegins is the academic calendar row holding a term's first day
const EventInstructionBegins = "Instruction begins"

// AcademicCalendar is a published table of term events keyed by event label
// and year, e.g.
//
//	fall:
//	  Instruction begins:
//	    2023: Sep 13 Wed
//	spring:
//	  Instruction begins:
//	    2024: Jan 23
type AcademicCalendar struct {
	Fall   map[string]map[int]string `yaml:"fall"`
	Spring map[string]map[int]string `yaml:"spring"`
}

// CheckResult describes how a computed anchor compares with the table
type CheckResult struct {
	Found     bool
	Published time.Time
	Agrees    bool
}

// LoadAcademicCalendar reads the table from a YAML file
func LoadAcademicCalendar(path string) (*AcademicCalendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, serrors.Wrap(err, serrors.KindInvalidTable, "cannot open academic calendar")
	}
	defer f.Close()

	return ReadAcademicCalendar(f)
}

// ReadAcademicCalendar decodes the table from r
func ReadAcademicCalendar(r io.Reader) (*AcademicCalendar, error) {
	var cal AcademicCalendar
	if err := yaml.NewDecoder(r).Decode(&cal); err != nil {
		return nil, serrors.Wrap(err, serrors.KindInvalidTable, "cannot decode academic calendar")
	}
	return &cal, nil
}

// Lookup returns the date of an event in the given term and year
func (c *AcademicCalendar) Lookup(kind Kind, event string, year int) (time.Time, bool, error) {
	var table map[string]map[int]string
	switch kind {
	case Fall:
		table = c.Fall
	case Spring:
		table = c.Spring
	default:
		return time.Time{}, false, serrors.Newf(serrors.KindInvalidTerm, "invalid term", "term kind %d", int(kind))
	}

	cell, ok := table[event][year]
	if !ok {
		return time.Time{}, false, nil
	}

	d, err := parseMonthDay(cell, year)
	if err != nil {
		return time.Time{}, false, err
	}
	return d, true, nil
}

// CrossCheck compares the rule-computed first day with the published one.
// A missing entry is not an error.
func (c *AcademicCalendar) CrossCheck(a Anchor) (CheckResult, error) {
	published, found, err := c.Lookup(a.Kind, EventInstructionBegins, a.Year)
	if err != nil || !found {
		return CheckResult{}, err
	}
	return CheckResult{
		Found:     true,
		Published: published,
		Agrees:    published.Equal(a.FirstDay),
	}, nil
}

// parseMonthDay accepts "Sep 13" with an optional trailing weekday token.
func parseMonthDay(cell string, year int) (time.Time, error) {
	fields := strings.Fields(cell)
	if len(fields) < 2 {
		return time.Time{}, serrors.Newf(serrors.KindInvalidTable, "invalid academic calendar cell", "%q", cell)
	}
	t, err := time.Parse("Jan 2", fields[0]+" "+fields[1])
	if err != nil {
		return time.Time{}, serrors.Wrap(fmt.Errorf("cell %q: %w", cell, err), serrors.KindInvalidTable, "invalid academic calendar cell")
	}
	return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
