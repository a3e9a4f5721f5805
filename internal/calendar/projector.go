// Package calendar projects course records onto a term's timeline and writes
// them as iCalendar events.
package calendar

import (
	"fmt"
	"time"

	serrors "github.com/a3tai/schedule2ical/internal/errors"
	"github.com/a3tai/schedule2ical/internal/schedule"
	"github.com/a3tai/schedule2ical/internal/term"
)

// DefaultTimeZone is the zone every session is scheduled in
const DefaultTimeZone = "America/Chicago"

// AddressResolver maps a building token to a street address
type AddressResolver interface {
	Resolve(token string) (string, error)
}

// Event is one weekly recurring course session
type Event struct {
	Title       string
	Start       time.Time
	End         time.Time
	Location    string
	Description string
	// Until is the last class day; the rule closes at its end in UTC
	Until time.Time
}

// Rule returns the event's recurrence rule
func (e Event) Rule() string {
	return WeeklyRule(e.Until)
}

// Projector places course records on concrete dates
type Projector struct {
	addresses AddressResolver
	loc       *time.Location
}

// NewProjector creates a projector. A nil location means DefaultTimeZone.
func NewProjector(addresses AddressResolver, loc *time.Location) (*Projector, error) {
	if loc == nil {
		var err error
		loc, err = time.LoadLocation(DefaultTimeZone)
		if err != nil {
			return nil, fmt.Errorf("load time zone %s: %w", DefaultTimeZone, err)
		}
	}
	return &Projector{addresses: addresses, loc: loc}, nil
}

// Location returns the projector's time zone
func (p *Projector) Location() *time.Location {
	return p.loc
}

// Project computes the first occurrence of rec in the term described by anchor.
// The session's date is the anchor's first day plus the weekday's offset.
func (p *Projector) Project(rec schedule.CourseRecord, anchor term.Anchor, offsets term.DayOffsetTable) (Event, error) {
	offset, err := offsets.Offset(rec.Day)
	if err != nil {
		return Event{}, err
	}
	day := anchor.FirstDay.AddDate(0, 0, offset)

	start := p.at(day, rec.Time.Start)
	end := p.at(day, rec.Time.End)
	if !start.Before(end) {
		return Event{}, serrors.Newf(serrors.KindMalformedSchedule, "malformed schedule",
			"%s ends at %s before it starts at %s", rec.Name, rec.Time.End, rec.Time.Start)
	}

	address, err := p.addresses.Resolve(rec.Location.Building)
	if err != nil {
		return Event{}, err
	}

	return Event{
		Title:       rec.Title(),
		Start:       start,
		End:         end,
		Location:    address,
		Description: "Room " + rec.Location.Room,
		Until:       anchor.LastClassDay,
	}, nil
}

func (p *Projector) at(day time.Time, c schedule.Clock) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, p.loc)
}
