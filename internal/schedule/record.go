// Package schedule reconstructs course sessions from the text blocks of a
// printed course schedule.
package schedule

import (
	"fmt"
	"strings"
)

// SessionType is the kind of class meeting
type SessionType string

const (
	Lecture    SessionType = "Lecture"
	Discussion SessionType = "Discussion"
	Lab        SessionType = "Lab"
)

// DefaultSessionTypes maps section codes to session types
func DefaultSessionTypes() map[string]SessionType {
	return map[string]SessionType{
		"DIS": Discussion,
		"LEC": Lecture,
		"LAB": Lab,
	}
}

// Clock is a wall clock time of day
type Clock struct {
	Hour   int `validate:"gte=0,lte=23"`
	Minute int `validate:"gte=0,lte=59"`
}

// String formats the clock as 24-hour "HH:MM"
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns minutes since midnight
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// TimeRange is a session's start and end on one day
type TimeRange struct {
	Start Clock
	End   Clock
}

// Section is a parsed section code such as "LEC 1"
type Section struct {
	Code   string      `validate:"required"`
	Number string      `validate:"required,numeric"`
	Type   SessionType `validate:"required"`
}

// String returns the section as printed, e.g. "LEC 1"
func (s Section) String() string {
	return s.Code + " " + s.Number
}

// Location is a room inside a building
type Location struct {
	Room     string `validate:"required,numeric"`
	Building string `validate:"required"`
}

// CourseRecord is one weekly course session. Day is always a full weekday
// name once a record has been built.
type CourseRecord struct {
	Day      string `validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	Name     string `validate:"required"`
	Section  Section
	Location Location
	Time     TimeRange
}

// Title is the calendar title: the course name followed by the session type
func (r CourseRecord) Title() string {
	return fmt.Sprintf("%s %s", r.Name, r.Section.Type)
}

// collapseSpaces replaces runs of whitespace with a single space.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
