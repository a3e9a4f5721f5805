package calendar

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

const (
	// DefaultProductID identifies the generator in PRODID
	DefaultProductID = "-//a3tai//schedule2ical//EN"

	localStamp = "20060102T150405"
)

// uidNamespace scopes event UIDs so identical inputs yield identical UIDs.
var uidNamespace = uuid.MustParse("6f1c2a7e-3b9d-5c41-9a0e-2d8f7b6c5e13")

// Writer serialises events into an iCalendar document
type Writer struct {
	productID string
}

// NewWriter creates a writer. An empty productID uses DefaultProductID.
func NewWriter(productID string) *Writer {
	if productID == "" {
		productID = DefaultProductID
	}
	return &Writer{productID: productID}
}

// Build assembles the calendar. stamp is used for every DTSTAMP so that the
// output depends only on the input.
func (w *Writer) Build(events []Event, stamp time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetProductId(w.productID)
	cal.SetMethod(ics.MethodPublish)

	for i, e := range events {
		ve := cal.AddEvent(EventUID(i, e))
		ve.SetDtStampTime(stamp)
		ve.SetSummary(e.Title)
		ve.SetProperty(ics.ComponentPropertyDtStart, e.Start.Format(localStamp), tzid(e.Start))
		ve.SetProperty(ics.ComponentPropertyDtEnd, e.End.Format(localStamp), tzid(e.End))
		ve.SetLocation(e.Location)
		ve.SetDescription(e.Description)
		ve.AddProperty(ics.ComponentPropertyRrule, e.Rule())
	}
	return cal
}

// Render writes the serialised calendar to out
func (w *Writer) Render(out io.Writer, events []Event, stamp time.Time) error {
	if _, err := io.WriteString(out, w.Build(events, stamp).Serialize()); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}

// EventUID derives a stable UID from the event's position and content
func EventUID(index int, e Event) string {
	key := fmt.Sprintf("%d|%s|%s|%s|%s|%s",
		index, e.Title, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339), e.Location, e.Description)
	return uuid.NewSHA1(uidNamespace, []byte(key)).String()
}

func tzid(t time.Time) ics.PropertyParameter {
	return &ics.KeyValues{Key: string(ics.ParameterTzid), Value: []string{t.Location().String()}}
}
