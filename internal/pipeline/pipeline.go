// Package pipeline runs one schedule conversion: pages in, calendar out.
package pipeline

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/a3tai/schedule2ical/internal/calendar"
	serrors "github.com/a3tai/schedule2ical/internal/errors"
	"github.com/a3tai/schedule2ical/internal/pdf"
	"github.com/a3tai/schedule2ical/internal/schedule"
	"github.com/a3tai/schedule2ical/internal/term"
)

// Deps are the components a run is assembled from. Normalizer, Parser,
// Projector and Writer are required; Academic and Logger are optional.
type Deps struct {
	Normalizer *schedule.Normalizer
	Parser     *schedule.Parser
	Projector  *calendar.Projector
	Writer     *calendar.Writer
	Academic   *term.AcademicCalendar
	Logger     *zap.Logger
}

// Result summarises a successful run
type Result struct {
	Anchor  term.Anchor
	Records []schedule.CourseRecord
	Events  []calendar.Event
}

// Pipeline converts schedule documents into calendars
type Pipeline struct {
	deps   Deps
	logger *zap.Logger
}

// New creates a pipeline from its components
func New(deps Deps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{deps: deps, logger: logger}
}

// Run reads the pages from src, builds one event per course session and
// renders the calendar to w. Nothing is written unless every record projects.
func (p *Pipeline) Run(ctx context.Context, src pdf.Source, w io.Writer) (*Result, error) {
	pages, err := src.Pages(ctx)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, serrors.New(serrors.KindMalformedSchedule, "document has no pages")
	}

	anchor, offsets, err := p.resolveTerm(pages[0])
	if err != nil {
		return nil, err
	}

	groups := p.deps.Normalizer.Normalize(pages)
	records, err := p.deps.Parser.Parse(groups)
	if err != nil {
		return nil, err
	}

	events := make([]calendar.Event, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ev, err := p.deps.Projector.Project(rec, anchor, offsets)
		if err != nil {
			return nil, err
		}
		p.logOccurrences(ev)
		events = append(events, ev)
	}

	if err := p.deps.Writer.Render(w, events, anchor.FirstDay); err != nil {
		return nil, err
	}

	p.logger.Info("calendar written",
		zap.Stringer("term", anchor.Kind),
		zap.Int("year", anchor.Year),
		zap.Time("first_day", anchor.FirstDay),
		zap.Time("last_class_day", anchor.LastClassDay),
		zap.Int("records", len(records)),
		zap.Int("events", len(events)),
	)

	return &Result{Anchor: anchor, Records: records, Events: events}, nil
}

// resolveTerm reads the title block on the first page and computes the
// term's boundaries.
func (p *Pipeline) resolveTerm(first pdf.Page) (term.Anchor, term.DayOffsetTable, error) {
	header, ok := FindHeader(first)
	if !ok {
		return term.Anchor{}, term.DayOffsetTable{}, serrors.Newf(serrors.KindInvalidTerm,
			"invalid term", "no %q title on page %d", strings.TrimSpace(term.HeaderPrefix), first.Number)
	}

	kind, year, err := term.ParseHeader(header)
	if err != nil {
		return term.Anchor{}, term.DayOffsetTable{}, err
	}
	anchor, err := term.NewAnchor(kind, year)
	if err != nil {
		return term.Anchor{}, term.DayOffsetTable{}, err
	}
	offsets, err := term.NewDayOffsetTable(kind)
	if err != nil {
		return term.Anchor{}, term.DayOffsetTable{}, err
	}

	p.crossCheck(anchor)
	return anchor, offsets, nil
}

func (p *Pipeline) crossCheck(anchor term.Anchor) {
	if p.deps.Academic == nil {
		return
	}

	check, err := p.deps.Academic.CrossCheck(anchor)
	switch {
	case err != nil:
		p.logger.Warn("academic calendar cross-check failed", zap.Error(err))
	case !check.Found:
		p.logger.Debug("academic calendar has no entry for term",
			zap.Stringer("term", anchor.Kind), zap.Int("year", anchor.Year))
	case !check.Agrees:
		p.logger.Warn("published first day differs from computed first day",
			zap.Stringer("term", anchor.Kind),
			zap.Int("year", anchor.Year),
			zap.Time("published", check.Published),
			zap.Time("computed", anchor.FirstDay))
	}
}

func (p *Pipeline) logOccurrences(ev calendar.Event) {
	if ce := p.logger.Check(zap.DebugLevel, "event projected"); ce != nil {
		occ, err := calendar.Occurrences(ev)
		if err != nil {
			p.logger.Warn("expand recurrence", zap.String("title", ev.Title), zap.Error(err))
			return
		}
		ce.Write(
			zap.String("title", ev.Title),
			zap.Time("start", ev.Start),
			zap.Time("end", ev.End),
			zap.String("location", ev.Location),
			zap.Int("sessions", len(occ)),
		)
	}
}

// FindHeader returns the first text box on page that carries the schedule
// title.
func FindHeader(page pdf.Page) (string, bool) {
	for _, b := range page.Blocks {
		if b.IsTextBox() && strings.Contains(b.Text, term.HeaderPrefix) {
			return b.Text, true
		}
	}
	return "", false
}
