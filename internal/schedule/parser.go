package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	serrors "github.com/a3tai/schedule2ical/internal/errors"
)

var (
	sectionPattern  = regexp.MustCompile(`^(\w+)\s+(\d+)`)
	locationPattern = regexp.MustCompile(`^(\d+)\s+(\w+)`)
	clockPattern    = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(?:([AaPp])\.?\s*[Mm]?\.?)?$`)
)

// durationSeparator splits "9:00 AM to 9:50 AM" into its clauses
const durationSeparator = "to"

// ParseState is the context carried from one record to the next
type ParseState struct {
	CurrentDay string
}

// Parser builds course records from line groups
type Parser struct {
	sessionTypes map[string]SessionType
	validate     *validator.Validate
	logger       *zap.Logger
}

// NewParser creates a parser. A nil table uses DefaultSessionTypes and a nil
// logger discards output.
func NewParser(sessionTypes map[string]SessionType, logger *zap.Logger) *Parser {
	if sessionTypes == nil {
		sessionTypes = DefaultSessionTypes()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		sessionTypes: sessionTypes,
		validate:     validator.New(),
		logger:       logger,
	}
}

// Parse repairs page breaks and folds the groups into records, carrying the
// weekday forward across groups that omit it.
func (p *Parser) Parse(groups [][]string) ([]CourseRecord, error) {
	merged, err := MergePageBreaks(groups)
	if err != nil {
		return nil, err
	}

	records := make([]CourseRecord, 0, len(merged))
	state := ParseState{}
	for i, lines := range merged {
		g, err := Classify(lines)
		if err != nil {
			return nil, err
		}

		var rec CourseRecord
		state, rec, err = p.Step(state, g)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		p.logger.Debug("parsed course record",
			zap.Int("index", i),
			zap.String("day", rec.Day),
			zap.String("name", rec.Name),
			zap.String("section", rec.Section.String()),
			zap.String("room", rec.Location.Room),
			zap.String("building", rec.Location.Building),
			zap.String("start", rec.Time.Start.String()),
			zap.String("end", rec.Time.End.String()))
		records = append(records, rec)
	}
	return records, nil
}

// Step builds one record from a classified group and returns the next state.
func (p *Parser) Step(state ParseState, g LineGroup) (ParseState, CourseRecord, error) {
	if wd, ok := g.(WithDay); ok {
		state.CurrentDay = wd.Day
	}
	if state.CurrentDay == "" {
		return state, CourseRecord{}, serrors.New(serrors.KindMalformedSchedule,
			"malformed schedule: first session has no weekday")
	}

	f := g.fields()
	section, err := p.parseSection(f.Section)
	if err != nil {
		return state, CourseRecord{}, err
	}
	location, err := parseLocation(f.Location)
	if err != nil {
		return state, CourseRecord{}, err
	}
	span, err := ParseDuration(f.Duration)
	if err != nil {
		return state, CourseRecord{}, err
	}

	rec := CourseRecord{
		Day:      state.CurrentDay,
		Name:     collapseSpaces(f.Name),
		Section:  section,
		Location: location,
		Time:     span,
	}
	if err := p.validate.Struct(rec); err != nil {
		return state, CourseRecord{}, serrors.Wrap(err, serrors.KindMalformedSchedule, "invalid course record")
	}
	return state, rec, nil
}

func (p *Parser) parseSection(s string) (Section, error) {
	m := sectionPattern.FindStringSubmatch(s)
	if m == nil {
		return Section{}, serrors.Newf(serrors.KindMalformedSchedule, "malformed schedule", "section %q", s)
	}
	kind, ok := p.sessionTypes[m[1]]
	if !ok {
		return Section{}, serrors.Newf(serrors.KindUnknownSessionType, "unknown session type", "section %q", s)
	}
	return Section{Code: m[1], Number: m[2], Type: kind}, nil
}

func parseLocation(s string) (Location, error) {
	m := locationPattern.FindStringSubmatch(s)
	if m == nil {
		return Location{}, serrors.Newf(serrors.KindMalformedSchedule, "malformed schedule", "location %q", s)
	}
	return Location{Room: m[1], Building: m[2]}, nil
}

// ParseDuration parses "9:00 AM to 9:50 AM" or "9:00 to 9:50 AM". A clause
// without a meridiem takes the other clause's; if that would put the start
// after the end, the start is taken as AM instead.
func ParseDuration(s string) (TimeRange, error) {
	parts := strings.Split(s, durationSeparator)
	if len(parts) != 2 {
		return TimeRange{}, serrors.Newf(serrors.KindMalformedSchedule, "malformed schedule", "duration %q", s)
	}

	start, startMer, err := parseClause(parts[0])
	if err != nil {
		return TimeRange{}, err
	}
	end, endMer, err := parseClause(parts[1])
	if err != nil {
		return TimeRange{}, err
	}

	switch {
	case startMer == 0 && endMer == 0:
		return TimeRange{}, serrors.Newf(serrors.KindMalformedSchedule, "malformed schedule", "duration %q has no AM/PM", s)
	case endMer == 0:
		endMer = startMer
	}
	inherited := startMer == 0
	if inherited {
		startMer = endMer
	}

	span := TimeRange{Start: toMilitary(start, startMer), End: toMilitary(end, endMer)}
	if inherited && span.Start.Minutes() >= span.End.Minutes() {
		span.Start = toMilitary(start, 'A')
	}
	if span.Start.Minutes() >= span.End.Minutes() {
		return TimeRange{}, serrors.Newf(serrors.KindMalformedSchedule, "malformed schedule", "duration %q ends before it starts", s)
	}
	return span, nil
}

// parseClause reads "9:50 AM" as a 12-hour clock and its meridiem letter
// ('A', 'P', or 0 when absent).
func parseClause(s string) (Clock, byte, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Clock{}, 0, serrors.Newf(serrors.KindMalformedSchedule, "malformed schedule", "time %q", strings.TrimSpace(s))
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour < 1 || hour > 12 || minute > 59 {
		return Clock{}, 0, serrors.Newf(serrors.KindMalformedSchedule, "malformed schedule", "time %q", strings.TrimSpace(s))
	}

	var mer byte
	if m[3] != "" {
		mer = strings.ToUpper(m[3])[0]
	}
	return Clock{Hour: hour, Minute: minute}, mer, nil
}

func toMilitary(c Clock, meridiem byte) Clock {
	hour := c.Hour % 12
	if meridiem == 'P' {
		hour += 12
	}
	return Clock{Hour: hour, Minute: c.Minute}
}
