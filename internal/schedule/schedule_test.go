package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/a3tai/schedule2ical/internal/errors"
	"github.com/a3tai/schedule2ical/internal/pdf"
)

func textBox(text string) pdf.Block {
	return pdf.Block{Kind: pdf.BlockTextBox, Text: text}
}

func TestNormalizer_Normalize(t *testing.T) {
	pages := []pdf.Page{
		{Number: 1, Blocks: []pdf.Block{textBox("10/15/23\n"), textBox("Course Schedule - Fall 2023-2024\n")}},
		{Number: 2, Blocks: []pdf.Block{
			textBox("10/15/23, 3:04 PM\n"),
			textBox("MyUW\n"),
			textBox("Monday\nIntro  to X\nLEC 1\n101 Smith\n9:00 to 9:50 AM\n"),
			{Kind: pdf.BlockRect},
			textBox("https://my.wisc.edu/portal\n"),
			textBox("  Calculus \nDIS 301\n 2 Van\n1:00 to 1:50 PM\n"),
		}},
		{Number: 3, Blocks: []pdf.Block{
			textBox("10/15/23, 3:04 PM\n"),
			textBox("Tuesday\nＣhem\n"),
		}},
	}

	groups := NewNormalizer(DefaultTrailingTrim).Normalize(pages)
	require.Len(t, groups, 3)
	assert.Equal(t, []string{"Monday", "Intro  to X", "LEC 1", "101 Smith", "9:00 to 9:50 AM"}, groups[0])
	assert.Equal(t, []string{"Calculus", "DIS 301", "2 Van", "1:00 to 1:50 PM"}, groups[1])
	// NFKC folds the fullwidth letter
	assert.Equal(t, []string{"Tuesday", "Chem"}, groups[2])
}

func TestNormalizer_TrailingTrim(t *testing.T) {
	page := pdf.Page{Blocks: []pdf.Block{textBox("stamp\n"), textBox("a\nb\n\n")}}

	assert.Equal(t, [][]string{{"a", "b", ""}}, NewNormalizer(1).NormalizePage(page))
	assert.Equal(t, [][]string{{"a", "b"}}, NewNormalizer(2).NormalizePage(page))
	assert.Equal(t, [][]string{{""}}, NewNormalizer(10).NormalizePage(page))
	assert.Nil(t, NewNormalizer(1).NormalizePage(pdf.Page{}))
}

func TestNormalizer_CustomBanners(t *testing.T) {
	page := pdf.Page{Blocks: []pdf.Block{textBox("stamp\n"), textBox("Portal\n"), textBox("MyUW\n")}}

	groups := NewNormalizer(1, "Portal").NormalizePage(page)
	assert.Equal(t, [][]string{{"MyUW"}}, groups)
}

func TestMergePageBreaks(t *testing.T) {
	tests := []struct {
		name    string
		groups  [][]string
		want    [][]string
		wantErr bool
	}{
		{
			name:   "valid groups untouched",
			groups: [][]string{{"a", "b", "c", "d"}, {"a", "b", "c", "d", "e"}},
			want:   [][]string{{"a", "b", "c", "d"}, {"a", "b", "c", "d", "e"}},
		},
		{
			name:   "two plus two",
			groups: [][]string{{"a", "b"}, {"c", "d"}, {"w", "x", "y", "z"}},
			want:   [][]string{{"a", "b", "c", "d"}, {"w", "x", "y", "z"}},
		},
		{
			name:   "two plus three",
			groups: [][]string{{"a", "b"}, {"c", "d", "e"}},
			want:   [][]string{{"a", "b", "c", "d", "e"}},
		},
		{
			name:    "trailing fragment",
			groups:  [][]string{{"a", "b", "c", "d"}, {"a", "b", "c"}},
			wantErr: true,
		},
		{
			name:    "fragment followed by full group",
			groups:  [][]string{{"a", "b", "c"}, {"a", "b", "c", "d"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MergePageBreaks(tt.groups)
			if tt.wantErr {
				assert.ErrorIs(t, err, serrors.ErrMalformedSchedule)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify(t *testing.T) {
	g, err := Classify([]string{"Monday", "Intro", "LEC 1", "101 Smith", "9:00 to 9:50 AM"})
	require.NoError(t, err)
	wd, ok := g.(WithDay)
	require.True(t, ok)
	assert.Equal(t, "Monday", wd.Day)
	assert.Equal(t, "Intro", wd.Name)

	g, err = Classify([]string{"Intro", "LEC 1", "101 Smith", "9:00 to 9:50 AM"})
	require.NoError(t, err)
	_, ok = g.(WithoutDay)
	assert.True(t, ok)

	_, err = Classify([]string{"Someday", "Intro", "LEC 1", "101 Smith", "9:00 to 9:50 AM"})
	assert.ErrorIs(t, err, serrors.ErrMalformedSchedule)

	_, err = Classify([]string{"a", "b", "c"})
	assert.ErrorIs(t, err, serrors.ErrMalformedSchedule)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input     string
		wantStart string
		wantEnd   string
		wantErr   bool
	}{
		{input: "9:00to9:50AM", wantStart: "09:00", wantEnd: "09:50"},
		{input: "1:00to1:50PM", wantStart: "13:00", wantEnd: "13:50"},
		{input: "9:00 AM to 9:50 AM", wantStart: "09:00", wantEnd: "09:50"},
		{input: "11:00 AM to 12:15 PM", wantStart: "11:00", wantEnd: "12:15"},
		{input: "11:00 to 12:15 PM", wantStart: "11:00", wantEnd: "12:15"},
		{input: "12:05 PM to 12:55 PM", wantStart: "12:05", wantEnd: "12:55"},
		{input: "2:30 PM to 3:45 PM", wantStart: "14:30", wantEnd: "15:45"},
		{input: "10:00 to 11:15 a.m.", wantStart: "10:00", wantEnd: "11:15"},
		{input: "9:00 to 9:50", wantErr: true},
		{input: "9:00 - 9:50 AM", wantErr: true},
		{input: "13:00 to 13:50 PM", wantErr: true},
		{input: "3:00 PM to 2:00 PM", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, serrors.ErrMalformedSchedule)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, got.Start.String())
			assert.Equal(t, tt.wantEnd, got.End.String())
		})
	}
}

func TestParser_DayCarryForward(t *testing.T) {
	groups := [][]string{
		{"Tuesday", "Intro to X  Y", "LEC 1", "101 Smith", "9:00 to 9:50 AM"},
		{"Calculus", "DIS 301", "2 Van", "1:00 to 1:50 PM"},
		{"Chemistry", "LAB 602", "1371 Chemistry", "2:25 PM to 5:25 PM"},
		{"Thursday", "Intro to X  Y", "LEC 1", "101 Smith", "9:00 to 9:50 AM"},
		{"Calculus", "DIS 301", "2 Van", "1:00 to 1:50 PM"},
	}

	records, err := NewParser(nil, nil).Parse(groups)
	require.NoError(t, err)
	require.Len(t, records, 5)

	days := make([]string, len(records))
	for i, r := range records {
		days[i] = r.Day
	}
	assert.Equal(t, []string{"Tuesday", "Tuesday", "Tuesday", "Thursday", "Thursday"}, days)

	first := records[0]
	assert.Equal(t, "Intro to X Y", first.Name)
	assert.Equal(t, Section{Code: "LEC", Number: "1", Type: Lecture}, first.Section)
	assert.Equal(t, Location{Room: "101", Building: "Smith"}, first.Location)
	assert.Equal(t, "Intro to X Y Lecture", first.Title())
	assert.Equal(t, "LEC 1", first.Section.String())

	assert.Equal(t, Discussion, records[1].Section.Type)
	assert.Equal(t, Lab, records[2].Section.Type)
	assert.Equal(t, Clock{Hour: 14, Minute: 25}, records[2].Time.Start)
}

func TestParser_PageBreakRecovery(t *testing.T) {
	groups := [][]string{
		{"Monday", "Intro", "LEC 1", "101 Smith", "9:00 to 9:50 AM"},
		{"Calculus", "DIS 301"},
		{"2 Van", "1:00 to 1:50 PM"},
	}

	records, err := NewParser(nil, nil).Parse(groups)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Monday", records[1].Day)
	assert.Equal(t, "Calculus", records[1].Name)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		groups  [][]string
		wantErr error
	}{
		{
			name:    "unknown session type",
			groups:  [][]string{{"Monday", "Seminar", "SEM 1", "101 Smith", "9:00 to 9:50 AM"}},
			wantErr: serrors.ErrUnknownSessionType,
		},
		{
			name:    "first record without day",
			groups:  [][]string{{"Intro", "LEC 1", "101 Smith", "9:00 to 9:50 AM"}},
			wantErr: serrors.ErrMalformedSchedule,
		},
		{
			name:    "unparseable section",
			groups:  [][]string{{"Monday", "Intro", "Lecture", "101 Smith", "9:00 to 9:50 AM"}},
			wantErr: serrors.ErrMalformedSchedule,
		},
		{
			name:    "unparseable location",
			groups:  [][]string{{"Monday", "Intro", "LEC 1", "Online", "9:00 to 9:50 AM"}},
			wantErr: serrors.ErrMalformedSchedule,
		},
		{
			name:    "residual fragment",
			groups:  [][]string{{"Monday", "Intro", "LEC 1", "101 Smith", "9:00 to 9:50 AM"}, {"a", "b", "c"}},
			wantErr: serrors.ErrMalformedSchedule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(nil, nil).Parse(tt.groups)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParser_InjectedSessionTypes(t *testing.T) {
	parser := NewParser(map[string]SessionType{"SEM": "Seminar"}, nil)

	_, rec, err := parser.Step(ParseState{CurrentDay: "Friday"},
		WithoutDay{Fields: Fields{Name: "Topics", Section: "SEM 9", Location: "5 Bascom", Duration: "3:30 to 4:45 PM"}})
	require.NoError(t, err)
	assert.Equal(t, "Topics Seminar", rec.Title())
	assert.Equal(t, "Friday", rec.Day)

	_, _, err = parser.Step(ParseState{CurrentDay: "Friday"},
		WithoutDay{Fields: Fields{Name: "Intro", Section: "LEC 1", Location: "5 Bascom", Duration: "3:30 to 4:45 PM"}})
	assert.ErrorIs(t, err, serrors.ErrUnknownSessionType)
}

func TestParser_StepIsPure(t *testing.T) {
	parser := NewParser(nil, nil)
	start := ParseState{}
	g := WithDay{Day: "Wednesday", Fields: Fields{Name: "Intro", Section: "LEC 1", Location: "101 Smith", Duration: "9:00 to 9:50 AM"}}

	next, _, err := parser.Step(start, g)
	require.NoError(t, err)
	assert.Equal(t, "", start.CurrentDay)
	assert.Equal(t, "Wednesday", next.CurrentDay)
}
