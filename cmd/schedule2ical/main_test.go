package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/a3tai/schedule2ical/internal/config"
)

const testVersion = "1.2.3"

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	defer func() {
		version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit
	}()

	version = testVersion
	buildTime = "2023-12-01_10:30:00"
	gitCommit = "abc123"

	var buf bytes.Buffer
	printVersion(&buf)
	output := buf.String()

	expectedStrings := []string{
		"schedule2ical",
		"Version: " + testVersion,
		"Build Time: 2023-12-01_10:30:00",
		"Git Commit: abc123",
		"Built with:",
	}
	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("printVersion() output missing expected string: %s\nActual output:\n%s", expected, output)
		}
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "courses.ics")

	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := writeFileAtomic(path, []byte("BEGIN:VCALENDAR\r\n")); err != nil {
		t.Fatalf("writeFileAtomic() unexpected error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "BEGIN:VCALENDAR\r\n" {
		t.Errorf("writeFileAtomic() content = %q", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected temp file to be renamed away, found %d entries", len(entries))
	}

	if err := writeFileAtomic(filepath.Join(dir, "missing", "out.ics"), nil); err == nil {
		t.Error("writeFileAtomic() into a missing directory should fail")
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.PDFPath = filepath.Join(dir, "schedule.pdf")
	cfg.FacilitiesPath = filepath.Join(dir, "buildings.csv")
	cfg.OutputPath = filepath.Join(dir, "courses.ics")

	if err := os.WriteFile(cfg.PDFPath, []byte("%PDF-1.4\nnot really a pdf\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	csv := "Name,Street Address\nSmith Hall,1 Smith Way\nVan Vleck Hall,480 Lincoln Dr\n"
	if err := os.WriteFile(cfg.FacilitiesPath, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestBuildPipeline(t *testing.T) {
	cfg := testConfig(t)

	if _, err := buildPipeline(cfg, zap.NewNop()); err != nil {
		t.Fatalf("buildPipeline() unexpected error: %v", err)
	}

	cfg.CalendarPath = filepath.Join(t.TempDir(), "academic.yaml")
	if err := os.WriteFile(cfg.CalendarPath, []byte("fall:\n  Instruction begins:\n    2023: Sep 13\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := buildPipeline(cfg, zap.NewNop()); err != nil {
		t.Fatalf("buildPipeline() with academic calendar unexpected error: %v", err)
	}
}

func TestBuildPipeline_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "unknown time zone", mutate: func(c *config.Config) { c.TimeZone = "Mars/Olympus_Mons" }},
		{name: "missing facilities", mutate: func(c *config.Config) { c.FacilitiesPath += ".missing" }},
		{name: "unsupported facilities format", mutate: func(c *config.Config) {
			c.FacilitiesPath = filepath.Join(filepath.Dir(c.FacilitiesPath), "buildings.txt")
			_ = os.WriteFile(c.FacilitiesPath, []byte("x"), 0o644)
		}},
		{name: "missing academic calendar", mutate: func(c *config.Config) { c.CalendarPath = "/nonexistent/cal.yaml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)
			if _, err := buildPipeline(cfg, zap.NewNop()); err == nil {
				t.Error("buildPipeline() expected error, got nil")
			}
		})
	}
}

func TestRun_InvalidDocumentWritesNothing(t *testing.T) {
	cfg := testConfig(t)

	var stdout bytes.Buffer
	if err := run(context.Background(), cfg, zap.NewNop(), &stdout); err == nil {
		t.Fatal("run() expected error for a broken PDF")
	}
	if _, err := os.Stat(cfg.OutputPath); !os.IsNotExist(err) {
		t.Errorf("run() left an output file behind: %v", err)
	}

	cfg.OutputPath = config.StdoutPath
	if err := run(context.Background(), cfg, zap.NewNop(), &stdout); err == nil {
		t.Fatal("run() expected error for a broken PDF")
	}
	if stdout.Len() != 0 {
		t.Errorf("run() wrote %d bytes to stdout on failure", stdout.Len())
	}
}

func TestRun_LogsConfigurationOnlyInDebug(t *testing.T) {
	tests := []struct {
		level string
		want  int
	}{
		{level: "debug", want: 1},
		{level: "info", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.LogLevel = tt.level

			core, logs := observer.New(zapcore.DebugLevel)
			_ = run(context.Background(), cfg, zap.New(core), &bytes.Buffer{})

			entries := logs.FilterMessage("starting conversion").All()
			if len(entries) != tt.want {
				t.Fatalf("run() logged %d configuration entries, want %d", len(entries), tt.want)
			}
			if tt.want == 1 {
				if got := entries[0].ContextMap()["config"]; !strings.Contains(got.(string), cfg.PDFPath) {
					t.Errorf("configuration entry = %v, want it to name %s", got, cfg.PDFPath)
				}
			}
		})
	}
}
