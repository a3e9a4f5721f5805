package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/google/renameio/v2"
	"go.uber.org/zap"

	"github.com/a3tai/schedule2ical/internal/calendar"
	"github.com/a3tai/schedule2ical/internal/config"
	"github.com/a3tai/schedule2ical/internal/facility"
	"github.com/a3tai/schedule2ical/internal/logging"
	"github.com/a3tai/schedule2ical/internal/pdf"
	"github.com/a3tai/schedule2ical/internal/pipeline"
	"github.com/a3tai/schedule2ical/internal/schedule"
	"github.com/a3tai/schedule2ical/internal/term"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion(os.Stdout)
		return
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Stdout); err != nil {
		logger.Error("conversion failed", zap.String("pdf", cfg.PDFPath), zap.Error(err))
		stop()
		_ = logger.Sync()
		os.Exit(1)
	}
}

// run converts the configured schedule and writes the calendar. The
// calendar is rendered in memory first so a failed run leaves no output.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, stdout io.Writer) error {
	if cfg.IsDebug() {
		logger.Debug("starting conversion", zap.Stringer("config", cfg), zap.String("version", cfg.Version))
	}

	if err := pdf.NewValidator(cfg.MaxFileSize).ValidateFile(cfg.PDFPath); err != nil {
		return err
	}

	p, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}

	src := pdf.FileSource{
		Path:      cfg.PDFPath,
		Extractor: pdf.NewExtractor(pdf.DefaultLayoutParams(), logger),
	}

	var buf bytes.Buffer
	if _, err := p.Run(ctx, src, &buf); err != nil {
		return err
	}

	if cfg.WritesToStdout() {
		_, err := buf.WriteTo(stdout)
		return err
	}
	if err := writeFileAtomic(cfg.OutputPath, buf.Bytes()); err != nil {
		return err
	}
	logger.Info("calendar saved", zap.String("path", cfg.OutputPath))
	return nil
}

// buildPipeline loads the lookup tables and assembles the run's components
func buildPipeline(cfg *config.Config, logger *zap.Logger) (*pipeline.Pipeline, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %s: %w", cfg.TimeZone, err)
	}

	buildings, err := facility.Load(cfg.FacilitiesPath, cfg.FacilitiesSheet)
	if err != nil {
		return nil, err
	}
	lookup := facility.NewLookup(buildings, cfg.City)
	logger.Debug("loaded facilities", zap.String("path", cfg.FacilitiesPath), zap.Int("buildings", lookup.Len()))

	var academic *term.AcademicCalendar
	if cfg.CalendarPath != "" {
		academic, err = term.LoadAcademicCalendar(cfg.CalendarPath)
		if err != nil {
			return nil, err
		}
	}

	projector, err := calendar.NewProjector(lookup, loc)
	if err != nil {
		return nil, err
	}

	return pipeline.New(pipeline.Deps{
		Normalizer: schedule.NewNormalizer(cfg.TrailingTrim),
		Parser:     schedule.NewParser(nil, logger),
		Projector:  projector,
		Writer:     calendar.NewWriter(""),
		Academic:   academic,
		Logger:     logger,
	}), nil
}

// writeFileAtomic writes data to a temp file next to path, syncs it and
// renames it into place
func writeFileAtomic(path string, data []byte) error {
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "schedule2ical\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
