package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// StdoutPath writes the calendar to standard output
	StdoutPath = "-"

	// Default values
	DefaultOutput       = "courses.ics"
	DefaultSheet        = "Sheet1"
	DefaultCity         = "Madison, WI 53715"
	DefaultTimeZone     = "America/Chicago"
	DefaultTrailingTrim = 1
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
	DefaultMaxFileSize  = 100 * 1024 * 1024 // 100MB

	envPrefix = "SCHEDULE2ICAL"
)

// ErrVersionRequested is returned when --version or -v is on the command line
var ErrVersionRequested = errors.New("version requested")

// pathKeys are the only settings read from the environment
var pathKeys = []string{"pdf", "out", "facilities", "calendar"}

// Config holds all configuration for one conversion run
type Config struct {
	// Inputs and output
	PDFPath         string `validate:"required"`
	OutputPath      string `validate:"required"`
	FacilitiesPath  string `validate:"required"`
	FacilitiesSheet string `validate:"required"`
	CalendarPath    string

	// Conversion settings
	City         string `validate:"required"`
	TimeZone     string `validate:"required"`
	TrailingTrim int    `validate:"gte=0,lte=4"`

	// Logging and limits
	LogLevel    string `validate:"oneof=debug info warn error"`
	LogFormat   string `validate:"oneof=console json"`
	MaxFileSize int64  `validate:"gt=0"`
	Version     string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OutputPath:      DefaultOutput,
		FacilitiesSheet: DefaultSheet,
		City:            DefaultCity,
		TimeZone:        DefaultTimeZone,
		TrailingTrim:    DefaultTrailingTrim,
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
		MaxFileSize:     DefaultMaxFileSize,
		Version:         "1.0.0",
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	return Load(pflag.CommandLine, os.Args[1:])
}

// Load layers defaults, environment and the given arguments into a Config
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	setupViperEnvironment(v, cfg)
	defineCommandLineFlags(fs, cfg)
	setupUsageMessage(fs)

	if err := checkVersionFlag(args); err != nil {
		return nil, err
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	populateConfigFromViper(v, cfg)

	for _, p := range []*string{&cfg.PDFPath, &cfg.FacilitiesPath, &cfg.CalendarPath} {
		if *p == "" {
			continue
		}
		if abs, err := filepath.Abs(*p); err == nil {
			*p = abs
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupViperEnvironment configures defaults and binds file path keys to
// SCHEDULE2ICAL_* environment variables
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(envPrefix)
	for _, key := range pathKeys {
		_ = v.BindEnv(key)
	}

	v.SetDefault("out", cfg.OutputPath)
	v.SetDefault("facilities-sheet", cfg.FacilitiesSheet)
	v.SetDefault("city", cfg.City)
	v.SetDefault("timezone", cfg.TimeZone)
	v.SetDefault("trim", cfg.TrailingTrim)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("logformat", cfg.LogFormat)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String("pdf", cfg.PDFPath, "Course schedule PDF to convert")
	fs.String("out", cfg.OutputPath, "Calendar file to write ('-' for stdout)")
	fs.String("facilities", cfg.FacilitiesPath, "Building table (.xlsx, .xls or .csv) with Name and Street Address columns")
	fs.String("facilities-sheet", cfg.FacilitiesSheet, "Worksheet holding the building table")
	fs.String("calendar", cfg.CalendarPath, "Optional academic calendar YAML used to cross-check term dates")
	fs.String("city", cfg.City, "City, state and zip appended to building addresses")
	fs.String("timezone", cfg.TimeZone, "IANA time zone of the sessions")
	fs.Int("trim", cfg.TrailingTrim, "Trailing characters stripped from every text block")
	fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.String("logformat", cfg.LogFormat, "Log format (console, json)")
	fs.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage(fs *pflag.FlagSet) {
	fs.Usage = func() {
		name := filepath.Base(os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", name)
		fmt.Fprintf(os.Stderr, "\nschedule2ical - converts a course schedule PDF into an iCalendar file\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --pdf=schedule.pdf --facilities=buildings.xlsx              "+
			"# writes courses.ics\n", name)
		fmt.Fprintf(os.Stderr, "  %s --pdf=schedule.pdf --facilities=buildings.csv --out=-       "+
			"# writes to stdout\n", name)
		fmt.Fprintf(os.Stderr, "  %s --pdf=schedule.pdf --facilities=FacilityList2020.xls        "+
			"# legacy workbook\n", name)
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  SCHEDULE2ICAL_PDF         Course schedule PDF\n")
		fmt.Fprintf(os.Stderr, "  SCHEDULE2ICAL_OUT         Output calendar file\n")
		fmt.Fprintf(os.Stderr, "  SCHEDULE2ICAL_FACILITIES  Building table\n")
		fmt.Fprintf(os.Stderr, "  SCHEDULE2ICAL_CALENDAR    Academic calendar YAML\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag(args []string) error {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.PDFPath = v.GetString("pdf")
	cfg.OutputPath = v.GetString("out")
	cfg.FacilitiesPath = v.GetString("facilities")
	cfg.FacilitiesSheet = v.GetString("facilities-sheet")
	cfg.CalendarPath = v.GetString("calendar")
	cfg.City = v.GetString("city")
	cfg.TimeZone = v.GetString("timezone")
	cfg.TrailingTrim = v.GetInt("trim")
	cfg.LogLevel = v.GetString("loglevel")
	cfg.LogFormat = v.GetString("logformat")
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	for _, p := range []string{c.PDFPath, c.FacilitiesPath, c.CalendarPath} {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("cannot access %s: %w", p, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", p)
		}
	}

	if c.OutputPath != StdoutPath {
		dir := filepath.Dir(c.OutputPath)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return errors.New("output directory does not exist: " + dir)
		}
	}
	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// WritesToStdout reports whether the calendar goes to standard output
func (c *Config) WritesToStdout() bool {
	return c.OutputPath == StdoutPath
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{PDF: %s, Out: %s, Facilities: %s[%s], Calendar: %s, TimeZone: %s, Trim: %d, LogLevel: %s}",
		c.PDFPath, c.OutputPath, c.FacilitiesPath, c.FacilitiesSheet, c.CalendarPath, c.TimeZone, c.TrailingTrim, c.LogLevel)
}
