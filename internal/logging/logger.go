// Package logging builds the process logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New builds a zap logger writing to stderr. Console format uses the
// development config, JSON the production one. An unknown level falls back
// to info.
func New(level, format string) (*zap.Logger, error) {
	var cfg zap.Config
	if format == FormatJSON {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = FormatJSON
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Encoding = FormatConsole
	}

	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if level != "" {
		if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
