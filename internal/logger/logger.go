package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// Config selects encoding and verbosity for the global logger.
type Config struct {
	// Production emits JSON with ISO8601 timestamps; otherwise a console encoder is used.
	Production bool
	// Debug lowers the level so request traces become visible. It wins over Quiet.
	Debug bool
	// Quiet keeps only warnings and errors, so logs don't interleave with CLI output.
	Quiet bool
	// OutputPaths defaults to stderr.
	OutputPaths []string
}

func (c Config) level() zapcore.Level {
	switch {
	case c.Debug:
		return zap.DebugLevel
	case c.Quiet:
		return zap.WarnLevel
	default:
		return zap.InfoLevel
	}
}

// Init builds and installs the global logger.
func Init(c Config) error {
	var cfg zap.Config
	if c.Production {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.MessageKey = "message"
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	}

	cfg.Level = zap.NewAtomicLevelAt(c.level())
	cfg.OutputPaths = []string{"stderr"}
	if len(c.OutputPaths) > 0 {
		cfg.OutputPaths = c.OutputPaths
	}

	l, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	log = l
	return nil
}

// Set replaces the global logger. Tests use it with an observer core.
func Set(l *zap.Logger) {
	log = l
}

// L returns the global logger, falling back to a development logger.
func L() *zap.Logger {
	if log == nil {
		if err := Init(Config{}); err != nil {
			log = zap.NewNop()
		}
	}
	return log
}

func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
