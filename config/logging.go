package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetupLogger applies cfg to logger, or to the standard logger when logger
// is nil. The returned closer closes the log file, if one was opened.
func SetupLogger(logger *logrus.Logger, cfg LoggingConfig) (io.Closer, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("%w: logging.level %q", ErrInvalid, cfg.Level)
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		return nil, fmt.Errorf("%w: logging.format %q", ErrInvalid, cfg.Format)
	}

	if cfg.File == "" {
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetOutput(f)

	logger.WithFields(logrus.Fields{
		"function": "SetupLogger",
		"level":    level.String(),
		"file":     cfg.File,
	}).Debug("Logging configured")

	return f, nil
}
