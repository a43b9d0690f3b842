package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"glampbook/internal/config"

	"github.com/rs/zerolog"
)

// New builds the root logger for the booking server. Every line carries the
// service identity; subsystems derive their own logger via Component. The
// returned closer is non-nil only for file output.
func New(cfg config.LoggingConfig, app config.AppConfig) (*zerolog.Logger, io.Closer, error) {
	output, closer, err := writerFor(cfg)
	if err != nil {
		return nil, nil, err
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	base := zerolog.New(output).
		Level(levelFor(cfg.Level)).
		With().
		Timestamp().
		Str("service", app.Name).
		Str("env", app.Environment).
		Logger()

	return &base, closer, nil
}

// Component derives a subsystem logger: resolver, sync, api and the like all
// log under their own component field.
func Component(base *zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}

func levelFor(raw string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

func writerFor(cfg config.LoggingConfig) (io.Writer, io.Closer, error) {
	var output io.Writer = os.Stdout
	var closer io.Closer

	switch strings.ToLower(strings.TrimSpace(cfg.Output)) {
	case "stderr":
		output = os.Stderr
	case "file":
		if cfg.FilePath == "" {
			return nil, nil, fmt.Errorf("logging.output=file requires logging.file_path")
		}
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		output = file
		closer = file
	}

	if strings.ToLower(strings.TrimSpace(cfg.Format)) == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}
	return output, closer, nil
}
