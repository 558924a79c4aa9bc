package applog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"meal-export-backend/config"
)

const (
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 20
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup configures the global logrus logger. When cfg.Dir is set, output is
// also written to a rotating file; the returned Closer releases it.
func Setup(cfg config.LogConfig) (io.Closer, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	var writers []io.Writer
	if cfg.Console || cfg.Dir == "" {
		writers = append(writers, os.Stdout)
	}

	var closer io.Closer = nopCloser{}
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		maxSize := cfg.MaxSizeMB
		if maxSize == 0 {
			maxSize = defaultMaxSizeMB
		}
		maxBackups := cfg.MaxBackups
		if maxBackups == 0 {
			maxBackups = defaultMaxBackups
		}

		file := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, cfg.FileName+".log"),
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			LocalTime:  true,
		}
		writers = append(writers, file)
		closer = file
	}

	log.SetOutput(io.MultiWriter(writers...))
	return closer, nil
}
