package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const logsDir = "logs"

// Setup installs the default slog handler, writing to stderr and to a
// timestamped file under logs/ (log_YYYY_MM_DD-HH_MM.log).
func Setup(debug bool) error {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	name := filepath.Join(logsDir, time.Now().Format("log_2006_01_02-15_04.log"))
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewTextHandler(io.MultiWriter(os.Stderr, file), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	slog.Info("=====================history4feed======================")

	return nil
}
