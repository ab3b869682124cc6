package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// LogOptions describes where a process sends its structured logs
type LogOptions struct {
	// Dir receives <Prefix>-<timestamp>.log files. Empty disables file logging.
	Dir    string
	Prefix string
	// Keep is how many log files of Prefix survive pruning
	Keep int

	Level slog.Level
	JSON  bool
	// Console also receives every record when set
	Console io.Writer
}

// NewLogger builds the process logger. The returned func closes the log file
// and is never nil.
func NewLogger(opts LogOptions) (*slog.Logger, func() error, error) {
	closeFn := func() error { return nil }

	var writers []io.Writer
	if opts.Console != nil {
		writers = append(writers, opts.Console)
	}
	if opts.Dir != "" {
		f, err := openLogFile(opts.Dir, opts.Prefix, opts.Keep)
		if err != nil {
			return nil, closeFn, err
		}
		writers = append(writers, f)
		closeFn = f.Close
	}

	out := io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	var handler slog.Handler = slog.NewTextHandler(out, handlerOpts)
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	}
	return slog.New(handler), closeFn, nil
}

// openLogFile creates a timestamped file and prunes the oldest ones
func openLogFile(dir, prefix string, keep int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	name := filepath.Join(dir, fmt.Sprintf("%s-%s.log", prefix, time.Now().Format("2006-01-02T15-04-05")))
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	if err := pruneLogs(dir, prefix, keep); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to prune old logs: %v\n", err)
	}
	return f, nil
}

func pruneLogs(dir, prefix string, keep int) error {
	if keep <= 0 {
		return nil
	}
	files, err := filepath.Glob(filepath.Join(dir, prefix+"-*.log"))
	if err != nil {
		return err
	}
	if len(files) <= keep {
		return nil
	}

	// timestamps sort chronologically
	sort.Strings(files)
	for _, old := range files[:len(files)-keep] {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("remove %s: %w", old, err)
		}
	}
	return nil
}
