package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger builds the process logger. In stdio mode stdout carries the MCP
// stream, so logs go to stderr unless a log file is configured. The returned
// closer releases the log file, if any.
func newLogger(level, path string, stdio bool) (*slog.Logger, func()) {
	out := io.Writer(os.Stdout)
	if stdio {
		out = os.Stderr
	}
	closer := func() {}
	if path != "" {
		fileWriter, err := newLogFileWriter(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			out = fileWriter
			closer = func() { _ = fileWriter.Close() }
		}
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
	return logger, closer
}

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

// logFileWriter appends to a file and drops the oldest bytes once it grows
// past maxLogSize, keeping the newest keepLogSize bytes.
type logFileWriter struct {
	file        *os.File
	mu          sync.Mutex
	maxLogSize  int64
	keepLogSize int64
}

func newLogFileWriter(path string) (*logFileWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	w := &logFileWriter{file: file, maxLogSize: maxLogSizeBytes, keepLogSize: keepLogSizeBytes}
	if err := w.truncateIfNeeded(); err != nil {
		_ = file.Close()
		return nil, err
	}
	return w, nil
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	if err := w.truncateIfNeeded(); err != nil {
		return n, err
	}
	return n, nil
}

func (w *logFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func (w *logFileWriter) truncateIfNeeded() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= w.maxLogSize {
		return nil
	}

	buf := make([]byte, w.keepLogSize)
	n, err := w.file.ReadAt(buf, size-w.keepLogSize)
	if err != nil && err != io.EOF {
		return err
	}
	buf = buf[:n]

	if err := w.file.Truncate(0); err != nil {
		return err
	}
	// O_APPEND writes land at the new end of file.
	_, err = w.file.Write(buf)
	return err
}
