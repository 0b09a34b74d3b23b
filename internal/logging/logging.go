// Package logging builds the zerolog logger shared by the CLI, the MCP server
// and the simulated tree.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation settings for the optional log file.
const (
	fileMaxSizeMB  = 10
	fileMaxBackups = 3
	fileMaxAgeDays = 7
)

// Options selects the level and sinks of a logger.
type Options struct {
	// Level is a zerolog level name; empty means info.
	Level string
	// File, when set, receives a copy of every entry with rotation.
	File string
	// Writer replaces the stderr sink. Tests use it to capture output.
	Writer io.Writer
}

// Logger is a zerolog.Logger plus the file sink it may own.
type Logger struct {
	zerolog.Logger
	file io.Closer
}

// Close releases the log file, if one was opened.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// New builds a logger from opts. Console output is human-readable when stderr
// is a terminal and NO_COLOR is unset; otherwise entries are JSON.
func New(opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	console := opts.Writer
	if console == nil {
		console = selectOutput()
	}

	l := &Logger{}
	writer := console
	if opts.File != "" {
		fw, err := fileWriter(opts.File)
		if err != nil {
			return nil, err
		}
		l.file = fw
		writer = zerolog.MultiLevelWriter(console, fw)
	}

	l.Logger = zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return l, nil
}

// ParseLevel accepts zerolog level names case-insensitively. Empty is info.
func ParseLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func selectOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return os.Stderr
}

func fileWriter(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    fileMaxSizeMB,
		MaxBackups: fileMaxBackups,
		MaxAge:     fileMaxAgeDays,
	}, nil
}
