// Package logging tees the standard logger into a rotating log file.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/jrick/logrotate/rotator"
)

const (
	// ThresholdKB is the size at which the log file is rolled.
	ThresholdKB = 10 * 1024
	// MaxRolls is the number of rolled files kept.
	MaxRolls = 3
)

// teeWriter writes to the console and to the rotator.
type teeWriter struct {
	console io.Writer
	r       *rotator.Rotator
}

func (w teeWriter) Write(p []byte) (int, error) {
	w.console.Write(p)
	return w.r.Write(p)
}

// Setup points the standard logger at console and, when logFile is set, at
// a rotator writing logFile. The returned func closes the rotator and
// restores console-only output.
func Setup(logFile string, console io.Writer) (func() error, error) {
	if console == nil {
		console = os.Stderr
	}
	if logFile == "" {
		log.SetOutput(console)
		return func() error { return nil }, nil
	}
	if dir := filepath.Dir(logFile); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	r, err := rotator.New(logFile, ThresholdKB, false, MaxRolls)
	if err != nil {
		return nil, fmt.Errorf("failed to create file rotator: %w", err)
	}
	log.SetOutput(teeWriter{console: console, r: r})
	return func() error {
		log.SetOutput(console)
		return r.Close()
	}, nil
}
