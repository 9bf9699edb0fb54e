// Package chatlog is a small leveled wrapper around the standard log
// package, prefixed per node id. Grounded on
// chaitanyaphalak-go-mcast/pkg/mcast/definition/default_logger.go, which
// is itself the pack's one example of going beyond bare log.Printf while
// still staying on the standard library — no pack repo imports a
// structured logging library directly (see SPEC_FULL.md's AMBIENT STACK
// section).
package chatlog

import (
	"fmt"
	"io"
	"log"
	"os"
)

const calldepth = 3

// Logger is a leveled logger scoped to a single node id, matching the
// teacher's "[%s] ..." convention (ricart_agrawala.go, main.go).
type Logger struct {
	*log.Logger
	nodeID string
	debug  bool
}

// New returns a Logger writing to w (os.Stderr in production), prefixed
// with nodeID.
func New(w io.Writer, nodeID string) *Logger {
	return &Logger{
		Logger: log.New(w, "", log.LstdFlags),
		nodeID: nodeID,
	}
}

// NewDefault returns a Logger writing to os.Stderr.
func NewDefault(nodeID string) *Logger {
	return New(os.Stderr, nodeID)
}

// ToggleDebug enables or disables Debug/Debugf output and returns the new value.
func (l *Logger) ToggleDebug(value bool) bool {
	l.debug = value
	return l.debug
}

func (l *Logger) line(level, msg string) string {
	return fmt.Sprintf("[%s] %s: %s", l.nodeID, level, msg)
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.Output(calldepth, l.line("INFO", fmt.Sprintf(format, v...)))
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.Output(calldepth, l.line("WARN", fmt.Sprintf(format, v...)))
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.Output(calldepth, l.line("ERROR", fmt.Sprintf(format, v...)))
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.debug {
		l.Output(calldepth, l.line("DEBUG", fmt.Sprintf(format, v...)))
	}
}

// Fatalf logs and exits with status 1, for the precondition violations
// and startup misconfiguration spec §7 classifies as fatal.
func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.Output(calldepth, l.line("FATAL", fmt.Sprintf(format, v...)))
	os.Exit(1)
}
