package mocks

import (
	"fmt"
	"strings"
	"sync"

	"github.com/user/vpetranscode/pkg/ports"
)

// LogEntry is one recorded log call.
type LogEntry struct {
	Level     ports.LogLevel
	Component string
	Message   string
}

// Logger records log calls. Component loggers share the parent's records.
type Logger struct {
	component string
	rec       *logRecords
}

type logRecords struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewLogger creates a new mock Logger.
func NewLogger() *Logger {
	return &Logger{rec: &logRecords{}}
}

func (l *Logger) add(level ports.LogLevel, msg string, args []interface{}) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.rec.mu.Lock()
	defer l.rec.mu.Unlock()
	l.rec.entries = append(l.rec.entries, LogEntry{Level: level, Component: l.component, Message: msg})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.add(ports.LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.add(ports.LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.add(ports.LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.add(ports.LevelError, msg, args) }

func (l *Logger) WithComponent(component string) ports.Logger {
	return &Logger{component: component, rec: l.rec}
}

// Entries returns a copy of the recorded entries.
func (l *Logger) Entries() []LogEntry {
	l.rec.mu.Lock()
	defer l.rec.mu.Unlock()
	return append([]LogEntry(nil), l.rec.entries...)
}

// HasLevel reports whether anything was logged at level.
func (l *Logger) HasLevel(level ports.LogLevel) bool {
	for _, e := range l.Entries() {
		if e.Level == level {
			return true
		}
	}
	return false
}

// Contains reports whether any message contains substr.
func (l *Logger) Contains(substr string) bool {
	for _, e := range l.Entries() {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

var _ ports.Logger = (*Logger)(nil)
