// Package logger defines the small structured-logging interface used
// throughout the node, decoupling the rest of the code from the concrete
// zap backend in internal/logger/zap.
package logger

import "chordring/internal/ring"

// Field is a single structured logging key/value pair.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field, mirroring the teacher's logger.F(key, value) helper.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// FNode builds a Field describing a peer's key and address, used
// throughout the stabilization and routing log lines.
func FNode(key string, id ring.ID, addr string) Field {
	return Field{Key: key, Value: nodeRef{ID: id.ToHexString(true), Addr: addr}}
}

type nodeRef struct {
	ID   string `json:"id"`
	Addr string `json:"addr"`
}

// Logger is the structured logger every component depends on.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// Named returns a child logger scoped under the given name.
	Named(name string) Logger

	// With returns a child logger with the given fields attached to
	// every subsequent line.
	With(fields ...Field) Logger
}

// NopLogger discards everything, used as the default before a real
// logger is configured and in tests.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}

func (n NopLogger) Named(string) Logger  { return n }
func (n NopLogger) With(...Field) Logger { return n }
