// Package zap adapts go.uber.org/zap to the logger.Logger interface and
// wires in lumberjack-based log file rotation when configured.
package zap

import (
	"os"

	"chordring/internal/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Config controls how the zap logger is constructed.
type Config struct {
	Active bool   `yaml:"active"`
	Level  string `yaml:"level"`

	// File, when non-empty, directs output to a rotated log file instead
	// of stderr.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// New builds a *zap.Logger from the given configuration.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(levelOrDefault(cfg.Level))
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var sink zapcore.WriteSyncer
	if cfg.File != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 5),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
			Compress:   true,
		})
	} else {
		sink = zapcore.Lock(zapcore.AddSync(os.Stderr))
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), sink, level)
	return zap.New(core, zap.AddCaller()), nil
}

func levelOrDefault(level string) string {
	if level == "" {
		return "info"
	}
	return level
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// adapter implements logger.Logger on top of *zap.Logger.
type adapter struct {
	l *zap.Logger
}

// NewZapAdapter wraps an existing *zap.Logger.
func NewZapAdapter(l *zap.Logger) logger.Logger {
	return &adapter{l: l}
}

func toZapFields(fields []logger.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

func (a *adapter) Debug(msg string, fields ...logger.Field) { a.l.Debug(msg, toZapFields(fields)...) }
func (a *adapter) Info(msg string, fields ...logger.Field)  { a.l.Info(msg, toZapFields(fields)...) }
func (a *adapter) Warn(msg string, fields ...logger.Field)  { a.l.Warn(msg, toZapFields(fields)...) }
func (a *adapter) Error(msg string, fields ...logger.Field) { a.l.Error(msg, toZapFields(fields)...) }

func (a *adapter) Named(name string) logger.Logger {
	return &adapter{l: a.l.Named(name)}
}

func (a *adapter) With(fields ...logger.Field) logger.Logger {
	return &adapter{l: a.l.With(toZapFields(fields)...)}
}
