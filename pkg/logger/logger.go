package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLogLevel = "info"

var log = zap.NewNop()

// Init builds the process logger. Production emits JSON, anything else a
// colored console encoder. LOG_LEVEL overrides the level.
func Init(environment string) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))))); err != nil {
		_ = level.UnmarshalText([]byte(defaultLogLevel))
	}

	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = level
	cfg.DisableStacktrace = true

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		return
	}
	log = l
}

// SetLogger replaces the process logger, mainly for tests.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	log = l
}

// L exposes the underlying zap logger.
func L() *zap.Logger {
	return log
}

func Sync() {
	_ = log.Sync()
}

func Debug(msg string, args ...any) {
	log.Debug(msg, fields(args)...)
}

func Info(msg string, args ...any) {
	log.Info(msg, fields(args)...)
}

func Warn(msg string, args ...any) {
	log.Warn(msg, fields(args)...)
}

func Error(msg string, args ...any) {
	log.Error(msg, fields(args)...)
}

func Fatal(msg string, args ...any) {
	log.Fatal(msg, fields(args)...)
}

// fields turns loose args into zap fields: "key", value pairs, bare errors
// and ready-made zap.Field values.
func fields(args []any) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	out := make([]zap.Field, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch v := args[i].(type) {
		case zap.Field:
			out = append(out, v)
		case error:
			out = append(out, zap.Error(v))
		case string:
			if i+1 < len(args) {
				out = append(out, zap.Any(v, args[i+1]))
				i++
				continue
			}
			out = append(out, zap.String("detail", v))
		default:
			out = append(out, zap.Any(fmt.Sprintf("arg%d", i), v))
		}
	}

	return out
}

// PrintfAdapter adapts the logger to printf-style interfaces such as gorm's logger writer.
type PrintfAdapter struct{}

func NewPrintfAdapter() PrintfAdapter {
	return PrintfAdapter{}
}

func (PrintfAdapter) Printf(format string, args ...any) {
	log.Sugar().Infof(format, args...)
}
