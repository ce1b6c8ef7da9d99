package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldsConversion(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	Error("failed to place order", errors.New("boom"), "order_id", 7, zap.String("kind", "INVARIANT"), "dangling")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "failed to place order", entries[0].Message)

	ctx := entries[0].ContextMap()
	require.Equal(t, "boom", ctx["error"])
	require.EqualValues(t, 7, ctx["order_id"])
	require.Equal(t, "INVARIANT", ctx["kind"])
	require.Equal(t, "dangling", ctx["detail"])
}

func TestLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	Debug("hidden")
	Info("shown")
	Warn("warned", "attempt", 2)

	require.Equal(t, 2, logs.Len())
	require.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
}
