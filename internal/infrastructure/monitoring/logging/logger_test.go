package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerDefaults(t *testing.T) {
	log, err := NewLogger(Config{})
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestZapLoggerFields(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	log := NewLoggerFromCore(core)

	log.Info("resolved batch",
		String("batch_id", "b-1"),
		Int("mentions", 42),
		Float64("threshold", 0.75),
		Bool("cached", true),
		Duration("elapsed", 120*time.Millisecond),
		Err(errors.New("partial failure")),
	)

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "resolved batch", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "b-1", fields["batch_id"])
	assert.EqualValues(t, 42, fields["mentions"])
	assert.Equal(t, 0.75, fields["threshold"])
	assert.Equal(t, true, fields["cached"])
}

func TestWithAndNamed(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	log := NewLoggerFromCore(core).Named("resolver").With(String("batch_id", "b-2"))

	log.Warn("invalid mention downgraded")

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "resolver", entries[0].LoggerName)
	assert.Equal(t, "b-2", entries[0].ContextMap()["batch_id"])
}

func TestErrNil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestDefaultLogger(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	assert.NotNil(t, Default(), "default starts as nop, never nil")

	l := NewNopLogger()
	SetDefault(l)
	assert.Equal(t, l, Default())

	SetDefault(nil)
	assert.Equal(t, l, Default(), "nil is ignored")
}
