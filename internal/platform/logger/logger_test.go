package logger

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	log, err := New("debug", "production")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New("warn", "development")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))

	_, err = New("loud", "development")
	assert.Error(t, err)
}

func TestWatermillAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	adapter := NewWatermillAdapter(zap.New(core))

	adapter.With(watermill.LogFields{"topic": "showtime.booking.confirmed"}).
		Info("message published", watermill.LogFields{"uuid": "m-1"})
	adapter.Error("publish failed", errors.New("stream closed"), nil)
	adapter.Trace("polling", nil)

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, "message published", entries[0].Message)
	assert.Equal(t, "watermill", entries[0].LoggerName)
	fields := entries[0].ContextMap()
	assert.Equal(t, "showtime.booking.confirmed", fields["topic"])
	assert.Equal(t, "m-1", fields["uuid"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "stream closed", entries[1].ContextMap()["error"])

	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
}
