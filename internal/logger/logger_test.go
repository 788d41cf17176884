package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit_ReplacesGlobalLogger(t *testing.T) {
	before := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(before) })

	require.NoError(t, Init("production"))
	assert.NotSame(t, before, zap.L())
	assert.False(t, zap.L().Core().Enabled(zap.DebugLevel), "production logger must not emit debug")

	require.NoError(t, Init("development"))
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))
}

func TestFromContext_AddsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	before := zap.L()
	zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(func() { zap.ReplaceGlobals(before) })

	FromContext(WithRequestID(context.Background(), "req-1")).Info("tagged")
	FromContext(context.Background()).Info("plain")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}
