package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestLoggerChildrenShareEntries(t *testing.T) {
	root := NewTestLogger()
	child := root.Named("solve").With(String("job_id", "j1"))

	child.Info("page solved", Int("page", 1))
	root.Warn("upload failed")

	entries := root.GetEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "solve", entries[0].Logger)
	assert.Len(t, entries[0].Fields, 2)
	assert.Equal(t, "WARN", entries[1].Level)
	assert.Equal(t, 1, root.Count("WARN"))

	root.Clear()
	assert.Empty(t, root.GetEntries())
	assert.NoError(t, child.Sync())
}

func TestFromContextAddsRequestID(t *testing.T) {
	root := NewTestLogger()
	ctx := ContextWithRequestID(context.Background(), "req-42")

	assert.Equal(t, "req-42", RequestIDFromContext(ctx))
	FromContext(ctx, root).Info("hello")
	FromContext(context.Background(), root).Info("bare")

	entries := root.GetEntries()
	require.Len(t, entries, 2)
	require.Len(t, entries[0].Fields, 1)
	assert.Equal(t, "request_id", entries[0].Fields[0].Key)
	assert.Empty(t, entries[1].Fields)
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, err := NewLogger(WithLevel("loud"))
	require.Error(t, err)

	l, err := NewLogger(WithLevel("debug"), WithEncoding("console"), WithOutputPaths([]string{"stderr"}))
	require.NoError(t, err)
	l.Named("test").Debug("ok")
}
