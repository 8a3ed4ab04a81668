package logfields

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogContextAccumulates(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithCommand(ctx, "publish")
	ctx = WithStep(ctx, "push")

	assert.Equal(t, LogContext{RunID: "run-1", Command: "publish", Step: "push"}, FromContext(ctx))
	assert.Len(t, FromContext(ctx).Attrs(), 3)
	assert.Empty(t, FromContext(context.Background()).Attrs())
}

func TestContextHandlerAddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil))).With(Op("fetch"))

	ctx := WithStep(WithRunID(context.Background(), "run-9"), "fetch")
	logger.InfoContext(ctx, "Fetched")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "run-9", rec[KeyRunID])
	assert.Equal(t, "fetch", rec[KeyStep])
	assert.Equal(t, "fetch", rec[KeyOp])

	buf.Reset()
	logger.Info("No context")
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.NotContains(t, buf.String(), KeyRunID)
}
