package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestTraceIDsAttached(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "debug", "json")
	defer Initialize("info", "text")

	tid, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	sid, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    tid,
		SpanID:     sid,
		TraceFlags: trace.FlagsSampled,
	}))

	InfoContext(ctx, "rental submitted", "rental_id", "r-1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", rec["trace_id"])
	assert.Equal(t, "r-1", rec["rental_id"])
}

func TestStoreResult(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "debug", "text")
	defer Initialize("info", "text")

	StoreResult("cars.update", 0, errors.New("permission denied"))
	assert.Contains(t, buf.String(), "Store call failed")
	assert.Contains(t, buf.String(), "permission denied")
}
