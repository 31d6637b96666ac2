package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "info", Format: "json", Output: &buf, ServiceName: "mineru-api"})

	ctx := ContextWithRequestID(context.Background(), "req-1")
	logger.WithContext(ctx).Info().Str("kind", "pdf").Msg("processing")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "mineru-api", line["service"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "pdf", line["kind"])
	assert.Equal(t, "processing", line["message"])
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Output: &buf})

	logger.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel_Default(t *testing.T) {
	assert.Equal(t, parseLevel("info"), parseLevel("nonsense"))
}
