package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		infoSeen  bool
		warnSeen  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"warn", false, false, true},
		{"error", false, false, false},
		{"ERROR", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.New(config.LogConfig{Level: tt.level, Format: "text"}, &buf)

			log.Debug("debug message")
			log.Info("info message")
			log.Warn("warn message")

			out := buf.String()
			assert.Equal(t, tt.debugSeen, strings.Contains(out, "debug message"))
			assert.Equal(t, tt.infoSeen, strings.Contains(out, "info message"))
			assert.Equal(t, tt.warnSeen, strings.Contains(out, "warn message"))
		})
	}
}

func TestNewInvalidLevelWarnsAndDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(config.LogConfig{Level: "invalid_level", Format: "text"}, &buf)

	out := buf.String()
	assert.Contains(t, out, "invalid log level configured")
	assert.Contains(t, out, "invalid_level")

	buf.Reset()
	log.Debug("hidden")
	log.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewJSONFormat(t *testing.T) {
	buf := &logger.TestLogBuffer{}
	log := logger.New(config.LogConfig{Level: "info", Format: "json"}, buf)

	log.Info("structured", "component", "api_client", "status", 404)

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "structured", entries[0]["msg"])
	assert.Equal(t, "api_client", entries[0]["component"])
	assert.Equal(t, float64(404), entries[0]["status"])
}

func TestSetupSetsDefault(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	log := logger.Setup(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NotNil(t, log)
	assert.Same(t, log, slog.Default())

	slog.Info("dropped")
	slog.Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"msg":"kept"`)
}

func TestFromContextOrDefault(t *testing.T) {
	defaultLogger := slog.Default()
	customLogger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	tests := []struct {
		name     string
		ctx      context.Context
		expected *slog.Logger
	}{
		{
			name:     "nil_context_returns_default",
			ctx:      nil,
			expected: defaultLogger,
		},
		{
			name:     "context_without_logger_returns_default",
			ctx:      context.Background(),
			expected: defaultLogger,
		},
		{
			name:     "context_with_logger_returns_context_logger",
			ctx:      logger.WithLogger(context.Background(), customLogger),
			expected: customLogger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := logger.FromContextOrDefault(tt.ctx, defaultLogger)
			assert.Same(t, tt.expected, result)
		})
	}
}

func TestWithLoggerNilPanics(t *testing.T) {
	assert.Panics(t, func() {
		logger.WithLogger(context.Background(), nil)
	})
}

func TestFromContextAttachesRequestID(t *testing.T) {
	log, buf := logger.GetTestLogger(t)

	ctx := logger.WithLogger(context.Background(), log)
	ctx = logger.WithRequestID(ctx, "req-123")

	id, ok := logger.RequestID(ctx)
	require.True(t, ok)
	assert.Equal(t, "req-123", id)

	logger.FromContext(ctx).Info("with id")
	logger.AssertLogField(t, buf, "request_id", "req-123")
}

func TestAssertLogHelpers(t *testing.T) {
	log, buf := logger.GetTestLogger(t)

	log.Debug("first", "op", "get_user")
	log.With("component", "api_client").Error("second", "status", 500)

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "DEBUG", entries[0]["level"])

	logger.AssertLogContains(t, buf, `"msg":"second"`)
	logger.AssertLogField(t, buf, "op", "get_user")
	logger.AssertLogField(t, buf, "status", float64(500))
}

func TestEntriesRejectsNonJSON(t *testing.T) {
	buf := &logger.TestLogBuffer{}
	_, _ = buf.Write([]byte("{\"msg\":\"ok\"}\n\nnot json\n"))

	_, err := buf.Entries()
	assert.Error(t, err)
}
