package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlogAdapter_WithNil(t *testing.T) {
	adapter := NewSlogAdapter(nil)
	require.NotNil(t, adapter)
	assert.NotNil(t, adapter.Logger())
}

func TestNewSlogAdapter_WithLogger(t *testing.T) {
	logger := slog.Default()
	adapter := NewSlogAdapter(logger)
	assert.Same(t, logger, adapter.Logger())
}

func TestSlogAdapter_Levels(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(New(&buf, Options{Debug: true}))

	adapter.Debug("debug message", "key", "d")
	adapter.Info("info message", "key", "i")
	adapter.Warn("warn message", "key", "w")
	adapter.Error("error message", "key", "e")

	out := buf.String()
	for _, want := range []string{"level=DEBUG", "level=INFO", "level=WARN", "level=ERROR", "key=w"} {
		assert.Contains(t, out, want)
	}
}

func TestNew(t *testing.T) {
	t.Run("info level hides debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, Options{})
		logger.Debug("hidden")
		logger.Info("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("json handler", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, Options{JSON: true}).Info("hello", Site("acme"))
		assert.Contains(t, buf.String(), `"site":"acme"`)
	})

	t.Run("nil writer", func(t *testing.T) {
		assert.NotNil(t, New(nil, Options{}))
	})
}

func TestDiscard(t *testing.T) {
	// Must not panic.
	Discard().Error("dropped", Err(assert.AnError))
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = (*SlogAdapter)(nil)
	var _ Logger = (*slog.Logger)(nil)
}
