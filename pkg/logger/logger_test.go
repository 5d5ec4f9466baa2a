package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("Should write structured output with fields", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: InfoLevel, Output: &buf})

		log.Info("report assembled", "blocks", 3)

		out := buf.String()
		assert.Contains(t, out, "report assembled")
		assert.Contains(t, out, "blocks")
	})

	t.Run("Should suppress entries below the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: ErrorLevel, Output: &buf})

		log.Info("quiet")
		log.Error("loud")

		out := buf.String()
		assert.NotContains(t, out, "quiet")
		assert.Contains(t, out, "loud")
	})

	t.Run("Should emit JSON when configured", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: InfoLevel, Output: &buf, JSON: true})

		log.Info("hello", "key", "value")

		assert.Contains(t, buf.String(), `"key":"value"`)
	})

	t.Run("Should carry With fields into child loggers", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: InfoLevel, Output: &buf}).With("campaign", "camp-1")

		log.Info("scoped")

		assert.Contains(t, buf.String(), "camp-1")
	})
}

func TestFromContext(t *testing.T) {
	t.Run("Should round-trip a logger through the context", func(t *testing.T) {
		log := NewLogger(TestConfig())
		ctx := ContextWithLogger(context.Background(), log)

		require.Same(t, log, FromContext(ctx))
	})

	t.Run("Should fall back to the default logger", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
		assert.NotNil(t, FromContext(nil)) //nolint:staticcheck
	})
}
