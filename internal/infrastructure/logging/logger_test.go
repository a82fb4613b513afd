package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Run("development logger honours level", func(t *testing.T) {
		logger, err := New("development", "warn")
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zap.InfoLevel))
		assert.True(t, logger.Core().Enabled(zap.WarnLevel))
	})

	t.Run("production logger at debug", func(t *testing.T) {
		logger, err := New("production", "debug")
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zap.DebugLevel))
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := New("development", "loud")
		assert.Error(t, err)
	})
}
