package log

import (
	"path/filepath"
	"testing"

	"github.com/hatlonely/modelx/log/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	assert.NotNil(t, Default())
	assert.Same(t, Default(), Default())
}

func TestNewLoggerWithOptions(t *testing.T) {
	t.Run("nil options returns default", func(t *testing.T) {
		l, err := NewLoggerWithOptions(nil)
		require.NoError(t, err)
		assert.Same(t, Default(), l)
	})

	t.Run("file output", func(t *testing.T) {
		l, err := NewLoggerWithOptions(&logger.SLogOptions{
			Level:  "debug",
			Format: "json",
			Output: filepath.Join(t.TempDir(), "modelx.log"),
		})
		require.NoError(t, err)
		assert.NotSame(t, Default(), l)
		require.NoError(t, l.(*logger.SLog).Close())
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := NewLoggerWithOptions(&logger.SLogOptions{Level: "loud"})
		assert.Error(t, err)
	})
}
