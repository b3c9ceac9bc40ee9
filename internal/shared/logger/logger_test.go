package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	local, err := New("odds-service", "local", "")
	require.NoError(t, err)
	assert.True(t, local.Core().Enabled(zapcore.DebugLevel))

	prod, err := New("odds-service", "prod", "")
	require.NoError(t, err)
	assert.False(t, prod.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, prod.Core().Enabled(zapcore.InfoLevel))

	quiet, err := New("odds-service", "local", "warn")
	require.NoError(t, err)
	assert.False(t, quiet.Core().Enabled(zapcore.InfoLevel))
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New("odds-service", "prod", "loud")
	assert.Error(t, err)
}
