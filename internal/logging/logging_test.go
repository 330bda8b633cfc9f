package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		env, level string
		debug      bool
		warnOnly   bool
	}{
		{"development", "debug", true, false},
		{"production", "info", false, false},
		{"production", "warn", false, true},
		{"development", "nonsense", false, false},
	}
	for _, tt := range tests {
		logger, err := New(tt.env, tt.level)
		require.NoError(t, err)
		assert.Equal(t, tt.debug, logger.Core().Enabled(zapcore.DebugLevel), "%s/%s", tt.env, tt.level)
		assert.Equal(t, !tt.warnOnly, logger.Core().Enabled(zapcore.InfoLevel), "%s/%s", tt.env, tt.level)
	}
}
