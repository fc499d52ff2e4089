package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "***", MaskToken(""))
	assert.Equal(t, "***", MaskToken("short"))
	assert.Equal(t, "eyJh***9xQz", MaskToken("eyJhbGciOiJIUzUxMiJ9xQz"))
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t,
		"postgres://zoom:***@db:5432/zoom?sslmode=disable",
		MaskDSN("postgres://zoom:s3cr3t@db:5432/zoom?sslmode=disable"))
	assert.Equal(t, "postgres://db:5432/zoom", MaskDSN("postgres://db:5432/zoom"))
}

func TestNew_LevelOverride(t *testing.T) {
	l, err := New("zoomapi", "prod", "warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_InvalidLevelKeepsDefault(t *testing.T) {
	l, err := New("zoomapi", "dev", "nonsense")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}
