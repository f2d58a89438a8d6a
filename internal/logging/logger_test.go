package logging

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	cfgpkg "github.com/taoyao-code/qris-server/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("whatever"))
}

func TestInitLogger(t *testing.T) {
	app := cfgpkg.AppConfig{Name: "qris-test", Env: "test"}

	t.Run("仅stdout", func(t *testing.T) {
		logger, err := InitLogger(app, cfgpkg.LoggingConfig{Level: "debug", Format: "console"})
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("滚动文件", func(t *testing.T) {
		cfg := cfgpkg.LoggingConfig{
			Level:  "warn",
			Format: "json",
			File:   cfgpkg.LumberjackConfig{Filename: filepath.Join(t.TempDir(), "qris.log"), MaxSizeMB: 1},
		}
		logger, err := InitLogger(app, cfg)
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
		logger.Warn("written to file")
	})

	t.Run("未知格式", func(t *testing.T) {
		_, err := InitLogger(app, cfgpkg.LoggingConfig{Format: "xml"})
		assert.Error(t, err)
	})
}
