package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"info":    zapcore.InfoLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestGet_NamedByCategory(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	Get(CategoryAnalyse).Info("analysed", zap.Int("files", 3))
	Get(CategoryDiscover).Debug("walked")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "analyse", entries[0].LoggerName)
	assert.Equal(t, "analysed", entries[0].Message)
	assert.Equal(t, int64(3), entries[0].ContextMap()["files"])
	assert.Equal(t, "discover", entries[1].LoggerName)
}

func TestGet_CachesLogger(t *testing.T) {
	SetLogger(zap.NewNop())
	defer SetLogger(nil)
	assert.Same(t, Get(CategoryExport), Get(CategoryExport))
}

func TestInitialize_DisabledCategory(t *testing.T) {
	_, err := Initialize(Options{Level: "debug", Categories: map[string]bool{"watch": false}})
	require.NoError(t, err)
	defer SetLogger(nil)

	assert.False(t, Get(CategoryWatch).Core().Enabled(zapcore.ErrorLevel))
	assert.True(t, Get(CategoryAnalyse).Core().Enabled(zapcore.DebugLevel))
}

func TestInitialize_BadLevel(t *testing.T) {
	_, err := Initialize(Options{Level: "verbose"})
	assert.Error(t, err)
}
