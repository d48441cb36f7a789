package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zap.InfoLevel, lvl)

	lvl, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zap.DebugLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	enc, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, "json", enc)

	enc, err = ParseFormat("Console")
	require.NoError(t, err)
	assert.Equal(t, "console", enc)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestNewRejectsBadFormat(t *testing.T) {
	_, err := New(Config{Format: "xml"})
	assert.Error(t, err)

	l, err := New(Config{Level: "warn", Format: "console"})
	require.NoError(t, err)
	l.Info("dropped")
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core)).With(String("session", "abc"))

	l.Debug("step", Uint64("n", 3))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "step", entry.Message)
	assert.Equal(t, "abc", entry.ContextMap()["session"])
	assert.Equal(t, uint64(3), entry.ContextMap()["n"])
}
