package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapWrapper_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"runId": "r-1"})

	log.Info("assigned archetype", map[string]interface{}{
		"archetypeUri": "SFH_1948",
		"buildingId":   7,
	})
	log.WithError(errors.New("boom")).Error("resolution failed", nil)

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "r-1", first["runId"])
	assert.Equal(t, "SFH_1948", first["archetypeUri"])
	assert.EqualValues(t, 7, first["buildingId"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("anything"))
}

func TestNewFromOptions_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worker-1.log")

	log, err := NewFromOptions(Options{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	log.Info("assigned archetype", map[string]interface{}{"buildingId": 1})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"buildingId":1`)
}
