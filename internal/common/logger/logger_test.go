// internal/common/logger/logger_test.go
package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	l, err := New("warn", "json", "stderr")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	_, err = New("verbose", "json", "stderr")
	assert.Error(t, err)
}

func TestZapWrapper_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"taskType": "dms-sync-closed-applications"})

	log.WithError(errors.New("boom")).Warn("Page fetch failed", map[string]interface{}{
		"page":        2,
		"procedureId": 201201,
	})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Page fetch failed", entry.Message)

	ctx := entry.ContextMap()
	assert.Equal(t, "dms-sync-closed-applications", ctx["taskType"])
	assert.Equal(t, "boom", ctx["error"])
	assert.EqualValues(t, 2, ctx["page"])
}

func TestMapToZapFields_Sorted(t *testing.T) {
	fields := mapToZapFields(map[string]interface{}{"b": 1, "a": 2, "err": errors.New("x")})

	require.Len(t, fields, 3)
	assert.Equal(t, "a", fields[0].Key)
	assert.Equal(t, "b", fields[1].Key)
	assert.Equal(t, "err", fields[2].Key)
	assert.Nil(t, mapToZapFields(nil))
}
