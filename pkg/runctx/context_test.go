// pkg/runctx/context_test.go

package runctx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/infraops/invreporter/pkg/xerr"
)

func TestNewScopesLoggerToCommand(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	rc := New(context.Background(), zap.New(core), "report")
	rc.Log.Info("hello")

	assert.Equal(t, "report", rc.Command)
	assert.Equal(t, "report", rc.Component)

	entries := logs.All()
	require.NotEmpty(t, entries)
	entry := entries[len(entries)-1]
	assert.Equal(t, "report", entry.LoggerName)
	assert.Equal(t, "report", entry.ContextMap()["component"])
	assert.Contains(t, entry.ContextMap(), "trace_id")
}

func TestEndLogsOutcome(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level zapcore.Level
	}{
		{"success", nil, zapcore.InfoLevel},
		{"expected user error", xerr.New(xerr.KindUserCancelled, "interrupted"), zapcore.WarnLevel},
		{"failure", errors.New("boom"), zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			rc := New(context.Background(), zap.New(core), "check")

			err := tt.err
			rc.End(&err)

			entries := logs.All()
			require.NotEmpty(t, entries)
			assert.Equal(t, tt.level, entries[len(entries)-1].Level)
		})
	}
}

func TestHandlePanicConvertsToError(t *testing.T) {
	core, _ := observer.New(zapcore.DebugLevel)
	rc := New(context.Background(), zap.New(core), "check")

	var err error
	func() {
		defer rc.HandlePanic(&err)
		panic("kaboom")
	}()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}
