package logging

import (
	"testing"
	"time"

	"counsellor/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, c config.LoggingConfig) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	Replace(zap.New(core), c)
	t.Cleanup(func() { Replace(zap.NewNop(), config.LoggingConfig{}) })
	return logs
}

func TestCategoriesCarryCatField(t *testing.T) {
	logs := observe(t, config.LoggingConfig{})

	Store("opened %s", "db")
	API("calling %s", "groq")
	APIWarn("fallback")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "opened db", entries[0].Message)
	assert.Equal(t, "store", entries[0].ContextMap()["cat"])
	assert.Equal(t, "api", entries[1].ContextMap()["cat"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
}

func TestDisabledCategoryIsSilent(t *testing.T) {
	logs := observe(t, config.LoggingConfig{Categories: map[string]bool{"catalog": false}})

	Catalog("cache miss")
	Boot("still here")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "still here", logs.All()[0].Message)
	assert.False(t, IsCategoryEnabled(CategoryCatalog))
	assert.True(t, IsCategoryEnabled(CategoryBoot))
}

func TestWithRequestID(t *testing.T) {
	logs := observe(t, config.LoggingConfig{})

	WithRequestID(CategoryHTTP, "req-1").Info("handled")

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", ctx["req"])
	assert.Equal(t, "http", ctx["cat"])
}

func TestTimerThreshold(t *testing.T) {
	logs := observe(t, config.LoggingConfig{})

	timer := StartTimer(CategoryStore, "slow query")
	time.Sleep(2 * time.Millisecond)
	elapsed := timer.StopWithThreshold(time.Nanosecond)

	assert.Greater(t, elapsed, time.Duration(0))
	require.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARNING", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
