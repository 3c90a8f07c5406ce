package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_WritesToConfiguredOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Output: &buf})

	logger.Info().Msg("controller reachable")

	assert.Contains(t, buf.String(), "controller reachable")
	assert.Equal(t, "2006-01-02T15:04:05Z07:00", zerolog.TimeFieldFormat)
}

func TestNew_AllLogLevels(t *testing.T) {
	testCases := []struct {
		level         string
		expectedLevel zerolog.Level
		name          string
	}{
		{"debug", zerolog.DebugLevel, "debug"},
		{"info", zerolog.InfoLevel, "info"},
		{"warn", zerolog.WarnLevel, "warn"},
		{"WARNING", zerolog.WarnLevel, "warning alias"},
		{"error", zerolog.ErrorLevel, "error"},
		{"", zerolog.InfoLevel, "empty defaults to info"},
		{"unknown", zerolog.InfoLevel, "unknown defaults to info"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			New(Config{Level: tc.level})
			assert.Equal(t, tc.expectedLevel, zerolog.GlobalLevel())
		})
	}
}

func TestNew_PrettyOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Pretty: true, Output: &buf})

	logger.Info().Str("endpoint", "/heartbeat").Msg("Sync result")

	output := buf.String()
	assert.Contains(t, output, "Sync result")
	assert.Contains(t, output, "/heartbeat")
	// console writer does not emit JSON
	assert.False(t, strings.HasPrefix(output, "{"))
}

func TestNew_ErrorLevelFiltersLower(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "error", Output: &buf})

	logger.Info().Msg("should not appear")
	assert.NotContains(t, buf.String(), "should not appear")

	logger.Error().Msg("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestSetGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Output: &buf})

	SetGlobalLogger(logger)
	defer SetGlobalLogger(zerolog.Nop())

	logger.Info().Msg("global logger test")
	assert.Contains(t, buf.String(), "global logger test")
}
