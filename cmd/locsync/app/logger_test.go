package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/locsync/internal/config"
	"github.com/agentstation/locsync/pkg/constants"
)

// TestDetermineLogLevel tests the log level precedence logic.
func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		flags      Flags
		expected   string
	}{
		{name: "default level when nothing set", expected: "info"},
		{name: "configured level", configured: "error", expected: "error"},
		{name: "configured warning alias", configured: "warning", expected: "warn"},
		{name: "invalid configured level", configured: "loud", expected: "info"},
		{name: "verbose beats configured", configured: "error", flags: Flags{Verbose: true}, expected: "debug"},
		{name: "quiet sets warn", flags: Flags{Quiet: true}, expected: "warn"},
		{name: "quiet wins over verbose", flags: Flags{Verbose: true, Quiet: true}, expected: "warn"},
		{name: "explicit log-level overrides both flags", flags: Flags{LogLevel: "trace", Verbose: true, Quiet: true}, expected: "trace"},
		{name: "invalid explicit log-level", flags: Flags{LogLevel: "chatty"}, expected: "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := tt.flags
			assert.Equal(t, tt.expected, determineLogLevel(tt.configured, &flags))
		})
	}
}

func TestNewLogger_WritesLogFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Log.Dir = dir
	cfg.Log.Format = "json"

	logger, closer := NewLogger(cfg, &Flags{Quiet: true})
	logger.Info().Msg("hidden")
	logger.Warn().Msg("kept")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, constants.LogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "kept")
	assert.NotContains(t, string(data), "hidden")
}
