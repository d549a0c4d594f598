package logger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogger_parseLevel(t *testing.T) {
	t.Run("valid value", func(t *testing.T) {
		tests := []struct {
			name     string
			input    string
			expected slog.Level
		}{
			{"debug", "debug", slog.LevelDebug},
			{"debug uppercase", "DEBUG", slog.LevelDebug},
			{"info", "info", slog.LevelInfo},
			{"warn", "warn", slog.LevelWarn},
			{"error", "ERROR", slog.LevelError},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := parseLevel(tt.input)

				require.NoError(t, err)
				require.Equal(t, tt.expected, got)
			})
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := parseLevel("loud")
		require.Error(t, err, "unknown level should not be silently accepted")
	})
}

func TestLogger_New(t *testing.T) {
	t.Run("known environments", func(t *testing.T) {
		for _, env := range []string{EnvDevelopment, EnvProduction} {
			l, err := New(env, LevelInfo)
			require.NoError(t, err)
			require.NotNil(t, l)
		}
	})

	t.Run("unknown environment", func(t *testing.T) {
		_, err := New("staging", LevelInfo)
		require.Error(t, err)
	})

	t.Run("with returns usable logger", func(t *testing.T) {
		l := NewNoOp().With("component", "auth")
		require.NotPanics(t, func() { l.Info("hello", "k", "v") })
	})
}
