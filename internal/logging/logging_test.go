package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"info", zapcore.InfoLevel, false},
		{" DEBUG ", zapcore.DebugLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"trace", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	got, err := ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatAuto, got)

	got, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, got)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}

func TestNew_AutoIsJSONOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", "auto", &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("scanning", zap.String("path", "/src"))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "scanning", entry["msg"])
	require.Equal(t, "/src", entry["path"])
	require.Equal(t, "info", entry["level"])
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("debug", "console", &buf)
	require.NoError(t, err)

	logger.Debug("probe", zap.Int("n", 3))
	require.Contains(t, buf.String(), "DEBUG")
	require.Contains(t, buf.String(), "probe")
}

func TestNew_InvalidInput(t *testing.T) {
	_, err := New("loud", "json", &bytes.Buffer{})
	require.Error(t, err)
	_, err = New("info", "yaml", &bytes.Buffer{})
	require.Error(t, err)
}
