// Package logging builds the zap logger used by the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format selects the log encoder.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
	// FormatAuto picks console on a terminal and JSON otherwise.
	FormatAuto Format = "auto"
)

// New returns a logger writing to w at the given level and format.
func New(level, format string, w io.Writer) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if f == FormatAuto {
		f = FormatJSON
		if isTerminal(w) {
			f = FormatConsole
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch f {
	case FormatConsole:
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

// ParseLevel accepts debug, info, warn (or warning) and error. Empty means
// info.
func ParseLevel(value string) (zapcore.Level, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q", value)
	}
}

// ParseFormat accepts console, json and auto. Empty means auto.
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.TrimSpace(strings.ToLower(value))); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatConsole, FormatJSON:
		return f, nil
	default:
		return FormatAuto, fmt.Errorf("invalid log format %q", value)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
