package logging

import (
	"fmt"
	"os"

	"github.com/labstack/gommon/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. format is "json", "console", or empty to use
// console output on a terminal and JSON otherwise.
func New(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if format == "" {
		format = "json"
		if tty {
			format = "console"
		}
	}

	switch format {
	case "json":
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(lvl)
		return config.Build()
	case "console":
		enc := zap.NewDevelopmentEncoderConfig()
		if tty {
			enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(enc),
			zapcore.AddSync(colorable.NewColorableStdout()),
			lvl,
		)
		return zap.New(core, zap.AddCaller()), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// EchoLevel maps a zap level name onto echo's logger levels.
func EchoLevel(level string) log.Lvl {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return log.INFO
	}
	switch {
	case lvl <= zapcore.DebugLevel:
		return log.DEBUG
	case lvl == zapcore.InfoLevel:
		return log.INFO
	case lvl == zapcore.WarnLevel:
		return log.WARN
	}
	return log.ERROR
}
