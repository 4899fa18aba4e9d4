package main

import (
	"os"

	figmahappyx "github.com/kataras/figma-happyx"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// cliLogger implements figmahappyx.Logger with colored terminal output.
// It writes to stderr so generated code on stdout stays clean.
type cliLogger struct{}

func (l *cliLogger) Infof(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(os.Stderr, format+"\n", args...)
}

func (l *cliLogger) Warnf(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
}

func (l *cliLogger) Errorf(format string, args ...any) {
	color.New(color.FgRed).Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

// newLogger returns the coloured CLI logger, or a JSON zap logger when
// jsonOutput is set. The returned func flushes it.
func newLogger(jsonOutput bool) (figmahappyx.Logger, func(), error) {
	if !jsonOutput {
		return &cliLogger{}, func() {}, nil
	}
	zl, err := newZap(true)
	if err != nil {
		return nil, nil, err
	}
	sugar := zl.Sugar()
	return sugar, func() { _ = sugar.Sync() }, nil
}

func newZap(jsonOutput bool) (*zap.Logger, error) {
	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		config.OutputPaths = []string{"stderr"}
		return config.Build()
	}

	encoder := zap.NewDevelopmentEncoderConfig()
	encoder.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoder),
		zapcore.AddSync(os.Stderr),
		zap.InfoLevel,
	)), nil
}
