// Package logging builds the zap logger used for diagnostics. Logs go to
// stderr and, optionally, to a size-rotated file; stdout is left to the report.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configure the logger.
type Options struct {
	Verbose    bool      // debug level on the console instead of warn
	File       string    // optional log file, rotated by size
	Writer     io.Writer // console destination, os.Stderr when nil
	MaxSize    int       // megabytes before the file is rotated
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// DefaultOptions returns console-only logging at warn level.
func DefaultOptions() Options {
	return Options{
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     7,
	}
}

// ConsoleLevel returns the minimum level written to the console.
func (o Options) ConsoleLevel() zapcore.Level {
	if o.Verbose {
		return zapcore.DebugLevel
	}
	return zapcore.WarnLevel
}

// FileLevel returns the minimum level written to the log file. The file
// always keeps the run summary, so it never drops below info.
func (o Options) FileLevel() zapcore.Level {
	if o.Verbose {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// New builds a logger from opts. The returned function flushes buffered
// entries and closes the log file; call it once the run is over.
func New(opts Options) (*zap.SugaredLogger, func()) {
	encoder := getEncoder()

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	// Every worker logs through the same core; the writer may not be safe
	// for concurrent use.
	console := zapcore.Lock(zapcore.AddSync(writer))
	consoleLevel := opts.ConsoleLevel()
	cores := []zapcore.Core{
		zapcore.NewCore(encoder, console, zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= consoleLevel
		})),
	}

	var file *lumberjack.Logger
	if opts.File != "" {
		file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
		}
		fileLevel := opts.FileLevel()
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(file), zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= fileLevel
		})))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	sugar := logger.Sugar()

	return sugar, func() {
		_ = sugar.Sync()
		if file != nil {
			_ = file.Close()
		}
	}
}

func getEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}
