// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// appconf writes lifecycle and error events to one JSON log per day under
// `<dir>/YYYY-MM-DD.log` when a log directory is configured.  When running
// in an interactive TTY, or when no directory is set, the same events go
// to stderr through a console encoder, keeping stdout free for command
// output.  Rotation, compression, and retention are handled by Lumberjack.
//
// Usage
// -----
//
//	log, err := logger.New(logger.Options{Dir: s.Log.Dir, Level: "info", Console: tty})
//	if err != nil { … }
//	log.Infow("config loaded", "env", g.Env)
//
// Notes
// -----
// • Zap core uses ISO-8601 timestamps and lowercase levels.
// • The logger is installed via zap.ReplaceGlobals, so the config loader's
//   zap.S() calls land in the same sinks.
// • Oxford commas, two spaces after periods.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects sinks and verbosity.
type Options struct {
	Dir     string // empty: no file sink
	Level   string // debug, info, warn, error; empty means info
	Console bool   // tee to stderr
}

// New returns a *zap.SugaredLogger built from opts and installs it as the
// process-wide default.
func New(opts Options) (*zap.SugaredLogger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		l, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = l
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	var (
		cores     []zapcore.Core
		errOutput zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	)

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, err
		}
		fileSink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, time.Now().Format("2006-01-02")+".log"),
			MaxSize:    50, // MB
			MaxBackups: 7,  // keep last seven files
			MaxAge:     14, // days
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), fileSink, level))
		errOutput = fileSink
	}

	if opts.Console || opts.Dir == "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.Lock(os.Stderr),
			level,
		))
	}

	z := zap.New(zapcore.NewTee(cores...), zap.ErrorOutput(errOutput)).Sugar()

	// Make this the global logger so zap.S() works everywhere after startup.
	zap.ReplaceGlobals(z.Desugar())

	z.Debugw("logger online", "dir", opts.Dir, "console", opts.Console, "level", level)
	return z, nil
}
