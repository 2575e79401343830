package logx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level                string              // debug|info|warn|error
	FilePath             string              // path template, e.g. "logs/{start}.log" or "" (no file)
	ConsoleOnly          bool                // if true, do not write to the file
	HideSecretsInConsole bool                // if true, private key material is masked on the console
	Console              zapcore.WriteSyncer // defaults to stdout
}

var StartTime = time.Now()

var (
	mu      sync.RWMutex
	global  *zap.Logger
	sugar   *zap.SugaredLogger
	fileOut *os.File

	nop = zap.NewNop()
)

// Init initializes the global logger.
// cfg.FilePath may contain {start} and {pid}; the file core is skipped when it
// is empty or cfg.ConsoleOnly is set. cfg.HideSecretsInConsole masks key
// material on the console only.
func Init(cfg Config) error {
	level := parseLevel(cfg.Level)

	// encoder config base
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "lvl",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     timeEncoderRFC3339,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	// console encoder (with color)
	consoleEncCfg := encCfg
	consoleEncCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(consoleEncCfg)

	// file encoder (no color)
	fileEncCfg := encCfg
	fileEncCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	fileEncoder := zapcore.NewConsoleEncoder(fileEncCfg)

	var cores []zapcore.Core

	out := cfg.Console
	if out == nil {
		out = zapcore.Lock(os.Stdout)
	}

	// console core: possibly wrapped to redact secrets
	var consoleCore zapcore.Core = zapcore.NewCore(consoleEncoder, out, level)
	if cfg.HideSecretsInConsole {
		consoleCore = newMaskingCore(consoleCore)
	}
	cores = append(cores, consoleCore)

	// file core: if requested and not console-only
	var f *os.File
	if cfg.FilePath != "" && !cfg.ConsoleOnly {
		resolved := resolvePath(cfg.FilePath)
		if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
			return fmt.Errorf("create logs dir: %w", err)
		}
		var err error
		f, err = os.OpenFile(resolved, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(f), level))
	}

	core := zapcore.NewTee(cores...)
	logger := zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.PanicLevel),
	)

	Close()

	mu.Lock()
	global = logger
	sugar = logger.Sugar()
	fileOut = f
	mu.Unlock()

	zap.ReplaceGlobals(logger)
	return nil
}

// Close syncs and closes the file (if open).
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		_ = global.Sync()
	}
	if fileOut != nil {
		_ = fileOut.Sync()
		_ = fileOut.Close()
		fileOut = nil
	}
}

// L and S fall back to a no-op logger until Init has run, so library code
// can log unconditionally.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		return nop
	}
	return global
}

func S() *zap.SugaredLogger { return L().Sugar() }

func With(name string) *zap.SugaredLogger { return S().Named(name) }

func resolvePath(tmpl string) string {
	startLocal := StartTime.Format("2006-01-02_15-04-05")
	repl := map[string]string{
		"{start}": startLocal,
		"{pid}":   fmt.Sprintf("%d", os.Getpid()),
	}
	path := tmpl
	for k, v := range repl {
		path = strings.ReplaceAll(path, k, v)
	}
	return path
}

func parseLevel(lvl string) zapcore.LevelEnabler {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zapcore.DebugLevel
	case "info", "":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error", "err":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func timeEncoderRFC3339(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format(time.RFC3339))
}
