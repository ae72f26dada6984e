package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ps-net-stats/pkg/config"
)

type Logger = zap.Logger

const timeLayout = "2006-01-02 15:04:05.000 -07:00"

var (
	mu         sync.RWMutex
	baseLogger *zap.Logger
)

// InitLogger builds the process logger: a stdout core in the configured format teed with a
// JSON core written to a daily rotated file under cfg.Path. It also replaces zap's globals.
func InitLogger(cfg *config.ZapLogConfig) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", cfg.Path, err)
	}

	writer, err := rotatelogs.New(filepath.Join(cfg.Path, "ps-net-stats-%Y%m%d.log"), rotateOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	core := zapcore.NewTee(
		zapcore.NewCore(stdoutEncoder(cfg.Format), zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(fileEncoder(), zapcore.AddSync(writer), level),
	)

	l := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	mu.Lock()
	baseLogger = l
	mu.Unlock()
	zap.ReplaceGlobals(l)
	return l, nil
}

// ParseLevel also accepts the short forms dbg, inf, war and err.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "dbg", "debug":
		return zapcore.DebugLevel, nil
	case "", "inf", "info":
		return zapcore.InfoLevel, nil
	case "war", "warn":
		return zapcore.WarnLevel, nil
	case "err", "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// rotateOptions rotatelogs refuses MaxAge and RotationCount together, so age wins.
func rotateOptions(cfg *config.ZapLogConfig) []rotatelogs.Option {
	opts := []rotatelogs.Option{
		rotatelogs.WithRotationTime(24 * time.Hour),
		rotatelogs.WithRotationSize(int64(cfg.MaxSize) * 1024 * 1024),
	}
	switch {
	case cfg.MaxAge > 0:
		opts = append(opts, rotatelogs.WithMaxAge(time.Duration(cfg.MaxAge)*24*time.Hour))
	case cfg.MaxBackup > 0:
		opts = append(opts, rotatelogs.WithRotationCount(uint(cfg.MaxBackup)))
	}
	return opts
}

func stdoutEncoder(format string) zapcore.Encoder {
	if format == "json" {
		return fileEncoder()
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.ConsoleSeparator = " "
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encCfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(fmt.Sprintf("\033[34m%s\033[0m", t.Format(timeLayout)))
	}
	// two path elements are enough to find the file
	encCfg.EncodeCaller = func(c zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		rel := filepath.Join(filepath.Base(filepath.Dir(c.File)), filepath.Base(c.File))
		enc.AppendString(fmt.Sprintf("%s:%d", rel, c.Line))
	}
	return zapcore.NewConsoleEncoder(encCfg)
}

func fileEncoder() zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return zapcore.NewJSONEncoder(encCfg)
}

// GetGlobalLogger returns the logger built by InitLogger, or a no-op logger before that.
func GetGlobalLogger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if baseLogger == nil {
		return zap.NewNop()
	}
	return baseLogger
}

// Named returns a child of the global logger for one component.
func Named(component string) *zap.Logger {
	return GetGlobalLogger().Named(component)
}

func log(level zapcore.Level, msg string, fields ...zap.Field) {
	l := GetGlobalLogger().WithOptions(zap.AddCallerSkip(2))
	if ce := l.Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

func Debug(msg string, fields ...zap.Field) { log(zapcore.DebugLevel, msg, fields...) }
func Info(msg string, fields ...zap.Field) { log(zapcore.InfoLevel, msg, fields...) }
func Warn(msg string, fields ...zap.Field) { log(zapcore.WarnLevel, msg, fields...) }
func Error(msg string, fields ...zap.Field) { log(zapcore.ErrorLevel, msg, fields...) }

// Sync flushes buffered entries. Syncing a terminal stdout fails on some platforms; that
// error is dropped.
func Sync() error {
	mu.RLock()
	l := baseLogger
	mu.RUnlock()
	if l == nil {
		return nil
	}
	if err := l.Sync(); err != nil && !strings.Contains(err.Error(), "/dev/stdout") {
		return err
	}
	return nil
}
