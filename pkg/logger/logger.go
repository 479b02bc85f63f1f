package logger

import (
	"strings"

	"go.uber.org/zap"
)

var sugar *zap.SugaredLogger

// Init builds the global logger. Call once from main before anything logs.
func Init(environment string) {
	var cfg zap.Config
	switch strings.ToLower(environment) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// fall back to a no-op rather than failing startup over logging
		zl = zap.NewNop()
	}
	sugar = zl.Sugar()
}

func logger() *zap.SugaredLogger {
	if sugar == nil {
		sugar = zap.NewNop().Sugar()
	}
	return sugar
}

func Debug(msg string, keysAndValues ...interface{}) {
	logger().Debugw(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...interface{}) {
	logger().Infow(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...interface{}) {
	logger().Warnw(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...interface{}) {
	logger().Errorw(msg, keysAndValues...)
}

func Fatal(msg string, keysAndValues ...interface{}) {
	logger().Fatalw(msg, keysAndValues...)
}

// Sync flushes buffered entries; safe to defer from main.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
