package core

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop()

// initLogger enables a development console logger on stderr when verbose
// is set. Otherwise logging is a no-op.
func initLogger(verbose bool) {
	if !verbose {
		log = zap.NewNop()
		return
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		log = zap.NewNop()
		return
	}
	log = l.Named("tabrefresh")
}

// Logger returns the diagnostic logger.
func Logger() *zap.Logger {
	return log
}

// SyncLogger flushes buffered log entries.
func SyncLogger() {
	_ = log.Sync()
}
