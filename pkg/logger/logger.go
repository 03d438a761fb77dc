// pkg/logger/logger.go

package logger

import (
	"os"
	"sync"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var initOnce sync.Once

// Init configures the process-wide zap logger and installs it as the
// global. Console encoding on stderr keeps stdout free for command
// output. Safe to call more than once.
func Init(debug bool) {
	initOnce.Do(func() {
		level := zap.InfoLevel
		if debug {
			level = zap.DebugLevel
		}

		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.Lock(os.Stderr),
			level,
		)
		log := zap.New(core)
		zap.ReplaceGlobals(log)
		otelzap.ReplaceGlobals(otelzap.New(log))
	})
}

// Sync flushes buffered log entries. Errors are ignored: stderr sync
// failures on exit are not actionable.
func Sync() {
	_ = zap.L().Sync()
}
