package ffi

import (
	"sync"

	"go.uber.org/zap"
)

var (
	loggerMu sync.Mutex
	logger   *zap.Logger
)

// InitLogging makes the process-wide boundary logger usable. It is
// idempotent and cheap, and every exported entry point calls it first, so
// a foreign caller never has to perform a separate init step. The default
// logger is a nop; embedders that want output call SetLogger.
func InitLogging() {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		logger = zap.NewNop()
	}
}

// Logger returns the boundary logger.
func Logger() *zap.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

// SetLogger replaces the boundary logger. Passing nil restores the nop
// logger.
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}
