// Package obs holds the service's observability plumbing: the shared
// structured logger and Prometheus HTTP metrics.
package obs

import (
	"sync"

	"go.uber.org/zap"
)

var (
	loggerOnce sync.Once
	logger     *zap.Logger
)

// Logger returns the shared structured logger used across the service.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		l, err := zap.NewProduction()
		if err != nil {
			l = zap.NewNop()
		}
		logger = l
	})
	return logger
}

// SetLoggerForTests swaps the shared logger and returns a restore func.
func SetLoggerForTests(l *zap.Logger) func() {
	Logger() // force init so the swap survives
	prev := logger
	logger = l
	return func() { logger = prev }
}
