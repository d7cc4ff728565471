// Package log installs the process-wide slog handler.
package log

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"

	"rvdis/internal/logging"
)

var (
	initOnce    sync.Once
	initialized atomic.Bool
	active      *logging.LoggerCloser
)

// Setup makes the charm logger the default slog handler. debug forces the
// debug level regardless of RVDIS_LOG_LEVEL. Only the first call has any
// effect.
func Setup(debug bool) {
	initOnce.Do(func() {
		lc := logging.NewLogger()
		if debug {
			lc.SetLevel(charmlog.DebugLevel)
			lc.SetReportCaller(true)
		}
		slog.SetDefault(slog.New(lc.Logger))
		active = lc
		initialized.Store(true)
	})
}

// Close releases the log file opened by Setup, if any.
func Close() error {
	if active == nil {
		return nil
	}
	return active.Close()
}

func Initialized() bool {
	return initialized.Load()
}

// RecoverPanic logs a recovered panic with its stack and runs cleanup.
// It must be deferred directly.
func RecoverPanic(name string, cleanup func()) {
	if r := recover(); r != nil {
		if Initialized() {
			slog.Error(fmt.Sprintf("Panic in %s", name),
				"panic", r,
				"stack", string(debug.Stack()))
		}
		if cleanup != nil {
			cleanup()
		}
	}
}
