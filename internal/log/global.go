package log

import "sync"

var (
	globalMu sync.Mutex
	global   *Logger
)

// SetDefaultLogger installs the process-wide logger. The root command
// calls this once after parsing the verbosity flags.
func SetDefaultLogger(l *Logger) {
	globalMu.Lock()
	global = l
	globalMu.Unlock()
}

// DefaultLogger returns the process-wide logger, lazily creating one
// with the default configuration on first use.
func DefaultLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = Default()
	}
	return global
}
