// Package monitoring holds the process-wide diagnostic logger used by the
// depth and passthrough packages.
package monitoring

import (
	"fmt"
	"log"
	"sync"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

var (
	onceMu   sync.Mutex
	onceSeen = map[string]struct{}{}
)

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Warnf logs a recoverable condition, such as a depth texture that is not
// ready yet.
func Warnf(format string, v ...interface{}) {
	Logf("warning: "+format, v...)
}

// LogOnce logs the formatted message the first time it is seen and drops
// identical repeats. Per-frame callers use it to avoid flooding the log.
func LogOnce(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	onceMu.Lock()
	_, seen := onceSeen[msg]
	if !seen {
		onceSeen[msg] = struct{}{}
	}
	onceMu.Unlock()
	if !seen {
		Logf("%s", msg)
	}
}

// ResetOnce forgets every message recorded by LogOnce.
func ResetOnce() {
	onceMu.Lock()
	onceSeen = map[string]struct{}{}
	onceMu.Unlock()
}
