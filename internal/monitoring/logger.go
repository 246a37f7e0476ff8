// Package monitoring carries the process-wide diagnostic log hooks shared by
// the tracking engine and its tools. The engine reports lifecycle transitions
// (registered, promoted, left, rescan) through Logf and high-rate per-frame
// suppression notices through Debugf.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

var debugEnabled bool

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Debugf forwards to Logf when debug output is enabled and is silent
// otherwise. Per-frame chatter (cooldown rejections, absorbed detections)
// belongs here rather than in Logf.
func Debugf(format string, v ...interface{}) {
	if !debugEnabled {
		return
	}
	Logf(format, v...)
}

// SetDebug toggles Debugf output for the whole process.
func SetDebug(on bool) {
	debugEnabled = on
}
