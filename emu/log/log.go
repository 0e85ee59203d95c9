// Package log provides module-scoped structured logging for the emulator.
//
// Each hardware component logs through its own Module constant. Warnings and
// errors are always emitted; debug/info lines are only emitted for modules
// enabled via EnableDebugModules, so hot paths can log freely.
package log

import (
	"io"

	"gopkg.in/Sirupsen/logrus.v0"
)

type Level = logrus.Level

const (
	PanicLevel = logrus.PanicLevel
	FatalLevel = logrus.FatalLevel
	ErrorLevel = logrus.ErrorLevel
	WarnLevel  = logrus.WarnLevel
	InfoLevel  = logrus.InfoLevel
	DebugLevel = logrus.DebugLevel
)

func init() {
	logrus.SetLevel(logrus.DebugLevel)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
}

// SetOutput redirects all log output (os.Stderr by default).
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

// Disable silences all logging, warnings and errors included.
func Disable() {
	logrus.SetOutput(io.Discard)
}

// A LogContext contributes ambient fields (current frame, CPU cycle, ...) to
// every emitted entry.
type LogContext interface {
	AddLogContext(e *EntryZ)
}

var contexts []LogContext

func AddContext(c LogContext) {
	contexts = append(contexts, c)
}
