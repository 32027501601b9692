// Package logging contains the leveled, appender based logger used by the blob detection
// service, its control channel and the command line tools.
package logging

import (
	"io"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newImpl(name string, level Level, inUTC bool, appenders ...Appender) *impl {
	return &impl{name: name, level: NewAtomicLevelAt(level), inUTC: inUTC, appenders: appenders}
}

// NewWriterLogger returns a logger writing Info+ lines to writer, timestamped in UTC.
func NewWriterLogger(name string, writer io.Writer) Logger {
	return newImpl(name, INFO, true, NewWriterAppender(writer))
}

// NewBlankLogger returns a Debug+ logger without appenders; add them with AddAppender.
func NewBlankLogger(name string) Logger {
	return newImpl(name, DEBUG, true)
}

// NewTestLogger returns a Debug+ logger writing through tb in local time.
func NewTestLogger(tb testing.TB) Logger {
	return newImpl("", DEBUG, false, NewTestAppender(tb))
}

// NewObservedTestLogger is NewTestLogger that also records every entry for assertions.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.LevelEnablerFunc(zapcore.DebugLevel.Enabled))
	return newImpl("", DEBUG, false, NewTestAppender(tb), core), logs
}
