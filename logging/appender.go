package logging

import (
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultTimeFormatStr is the time format of every log line.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// Appender is an output for log entries. It is the subset of zapcore.Core that loggers need, so
// zap cores (such as the test observer) can be used directly.
type Appender interface {
	Write(zapcore.Entry, []zapcore.Field) error
	// Sync flushes anything buffered by Write.
	Sync() error
}

// ConsoleAppender writes one tab separated, human readable line per entry.
type ConsoleAppender struct {
	io.Writer
}

// NewWriterAppender creates a new appender that outputs to the input writer.
func NewWriterAppender(writer io.Writer) ConsoleAppender {
	return ConsoleAppender{writer}
}

// Write outputs the log entry to the underlying stream.
func (appender ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	line, encodeErr := formatEntry(entry, fields, false)
	if _, err := appender.Writer.Write([]byte(line + "\n")); err != nil {
		return err
	}
	return encodeErr
}

// Sync is a no-op.
func (appender ConsoleAppender) Sync() error {
	return nil
}

// FileAppender writes the console format to a file that is rotated once it reaches
// maxFileSizeMB, keeping a few compressed backups.
type FileAppender struct {
	ConsoleAppender
	file *lumberjack.Logger
}

const (
	maxFileSizeMB  = 64
	maxFileBackups = 3
)

// NewFileAppender creates an appender writing to filename. The file is opened on first write.
func NewFileAppender(filename string) *FileAppender {
	file := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    maxFileSizeMB,
		MaxBackups: maxFileBackups,
		Compress:   true,
	}
	return &FileAppender{ConsoleAppender: NewWriterAppender(file), file: file}
}

// Close closes the current file. A later write reopens it.
func (appender *FileAppender) Close() error {
	return appender.file.Close()
}

// formatEntry renders time, level, logger name, caller, message and the fields as a JSON object,
// separated by tabs. An empty logger name is left out unless keepEmptyName is set. When the
// fields cannot be encoded the line is returned without them, along with the error.
func formatEntry(entry zapcore.Entry, fields []zapcore.Field, keepEmptyName bool) (string, error) {
	cols := make([]string, 0, 6)
	cols = append(cols, entry.Time.Format(DefaultTimeFormatStr), strings.ToUpper(entry.Level.String()))
	if entry.LoggerName != "" || keepEmptyName {
		cols = append(cols, entry.LoggerName)
	}
	if entry.Caller.Defined {
		cols = append(cols, shortCaller(entry.Caller))
	}
	cols = append(cols, entry.Message)
	if len(fields) == 0 {
		return strings.Join(cols, "\t"), nil
	}

	// An empty entry makes the encoder emit only the fields, in order.
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
	buf, err := enc.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		return strings.Join(cols, "\t"), err
	}
	defer buf.Free()
	cols = append(cols, buf.String())
	return strings.Join(cols, "\t"), nil
}

// shortCaller trims the caller's file to "<package>/<file>:<line>". runtime.Caller always uses
// '/' separators.
func shortCaller(caller zapcore.EntryCaller) string {
	file := caller.File
	if i := strings.LastIndexByte(file, '/'); i >= 0 {
		if j := strings.LastIndexByte(file[:i], '/'); j >= 0 {
			file = file[j+1:]
		}
	}
	return file + ":" + strconv.Itoa(caller.Line)
}
