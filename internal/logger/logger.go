package logger

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var (
	_log  = logrus.New()
	debug atomic.Bool
)

// Init initializes the global logger with output writer and debug level.
func Init(verbose bool, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	_log.SetOutput(out)
	_log.ReplaceHooks(make(logrus.LevelHooks))
	SetDebug(verbose)
}

// SetDebug switches verbose logging on or off at runtime.
func SetDebug(on bool) {
	debug.Store(on)
	if on {
		_log.SetLevel(logrus.DebugLevel)
		_log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return
	}
	_log.SetLevel(logrus.InfoLevel)
	_log.SetFormatter(&logrus.JSONFormatter{})
}

// Debug reports whether verbose logging is on. Callers use it to decide
// whether raw store errors may be written to the log.
func Debug() bool {
	return debug.Load()
}

// AddErrorOutput mirrors error, fatal and panic entries to w as JSON lines.
func AddErrorOutput(w io.Writer) {
	_log.AddHook(&errorHook{out: w, formatter: &logrus.JSONFormatter{}})
}

// Log returns a standard logger entry to use across packages.
func Log() *logrus.Entry {
	return logrus.NewEntry(_log)
}

// WithFields returns a logger entry with provided fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log().WithFields(fields)
}

// ErrorField returns the error itself in debug mode and only its presence otherwise.
func ErrorField(err error) interface{} {
	if err == nil {
		return nil
	}
	if Debug() {
		return err.Error()
	}
	return "redacted"
}

type errorHook struct {
	out       io.Writer
	formatter logrus.Formatter
}

func (h *errorHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

func (h *errorHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.out.Write(line)
	return err
}
