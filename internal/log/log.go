// Package log implements a small leveled logger, in the style used
// throughout this client: short level letters, a caller file:line
// prefix, and optional timestamps.
//
// Unlike a daemon's logging package, this one registers no command-line
// flags: importing a library must never mutate the importer's global
// flag set. Callers that want flag-driven configuration can still wire
// it up themselves against NewFile/NewSyslog/Default.
package log

import (
	"fmt"
	"io"
	"log/syslog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Level controls verbosity.
type Level int

const (
	Fatal = Level(-2)
	Error = Level(-1)
	Info  = Level(0)
	Debug = Level(1)
)

var levelToLetter = map[Level]string{
	Fatal: "F",
	Error: "E",
	Info:  "_",
	Debug: ".",
}

// A Logger writes leveled log lines to an underlying writer.
type Logger struct {
	Level   Level
	LogTime bool

	// CallerSkip adds stack frames to climb when reporting file:line,
	// so a logger reached through a wrapper reports the wrapper's
	// caller; Default sets it to 1 for this package's top-level
	// functions.
	CallerSkip int

	w io.WriteCloser
	sync.Mutex
}

// New returns a Logger that writes to w, defaulting to Info level
// without timestamps.
func New(w io.WriteCloser) *Logger {
	return &Logger{
		w:     w,
		Level: Info,
	}
}

// NewFile returns a Logger appending to the file at path.
func NewFile(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	l := New(f)
	l.LogTime = true
	return l, nil
}

// NewSyslog returns a Logger writing to syslog with the given priority
// and tag.
func NewSyslog(priority syslog.Priority, tag string) (*Logger, error) {
	w, err := syslog.New(priority, tag)
	if err != nil {
		return nil, err
	}
	l := New(w)
	l.LogTime = false
	return l, nil
}

// Close closes the underlying writer.
func (l *Logger) Close() {
	l.w.Close()
}

// V reports whether level is enabled on this logger.
func (l *Logger) V(level Level) bool {
	return level <= l.Level
}

// Log writes one log line at the given level, if enabled. skip controls
// how many additional stack frames to climb past the immediate caller
// when reporting file:line.
func (l *Logger) Log(level Level, skip int, format string, a ...interface{}) {
	if !l.V(level) {
		return
	}

	msg := fmt.Sprintf(format, a...)

	_, file, line, ok := runtime.Caller(1 + l.CallerSkip + skip)
	if !ok {
		file = "unknown"
	}
	fl := fmt.Sprintf("%s:%-4d", filepath.Base(file), line)
	if len(fl) > 18 {
		fl = fl[len(fl)-18:]
	}
	msg = fmt.Sprintf("%-18s", fl) + " " + msg

	letter, ok := levelToLetter[level]
	if !ok {
		letter = strconv.Itoa(int(level))
	}
	msg = letter + " " + msg

	if l.LogTime {
		msg = time.Now().Format("20060102 15:04:05.000000 ") + msg
	}

	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}

	l.Lock()
	l.w.Write([]byte(msg))
	l.Unlock()
}

func (l *Logger) Debugf(format string, a ...interface{}) {
	l.Log(Debug, 1, format, a...)
}

func (l *Logger) Infof(format string, a ...interface{}) {
	l.Log(Info, 1, format, a...)
}

func (l *Logger) Errorf(format string, a ...interface{}) error {
	l.Log(Error, 1, format, a...)
	return fmt.Errorf(format, a...)
}

func (l *Logger) Fatalf(format string, a ...interface{}) {
	l.Log(Fatal, 1, format, a...)
	os.Exit(1)
}

// Default is the package-level logger used when a Client is not given
// one of its own: stderr, Info level, no timestamps.
var Default = &Logger{
	w:          nopCloser{os.Stderr},
	CallerSkip: 1,
	Level:      Info,
}

func V(level Level) bool { return Default.V(level) }

func Log(level Level, skip int, format string, a ...interface{}) {
	Default.Log(level, skip, format, a...)
}

func Debugf(format string, a ...interface{}) { Default.Debugf(format, a...) }
func Infof(format string, a ...interface{})  { Default.Infof(format, a...) }
func Errorf(format string, a ...interface{}) error {
	return Default.Errorf(format, a...)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
