// Package trace gives one SMTP dialog (a single Send call) a scoped log
// of every command/response pair, surfaced through internal/log.
//
// The teacher's version of this package wraps golang.org/x/net/trace,
// which registers an HTTP debug handler as an import-time side effect —
// appropriate for a long-running daemon with a monitoring endpoint, not
// for an embeddable client library. This port keeps the same
// family/title-scoped Printf/Debugf/Errorf surface but drops that
// dependency entirely.
package trace

import (
	"fmt"
	"strconv"

	"blitiri.com.ar/go/smtpclient/internal/log"
)

// A Trace scopes a sequence of log lines to one logical operation, e.g.
// one SMTP session.
type Trace struct {
	family string
	title  string
	logger *log.Logger
	failed bool
}

// New starts a trace. If logger is nil, internal/log's package-level
// Default is used.
func New(family, title string, logger *log.Logger) *Trace {
	return &Trace{family: family, title: title, logger: logger}
}

func (t *Trace) log(level log.Level, format string, a ...interface{}) {
	msg := fmt.Sprintf("%s %s: %s", t.family, t.title, quote(fmt.Sprintf(format, a...)))
	if t.logger != nil {
		t.logger.Log(level, 2, "%s", msg)
		return
	}
	log.Log(level, 2, "%s", msg)
}

// Printf adds an informational message to the trace.
func (t *Trace) Printf(format string, a ...interface{}) {
	t.log(log.Info, format, a...)
}

// Debugf adds a debug-level message to the trace.
func (t *Trace) Debugf(format string, a ...interface{}) {
	t.log(log.Debug, format, a...)
}

// Errorf formats an error, marks the trace as failed, logs it, and
// returns it so callers can write `return t.Errorf(...)`.
func (t *Trace) Errorf(format string, a ...interface{}) error {
	err := fmt.Errorf(format, a...)
	t.failed = true
	t.log(log.Error, "error: %v", err)
	return err
}

// Error marks the trace as failed and logs err, returning it unchanged.
func (t *Trace) Error(err error) error {
	t.failed = true
	t.log(log.Error, "error: %v", err)
	return err
}

// Failed reports whether Error or Errorf was called on this trace.
func (t *Trace) Failed() bool {
	return t.failed
}

// Finish marks the end of the traced operation. The Trace must not be
// used afterwards.
func (t *Trace) Finish() {}

func quote(s string) string {
	qs := strconv.Quote(s)
	return qs[1 : len(qs)-1]
}
