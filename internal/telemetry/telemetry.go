// Package telemetry wraps charmbracelet/log into the propagation policy
// §7 describes: user-triggered stage errors are always worth a log line,
// while runtime numeric anomalies (sanitized NaN/Inf substitutions in the
// detector/envelope) are never surfaced to a caller but are still worth a
// breadcrumb at debug level for anyone chasing a field report. The engine
// package stays free of a logging dependency; internal/stage wires
// engine.State.OnAnomaly to Logger.Anomaly at prepare time.
package telemetry

import (
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the stage-wide logger, safe for concurrent use.
type Logger struct {
	l *log.Logger
}

// New builds a Logger writing to stderr with a "drc" prefix, matching the
// level the host configures (defaults to info).
func New(level log.Level) *Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "drc",
		ReportTimestamp: true,
	})
	l.SetLevel(level)
	return &Logger{l: l}
}

// Anomaly logs a runtime numeric anomaly (§7 "never surfaced to the
// caller") at debug level, tagged with the engine field where a
// sanitize() substitution fired.
func (t *Logger) Anomaly(field string) {
	t.l.Debug("sanitized non-finite value", "field", field)
}

// StageError logs a user-triggered stage error (§7's negative error
// codes) at error level before it's returned to the caller.
func (t *Logger) StageError(op string, err error) {
	t.l.Error("stage operation failed", "op", op, "err", err)
}

// ConfigAdopted logs a configuration promotion, either immediate (READY)
// or deferred to the next copy boundary (ACTIVE).
func (t *Logger) ConfigAdopted(deferred bool) {
	if deferred {
		t.l.Info("configuration staged for next copy boundary")
		return
	}
	t.l.Info("configuration adopted immediately")
}

// Transition logs a lifecycle state change.
func (t *Logger) Transition(from, to string) {
	t.l.Debug("lifecycle transition", "from", from, "to", to)
}

// With returns a child logger with additional persistent key-value pairs,
// e.g. a stage instance ID.
func (t *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{l: t.l.With(keyvals...)}
}
