package graphdoc

import "fmt"

// Logger is the logging sink. keyvals are alternating key/value pairs.
type Logger interface {
	Log(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Log(string, ...any)   {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

// Notifier logs integrity signals and turns fatal ones into errors.
type Notifier struct {
	logger Logger
}

// NewNotifier wraps logger; a nil logger discards output.
func NewNotifier(logger Logger) *Notifier {
	if logger == nil {
		logger = NopLogger{}
	}
	return &Notifier{logger: logger}
}

// Log writes an informational message.
func (n *Notifier) Log(msg string, keyvals ...any) {
	n.logger.Log(msg, keyvals...)
}

// Warn reports a non-fatal integrity issue.
func (n *Notifier) Warn(msg string, keyvals ...any) {
	n.logger.Warn("WARNING: "+msg, keyvals...)
}

// Fail logs msg and returns an error wrapping kind. The caller must abort the
// current operation with it.
func (n *Notifier) Fail(kind error, msg string, keyvals ...any) error {
	n.logger.Error("ERROR: "+msg, keyvals...)
	return fmt.Errorf("%s: %w", msg, kind)
}
