package graphdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RecordingLogger keeps every message it receives.
type RecordingLogger struct {
	Logs     []string
	Warnings []string
	Errors   []string
}

func (r *RecordingLogger) Log(msg string, _ ...any)   { r.Logs = append(r.Logs, msg) }
func (r *RecordingLogger) Warn(msg string, _ ...any)  { r.Warnings = append(r.Warnings, msg) }
func (r *RecordingLogger) Error(msg string, _ ...any) { r.Errors = append(r.Errors, msg) }

func TestNotifier(t *testing.T) {
	rec := &RecordingLogger{}
	n := NewNotifier(rec)

	n.Log("hello")
	n.Warn("duplicate", "id", "x")
	err := n.Fail(ErrReferenceNotFound, "node not found in graph: x", "id", "x")

	require.ErrorIs(t, err, ErrReferenceNotFound)
	assert.Contains(t, err.Error(), "node not found in graph: x")
	assert.Equal(t, []string{"hello"}, rec.Logs)
	assert.Equal(t, []string{"WARNING: duplicate"}, rec.Warnings)
	assert.Equal(t, []string{"ERROR: node not found in graph: x"}, rec.Errors)
}

func TestNotifierNilLogger(t *testing.T) {
	n := NewNotifier(nil)
	n.Warn("ignored")
	assert.ErrorIs(t, n.Fail(ErrMissingRequiredField, "missing"), ErrMissingRequiredField)
}
