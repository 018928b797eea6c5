package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meikuraledutech/graphdoc"
)

var _ graphdoc.Logger = (*Console)(nil)

func TestConsoleLevels(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(ConsoleParams{Output: &buf})

	c.Log("hidden detail")
	c.Warn("WARNING: node id is duplicate", "id", "x")
	c.Error("ERROR: node not found in graph: y")

	out := buf.String()
	assert.NotContains(t, out, "hidden detail")
	assert.Contains(t, out, "WARNING: node id is duplicate")
	assert.Contains(t, out, "id=x")
	assert.Contains(t, out, "ERROR: node not found in graph: y")
}

func TestConsoleDebug(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(ConsoleParams{Debug: true, Output: &buf, Prefix: "graphdoc"})

	c.Log("graph created", "doc", "g1")
	c.Info("listening")

	out := buf.String()
	assert.Contains(t, out, "graph created")
	assert.Contains(t, out, "doc=g1")
	assert.Contains(t, out, "graphdoc")
	assert.Contains(t, out, "listening")
}
