// Package logging provides graphdoc.Logger sinks.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Console implements graphdoc.Logger using charmbracelet/log.
type Console struct {
	logger *log.Logger
}

// ConsoleParams contains configuration for creating a Console.
type ConsoleParams struct {
	Debug  bool
	Output io.Writer
	Prefix string
}

// NewConsole creates a console logger; output defaults to stderr.
func NewConsole(params ConsoleParams) *Console {
	level := log.InfoLevel
	if params.Debug {
		level = log.DebugLevel
	}
	out := params.Output
	if out == nil {
		out = os.Stderr
	}
	return &Console{
		logger: log.NewWithOptions(out, log.Options{
			ReportTimestamp: true,
			Level:           level,
			Prefix:          params.Prefix,
		}),
	}
}

// Log writes an informational message. It is only shown at debug level.
func (c *Console) Log(message string, keyvals ...any) {
	c.logger.Debug(message, keyvals...)
}

// Info writes a message at INFO level.
func (c *Console) Info(message string, keyvals ...any) {
	c.logger.Info(message, keyvals...)
}

// Warn writes a message at WARN level.
func (c *Console) Warn(message string, keyvals ...any) {
	c.logger.Warn(message, keyvals...)
}

// Error writes a message at ERROR level.
func (c *Console) Error(message string, keyvals ...any) {
	c.logger.Error(message, keyvals...)
}

// Fatal writes a message at FATAL level and terminates the program.
func (c *Console) Fatal(message string, keyvals ...any) {
	c.logger.Fatal(message, keyvals...)
}
