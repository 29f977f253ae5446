package logger

import "fmt"

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Output encodings.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New builds a logger writing to stdout with the given level and encoding.
// Unknown levels fall back to debug; an unknown format is an error.
func New(level, format string) (*Logger, error) {
	switch format {
	case "", FormatConsole, FormatJSON:
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return newZapLogger(level, format), nil
}
