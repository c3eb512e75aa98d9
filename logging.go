package lrureap

import (
	"fmt"
	"log"
	"strings"
)

// Field represents a structured log field.
type Field struct {
	Key   string
	Value any
}

// Logger receives the cache's diagnostic events.
// Implementations must be safe for concurrent use;
// the reaper logs from its own goroutine.
type Logger interface {
	// Debug logs routine events, such as capacity evictions.
	Debug(msg string, fields ...Field)
	// Info logs reaper lifecycle and sweep evictions.
	Info(msg string, fields ...Field)
	// Error logs failures that were handled internally,
	// such as a skipped sweep.
	Error(msg string, fields ...Field)
}

// defaultLogger writes through the standard log package.
// Debug messages are discarded.
type defaultLogger struct{}

func (defaultLogger) Debug(string, ...Field) {}

func (l defaultLogger) Info(msg string, fields ...Field) {
	l.logWithFields("INFO", msg, fields...)
}

func (l defaultLogger) Error(msg string, fields ...Field) {
	l.logWithFields("ERROR", msg, fields...)
}

func (defaultLogger) logWithFields(level, msg string, fields ...Field) {
	var b strings.Builder
	b.WriteString(level)
	b.WriteString(": ")
	b.WriteString(msg)
	for _, field := range fields {
		b.WriteByte(' ')
		b.WriteString(field.Key)
		b.WriteByte('=')
		b.WriteString(formatValue(field.Value))
	}
	log.Println(b.String())
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case error:
		return val.Error()
	default:
		return fmt.Sprintf("%v", val)
	}
}
