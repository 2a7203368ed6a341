package logging

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryOutput captures entries for assertions.
type memoryOutput struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (m *memoryOutput) Write(e LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memoryOutput) Sync() error  { return nil }
func (m *memoryOutput) Close() error { return nil }

func TestLoggerSeverityFiltering(t *testing.T) {
	out := &memoryOutput{}
	logger := NewLogger(Config{Severity: WARN, Outputs: []Output{out}})

	ctx := context.Background()
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	require.Len(t, out.entries, 2)
	assert.Equal(t, WARN, out.entries[0].Severity)
	assert.Equal(t, ERROR, out.entries[1].Severity)
}

func TestLoggerContextFields(t *testing.T) {
	out := &memoryOutput{}
	logger := NewLogger(Config{Severity: DEBUG, Outputs: []Output{out}})

	ctx := WithModelID(WithRunNumber(context.Background(), 7), "claude-sonnet-4-5")
	logger.Info(ctx, "running")

	require.Len(t, out.entries, 1)
	assert.Equal(t, 7, out.entries[0].RunNumber)
	assert.Equal(t, "claude-sonnet-4-5", out.entries[0].ModelID)
}

func TestLoggerDefaultFields(t *testing.T) {
	out := &memoryOutput{}
	logger := NewLogger(Config{
		Severity:      INFO,
		Outputs:       []Output{out},
		DefaultFields: map[string]interface{}{"component": "agent"},
	})

	logger.Info(context.Background(), "hello")

	require.Len(t, out.entries, 1)
	assert.Equal(t, "agent", out.entries[0].Fields["component"])
}

func TestConsoleOutputFormatting(t *testing.T) {
	var buf bytes.Buffer
	out := &ConsoleOutput{writer: &buf, color: false}
	logger := NewLogger(Config{Severity: DEBUG, Outputs: []Output{out}})

	ctx := WithRunNumber(context.Background(), 3)
	logger.Info(ctx, "evaluating run")

	line := buf.String()
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "evaluating run")
	assert.Contains(t, line, "[run=3]")
	assert.False(t, strings.Contains(line, "\033["), "colors should be disabled")
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, DEBUG, ParseSeverity("DEBUG"))
	assert.Equal(t, ERROR, ParseSeverity("ERROR"))
	assert.Equal(t, INFO, ParseSeverity("bogus"))
}

func TestGlobalLogger(t *testing.T) {
	custom := NewLogger(Config{Severity: ERROR, Outputs: []Output{&memoryOutput{}}})
	SetLogger(custom)
	assert.Same(t, custom, GetLogger())

	SetLogger(nil)
	assert.NotNil(t, GetLogger())
}
