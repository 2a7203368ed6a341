package logging

// LogEntry represents a structured log record with fields relevant to agent runs
// and the LLM calls made inside them.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Run/LLM-specific fields
	RunNumber int        // The orchestrator run this entry belongs to, 0 if outside a run
	ModelID   string     // The LLM model being used
	TokenInfo *TokenInfo // Token usage information

	// General structured data
	Fields map[string]interface{}
}

// TokenInfo tracks token usage for cost and performance monitoring.
type TokenInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
