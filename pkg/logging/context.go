package logging

import "context"

type contextKey int

const (
	runNumberKey contextKey = iota
	modelIDKey
)

// WithRunNumber attaches the current run number to the context so every log
// entry produced inside the run carries it.
func WithRunNumber(ctx context.Context, runNumber int) context.Context {
	return context.WithValue(ctx, runNumberKey, runNumber)
}

// GetRunNumber extracts the run number from the context, if present.
func GetRunNumber(ctx context.Context) (int, bool) {
	n, ok := ctx.Value(runNumberKey).(int)
	return n, ok
}

// WithModelID attaches the LLM model identifier to the context.
func WithModelID(ctx context.Context, modelID string) context.Context {
	return context.WithValue(ctx, modelIDKey, modelID)
}

// GetModelID extracts the LLM model identifier from the context, if present.
func GetModelID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(modelIDKey).(string)
	return id, ok
}
