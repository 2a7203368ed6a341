package tools

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/finsight-go/pkg/llm"
)

// fakeGenerator records the last prompt and returns a canned completion.
type fakeGenerator struct {
	response string
	err      error
	prompt   string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, options ...llm.GenerateOption) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func TestSentimentTool(t *testing.T) {
	t.Run("classifies news", func(t *testing.T) {
		gen := &fakeGenerator{response: "Positive\n"}
		tool := NewSentimentTool(gen)

		out, err := tool.Call(context.Background(), map[string]string{
			OutputNews: "Recent News:\n- Record quarterly revenue",
		})
		require.NoError(t, err)
		assert.Equal(t, "Sentiment Analysis: Positive", out)
		assert.Contains(t, gen.prompt, "Record quarterly revenue")
	})

	t.Run("requires news output", func(t *testing.T) {
		tool := NewSentimentTool(&fakeGenerator{response: "Neutral"})
		_, err := tool.Call(context.Background(), map[string]string{})
		assert.Error(t, err)
	})

	t.Run("propagates llm failure", func(t *testing.T) {
		tool := NewSentimentTool(&fakeGenerator{err: fmt.Errorf("api down")})
		_, err := tool.Call(context.Background(), map[string]string{OutputNews: "some news"})
		assert.Error(t, err)
	})
}

func TestReportTool(t *testing.T) {
	t.Run("builds prompt from collected outputs", func(t *testing.T) {
		gen := &fakeGenerator{response: "Buy."}
		tool := NewReportTool(gen)

		out, err := tool.Call(context.Background(), map[string]string{
			"company":        "nvidia",
			OutputOverview:   "Overview: GPU maker",
			OutputPrice:      "Stock Price Info: $900",
			OutputNews:       "Recent News:\n- New GPU",
			OutputFinancials: "Financial Metrics: strong margins",
		})
		require.NoError(t, err)
		assert.Equal(t, "Buy.", out)

		assert.Contains(t, gen.prompt, "Nvidia", "company name should be title-cased")
		assert.Contains(t, gen.prompt, "Overview: GPU maker")
		assert.Contains(t, gen.prompt, "NOT PROVIDED (optional)", "missing sentiment falls back")
	})

	t.Run("marks missing data", func(t *testing.T) {
		gen := &fakeGenerator{response: "Hold."}
		tool := NewReportTool(gen)

		_, err := tool.Call(context.Background(), map[string]string{"company": "nvidia"})
		require.NoError(t, err)
		assert.Contains(t, gen.prompt, "NOT PROVIDED")
	})

	t.Run("propagates llm failure", func(t *testing.T) {
		tool := NewReportTool(&fakeGenerator{err: fmt.Errorf("api down")})
		_, err := tool.Call(context.Background(), map[string]string{"company": "nvidia"})
		assert.Error(t, err)
	})
}
