package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/finsight-go/pkg/guidance"
	"github.com/finsight/finsight-go/pkg/llm"
	"github.com/finsight/finsight-go/pkg/tools"
)

// fakeGenerator returns a canned completion and records the effective
// generation options.
type fakeGenerator struct {
	response    string
	err         error
	prompt      string
	temperature float64
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, options ...llm.GenerateOption) (string, error) {
	f.prompt = prompt
	opts := &llm.GenerateOptions{}
	for _, opt := range options {
		opt(opts)
	}
	f.temperature = opts.Temperature
	return f.response, f.err
}

// recordingTool returns a fixed output and remembers its last args.
type recordingTool struct {
	name   string
	output string
	err    error
	args   map[string]string
}

func (r *recordingTool) Name() string        { return r.name }
func (r *recordingTool) Description() string { return r.name }
func (r *recordingTool) Call(ctx context.Context, args map[string]string) (string, error) {
	r.args = args
	return r.output, r.err
}

func fullRegistry(t *testing.T) (*tools.Registry, map[string]*recordingTool) {
	t.Helper()
	reg := tools.NewRegistry()
	stubs := make(map[string]*recordingTool)
	for _, name := range tools.All() {
		stub := &recordingTool{name: name, output: name + " output"}
		stubs[name] = stub
		require.NoError(t, reg.Register(stub))
	}
	return reg, stubs
}

func weakGuidance() guidance.Guidance {
	return guidance.Guidance{Text: "be quick", Variant: "speed"}
}

func strictGuidance() guidance.Guidance {
	return guidance.Guidance{Text: "be thorough", Variant: "learned", Strict: true}
}

func TestParsePlan(t *testing.T) {
	response := `Here is my plan:
1. search_company_overview
- search_stock_price
* search_recent_news
> search_financial_metrics
fetch_the_moon
generate_report`

	plan := parsePlan(response)
	assert.Equal(t, []string{
		tools.ToolCompanyOverview,
		tools.ToolStockPrice,
		tools.ToolRecentNews,
		tools.ToolFinancialMetrics,
		tools.ToolGenerateReport,
	}, plan)
}

func TestPlanAndExecute(t *testing.T) {
	t.Run("executes full plan in order", func(t *testing.T) {
		reg, stubs := fullRegistry(t)
		gen := &fakeGenerator{response: strings.Join(tools.All(), "\n")}
		planner := NewLLMPlanner(gen, reg)

		result, err := planner.PlanAndExecute(context.Background(), "NVIDIA", weakGuidance())
		require.NoError(t, err)

		assert.Equal(t, tools.All(), result.ToolsUsed)
		assert.Equal(t, "search_company_overview output", result.Outputs[tools.OutputOverview])
		assert.Equal(t, "generate_report output", result.Report)

		// Report received the collected data plus the company name
		reportArgs := stubs[tools.ToolGenerateReport].args
		assert.Equal(t, "NVIDIA", reportArgs["company"])
		assert.Equal(t, "search_recent_news output", reportArgs[tools.OutputNews])

		// Sentiment consumed the news output
		assert.Equal(t, "search_recent_news output", stubs[tools.ToolSentiment].args[tools.OutputNews])
	})

	t.Run("weak mode appends forgotten finalization", func(t *testing.T) {
		reg, _ := fullRegistry(t)
		gen := &fakeGenerator{response: "search_company_overview\nsearch_stock_price"}
		planner := NewLLMPlanner(gen, reg)

		result, err := planner.PlanAndExecute(context.Background(), "NVIDIA", weakGuidance())
		require.NoError(t, err)
		assert.Equal(t, []string{
			tools.ToolCompanyOverview,
			tools.ToolStockPrice,
			tools.ToolGenerateReport,
		}, result.ToolsUsed)
	})

	t.Run("strict mode does not append finalization", func(t *testing.T) {
		reg, _ := fullRegistry(t)
		gen := &fakeGenerator{response: "search_company_overview"}
		planner := NewLLMPlanner(gen, reg)

		result, err := planner.PlanAndExecute(context.Background(), "NVIDIA", strictGuidance())
		require.NoError(t, err)
		assert.Equal(t, []string{tools.ToolCompanyOverview}, result.ToolsUsed)
		assert.Equal(t, "Analysis incomplete - no report generated", result.Report)
	})

	t.Run("sentiment without news is skipped", func(t *testing.T) {
		reg, stubs := fullRegistry(t)
		gen := &fakeGenerator{response: "analyze_sentiment\ngenerate_report"}
		planner := NewLLMPlanner(gen, reg)

		result, err := planner.PlanAndExecute(context.Background(), "NVIDIA", weakGuidance())
		require.NoError(t, err)
		assert.Equal(t, []string{tools.ToolGenerateReport}, result.ToolsUsed)
		assert.Nil(t, stubs[tools.ToolSentiment].args)
	})

	t.Run("temperature follows guidance strictness", func(t *testing.T) {
		reg, _ := fullRegistry(t)
		gen := &fakeGenerator{response: "generate_report"}
		planner := NewLLMPlanner(gen, reg)

		_, err := planner.PlanAndExecute(context.Background(), "NVIDIA", weakGuidance())
		require.NoError(t, err)
		assert.Equal(t, 0.4, gen.temperature)

		_, err = planner.PlanAndExecute(context.Background(), "NVIDIA", strictGuidance())
		require.NoError(t, err)
		assert.Equal(t, 0.0, gen.temperature)
	})

	t.Run("llm failure returns empty trace and error", func(t *testing.T) {
		reg, _ := fullRegistry(t)
		gen := &fakeGenerator{err: fmt.Errorf("rate limited")}
		planner := NewLLMPlanner(gen, reg)

		result, err := planner.PlanAndExecute(context.Background(), "NVIDIA", weakGuidance())
		require.Error(t, err)
		require.NotNil(t, result)
		assert.Empty(t, result.ToolsUsed)
	})

	t.Run("tool failure returns partial trace and error", func(t *testing.T) {
		reg, stubs := fullRegistry(t)
		stubs[tools.ToolGenerateReport].err = fmt.Errorf("api down")
		gen := &fakeGenerator{response: strings.Join([]string{
			tools.ToolCompanyOverview, tools.ToolGenerateReport,
		}, "\n")}
		planner := NewLLMPlanner(gen, reg)

		result, err := planner.PlanAndExecute(context.Background(), "NVIDIA", weakGuidance())
		require.Error(t, err)
		require.NotNil(t, result)
		assert.Equal(t, []string{tools.ToolCompanyOverview}, result.ToolsUsed)
	})

	t.Run("decision prompt embeds guidance and query", func(t *testing.T) {
		reg, _ := fullRegistry(t)
		gen := &fakeGenerator{response: "generate_report"}
		planner := NewLLMPlanner(gen, reg)

		_, err := planner.PlanAndExecute(context.Background(), "NVIDIA", strictGuidance())
		require.NoError(t, err)
		assert.Contains(t, gen.prompt, "be thorough")
		assert.Contains(t, gen.prompt, "Company to analyze: NVIDIA")
		assert.Contains(t, gen.prompt, "YOUR TOOL SEQUENCE")
	})
}
