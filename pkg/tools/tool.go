package tools

import (
	"context"

	"github.com/finsight/finsight-go/pkg/llm"
)

// Canonical tool identifiers. These names are what the planner asks the LLM to
// choose from, what the execution trace records, and what the evaluator and
// the learned-rule table reference.
const (
	ToolCompanyOverview  = "search_company_overview"
	ToolStockPrice       = "search_stock_price"
	ToolRecentNews       = "search_recent_news"
	ToolFinancialMetrics = "search_financial_metrics"
	ToolSentiment        = "analyze_sentiment"
	ToolGenerateReport   = "generate_report"
)

// Output map keys, one per tool.
const (
	OutputOverview   = "overview"
	OutputPrice      = "price"
	OutputNews       = "news"
	OutputFinancials = "financials"
	OutputSentiment  = "sentiment"
	OutputReport     = "report"
)

// All returns every known tool identifier in canonical order.
func All() []string {
	return []string{
		ToolCompanyOverview,
		ToolStockPrice,
		ToolRecentNews,
		ToolFinancialMetrics,
		ToolSentiment,
		ToolGenerateReport,
	}
}

var outputKeys = map[string]string{
	ToolCompanyOverview:  OutputOverview,
	ToolStockPrice:       OutputPrice,
	ToolRecentNews:       OutputNews,
	ToolFinancialMetrics: OutputFinancials,
	ToolSentiment:        OutputSentiment,
	ToolGenerateReport:   OutputReport,
}

// OutputKey maps a tool identifier to the key its result is stored under in
// the run's output map. Returns the tool name itself for unknown tools.
func OutputKey(tool string) string {
	if key, ok := outputKeys[tool]; ok {
		return key
	}
	return tool
}

// Tool defines a callable collaborator. Implementations wrap web search calls
// or LLM calls; the orchestrator treats them as black boxes.
type Tool interface {
	// Name returns the tool's identifier
	Name() string

	// Description returns human-readable explanation of the tool's purpose
	Description() string

	// Call executes the tool with the provided arguments
	Call(ctx context.Context, args map[string]string) (string, error)
}

// Generator is the LLM surface the LLM-backed tools need. *llm.Client
// satisfies it; tests substitute a fake.
type Generator interface {
	Generate(ctx context.Context, prompt string, options ...llm.GenerateOption) (string, error)
}
