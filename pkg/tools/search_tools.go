package tools

import (
	"context"
	"fmt"
	"strings"
)

// searchTool wraps a SearchClient call with a query template and a renderer.
// A failed search never fails the run: the error is folded into a placeholder
// string so later tools can keep working with degraded data.
type searchTool struct {
	name        string
	description string
	client      SearchClient
	label       string // Prefix for both rendered output and failure placeholders
	maxResults  int
	query       func(company string) string
	render      func(results []SearchResult) string
}

func (t *searchTool) Name() string        { return t.name }
func (t *searchTool) Description() string { return t.description }

func (t *searchTool) Call(ctx context.Context, args map[string]string) (string, error) {
	company := args["query"]

	results, err := t.client.Search(ctx, t.query(company), t.maxResults)
	if err != nil || len(results) == 0 {
		if err == nil {
			err = fmt.Errorf("no results")
		}
		return fmt.Sprintf("%s: Could not fetch data - %v", t.label, err), nil
	}

	return t.render(results), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// NewCompanyOverviewTool searches for basic company information.
func NewCompanyOverviewTool(client SearchClient) Tool {
	return &searchTool{
		name:        ToolCompanyOverview,
		description: "Search for company overview and basic information. Must be called to understand what the company does.",
		client:      client,
		label:       "Overview",
		maxResults:  2,
		query: func(company string) string {
			return fmt.Sprintf("%s company overview business", company)
		},
		render: func(results []SearchResult) string {
			return fmt.Sprintf("Overview: %s", truncate(results[0].Content, 300))
		},
	}
}

// NewStockPriceTool searches for the company's current stock price.
func NewStockPriceTool(client SearchClient) Tool {
	return &searchTool{
		name:        ToolStockPrice,
		description: "Search current stock price for the company. Must be called before making investment recommendations.",
		client:      client,
		label:       "Stock Price Info",
		maxResults:  2,
		query: func(company string) string {
			return fmt.Sprintf("%s stock price current today", company)
		},
		render: func(results []SearchResult) string {
			return fmt.Sprintf("Stock Price Info: %s", truncate(results[0].Content, 200))
		},
	}
}

// NewRecentNewsTool searches for recent news about the company.
func NewRecentNewsTool(client SearchClient) Tool {
	return &searchTool{
		name:        ToolRecentNews,
		description: "Get recent news about the company. Essential for understanding current events affecting the stock.",
		client:      client,
		label:       "Recent News",
		maxResults:  3,
		query: func(company string) string {
			return fmt.Sprintf("%s latest news recent", company)
		},
		render: func(results []SearchResult) string {
			items := make([]string, 0, len(results))
			for _, r := range results {
				items = append(items, "- "+r.Title)
			}
			return "Recent News:\n" + strings.Join(items, "\n")
		},
	}
}

// NewFinancialMetricsTool searches for financial health indicators.
func NewFinancialMetricsTool(client SearchClient) Tool {
	return &searchTool{
		name:        ToolFinancialMetrics,
		description: "Search for financial health indicators. Must check financial metrics before investment advice.",
		client:      client,
		label:       "Financial Metrics",
		maxResults:  2,
		query: func(company string) string {
			return fmt.Sprintf("%s financial metrics revenue profit PE ratio", company)
		},
		render: func(results []SearchResult) string {
			return fmt.Sprintf("Financial Metrics: %s", truncate(results[0].Content, 250))
		},
	}
}
