package tools

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/finsight/finsight-go/pkg/errors"
	"github.com/finsight/finsight-go/pkg/llm"
)

// SentimentTool classifies the tone of collected news via the LLM. Unlike the
// search tools, an LLM failure here propagates: it aborts the plan-execution
// stage and becomes an execution_error run.
type SentimentTool struct {
	gen Generator
}

func NewSentimentTool(gen Generator) *SentimentTool {
	return &SentimentTool{gen: gen}
}

func (t *SentimentTool) Name() string { return ToolSentiment }

func (t *SentimentTool) Description() string {
	return "Analyze sentiment of collected news. Optional enhancement, requires news output."
}

func (t *SentimentTool) Call(ctx context.Context, args map[string]string) (string, error) {
	news := args[OutputNews]
	if news == "" {
		return "", errors.New(errors.InvalidInput, "sentiment analysis requires news output")
	}

	prompt := fmt.Sprintf(`Analyze the sentiment of this news about a company:
%s

Respond with only one word: Positive, Negative, or Neutral`, news)

	response, err := t.gen.Generate(ctx, prompt, llm.WithTemperature(0), llm.WithMaxTokens(16))
	if err != nil {
		return "", errors.Wrap(err, errors.ToolExecutionFailed, "sentiment analysis failed")
	}

	return fmt.Sprintf("Sentiment Analysis: %s", strings.TrimSpace(response)), nil
}

// ReportTool is the finalization step: it consumes every collected output and
// produces the investment recommendation. LLM failures propagate.
type ReportTool struct {
	gen   Generator
	title cases.Caser
}

func NewReportTool(gen Generator) *ReportTool {
	return &ReportTool{
		gen:   gen,
		title: cases.Title(language.English),
	}
}

func (t *ReportTool) Name() string { return ToolGenerateReport }

func (t *ReportTool) Description() string {
	return "Generate the final investment recommendation. Should only be called after collecting all required data."
}

func orDefault(args map[string]string, key, fallback string) string {
	if v := args[key]; v != "" {
		return v
	}
	return fallback
}

func (t *ReportTool) Call(ctx context.Context, args map[string]string) (string, error) {
	company := t.title.String(args["company"])

	prompt := fmt.Sprintf(`Create a brief investment analysis for %s based on:

%s
%s
%s
%s
%s

Provide:
1. Brief Summary (2 sentences)
2. Key Observation
3. Simple Recommendation

Keep it under 150 words.`,
		company,
		orDefault(args, OutputOverview, "NOT PROVIDED"),
		orDefault(args, OutputPrice, "NOT PROVIDED"),
		orDefault(args, OutputNews, "NOT PROVIDED"),
		orDefault(args, OutputFinancials, "NOT PROVIDED"),
		orDefault(args, OutputSentiment, "NOT PROVIDED (optional)"),
	)

	response, err := t.gen.Generate(ctx, prompt, llm.WithTemperature(0), llm.WithMaxTokens(512))
	if err != nil {
		return "", errors.Wrap(err, errors.ToolExecutionFailed, "report generation failed")
	}

	return strings.TrimSpace(response), nil
}
