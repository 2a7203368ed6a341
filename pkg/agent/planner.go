package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/finsight/finsight-go/pkg/errors"
	"github.com/finsight/finsight-go/pkg/guidance"
	"github.com/finsight/finsight-go/pkg/llm"
	"github.com/finsight/finsight-go/pkg/logging"
	"github.com/finsight/finsight-go/pkg/tools"
)

// PlanResult is what the planning/execution collaborator hands back: the
// ordered trace of tools that actually ran, their outputs, and the draft
// report. On failure the result still carries whatever partial trace exists.
type PlanResult struct {
	ToolsUsed []string
	Outputs   map[string]string
	Report    string
}

// Planner is the planning/execution collaborator. The orchestrator never
// cares how the plan was produced; it only consumes the trace.
type Planner interface {
	PlanAndExecute(ctx context.Context, query string, g guidance.Guidance) (*PlanResult, error)
}

const (
	weakTemperature = 0.4 // higher temperature, more varied mistakes
)

// LLMPlanner asks the LLM which tools to call under the supplied guidance,
// then executes the chosen tools sequentially through the registry.
type LLMPlanner struct {
	gen      tools.Generator
	registry *tools.Registry
	logger   *logging.Logger
}

func NewLLMPlanner(gen tools.Generator, registry *tools.Registry) *LLMPlanner {
	return &LLMPlanner{
		gen:      gen,
		registry: registry,
		logger:   logging.GetLogger(),
	}
}

func decisionPrompt(g guidance.Guidance, query string) string {
	toolList := "- " + strings.Join(tools.All(), "\n- ")

	if g.Strict {
		return fmt.Sprintf(`%s

Company to analyze: %s

TASK: List the EXACT tools you will call, one per line, in the correct order.

VALID TOOL NAMES:
%s

YOUR TOOL SEQUENCE (one per line):`, g.Text, query, toolList)
	}

	return fmt.Sprintf(`%s

Company to analyze: %s

TASK: List the tools you'll use to analyze this company, one per line, in order.

AVAILABLE TOOLS:
%s

YOUR TOOL LIST:`, g.Text, query, toolList)
}

var lineNoise = strings.NewReplacer(
	"-", "", "*", "", "•", "", ">", "",
	"1.", "", "2.", "", "3.", "",
	"4.", "", "5.", "", "6.", "",
)

// parsePlan extracts valid tool names from the LLM's free-text tool list,
// preserving order. Unrecognized lines are dropped silently.
func parsePlan(response string) []string {
	valid := make(map[string]bool)
	for _, name := range tools.All() {
		valid[name] = true
	}

	var plan []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(lineNoise.Replace(strings.TrimSpace(line)))
		if valid[line] {
			plan = append(plan, line)
		}
	}
	return plan
}

// PlanAndExecute implements the Planner interface. A tool failure aborts
// execution and returns the partial trace alongside the error; the
// orchestrator converts that into an execution_error run.
func (p *LLMPlanner) PlanAndExecute(ctx context.Context, query string, g guidance.Guidance) (*PlanResult, error) {
	temperature := weakTemperature
	if g.Strict {
		temperature = 0
	}

	response, err := p.gen.Generate(ctx, decisionPrompt(g, query),
		llm.WithTemperature(temperature), llm.WithMaxTokens(256))
	if err != nil {
		return &PlanResult{ToolsUsed: []string{}, Outputs: map[string]string{}},
			errors.Wrap(err, errors.PlanExecutionFailed, "tool selection failed")
	}

	plan := parsePlan(response)

	// A weak-guidance LLM occasionally forgets the finalization step; add it
	// so those runs fail on data gathering, not on a missing report.
	if !g.Strict && !containsTool(plan, tools.ToolGenerateReport) {
		plan = append(plan, tools.ToolGenerateReport)
		p.logger.Warn(ctx, "planner omitted %s, appended it", tools.ToolGenerateReport)
	}

	p.logger.Info(ctx, "agent decided to call: %v", plan)

	result := &PlanResult{
		ToolsUsed: []string{},
		Outputs:   map[string]string{},
	}

	for _, name := range plan {
		switch name {
		case tools.ToolCompanyOverview, tools.ToolStockPrice, tools.ToolRecentNews, tools.ToolFinancialMetrics:
			if err := p.callTool(ctx, result, name, map[string]string{"query": query}); err != nil {
				return result, err
			}

		case tools.ToolSentiment:
			// Sentiment consumes the news output; nothing to analyze without it
			news, ok := result.Outputs[tools.OutputNews]
			if !ok {
				continue
			}
			if err := p.callTool(ctx, result, name, map[string]string{tools.OutputNews: news}); err != nil {
				return result, err
			}

		case tools.ToolGenerateReport:
			args := map[string]string{"company": query}
			for key, value := range result.Outputs {
				args[key] = value
			}
			if err := p.callTool(ctx, result, name, args); err != nil {
				return result, err
			}
			result.Report = result.Outputs[tools.OutputReport]
		}
	}

	if result.Report == "" {
		result.Report = "Analysis incomplete - no report generated"
	}

	return result, nil
}

func (p *LLMPlanner) callTool(ctx context.Context, result *PlanResult, name string, args map[string]string) error {
	tool, err := p.registry.Get(name)
	if err != nil {
		return err
	}

	output, err := tool.Call(ctx, args)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.PlanExecutionFailed, "tool execution failed"),
			errors.Fields{"tool": name})
	}

	result.ToolsUsed = append(result.ToolsUsed, name)
	result.Outputs[tools.OutputKey(name)] = output
	p.logger.Debug(ctx, "called: %s", name)
	return nil
}

func containsTool(plan []string, name string) bool {
	for _, t := range plan {
		if t == name {
			return true
		}
	}
	return false
}
