// Package evaluation implements the post-hoc verifier for completed runs. It
// inspects only the execution trace, never how the plan was produced, so it
// works identically for manual, scripted, and LLM-chosen plans.
package evaluation

import (
	"fmt"
	"strings"

	"github.com/finsight/finsight-go/pkg/memory"
	"github.com/finsight/finsight-go/pkg/tools"
)

// RequiredTools is the fixed set of information-gathering tools every run
// must execute before finalization, in stable reporting order.
var RequiredTools = []string{
	tools.ToolCompanyOverview,
	tools.ToolStockPrice,
	tools.ToolRecentNews,
	tools.ToolFinancialMetrics,
}

// Verdict is the evaluator's judgment of one run.
type Verdict struct {
	Success     bool
	Mistake     memory.MistakeType // empty when Success
	Explanation string             // empty when Success
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// missingFrom returns the required tools absent from the trace, in
// RequiredTools order.
func missingFrom(trace []string) []string {
	var missing []string
	for _, tool := range RequiredTools {
		if !contains(trace, tool) {
			missing = append(missing, tool)
		}
	}
	return missing
}

// Evaluate classifies a completed run's tool trace. Pure and deterministic:
// the verdict depends only on the arguments. Checks run in priority order and
// the first violation wins. Duplicate tool calls are legal; only membership
// and relative position matter, never cardinality.
func Evaluate(toolsUsed []string, toolOutputs map[string]string) Verdict {
	// Check 1: was the report generated at all?
	if !contains(toolsUsed, tools.ToolGenerateReport) {
		return Verdict{
			Mistake:     memory.MistakeWrongToolSequence,
			Explanation: "Failed to call generate_report - no final analysis provided",
		}
	}

	// Check 2: did every required tool run?
	if missing := missingFrom(toolsUsed); len(missing) > 0 {
		return Verdict{
			Mistake:     memory.MistakeSkippedRequiredTool,
			Explanation: fmt.Sprintf("Missing required tools: %s", strings.Join(missing, ", ")),
		}
	}

	// Check 3: was the report generated before all data was gathered? Only
	// the prefix strictly before the first finalization call counts.
	reportIndex := 0
	for i, tool := range toolsUsed {
		if tool == tools.ToolGenerateReport {
			reportIndex = i
			break
		}
	}
	if missing := missingFrom(toolsUsed[:reportIndex]); len(missing) > 0 {
		return Verdict{
			Mistake:     memory.MistakeWrongToolSequence,
			Explanation: fmt.Sprintf("Called report before gathering: %s", strings.Join(missing, ", ")),
		}
	}

	return Verdict{Success: true}
}
