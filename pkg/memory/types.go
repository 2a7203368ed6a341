package memory

import (
	"fmt"
	"time"

	"github.com/finsight/finsight-go/pkg/tools"
)

// MistakeType classifies a failed run. The set is closed: the rule synthesizer
// refuses to learn from anything outside it.
type MistakeType string

const (
	MistakeSkippedRequiredTool MistakeType = "skipped_required_tool"
	MistakeWrongToolSequence   MistakeType = "wrong_tool_sequence"
	MistakeIgnoredToolOutputs  MistakeType = "ignored_tool_outputs"
	MistakeExecutionError      MistakeType = "execution_error"
)

// Valid reports whether the mistake type belongs to the closed set.
func (m MistakeType) Valid() bool {
	switch m {
	case MistakeSkippedRequiredTool, MistakeWrongToolSequence, MistakeIgnoredToolOutputs, MistakeExecutionError:
		return true
	}
	return false
}

// RunRecord is one completed orchestration. Immutable once appended.
type RunRecord struct {
	RunNumber int         `json:"run_number"`
	TraceID   string      `json:"trace_id"`
	Timestamp time.Time   `json:"timestamp"`
	Query     string      `json:"query"`
	ToolsUsed []string    `json:"tools_used"`
	Success   bool        `json:"success"`
	Mistake   MistakeType `json:"mistake,omitempty"`
}

// MistakeEntry is appended whenever a run is judged unsuccessful. The run
// number is a back-reference into RunHistory, not ownership.
type MistakeEntry struct {
	RunNumber   int         `json:"run_number"`
	Type        MistakeType `json:"mistake_type"`
	Explanation string      `json:"explanation"`
	ToolsUsed   []string    `json:"tools_used"`
}

// Rule is a learned behavioral constraint. Immutable after creation; the ID is
// the de-duplication key.
type Rule struct {
	ID            string   `json:"rule"`
	Description   string   `json:"description"`
	Constraint    string   `json:"constraint,omitempty"`
	RequiredTools []string `json:"required_tools,omitempty"`
}

// Snapshot is the aggregate root persisted wholesale by every store backend.
type Snapshot struct {
	TotalRuns    int            `json:"total_runs"`
	Mistakes     []MistakeEntry `json:"mistakes"`
	RunHistory   []RunRecord    `json:"run_history"`
	LearnedRules []Rule         `json:"learned_rules"`
}

// NewSnapshot returns the all-zero defaults used when no persisted state exists.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Mistakes:     []MistakeEntry{},
		RunHistory:   []RunRecord{},
		LearnedRules: []Rule{},
	}
}

// normalize repairs nil slices after a partial or legacy document load.
func (s *Snapshot) normalize() {
	if s.Mistakes == nil {
		s.Mistakes = []MistakeEntry{}
	}
	if s.RunHistory == nil {
		s.RunHistory = []RunRecord{}
	}
	if s.LearnedRules == nil {
		s.LearnedRules = []Rule{}
	}
}

// HasLearnedRules reports whether the agent has learned anything yet.
func (s *Snapshot) HasLearnedRules() bool {
	return len(s.LearnedRules) > 0
}

// HasRule reports whether a rule with the given ID already exists.
func (s *Snapshot) HasRule(id string) bool {
	for _, r := range s.LearnedRules {
		if r.ID == id {
			return true
		}
	}
	return false
}

// MistakeCount counts occurrences of the given mistake type across all entries.
func (s *Snapshot) MistakeCount(t MistakeType) int {
	count := 0
	for _, m := range s.Mistakes {
		if m.Type == t {
			count++
		}
	}
	return count
}

// RequiredTools returns the union of every learned rule's required-tool list,
// preserving the canonical tool order. Defaults to the four mandatory
// information-gathering tools when nothing has been learned.
func (s *Snapshot) RequiredTools() []string {
	seen := make(map[string]bool)
	for _, rule := range s.LearnedRules {
		for _, tool := range rule.RequiredTools {
			seen[tool] = true
		}
	}

	if len(seen) == 0 {
		return []string{
			tools.ToolCompanyOverview,
			tools.ToolStockPrice,
			tools.ToolRecentNews,
			tools.ToolFinancialMetrics,
		}
	}

	required := make([]string, 0, len(seen))
	for _, tool := range tools.All() {
		if seen[tool] {
			required = append(required, tool)
		}
	}
	return required
}

// AnalyzePatterns generates learning insights from the mistake history.
func (s *Snapshot) AnalyzePatterns() []string {
	if len(s.Mistakes) == 0 {
		return nil
	}

	counts := make(map[MistakeType]int)
	order := []MistakeType{}
	for _, m := range s.Mistakes {
		if counts[m.Type] == 0 {
			order = append(order, m.Type)
		}
		counts[m.Type]++
	}

	var insights []string
	for _, t := range order {
		if counts[t] >= LearningThreshold {
			insights = append(insights, fmt.Sprintf("Repeated %dx: %s", counts[t], t))
		}
	}

	if len(s.LearnedRules) > 0 {
		insights = append(insights, fmt.Sprintf("Learned %d rules", len(s.LearnedRules)))
	}

	return insights
}

// SuccessRate returns the number of successful runs and the total run count.
func (s *Snapshot) SuccessRate() (successes, total int) {
	for _, r := range s.RunHistory {
		if r.Success {
			successes++
		}
	}
	return successes, len(s.RunHistory)
}
