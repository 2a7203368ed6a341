package memory

import "github.com/finsight/finsight-go/pkg/tools"

// LearningThreshold is how many times a mistake type must occur before the
// synthesizer converts it into a rule.
const LearningThreshold = 2

var requiredToolSet = []string{
	tools.ToolCompanyOverview,
	tools.ToolStockPrice,
	tools.ToolRecentNews,
	tools.ToolFinancialMetrics,
}

// ruleTable maps each learnable mistake type to the rule it produces. The
// mapping is fixed and deterministic. execution_error is deliberately absent:
// a crashed collaborator carries no structural lesson to encode.
var ruleTable = map[MistakeType]Rule{
	MistakeSkippedRequiredTool: {
		ID:            "must_use_all_required_tools",
		Description:   "ALWAYS use: overview, price, news, AND financials before report",
		Constraint:    "Never skip financial_metrics - it's mandatory",
		RequiredTools: requiredToolSet,
	},
	MistakeWrongToolSequence: {
		ID:            "collect_before_generate",
		Description:   "MUST collect ALL data BEFORE calling generate_report",
		Constraint:    "generate_report must be the LAST tool called",
		RequiredTools: requiredToolSet,
	},
	MistakeIgnoredToolOutputs: {
		ID:            "use_collected_data",
		Description:   "Pass all collected tool outputs to generate_report",
		Constraint:    "no data should be marked as IGNORED",
		RequiredTools: requiredToolSet,
	},
}

// considerMistake applies threshold-based learning to the snapshot after a
// mistake entry has been appended. It returns the newly created rule, or nil
// when the threshold is not yet reached, the mistake type is unknown, or the
// rule already exists. One-shot: a type that has already produced its rule
// never produces another.
func considerMistake(s *Snapshot, entry MistakeEntry) *Rule {
	count := s.MistakeCount(entry.Type)
	if count < LearningThreshold {
		return nil
	}

	candidate, ok := ruleTable[entry.Type]
	if !ok {
		return nil
	}

	if s.HasRule(candidate.ID) {
		return nil
	}

	s.LearnedRules = append(s.LearnedRules, candidate)
	return &candidate
}
