package agent

import "github.com/finsight/finsight-go/pkg/memory"

// State is the per-run working state threaded through the orchestrator's
// stages. It is reset at Initialize and frozen at Terminal.
type State struct {
	Query     string
	RunNumber int

	// FollowLearned is true when the memory holds learned rules; the planner
	// then receives strict guidance and a zero temperature intent.
	FollowLearned bool

	// Tool execution tracking
	ToolsUsed []string
	Outputs   map[string]string

	// Results
	Report  string
	Success bool

	// Error tracking
	Mistake     memory.MistakeType
	Explanation string

	PastMistakes []memory.MistakeType
}

func newState(query string) *State {
	return &State{
		Query:     query,
		ToolsUsed: []string{},
		Outputs:   map[string]string{},
	}
}
