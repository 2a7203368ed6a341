// Package agent contains the run orchestrator: a linear state machine that
// drives one research run from guidance selection through plan execution,
// evaluation, and the memory write that makes learning happen.
package agent

import (
	"context"
	"fmt"

	"github.com/finsight/finsight-go/pkg/errors"
	"github.com/finsight/finsight-go/pkg/evaluation"
	"github.com/finsight/finsight-go/pkg/guidance"
	"github.com/finsight/finsight-go/pkg/logging"
	"github.com/finsight/finsight-go/pkg/memory"
)

// Result is the terminal state returned to the caller. Run never propagates
// plan or evaluation failures as errors; they are encoded here. Only a failed
// memory write surfaces as an error.
type Result struct {
	RunNumber   int
	TraceID     string
	Query       string
	Report      string
	Success     bool
	Mistake     memory.MistakeType
	Explanation string
	ToolsUsed   []string

	// GuidanceVariant names which guidance was in effect for the run.
	GuidanceVariant string

	// LearnedRules is the rule count after this run was recorded.
	LearnedRules int
}

// Orchestrator ties memory, guidance selection, the planning collaborator and
// the evaluator together for one query at a time. It assumes a single-writer
// deployment: concurrent Run calls against the same memory race at the
// snapshot level.
type Orchestrator struct {
	memory   *memory.Memory
	planner  Planner
	selector *guidance.Selector
	logger   *logging.Logger
}

func New(mem *memory.Memory, planner Planner, selector *guidance.Selector) *Orchestrator {
	return &Orchestrator{
		memory:   mem,
		planner:  planner,
		selector: selector,
		logger:   logging.GetLogger(),
	}
}

// Run executes the state machine: Initialize -> PlanAndExecute -> Evaluate ->
// Terminal. Linear, no retries, no cycles.
func (o *Orchestrator) Run(ctx context.Context, query string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.Canceled, "run canceled before start")
	}

	state := o.initialize(ctx, query)
	ctx = logging.WithRunNumber(ctx, state.RunNumber)

	g := o.selector.Select(o.memory.LearnedRules(), state.RunNumber)
	o.logger.Info(ctx, "using guidance variant: %s (strict=%v)", g.Variant, g.Strict)

	o.planAndExecute(ctx, state, g)
	record, err := o.evaluate(ctx, state)
	if err != nil {
		return nil, err
	}

	return &Result{
		RunNumber:       record.RunNumber,
		TraceID:         record.TraceID,
		Query:           state.Query,
		Report:          state.Report,
		Success:         state.Success,
		Mistake:         state.Mistake,
		Explanation:     state.Explanation,
		ToolsUsed:       state.ToolsUsed,
		GuidanceVariant: g.Variant,
		LearnedRules:    len(o.memory.LearnedRules()),
	}, nil
}

// initialize reads run context from memory and resets the working state.
func (o *Orchestrator) initialize(ctx context.Context, query string) *State {
	state := newState(query)
	state.RunNumber = o.memory.NextRunNumber()
	state.FollowLearned = o.memory.HasLearnedRules()

	past := o.memory.PastMistakes()
	for _, m := range past {
		state.PastMistakes = append(state.PastMistakes, m.Type)
	}

	o.logger.Info(ctx, "run #%d: %s (learned rules: %v)", state.RunNumber, query, state.FollowLearned)
	if patterns := o.memory.Load().AnalyzePatterns(); len(patterns) > 0 {
		o.logger.Info(ctx, "patterns: %v", patterns)
	}

	return state
}

// planAndExecute delegates to the collaborator. A collaborator failure never
// crashes the orchestrator: it becomes an execution_error run with whatever
// partial trace exists.
func (o *Orchestrator) planAndExecute(ctx context.Context, state *State, g guidance.Guidance) {
	result, err := o.planner.PlanAndExecute(ctx, state.Query, g)
	if result != nil {
		state.ToolsUsed = result.ToolsUsed
		state.Outputs = result.Outputs
		state.Report = result.Report
	}

	if err != nil {
		o.logger.Error(ctx, "agent execution error: %v", err)
		state.Success = false
		state.Mistake = memory.MistakeExecutionError
		state.Explanation = err.Error()
		if state.Report == "" {
			state.Report = fmt.Sprintf("Agent failed to execute: %v", err)
		}
		return
	}

	state.Success = true
}

// evaluate classifies the trace and records the run. execution_error is a
// low-priority default: when any tools did execute, the structural checks run
// and their verdict replaces it. A persistence failure is fatal — losing the
// write loses the learning signal.
func (o *Orchestrator) evaluate(ctx context.Context, state *State) (*memory.RunRecord, error) {
	hardFailure := state.Mistake == memory.MistakeExecutionError

	if !hardFailure || len(state.ToolsUsed) > 0 {
		verdict := evaluation.Evaluate(state.ToolsUsed, state.Outputs)
		if !verdict.Success {
			state.Success = false
			state.Mistake = verdict.Mistake
			state.Explanation = verdict.Explanation
		} else if !hardFailure {
			state.Success = true
			state.Mistake = ""
			state.Explanation = ""
		}
	}

	record, err := o.memory.RecordRun(ctx, memory.RunData{
		Query:       state.Query,
		ToolsUsed:   state.ToolsUsed,
		Success:     state.Success,
		Mistake:     state.Mistake,
		Explanation: state.Explanation,
	})
	if err != nil {
		return nil, err
	}

	if state.Success {
		o.logger.Info(ctx, "run #%d PASSED", record.RunNumber)
	} else {
		o.logger.Info(ctx, "run #%d FAILED: %s (%s)", record.RunNumber, state.Mistake, state.Explanation)
	}

	return record, nil
}
