package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finsight/finsight-go/pkg/errors"
	"github.com/finsight/finsight-go/pkg/logging"
)

// RunData carries everything the orchestrator knows about a completed run.
type RunData struct {
	Query       string
	ToolsUsed   []string
	Success     bool
	Mistake     MistakeType // empty for successful runs
	Explanation string
}

// Memory is the durable learning state of the agent. It wraps a Store and
// implements the record/learn cycle on top of it. Every read goes back to the
// store: nothing is cached between operations.
type Memory struct {
	store  Store
	logger *logging.Logger
}

// New creates a Memory over the given store backend.
func New(store Store) *Memory {
	return &Memory{
		store:  store,
		logger: logging.GetLogger(),
	}
}

// Load returns the current snapshot, always freshly read from the store.
func (m *Memory) Load() *Snapshot {
	return m.store.Load()
}

// NextRunNumber peeks at the number the next recorded run will receive. It
// does not mutate state; only RecordRun commits the increment. Under the
// single-writer assumption the peeked value and the committed value match.
func (m *Memory) NextRunNumber() int {
	return m.store.Load().TotalRuns + 1
}

// HasLearnedRules reports whether any rule has been synthesized yet.
func (m *Memory) HasLearnedRules() bool {
	return m.store.Load().HasLearnedRules()
}

// LearnedRules returns the learned rules in creation order.
func (m *Memory) LearnedRules() []Rule {
	return m.store.Load().LearnedRules
}

// PastMistakes returns every recorded mistake entry in order.
func (m *Memory) PastMistakes() []MistakeEntry {
	return m.store.Load().Mistakes
}

// RecordRun is the sole mutating entrypoint besides Reset. It assigns the run
// number, appends the run record and any mistake entry, lets the synthesizer
// consider the mistake, and persists the result. A save failure is fatal:
// without it the learning signal is lost.
func (m *Memory) RecordRun(ctx context.Context, data RunData) (*RunRecord, error) {
	snapshot := m.store.Load()

	snapshot.TotalRuns++
	record := RunRecord{
		RunNumber: snapshot.TotalRuns,
		TraceID:   uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Query:     data.Query,
		ToolsUsed: append([]string{}, data.ToolsUsed...),
		Success:   data.Success,
		Mistake:   data.Mistake,
	}
	snapshot.RunHistory = append(snapshot.RunHistory, record)

	if data.Mistake != "" {
		entry := MistakeEntry{
			RunNumber:   record.RunNumber,
			Type:        data.Mistake,
			Explanation: data.Explanation,
			ToolsUsed:   append([]string{}, data.ToolsUsed...),
		}
		snapshot.Mistakes = append(snapshot.Mistakes, entry)

		count := snapshot.MistakeCount(entry.Type)
		m.logger.Info(ctx, "Recorded mistake: %s (occurred %dx)", entry.Type, count)

		if rule := considerMistake(snapshot, entry); rule != nil {
			m.logger.Info(ctx, "Threshold reached, created rule: %s", rule.Description)
		} else if count < LearningThreshold {
			m.logger.Info(ctx, "Recorded for learning (need %d more to create rule)", LearningThreshold-count)
		}
	}

	if err := m.store.Save(snapshot); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.RunRecordFailed, "failed to persist run record"),
			errors.Fields{"run_number": record.RunNumber})
	}

	return &record, nil
}

// Reset deletes all persisted state. Idempotent.
func (m *Memory) Reset() error {
	return m.store.Reset()
}

// Close releases the underlying store.
func (m *Memory) Close() error {
	return m.store.Close()
}
