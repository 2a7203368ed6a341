package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mistake(run int, t MistakeType) MistakeEntry {
	return MistakeEntry{RunNumber: run, Type: t, Explanation: "test"}
}

func TestConsiderMistake(t *testing.T) {
	t.Run("below threshold creates no rule", func(t *testing.T) {
		s := NewSnapshot()
		s.Mistakes = append(s.Mistakes, mistake(1, MistakeSkippedRequiredTool))

		rule := considerMistake(s, s.Mistakes[0])
		assert.Nil(t, rule)
		assert.Empty(t, s.LearnedRules)
	})

	t.Run("rule created when count reaches threshold", func(t *testing.T) {
		s := NewSnapshot()
		s.Mistakes = append(s.Mistakes,
			mistake(1, MistakeSkippedRequiredTool),
			mistake(2, MistakeSkippedRequiredTool),
		)

		rule := considerMistake(s, s.Mistakes[1])
		require.NotNil(t, rule)
		assert.Equal(t, "must_use_all_required_tools", rule.ID)
		require.Len(t, s.LearnedRules, 1)
		assert.Len(t, s.LearnedRules[0].RequiredTools, 4)
	})

	t.Run("idempotent on further occurrences", func(t *testing.T) {
		s := NewSnapshot()
		for run := 1; run <= 5; run++ {
			entry := mistake(run, MistakeWrongToolSequence)
			s.Mistakes = append(s.Mistakes, entry)
			considerMistake(s, entry)
		}

		require.Len(t, s.LearnedRules, 1)
		assert.Equal(t, "collect_before_generate", s.LearnedRules[0].ID)
	})

	t.Run("unknown mistake type never produces a rule", func(t *testing.T) {
		s := NewSnapshot()
		for run := 1; run <= 3; run++ {
			entry := mistake(run, MistakeType("alien_category"))
			s.Mistakes = append(s.Mistakes, entry)
			assert.Nil(t, considerMistake(s, entry))
		}
		assert.Empty(t, s.LearnedRules)
	})

	t.Run("execution_error is not learnable", func(t *testing.T) {
		s := NewSnapshot()
		for run := 1; run <= 3; run++ {
			entry := mistake(run, MistakeExecutionError)
			s.Mistakes = append(s.Mistakes, entry)
			assert.Nil(t, considerMistake(s, entry))
		}
		assert.Empty(t, s.LearnedRules)
	})

	t.Run("distinct categories produce distinct rules in order", func(t *testing.T) {
		s := NewSnapshot()
		sequence := []MistakeType{
			MistakeSkippedRequiredTool,
			MistakeWrongToolSequence,
			MistakeSkippedRequiredTool, // triggers rule 1
			MistakeWrongToolSequence,   // triggers rule 2
		}
		for run, mt := range sequence {
			entry := mistake(run+1, mt)
			s.Mistakes = append(s.Mistakes, entry)
			considerMistake(s, entry)
		}

		require.Len(t, s.LearnedRules, 2)
		assert.Equal(t, "must_use_all_required_tools", s.LearnedRules[0].ID)
		assert.Equal(t, "collect_before_generate", s.LearnedRules[1].ID)
	})
}

func TestMistakeTypeValid(t *testing.T) {
	assert.True(t, MistakeSkippedRequiredTool.Valid())
	assert.True(t, MistakeExecutionError.Valid())
	assert.False(t, MistakeType("whatever").Valid())
	assert.False(t, MistakeType("").Valid())
}
