package guidance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/finsight-go/pkg/memory"
)

func TestNewSelector(t *testing.T) {
	t.Run("requires four variants", func(t *testing.T) {
		_, err := NewSelector([]Variant{{Name: "only", Text: "one"}}, "base")
		assert.Error(t, err)
	})

	t.Run("requires strong base", func(t *testing.T) {
		_, err := NewSelector(DefaultVariants(), "   ")
		assert.Error(t, err)
	})

	t.Run("default selector is valid", func(t *testing.T) {
		assert.NotNil(t, Default())
	})
}

func TestSelectWeakRotation(t *testing.T) {
	s := Default()

	names := make([]string, 0, 8)
	for run := 1; run <= 8; run++ {
		g := s.Select(nil, run)
		assert.False(t, g.Strict)
		assert.NotEmpty(t, g.Text)
		names = append(names, g.Variant)
	}

	// Deterministic rotation: runs 1-4 cycle all variants, runs 5-8 repeat
	assert.Equal(t, []string{"report-early", "news-skipper", "speed", "minimalist"}, names[:4])
	assert.Equal(t, names[:4], names[4:])
}

func TestSelectWeakIsDeterministic(t *testing.T) {
	s := Default()
	first := s.Select(nil, 3)
	second := s.Select(nil, 3)
	assert.Equal(t, first, second)
}

func TestSelectStrict(t *testing.T) {
	s := Default()
	rules := []memory.Rule{
		{ID: "must_use_all_required_tools", Description: "ALWAYS use all four tools", Constraint: "Never skip financial_metrics"},
		{ID: "collect_before_generate", Description: "Collect data first"},
	}

	g := s.Select(rules, 9)
	require.True(t, g.Strict)
	assert.Equal(t, "learned", g.Variant)

	assert.True(t, strings.HasPrefix(g.Text, DefaultStrongBase))
	assert.Contains(t, g.Text, "- ALWAYS use all four tools")
	assert.Contains(t, g.Text, "Never skip financial_metrics")
	assert.Contains(t, g.Text, "- Collect data first")
	assert.Contains(t, g.Text, "MANDATORY")

	// Rule bullets appear in creation order
	assert.Less(t,
		strings.Index(g.Text, "ALWAYS use all four tools"),
		strings.Index(g.Text, "Collect data first"))
}

func TestSelectStrictIgnoresRunNumber(t *testing.T) {
	s := Default()
	rules := []memory.Rule{{ID: "r", Description: "d"}}

	// Once any rule exists the rotation is permanently disabled
	for run := 1; run <= 6; run++ {
		g := s.Select(rules, run)
		assert.True(t, g.Strict)
		assert.Equal(t, "learned", g.Variant)
	}
}

func TestDefaultVariantsAreDistinct(t *testing.T) {
	variants := DefaultVariants()
	require.Len(t, variants, 4)

	seen := make(map[string]bool)
	for _, v := range variants {
		assert.NotEmpty(t, v.Name)
		assert.NotEmpty(t, v.Text)
		assert.False(t, seen[v.Text], "variant texts must be distinct")
		seen[v.Text] = true
	}
}
