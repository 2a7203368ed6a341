// Package guidance chooses the behavioral instruction handed to the planner
// for a run: one of several deliberately-weak variants while the agent has
// learned nothing, or a single strict synthesis of its learned rules after.
package guidance

import (
	"fmt"
	"strings"

	"github.com/finsight/finsight-go/pkg/errors"
	"github.com/finsight/finsight-go/pkg/memory"
)

// Variant is one self-contained guidance text.
type Variant struct {
	Name string `yaml:"name" validate:"required"`
	Text string `yaml:"text" validate:"required"`
}

// Guidance is the selected instruction for a single run.
type Guidance struct {
	Text    string
	Variant string // Variant name, or "learned" for the strict synthesis
	Strict  bool   // True once any rule exists; drives temperature 0
}

// Selector is a pure chooser over (rule set, run number). Variant content is
// configuration; the selection logic is fixed.
type Selector struct {
	variants   []Variant
	strongBase string
}

// NewSelector builds a selector from the given weak variants and strong base
// text. Exactly four weak variants are required to keep the rotation stable.
func NewSelector(variants []Variant, strongBase string) (*Selector, error) {
	if len(variants) != 4 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "selector requires exactly 4 weak guidance variants"),
			errors.Fields{"got": len(variants)})
	}
	if strings.TrimSpace(strongBase) == "" {
		return nil, errors.New(errors.InvalidInput, "strong base guidance must not be empty")
	}
	return &Selector{variants: variants, strongBase: strongBase}, nil
}

// Default returns a selector over the built-in variant set.
func Default() *Selector {
	s, err := NewSelector(DefaultVariants(), DefaultStrongBase)
	if err != nil {
		// Built-in content always satisfies the constructor
		panic(err)
	}
	return s
}

// Select is deterministic given its inputs. With no learned rules it rotates
// through the weak variants by run number; once any rule exists the rotation
// is permanently disabled and every run gets the strict synthesis.
func (s *Selector) Select(rules []memory.Rule, runNumber int) Guidance {
	if len(rules) == 0 {
		index := (runNumber - 1) % len(s.variants)
		if index < 0 {
			index += len(s.variants)
		}
		v := s.variants[index]
		return Guidance{Text: v.Text, Variant: v.Name}
	}

	var b strings.Builder
	b.WriteString(s.strongBase)
	b.WriteString("\n\nCRITICAL RULES (learned from past failures):\n")
	for _, rule := range rules {
		fmt.Fprintf(&b, "- %s\n", rule.Description)
		if rule.Constraint != "" {
			fmt.Fprintf(&b, "  %s\n", rule.Constraint)
		}
	}
	b.WriteString("\nTHESE RULES ARE MANDATORY - DO NOT SKIP OR REORDER!")

	return Guidance{Text: b.String(), Variant: "learned", Strict: true}
}
