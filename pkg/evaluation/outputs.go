package evaluation

import (
	"fmt"
	"sort"

	"github.com/finsight/finsight-go/pkg/memory"
)

// OutputStatus is the typed per-output disposition a collaborator assigns to
// each collected value, replacing sentinel-substring sniffing of output text.
type OutputStatus int

const (
	// StatusCollected means the output was gathered and fed to later steps.
	StatusCollected OutputStatus = iota

	// StatusSkipped means the tool never ran; there is nothing to consume.
	StatusSkipped

	// StatusIgnored means the output was gathered but not passed to the
	// finalization step.
	StatusIgnored
)

func (s OutputStatus) String() string {
	switch s {
	case StatusCollected:
		return "collected"
	case StatusSkipped:
		return "skipped"
	case StatusIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// ValidateOutputs checks the per-output statuses for discarded data. It is a
// secondary validator, intentionally not part of Evaluate's check chain: the
// ignored_tool_outputs rule exists in the learning table, but the primary
// trace checks never raise it. Callers that track output statuses can run
// this separately.
func ValidateOutputs(statuses map[string]OutputStatus) Verdict {
	keys := make([]string, 0, len(statuses))
	for key := range statuses {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if statuses[key] == StatusIgnored {
			return Verdict{
				Mistake:     memory.MistakeIgnoredToolOutputs,
				Explanation: fmt.Sprintf("Tool output was ignored: %s", key),
			}
		}
	}

	return Verdict{Success: true}
}
