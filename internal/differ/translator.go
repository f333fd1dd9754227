package differ

import (
	"fmt"
	"strings"

	"github.com/wI2L/jsondiff"
	"github.com/wfaudit/wfaudit/internal/models"
)

// findingKey identifies a finding for set comparison. Detail is excluded:
// it is descriptive evidence, not identity.
type findingKey struct {
	smell models.Smell
	file  string
	where string
}

func keyOf(f models.Finding) findingKey {
	return findingKey{smell: f.Smell, file: f.File, where: f.Location.String()}
}

// CompareFindings does a set comparison of the two finding sequences and
// returns regressions (new findings) and improvements (resolved findings).
func CompareFindings(baseline, current []models.Finding) []DriftItem {
	baselineSet := make(map[findingKey]bool, len(baseline))
	for _, f := range baseline {
		baselineSet[keyOf(f)] = true
	}
	currentSet := make(map[findingKey]bool, len(current))
	for _, f := range current {
		currentSet[keyOf(f)] = true
	}

	var items []DriftItem

	for _, f := range baseline {
		if !currentSet[keyOf(f)] {
			items = append(items, DriftItem{
				Type:    DriftImprovement,
				Message: fmt.Sprintf("Resolved: [%s] %s at %s", f.Smell, f.File, f.Location),
			})
		}
	}

	for _, f := range current {
		if !baselineSet[keyOf(f)] {
			items = append(items, DriftItem{
				Type:    DriftRegression,
				Message: fmt.Sprintf("New finding: [%s] %s at %s :: %s", f.Smell, f.File, f.Location, f.Detail),
			})
		}
	}

	return items
}

// Translate turns raw JSON patches into info-level drift messages,
// deduplicated in patch order.
func Translate(patches jsondiff.Patch) []DriftItem {
	if len(patches) == 0 {
		return nil
	}

	var items []DriftItem
	seen := make(map[string]bool)

	for _, op := range patches {
		message := translateOperation(op)
		if message != "" && !seen[message] {
			seen[message] = true
			items = append(items, DriftItem{Type: DriftInfo, Message: message})
		}
	}

	return items
}

// translateOperation maps a summary patch operation to a message. The
// patches come from diffing two Summary values, so paths are the summary
// counter names.
func translateOperation(op jsondiff.Operation) string {
	if op.Type != jsondiff.OperationReplace {
		return ""
	}
	counter := strings.TrimPrefix(op.Path, "/")
	return fmt.Sprintf("Summary count %s is now %v", counter, op.Value)
}
