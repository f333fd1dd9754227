// Package differ compares a fresh scan against a previously saved baseline
// report and translates the raw JSON differences into drift items.
package differ

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wI2L/jsondiff"
	"github.com/wfaudit/wfaudit/internal/models"
)

// DriftType indicates what kind of difference was detected
type DriftType string

const (
	// DriftRegression is a finding present now but not in the baseline
	DriftRegression DriftType = "regression"
	// DriftImprovement is a baseline finding that is gone now
	DriftImprovement DriftType = "improvement"
	// DriftInfo covers summary/metadata movement
	DriftInfo DriftType = "info"
)

// DriftItem is one translated difference
type DriftItem struct {
	Type    DriftType `json:"type"`
	Message string    `json:"message"`
}

// DiffResult contains the complete comparison result
type DiffResult struct {
	HasRegressions bool        `json:"hasRegressions"`
	Items          []DriftItem `json:"items"`
}

// LoadBaseline reads a saved scan report
func LoadBaseline(path string) (*models.ScanReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline report: %w", err)
	}

	var report models.ScanReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse baseline report: %w", err)
	}
	return &report, nil
}

// Compare diffs two reports. Findings are compared as sets (a finding's
// identity is smell+file+location); summary movement is computed as raw
// JSON patches and translated. The timestamp and repo path are excluded so
// re-scanning the same tree later is not itself drift.
func Compare(baseline, current *models.ScanReport) (*DiffResult, error) {
	result := &DiffResult{
		Items: CompareFindings(baseline.Findings, current.Findings),
	}
	for _, item := range result.Items {
		if item.Type == DriftRegression {
			result.HasRegressions = true
		}
	}

	baselineJSON, err := json.Marshal(baseline.Summary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal baseline summary: %w", err)
	}

	currentJSON, err := json.Marshal(current.Summary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal current summary: %w", err)
	}

	patches, err := jsondiff.CompareJSON(baselineJSON, currentJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to compute summary diff: %w", err)
	}

	result.Items = append(result.Items, Translate(patches)...)
	return result, nil
}
