package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wfaudit/wfaudit/internal/models"
)

// CheckResult output structure
type CheckResult struct {
	Repo           string          `json:"repo"`
	FilesScanned   int             `json:"filesScanned"`
	Summary        models.Summary  `json:"summary"`
	Findings       []models.Finding `json:"findings"`
	Policy         *PolicyDecision `json:"policy,omitempty"`
	FailOnFindings bool            `json:"failOnFindings"`
	Outcome        string          `json:"outcome"` // "PASS" or "FAIL"
}

// PolicyDecision result
type PolicyDecision struct {
	Name    string   `json:"name"`
	Mode    string   `json:"mode"`
	Passed  bool     `json:"passed"`
	Reasons []string `json:"reasons,omitempty"`
}

// BuildCheckResult from components
func BuildCheckResult(
	report *models.ScanReport,
	policyResults []models.PolicyResult,
	policyConfig *models.PolicyConfig,
	failOnFindings bool,
) *CheckResult {
	result := &CheckResult{
		Repo:           report.Repo,
		FilesScanned:   report.FilesScanned,
		Summary:        report.Summary,
		Findings:       report.Findings,
		FailOnFindings: failOnFindings,
		Outcome:        "PASS",
	}
	if result.Findings == nil {
		result.Findings = []models.Finding{}
	}

	// Build policy decision
	if policyConfig != nil {
		mode := policyConfig.Mode
		if mode == "" {
			mode = models.PolicyModeStrict
		}
		decision := &PolicyDecision{
			Name:   policyConfig.Name,
			Mode:   string(mode),
			Passed: true,
		}

		for _, pr := range policyResults {
			if pr.Passed {
				continue
			}
			// Warn-severity failures only fail the policy in strict mode.
			if pr.Severity == models.PolicySeverityError || mode == models.PolicyModeStrict {
				decision.Passed = false
			}
			decision.Reasons = append(decision.Reasons, fmt.Sprintf("%s: %s", pr.RuleName, pr.FailureMsg))
		}

		result.Policy = decision
	}

	// Determine outcome
	if result.Policy != nil && !result.Policy.Passed {
		result.Outcome = "FAIL"
	} else if failOnFindings && result.Summary.Total() > 0 {
		result.Outcome = "FAIL"
	}

	return result
}

// FormatTextOutput human readable
func FormatTextOutput(result *CheckResult) string {
	var sb strings.Builder

	policyName := "none"
	if result.Policy != nil {
		policyName = result.Policy.Name
	}

	if result.Outcome == "PASS" {
		sb.WriteString(fmt.Sprintf("%swfaudit check: PASS%s (policy=%s)\n",
			colorGreen, colorReset, policyName))
	} else {
		sb.WriteString(fmt.Sprintf("%swfaudit check: FAIL%s (policy=%s)\n",
			colorRed, colorReset, policyName))
	}

	sb.WriteString(fmt.Sprintf("Repo: %s\n", result.Repo))
	sb.WriteString(fmt.Sprintf("Workflow files scanned: %d\n", result.FilesScanned))
	sb.WriteString("\n")

	if result.Summary.Total() > 0 {
		for _, smell := range models.AllSmells {
			group := findingsFor(result.Findings, smell)
			if len(group) == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf("%s%s (%d)%s\n", colorYellow, smell, len(group), colorReset))
			for _, f := range group {
				sb.WriteString(fmt.Sprintf("- %s %s\n    %s\n", f.File, f.Location, f.Detail))
			}
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString(fmt.Sprintf("%s✓ No smells detected%s\n\n", colorGreen, colorReset))
	}

	// Policy decision
	if result.Policy != nil {
		if result.Policy.Passed {
			sb.WriteString(fmt.Sprintf("Policy: %sPASS%s\n", colorGreen, colorReset))
		} else {
			sb.WriteString(fmt.Sprintf("Policy: %sDENY%s\n", colorRed, colorReset))
		}
		for _, reason := range result.Policy.Reasons {
			sb.WriteString(fmt.Sprintf("- %s\n", reason))
		}
	}

	return sb.String()
}

// findingsFor keeps the analyzer's deterministic order within each group
func findingsFor(findings []models.Finding, smell models.Smell) []models.Finding {
	var group []models.Finding
	for _, f := range findings {
		if f.Smell == smell {
			group = append(group, f)
		}
	}
	return group
}

// FormatJSONOutput raw json
func FormatJSONOutput(result *CheckResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
