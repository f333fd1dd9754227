package cli

import (
	"fmt"
	"strings"

	"github.com/wfaudit/wfaudit/internal/models"
)

// ANSI color codes
const (
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
)

// FormatScanText renders findings, the summary, and the static remediation
// table, matching the layout of the report consumers already parse.
func FormatScanText(report *models.ScanReport) string {
	var sb strings.Builder

	for _, f := range report.Findings {
		sb.WriteString(fmt.Sprintf("[%s] %s\n %s :: %s\n", f.Smell, f.File, f.Location, f.Detail))
	}

	sb.WriteString("\nSummary:\n")
	for _, smell := range models.AllSmells {
		sb.WriteString(fmt.Sprintf("  %s: %d\n", smell, report.Summary.Count(smell)))
	}

	sb.WriteString("\nBasic Fix Suggestions:\n")
	for _, smell := range models.AllSmells {
		sb.WriteString(fmt.Sprintf("  %-20s -> %s\n", smell, models.Remediation(smell)))
	}

	return sb.String()
}
