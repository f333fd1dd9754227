// Package sarif converts scan reports to SARIF 2.1.0 for code-scanning
// upload.
package sarif

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"
	"github.com/wfaudit/wfaudit/internal/models"
)

const informationURI = "https://github.com/wfaudit/wfaudit"

// ruleDescriptions are the short descriptions for the three smell rules.
var ruleDescriptions = map[models.Smell]string{
	models.SmellFloatingTag:      "Action reference is floating and can silently change over time",
	models.SmellMissingTimeout:   "Job has no execution timeout configured",
	models.SmellBroadPermissions: "Permissions block grants write-level access",
}

// FromReport builds a SARIF report with one run and one result per finding.
// Smells have no severity scoring, so every result is level "warning".
func FromReport(report *models.ScanReport) (*sarif.Report, error) {
	out, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("wfaudit", informationURI)

	for _, smell := range models.AllSmells {
		run.AddRule(string(smell)).
			WithDescription(ruleDescriptions[smell]).
			WithHelp(sarif.NewMultiformatMessageString(models.Remediation(smell))).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "warning"})
	}

	for _, f := range report.Findings {
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.File)),
		)

		result := sarif.NewRuleResult(string(f.Smell)).
			WithMessage(sarif.NewTextMessage(fmt.Sprintf("%s :: %s", f.Location, f.Detail))).
			WithLevel("warning").
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}

	out.AddRun(run)
	return out, nil
}

// Write renders a scan report as pretty-printed SARIF.
func Write(report *models.ScanReport, w io.Writer) error {
	out, err := FromReport(report)
	if err != nil {
		return err
	}
	return out.PrettyWrite(w)
}
