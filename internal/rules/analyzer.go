package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wfaudit/wfaudit/internal/models"
	"github.com/wfaudit/wfaudit/internal/workflow"
)

// Analyze runs every detector over one parsed document and returns the
// findings in deterministic order: the workflow-scope permission finding
// first, then per job in declaration order: missing timeout, job
// permissions, then per-step floating tags in step order. file is the
// opaque document identifier stamped on each finding.
//
// Analyze never fails. Shape problems were already reduced to empty values
// by the workflow package, so a malformed sub-tree simply contributes no
// findings.
func Analyze(file string, doc *workflow.Document) []models.Finding {
	if doc == nil {
		return nil
	}

	var findings []models.Finding

	if IsBroad(doc.Permissions) {
		findings = append(findings, models.Finding{
			Smell:    models.SmellBroadPermissions,
			File:     file,
			Location: models.WorkflowLocation(),
			Detail:   fmt.Sprintf("workflow-level permissions=%s", formatPermissions(doc.Permissions)),
		})
	}

	for _, job := range doc.Jobs {
		if IsMissingTimeout(job) {
			findings = append(findings, models.Finding{
				Smell:    models.SmellMissingTimeout,
				File:     file,
				Location: models.JobLocation(job.Name),
				Detail:   "job has no timeout-minutes",
			})
		}

		if IsBroad(job.Permissions) {
			findings = append(findings, models.Finding{
				Smell:    models.SmellBroadPermissions,
				File:     file,
				Location: models.JobLocation(job.Name),
				Detail:   fmt.Sprintf("job permissions=%s", formatPermissions(job.Permissions)),
			})
		}

		for _, step := range job.Steps {
			if !step.HasUses {
				continue
			}
			floating, _ := ClassifyUses(step.Uses)
			if !floating {
				continue
			}
			findings = append(findings, models.Finding{
				Smell:    models.SmellFloatingTag,
				File:     file,
				Location: models.StepLocation(job.Name, step.Index),
				Detail:   floatingDetail(step.Uses),
			})
		}
	}

	return findings
}

// floatingDetail is the evidence string for a floating reference. For
// docker:// references the parsed image name is appended.
func floatingDetail(uses string) string {
	detail := "uses=" + uses
	if image := DescribeDockerImage(uses); image != "" {
		detail += fmt.Sprintf(" (image %s)", image)
	}
	return detail
}

// formatPermissions renders a permission set with sorted keys so details
// are stable across runs.
func formatPermissions(perms workflow.PermissionSet) string {
	keys := make([]string, 0, len(perms))
	for k := range perms {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(perms[k])
	}
	sb.WriteString("}")
	return sb.String()
}
