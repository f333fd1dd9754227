package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Smell is a closed enumeration of workflow smells. The identifiers are
// stable and appear verbatim in reports.
type Smell string

const (
	SmellFloatingTag      Smell = "S1_FLOATING_TAG"
	SmellMissingTimeout   Smell = "S2_MISSING_TIMEOUT"
	SmellBroadPermissions Smell = "S3_BROAD_PERMISSIONS"
)

// AllSmells in reporting order.
var AllSmells = []Smell{
	SmellFloatingTag,
	SmellMissingTimeout,
	SmellBroadPermissions,
}

// remediations is a static suggestion per smell kind.
var remediations = map[Smell]string{
	SmellFloatingTag:      "Pin action to a stable tag or commit SHA",
	SmellMissingTimeout:   "Add 'timeout-minutes: <value>' at job level",
	SmellBroadPermissions: "Restrict permissions to minimum required scopes",
}

// Remediation returns the fix suggestion for a smell kind.
func Remediation(s Smell) string {
	return remediations[s]
}

// Scope identifies the level of a workflow document a finding points at.
type Scope int

const (
	ScopeWorkflow Scope = iota
	ScopeJob
	ScopeStep
)

// Location is a structured scope descriptor. It is rendered to a string
// only at report time.
type Location struct {
	Scope Scope
	Job   string
	Step  int
}

func WorkflowLocation() Location {
	return Location{Scope: ScopeWorkflow}
}

func JobLocation(job string) Location {
	return Location{Scope: ScopeJob, Job: job}
}

func StepLocation(job string, step int) Location {
	return Location{Scope: ScopeStep, Job: job, Step: step}
}

// String renders the location as workflow / job:<name> / job:<name>:step:<n>.
func (l Location) String() string {
	switch l.Scope {
	case ScopeJob:
		return "job:" + l.Job
	case ScopeStep:
		return fmt.Sprintf("job:%s:step:%d", l.Job, l.Step)
	default:
		return "workflow"
	}
}

// MarshalJSON emits the rendered form so reports stay readable.
func (l Location) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON parses the rendered form back, so saved reports can be
// reloaded as baselines.
func (l *Location) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch {
	case s == "workflow":
		*l = WorkflowLocation()
	case strings.HasPrefix(s, "job:"):
		rest := strings.TrimPrefix(s, "job:")
		if idx := strings.LastIndex(rest, ":step:"); idx >= 0 {
			var step int
			if _, err := fmt.Sscanf(rest[idx+len(":step:"):], "%d", &step); err != nil {
				return fmt.Errorf("invalid step location %q", s)
			}
			*l = StepLocation(rest[:idx], step)
		} else {
			*l = JobLocation(rest)
		}
	default:
		return fmt.Errorf("invalid location %q", s)
	}
	return nil
}

// Finding is one detected smell at one document location. Created once
// during analysis and immutable after that.
type Finding struct {
	Smell    Smell    `json:"smell"`
	File     string   `json:"file"`
	Location Location `json:"where"`
	Detail   string   `json:"details"`
}
