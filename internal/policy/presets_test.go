package policy

import (
	"testing"

	"github.com/wfaudit/wfaudit/internal/models"
)

func TestPresetsLoadAndCompile(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	for _, name := range ListPresetNames() {
		preset := GetPreset(name)
		if preset == nil {
			t.Fatalf("preset %q not found", name)
		}
		if len(preset.Rules) == 0 {
			t.Errorf("preset %q has no rules", name)
		}
		if err := engine.CompileAndValidate(preset); err != nil {
			t.Errorf("preset %q does not compile: %v", name, err)
		}
	}
}

func TestGetPreset_Unknown(t *testing.T) {
	if p := GetPreset("nonexistent"); p != nil {
		t.Errorf("got %+v, want nil", p)
	}
}

func TestStrictPresetDeniesFindings(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	strict := MustGetPreset("strict")
	if strict.Mode != models.PolicyModeStrict {
		t.Errorf("mode = %s, want strict", strict.Mode)
	}

	results, err := engine.Evaluate(strict, sampleReport())
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	failed := 0
	for _, r := range results {
		if !r.Passed {
			failed++
		}
	}
	// One finding of each kind fails every strict rule.
	if failed != len(results) {
		t.Errorf("%d of %d rules failed, want all", failed, len(results))
	}
}

func TestBaselinePresetToleratesFewFindings(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	baseline := MustGetPreset("baseline")
	if baseline.Mode != models.PolicyModeWarn {
		t.Errorf("mode = %s, want warn", baseline.Mode)
	}

	report := sampleReport()
	// Drop the workflow-scope broad grant; the remaining counts sit under
	// the baseline thresholds.
	report.Findings = report.Findings[1:]
	report.Summary = models.Summarize(report.Findings)

	results, err := engine.Evaluate(baseline, report)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("rule %s failed: %s", r.RuleName, r.FailureMsg)
		}
	}
}
