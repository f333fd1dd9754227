package differ

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wfaudit/wfaudit/internal/models"
)

func reportWith(findings ...models.Finding) *models.ScanReport {
	return &models.ScanReport{
		Timestamp:    time.Now().UTC(),
		Repo:         "/tmp/repo",
		FilesScanned: 1,
		Findings:     findings,
		Summary:      models.Summarize(findings),
	}
}

func floatingAt(file, job string, step int) models.Finding {
	return models.Finding{
		Smell:    models.SmellFloatingTag,
		File:     file,
		Location: models.StepLocation(job, step),
		Detail:   "uses=actions/checkout@main",
	}
}

func TestCompare_NoChanges(t *testing.T) {
	f := floatingAt("ci.yml", "build", 0)
	result, err := Compare(reportWith(f), reportWith(f))
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if result.HasRegressions {
		t.Error("identical reports should have no regressions")
	}
	if len(result.Items) != 0 {
		t.Errorf("items = %+v, want none", result.Items)
	}
}

func TestCompare_Regression(t *testing.T) {
	baseline := reportWith()
	current := reportWith(floatingAt("ci.yml", "build", 0))

	result, err := Compare(baseline, current)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if !result.HasRegressions {
		t.Error("new finding should be a regression")
	}

	var regressions, infos int
	for _, item := range result.Items {
		switch item.Type {
		case DriftRegression:
			regressions++
			if !strings.Contains(item.Message, "New finding") {
				t.Errorf("regression message = %q", item.Message)
			}
		case DriftInfo:
			infos++
		}
	}
	if regressions != 1 {
		t.Errorf("regressions = %d, want 1", regressions)
	}
	// The summary counter moved too.
	if infos != 1 {
		t.Errorf("info items = %d, want 1", infos)
	}
}

func TestCompare_Improvement(t *testing.T) {
	baseline := reportWith(floatingAt("ci.yml", "build", 0))
	current := reportWith()

	result, err := Compare(baseline, current)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if result.HasRegressions {
		t.Error("resolved finding should not be a regression")
	}

	found := false
	for _, item := range result.Items {
		if item.Type == DriftImprovement && strings.Contains(item.Message, "Resolved") {
			found = true
		}
	}
	if !found {
		t.Errorf("no improvement item in %+v", result.Items)
	}
}

func TestCompare_DetailChangeIsNotDrift(t *testing.T) {
	before := floatingAt("ci.yml", "build", 0)
	after := before
	after.Detail = "uses=actions/checkout@master"

	result, err := Compare(reportWith(before), reportWith(after))
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	// Identity is smell+file+location; the evidence string may differ.
	if len(result.Items) != 0 {
		t.Errorf("items = %+v, want none", result.Items)
	}
}

func TestCompare_TimestampAndRepoExcluded(t *testing.T) {
	f := floatingAt("ci.yml", "build", 0)
	baseline := reportWith(f)
	baseline.Timestamp = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	baseline.Repo = "/somewhere/else"

	result, err := Compare(baseline, reportWith(f))
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if len(result.Items) != 0 {
		t.Errorf("items = %+v, want none", result.Items)
	}
}

func TestLoadBaseline(t *testing.T) {
	report := reportWith(floatingAt("ci.yml", "build", 2))
	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	path := filepath.Join(t.TempDir(), "baseline.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := LoadBaseline(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.Findings) != 1 {
		t.Fatalf("findings = %+v, want 1", loaded.Findings)
	}
	if got := loaded.Findings[0].Location.String(); got != "job:build:step:2" {
		t.Errorf("location = %q, want %q", got, "job:build:step:2")
	}
}

func TestLoadBaseline_Missing(t *testing.T) {
	if _, err := LoadBaseline(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing baseline")
	}
}
