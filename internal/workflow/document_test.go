package workflow

import (
	"reflect"
	"testing"
)

func TestParse_JobDeclarationOrder(t *testing.T) {
	doc, err := Parse([]byte(`
jobs:
  zeta: {steps: []}
  alpha: {steps: []}
  mid: {steps: []}
`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	var got []string
	for _, job := range doc.Jobs {
		got = append(got, job.Name)
	}
	want := []string{"zeta", "alpha", "mid"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("job order = %v, want %v", got, want)
	}
}

func TestParse_TopLevelNotMapping(t *testing.T) {
	for name, src := range map[string]string{
		"sequence": "- one\n- two\n",
		"scalar":   "just a string\n",
		"empty":    "",
	} {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse([]byte(src))
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if doc.Permissions != nil || doc.Jobs != nil {
				t.Errorf("got non-empty document: %+v", doc)
			}
		})
	}
}

func TestParse_SyntaxErrorFails(t *testing.T) {
	if _, err := Parse([]byte("jobs: [unclosed\n")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestParse_JobFields(t *testing.T) {
	doc, err := Parse([]byte(`
jobs:
  build:
    timeout-minutes: 0
    permissions:
      contents: read
    steps:
      - uses: actions/checkout@v4
      - run: make test
`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(doc.Jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(doc.Jobs))
	}

	job := doc.Jobs[0]
	// An explicit zero still counts as configured.
	if !job.HasTimeout {
		t.Error("timeout-minutes: 0 should set HasTimeout")
	}
	if got := job.Permissions["contents"]; got != "read" {
		t.Errorf("permissions[contents] = %q, want %q", got, "read")
	}
	if len(job.Steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(job.Steps))
	}
	if !job.Steps[0].HasUses || job.Steps[0].Uses != "actions/checkout@v4" {
		t.Errorf("step 0 = %+v", job.Steps[0])
	}
	// A run step has no uses value.
	if job.Steps[1].HasUses {
		t.Errorf("step 1 should have no uses: %+v", job.Steps[1])
	}
}

func TestParse_NonMappingJobsDropped(t *testing.T) {
	doc, err := Parse([]byte(`
jobs:
  first: a string
  second:
    steps: []
  third: [a, sequence]
`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(doc.Jobs) != 1 || doc.Jobs[0].Name != "second" {
		t.Errorf("jobs = %+v, want only second", doc.Jobs)
	}
}

func TestParse_StepIndexPreserved(t *testing.T) {
	doc, err := Parse([]byte(`
jobs:
  build:
    steps:
      - a plain string
      - uses: actions/checkout@v4
      - [a, sequence]
      - run: make
`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	steps := doc.Jobs[0].Steps
	if len(steps) != 2 {
		t.Fatalf("got %d steps, want 2 (non-mapping entries dropped)", len(steps))
	}
	if steps[0].Index != 1 {
		t.Errorf("first retained step index = %d, want 1", steps[0].Index)
	}
	if steps[1].Index != 3 {
		t.Errorf("second retained step index = %d, want 3", steps[1].Index)
	}
}

func TestParse_PermissionValueTypes(t *testing.T) {
	doc, err := Parse([]byte(`
permissions:
  contents: write
  issues: true
  actions: 7
  packages: {nested: map}
`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	// Scalars are kept as their string form; non-scalars are dropped.
	want := PermissionSet{
		"contents": "write",
		"issues":   "true",
		"actions":  "7",
	}
	if !reflect.DeepEqual(doc.Permissions, want) {
		t.Errorf("permissions = %v, want %v", doc.Permissions, want)
	}
}

func TestParse_AliasResolution(t *testing.T) {
	doc, err := Parse([]byte(`
shared: &perms
  contents: write
permissions: *perms
jobs:
  build:
    permissions: *perms
    steps: []
`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if got := doc.Permissions["contents"]; got != "write" {
		t.Errorf("workflow permissions via alias = %q, want %q", got, "write")
	}
	if got := doc.Jobs[0].Permissions["contents"]; got != "write" {
		t.Errorf("job permissions via alias = %q, want %q", got, "write")
	}
}
