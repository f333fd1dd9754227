// Package scanner discovers workflow files in a repository and feeds them
// through the analyzer. It is the only place that touches the filesystem;
// per-file problems are logged and skipped, never fatal.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/wfaudit/wfaudit/internal/models"
	"github.com/wfaudit/wfaudit/internal/observability/logging"
	"github.com/wfaudit/wfaudit/internal/rules"
	"github.com/wfaudit/wfaudit/internal/workflow"
)

// WorkflowDir is the conventional workflow location under a repository root.
const WorkflowDir = ".github/workflows"

// Scan analyzes every workflow file under root and aggregates the findings
// into a report. A missing workflow directory yields an empty report. Only
// an unusable root is an error; unparsable files are warned about and
// skipped.
func Scan(ctx context.Context, root string) (*models.ScanReport, error) {
	log := logging.From(ctx)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repository path: %w", err)
	}

	report := &models.ScanReport{
		Timestamp: time.Now().UTC(),
		Repo:      absRoot,
		Findings:  []models.Finding{},
	}

	repoName := filepath.Base(absRoot)
	wfDir := filepath.Join(absRoot, WorkflowDir)

	files, err := workflowFiles(wfDir)
	if err != nil {
		return nil, err
	}

	for _, path := range files {
		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			// Fallback, should not normally happen
			rel = path
		}
		prettyPath := repoName + "/" + filepath.ToSlash(rel)

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			log.Warn("scanner", "failed to read workflow file", "file", prettyPath, "error", readErr.Error())
			continue
		}

		doc, parseErr := workflow.Parse(data)
		if parseErr != nil {
			log.Warn("scanner", "failed to parse workflow file", "file", prettyPath, "error", parseErr.Error())
			continue
		}

		report.FilesScanned++
		report.Findings = append(report.Findings, rules.Analyze(prettyPath, doc)...)
	}

	report.Summary = models.Summarize(report.Findings)
	return report, nil
}

// workflowFiles enumerates YAML files under the workflow directory in
// lexical order. A missing directory is an empty set, not an error.
func workflowFiles(wfDir string) ([]string, error) {
	info, err := os.Stat(wfDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat workflow directory: %w", err)
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []string
	walkErr := filepath.WalkDir(wfDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if isYAML(path) {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to walk workflow directory: %w", walkErr)
	}
	return files, nil
}

func isYAML(path string) bool {
	switch filepath.Ext(path) {
	case ".yml", ".yaml":
		return true
	}
	return false
}
