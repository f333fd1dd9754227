package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/wfaudit/wfaudit/internal/models"
	"github.com/wfaudit/wfaudit/internal/observability"
	"github.com/wfaudit/wfaudit/internal/observability/logging"
	otelobs "github.com/wfaudit/wfaudit/internal/observability/otel"
	"github.com/wfaudit/wfaudit/internal/sarif"
	"github.com/wfaudit/wfaudit/internal/scanner"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// scanCmd definition
var scanCmd = &cobra.Command{
	Use:   "scan <repo-path>",
	Short: "Scan a repository's workflows for smells",
	Long: `Walks .github/workflows under the repository root, analyzes every
workflow file, and reports findings plus a per-smell summary.

Example:
  wfaudit scan ./my-repo
  wfaudit scan ./my-repo --format sarif > findings.sarif`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runScan,
}

var (
	scanFormatFlag string
	scanPrettyFlag bool
)

func init() {
	scanCmd.Flags().StringVar(&scanFormatFlag, "format", "text", "Output format: text, json, or sarif")
	scanCmd.Flags().BoolVarP(&scanPrettyFlag, "pretty", "p", false, "Pretty print JSON output")
}

// GetScanCmd exports the scan command
func GetScanCmd() *cobra.Command {
	return scanCmd
}

func runScan(cmd *cobra.Command, args []string) (err error) {
	repoPath := args[0]
	if statErr := requireRepoPath(repoPath); statErr != nil {
		return statErr
	}

	ctx := cmd.Context()
	log := logging.From(ctx)
	start := time.Now()

	// Start OTel span if enabled (before log.Event so trace_id is available)
	if h := otelobs.From(ctx); h != nil {
		var span trace.Span
		ctx, span = h.Tracer.Start(ctx, "wfaudit.scan",
			trace.WithAttributes(
				attribute.String("wfaudit.op_id", observability.OpID(ctx)),
				attribute.String("wfaudit.command", "scan"),
				attribute.String("wfaudit.repo", repoPath),
			))
		defer func() {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed")
			} else {
				span.SetStatus(codes.Ok, "success")
			}
			span.End()
		}()
	}

	log.Event(ctx, "scan.start", nil)

	var resultStatus string
	defer func() {
		log.Event(ctx, "scan.complete", map[string]any{
			"duration_ms": time.Since(start).Milliseconds(),
			"result":      resultStatus,
		})
	}()

	report, scanErr := scanner.Scan(ctx, repoPath)
	if scanErr != nil {
		resultStatus = "fail"
		return fmt.Errorf("scan failed: %w", scanErr)
	}
	log.Event(ctx, "scan.analyzed", reportSummaryFields(report))

	switch scanFormatFlag {
	case "text":
		fmt.Print(FormatScanText(report))
	case "json":
		var output []byte
		if scanPrettyFlag {
			output, err = json.MarshalIndent(report, "", "  ")
		} else {
			output, err = json.Marshal(report)
		}
		if err != nil {
			resultStatus = "fail"
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Println(string(output))
	case "sarif":
		if err = sarif.Write(report, os.Stdout); err != nil {
			resultStatus = "fail"
			return fmt.Errorf("failed to write SARIF report: %w", err)
		}
	default:
		resultStatus = "fail"
		return fmt.Errorf("invalid format: %s (use text, json, or sarif)", scanFormatFlag)
	}

	resultStatus = "success"
	return nil
}

// requireRepoPath makes a missing repository fatal to the run; per-file
// problems inside a present repository never are.
func requireRepoPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("path does not exist: %s", path)
		}
		return fmt.Errorf("cannot access path %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}
	return nil
}

// reportSummaryFields for scan log events
func reportSummaryFields(report *models.ScanReport) map[string]any {
	return map[string]any{
		"files_scanned": report.FilesScanned,
		"findings":      len(report.Findings),
	}
}
