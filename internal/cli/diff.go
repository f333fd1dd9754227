package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wfaudit/wfaudit/internal/differ"
	"github.com/wfaudit/wfaudit/internal/observability"
	"github.com/wfaudit/wfaudit/internal/observability/logging"
	otelobs "github.com/wfaudit/wfaudit/internal/observability/otel"
	"github.com/wfaudit/wfaudit/internal/scanner"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// diffCmd compares a fresh scan against a saved baseline report
var diffCmd = &cobra.Command{
	Use:   "diff <repo-path>",
	Short: "Compare a fresh scan against a saved baseline report",
	Long: `Scans the repository and compares the findings against a baseline
report previously saved with 'wfaudit scan --format json'.

New findings are regressions; findings present in the baseline but gone
now are improvements. The command exits non-zero when regressions exist.

Example:
  wfaudit scan ./my-repo --format json > baseline.json
  wfaudit diff ./my-repo --baseline baseline.json`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runDiff,
}

var diffBaselineFlag string

func init() {
	diffCmd.Flags().StringVar(&diffBaselineFlag, "baseline", "", "Path to baseline scan report (JSON)")
	diffCmd.MarkFlagRequired("baseline")
}

// GetDiffCmd export
func GetDiffCmd() *cobra.Command {
	return diffCmd
}

func runDiff(cmd *cobra.Command, args []string) (err error) {
	repoPath := args[0]
	if statErr := requireRepoPath(repoPath); statErr != nil {
		return statErr
	}

	ctx := cmd.Context()
	log := logging.From(ctx)
	start := time.Now()

	// Start OTel span if enabled
	if h := otelobs.From(ctx); h != nil {
		var span trace.Span
		ctx, span = h.Tracer.Start(ctx, "wfaudit.diff",
			trace.WithAttributes(
				attribute.String("wfaudit.op_id", observability.OpID(ctx)),
				attribute.String("wfaudit.command", "diff"),
				attribute.String("wfaudit.repo", repoPath),
				attribute.String("wfaudit.baseline", diffBaselineFlag),
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

	log.Event(ctx, "diff.start", nil)

	var resultStatus string
	defer func() {
		log.Event(ctx, "diff.complete", map[string]any{
			"duration_ms": time.Since(start).Milliseconds(),
			"result":      resultStatus,
		})
	}()

	baseline, loadErr := differ.LoadBaseline(diffBaselineFlag)
	if loadErr != nil {
		resultStatus = "fail"
		return loadErr
	}

	current, scanErr := scanner.Scan(ctx, repoPath)
	if scanErr != nil {
		resultStatus = "fail"
		return fmt.Errorf("scan failed: %w", scanErr)
	}

	diff, diffErr := differ.Compare(baseline, current)
	if diffErr != nil {
		resultStatus = "fail"
		return diffErr
	}

	if len(diff.Items) == 0 {
		fmt.Printf("%s✓ No drift against baseline%s\n", colorGreen, colorReset)
		resultStatus = "success"
		return nil
	}

	for _, item := range diff.Items {
		switch item.Type {
		case differ.DriftRegression:
			fmt.Printf("%s✗ %s%s\n", colorRed, item.Message, colorReset)
		case differ.DriftImprovement:
			fmt.Printf("%s✓ %s%s\n", colorGreen, item.Message, colorReset)
		default:
			fmt.Printf("%s• %s%s\n", colorYellow, item.Message, colorReset)
		}
	}

	if diff.HasRegressions {
		resultStatus = "fail"
		return fmt.Errorf("regressions detected against baseline")
	}

	resultStatus = "success"
	return nil
}
