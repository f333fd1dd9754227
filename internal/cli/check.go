package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/wfaudit/wfaudit/internal/models"
	"github.com/wfaudit/wfaudit/internal/observability"
	"github.com/wfaudit/wfaudit/internal/observability/logging"
	otelobs "github.com/wfaudit/wfaudit/internal/observability/otel"
	"github.com/wfaudit/wfaudit/internal/policy"
	"github.com/wfaudit/wfaudit/internal/scanner"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// checkCmd gates a repository on its smell findings
var checkCmd = &cobra.Command{
	Use:   "check <repo-path>",
	Short: "Scan and gate a repository with a PASS/FAIL outcome",
	Long: `Scans the repository's workflows and produces a PASS/FAIL outcome
suitable for CI gates.

By default the outcome only fails when a policy denies it. Use
--fail-on-findings to fail on any finding without a policy.

Examples:
  # Gate on the strict preset
  wfaudit check ./my-repo --policy=strict

  # Gate on a custom policy file
  wfaudit check ./my-repo --policy=./policy.yaml

  # Fail on any finding, no policy needed
  wfaudit check ./my-repo --fail-on-findings

  # Get JSON output for CI
  wfaudit check ./my-repo --policy=baseline --format=json`,
	Args:         cobra.ExactArgs(1),
	RunE:         runCheck,
	SilenceUsage: true,
}

var (
	checkPolicyFlag  string
	checkFormatFlag  string
	checkFailAnyFlag bool
)

func init() {
	checkCmd.Flags().StringVar(&checkPolicyFlag, "policy", "", "Policy to apply: baseline, strict, or path to YAML file")
	checkCmd.Flags().StringVar(&checkFormatFlag, "format", "text", "Output format: text or json")
	checkCmd.Flags().BoolVar(&checkFailAnyFlag, "fail-on-findings", false, "Fail when any finding exists")
}

// GetCheckCmd export
func GetCheckCmd() *cobra.Command {
	return checkCmd
}

func runCheck(cmd *cobra.Command, args []string) (err error) {
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
		ctx, span = h.Tracer.Start(ctx, "wfaudit.check",
			trace.WithAttributes(
				attribute.String("wfaudit.op_id", observability.OpID(ctx)),
				attribute.String("wfaudit.command", "check"),
				attribute.String("wfaudit.repo", repoPath),
				attribute.String("wfaudit.policy", checkPolicyFlag),
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

	log.Event(ctx, "check.start", nil)

	var resultStatus string
	defer func() {
		log.Event(ctx, "check.complete", map[string]any{
			"duration_ms": time.Since(start).Milliseconds(),
			"result":      resultStatus,
		})
	}()

	// Validate format
	if checkFormatFlag != "text" && checkFormatFlag != "json" {
		resultStatus = "fail"
		return fmt.Errorf("invalid format: %s (use text or json)", checkFormatFlag)
	}

	report, scanErr := scanner.Scan(ctx, repoPath)
	if scanErr != nil {
		resultStatus = "fail"
		return fmt.Errorf("scan failed: %w", scanErr)
	}

	// Load and evaluate policy if specified
	var policyResults []models.PolicyResult
	var policyConfig *models.PolicyConfig
	if checkPolicyFlag != "" {
		var loadErr error
		policyConfig, loadErr = loadPolicyWithPreset(checkPolicyFlag, checkPolicyFlag)
		if loadErr != nil {
			resultStatus = "fail"
			return fmt.Errorf("failed to load policy: %w", loadErr)
		}

		engine, engErr := policy.NewEngine()
		if engErr != nil {
			resultStatus = "fail"
			return fmt.Errorf("failed to create policy engine: %w", engErr)
		}

		policyResults, err = engine.Evaluate(policyConfig, report)
		if err != nil {
			resultStatus = "fail"
			return fmt.Errorf("policy evaluation failed: %w", err)
		}
	}

	checkResult := BuildCheckResult(report, policyResults, policyConfig, checkFailAnyFlag)

	// Output result
	if checkFormatFlag == "json" {
		jsonOutput, jsonErr := FormatJSONOutput(checkResult)
		if jsonErr != nil {
			resultStatus = "fail"
			return fmt.Errorf("failed to format JSON output: %w", jsonErr)
		}
		fmt.Println(string(jsonOutput))
	} else {
		fmt.Print(FormatTextOutput(checkResult))
	}

	// Determine exit code - use os.Exit to avoid Cobra error messages corrupting JSON
	if checkResult.Outcome == "FAIL" {
		resultStatus = "fail"
		if checkFormatFlag == "json" {
			os.Exit(1)
		}
		if checkResult.Policy != nil && !checkResult.Policy.Passed {
			return fmt.Errorf("policy check failed")
		}
		return fmt.Errorf("%d finding(s) detected", checkResult.Summary.Total())
	}

	resultStatus = "success"
	return nil
}
