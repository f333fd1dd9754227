package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

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

// Default policy when no file is provided
var defaultPolicy = models.PolicyConfig{
	Name: "Default Workflow Policy",
	Rules: []models.PolicyRule{
		{
			Name:       "No Broad Permissions",
			Expr:       `input.summary.broad_permissions == 0`,
			FailureMsg: "Write-level permission grant detected!",
		},
	},
}

// policyCmd group
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Policy management commands",
	Long:  `Manage and enforce workflow security policies.`,
}

// policyCheckCmd
var policyCheckCmd = &cobra.Command{
	Use:   "check <repo-path>",
	Short: "Check a repository against policies",
	Long: `Scans the repository and evaluates the findings against YAML
policies (CEL rules).

Example:
  wfaudit policy check ./my-repo --policy ./policy.yaml
  wfaudit policy check ./my-repo --preset strict`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runPolicyCheck,
}

var (
	policyFile   string
	policyPreset string
)

func init() {
	policyCheckCmd.Flags().StringVarP(&policyFile, "policy", "P", "", "Path to policy YAML file (uses default policy if not provided)")
	policyCheckCmd.Flags().StringVar(&policyPreset, "preset", "", "Use built-in policy preset: baseline (warn-only) or strict (fail-closed)")
	policyCmd.AddCommand(policyCheckCmd)
}

// GetPolicyCmd export
func GetPolicyCmd() *cobra.Command {
	return policyCmd
}

func runPolicyCheck(cmd *cobra.Command, args []string) (err error) {
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
		ctx, span = h.Tracer.Start(ctx, "wfaudit.policy.check",
			trace.WithAttributes(
				attribute.String("wfaudit.op_id", observability.OpID(ctx)),
				attribute.String("wfaudit.command", "policy check"),
				attribute.String("wfaudit.preset", policyPreset),
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

	log.Event(ctx, "policy_check.start", nil)

	var resultStatus string
	defer func() {
		log.Event(ctx, "policy_check.complete", map[string]any{
			"duration_ms": time.Since(start).Milliseconds(),
			"result":      resultStatus,
		})
	}()

	policyConfig, loadErr := loadPolicyWithPreset(policyFile, policyPreset)
	if loadErr != nil {
		resultStatus = "fail"
		return fmt.Errorf("failed to load policy: %w", loadErr)
	}

	fmt.Printf("%s%sPolicy:%s %s\n\n", colorBold, colorYellow, colorReset, policyConfig.Name)

	engine, engErr := policy.NewEngine()
	if engErr != nil {
		resultStatus = "fail"
		return fmt.Errorf("failed to create policy engine: %w", engErr)
	}

	if compErr := engine.CompileAndValidate(policyConfig); compErr != nil {
		resultStatus = "fail"
		return compErr
	}

	fmt.Printf("Scanning workflows...\n\n")

	report, scanErr := scanner.Scan(ctx, repoPath)
	if scanErr != nil {
		return fmt.Errorf("scan failed: %w", scanErr)
	}

	results, evalErr := engine.Evaluate(policyConfig, report)
	if evalErr != nil {
		return fmt.Errorf("policy evaluation failed: %w", evalErr)
	}

	fmt.Printf("%s%sResults:%s\n", colorBold, colorYellow, colorReset)
	fmt.Println(strings.Repeat("-", 50))

	hasErrors := false
	hasWarnings := false
	for _, result := range results {
		if result.Passed {
			fmt.Printf("%s✓%s %s\n", colorGreen, colorReset, result.RuleName)
		} else if result.Severity == models.PolicySeverityWarn {
			hasWarnings = true
			fmt.Printf("%s⚠%s %s\n", colorYellow, colorReset, result.RuleName)
			fmt.Printf("  %s→ %s%s\n", colorYellow, result.FailureMsg, colorReset)
		} else {
			hasErrors = true
			fmt.Printf("%s✗%s %s\n", colorRed, colorReset, result.RuleName)
			fmt.Printf("  %s→ %s%s\n", colorRed, result.FailureMsg, colorReset)
		}
	}

	fmt.Println(strings.Repeat("-", 50))

	// Determine exit behavior based on policy mode
	if !hasErrors && !hasWarnings {
		fmt.Printf("\n%s%s✓ All policy checks passed%s\n", colorBold, colorGreen, colorReset)
		resultStatus = "success"
		return nil
	}

	if hasErrors {
		fmt.Printf("\n%s%s✗ Policy check failed%s\n", colorBold, colorRed, colorReset)
		resultStatus = "fail"
		return fmt.Errorf("policy check failed")
	}

	// In warn mode, warnings don't cause failure
	if policyConfig.Mode == models.PolicyModeWarn {
		fmt.Printf("\n%s%s⚠ Policy check passed with warnings%s\n", colorBold, colorYellow, colorReset)
		resultStatus = "success"
		return nil
	}

	// In strict mode (default), warnings are errors
	fmt.Printf("\n%s%s✗ Policy check failed (strict mode)%s\n", colorBold, colorRed, colorReset)
	resultStatus = "fail"
	return fmt.Errorf("policy check failed (strict mode)")
}

// loadPolicyWithPreset loads policy from file or preset. The single-flag
// callers pass the same value for both; a preset name wins when it matches.
func loadPolicyWithPreset(path string, preset string) (*models.PolicyConfig, error) {
	if preset != "" {
		if p := policy.GetPreset(preset); p != nil {
			return p, nil
		}
		if path == "" || path == preset {
			if _, statErr := os.Stat(preset); statErr != nil {
				return nil, fmt.Errorf("no such preset or policy file: %s (presets: baseline, strict)", preset)
			}
		}
	}

	return loadPolicy(path)
}

// loadPolicy returns policy or default
func loadPolicy(path string) (*models.PolicyConfig, error) {
	if path == "" {
		return &defaultPolicy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var config models.PolicyConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse policy YAML: %w", err)
	}

	if len(config.Rules) == 0 {
		return nil, fmt.Errorf("policy must have at least one rule")
	}

	return &config, nil
}
