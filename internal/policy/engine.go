package policy

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/wfaudit/wfaudit/internal/models"
)

// Engine evaluates CEL policy rules against a scan report
type Engine struct {
	env *cel.Env
}

func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("input", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{env: env}, nil
}

// Evaluate checks rules
func (e *Engine) Evaluate(config *models.PolicyConfig, report *models.ScanReport) ([]models.PolicyResult, error) {
	results := make([]models.PolicyResult, 0, len(config.Rules))

	// convert report
	input := reportToMap(report)

	for _, rule := range config.Rules {
		result, err := e.evaluateRule(rule, input)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate rule %q: %w", rule.Name, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// evaluateRule
func (e *Engine) evaluateRule(rule models.PolicyRule, input map[string]interface{}) (models.PolicyResult, error) {
	severity := rule.EffectiveSeverity()

	// compile
	ast, issues := e.env.Compile(rule.Expr)
	if issues != nil && issues.Err() != nil {
		return models.PolicyResult{
			RuleName:   rule.Name,
			Passed:     false,
			Severity:   severity,
			FailureMsg: fmt.Sprintf("CEL compile error: %v", issues.Err()),
		}, nil
	}

	// program
	prg, err := e.env.Program(ast)
	if err != nil {
		return models.PolicyResult{
			RuleName:   rule.Name,
			Passed:     false,
			Severity:   severity,
			FailureMsg: fmt.Sprintf("CEL program error: %v", err),
		}, nil
	}

	// eval
	out, _, err := prg.Eval(map[string]interface{}{
		"input": input,
	})
	if err != nil {
		return models.PolicyResult{
			RuleName:   rule.Name,
			Passed:     false,
			Severity:   severity,
			FailureMsg: fmt.Sprintf("CEL evaluation error: %v", err),
		}, nil
	}

	// check bool
	passed, ok := out.Value().(bool)
	if !ok {
		return models.PolicyResult{
			RuleName:   rule.Name,
			Passed:     false,
			Severity:   severity,
			FailureMsg: fmt.Sprintf("Rule expression must return boolean, got %T", out.Value()),
		}, nil
	}

	result := models.PolicyResult{
		RuleName: rule.Name,
		Passed:   passed,
		Severity: severity,
	}
	if !passed {
		result.FailureMsg = rule.FailureMsg
	}

	return result, nil
}

// reportToMap converts for CEL
func reportToMap(report *models.ScanReport) map[string]interface{} {
	findings := make([]interface{}, len(report.Findings))
	for i, f := range report.Findings {
		findings[i] = findingToMap(f)
	}

	return map[string]interface{}{
		"repo":          report.Repo,
		"files_scanned": report.FilesScanned,
		"findings":      findings,
		"summary": map[string]interface{}{
			"floating_tag":      report.Summary.FloatingTag,
			"missing_timeout":   report.Summary.MissingTimeout,
			"broad_permissions": report.Summary.BroadPermissions,
			"total":             report.Summary.Total(),
		},
	}
}

// findingToMap
func findingToMap(f models.Finding) map[string]interface{} {
	return map[string]interface{}{
		"smell":   string(f.Smell),
		"file":    f.File,
		"where":   f.Location.String(),
		"details": f.Detail,
	}
}

// CompileAndValidate
func (e *Engine) CompileAndValidate(config *models.PolicyConfig) error {
	var errors []string

	for _, rule := range config.Rules {
		_, issues := e.env.Compile(rule.Expr)
		if issues != nil && issues.Err() != nil {
			errors = append(errors, fmt.Sprintf("rule %q: %v", rule.Name, issues.Err()))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("policy validation failed:\n  %s", strings.Join(errors, "\n  "))
	}

	return nil
}
