package models

// PolicyMode controls how warnings affect the outcome
type PolicyMode string

const (
	// PolicyModeStrict treats warn-severity failures as errors (default)
	PolicyModeStrict PolicyMode = "strict"
	// PolicyModeWarn lets warn-severity failures pass
	PolicyModeWarn PolicyMode = "warn"
)

// PolicySeverity of a rule failure
type PolicySeverity string

const (
	PolicySeverityError PolicySeverity = "error"
	PolicySeverityWarn  PolicySeverity = "warn"
)

// PolicyConfig from yaml
type PolicyConfig struct {
	Name  string       `yaml:"name"`
	Mode  PolicyMode   `yaml:"mode,omitempty"`
	Rules []PolicyRule `yaml:"rules"`
}

// PolicyRule cel rule
type PolicyRule struct {
	Name       string         `yaml:"name"`
	Expr       string         `yaml:"expr"`
	FailureMsg string         `yaml:"failure_msg"`
	Severity   PolicySeverity `yaml:"severity,omitempty"`
}

// EffectiveSeverity defaults to error when the rule does not set one
func (r PolicyRule) EffectiveSeverity() PolicySeverity {
	if r.Severity == PolicySeverityWarn {
		return PolicySeverityWarn
	}
	return PolicySeverityError
}

// PolicyResult eval result
type PolicyResult struct {
	RuleName   string
	Passed     bool
	Severity   PolicySeverity
	FailureMsg string
}
