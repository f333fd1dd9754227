// Package workflow provides a typed, shape-tolerant view over parsed CI
// workflow documents. Malformed sub-trees degrade to empty values; parsing
// never fails for shape reasons, only for YAML syntax errors.
package workflow

import (
	"gopkg.in/yaml.v3"
)

// PermissionSet maps a permission scope name to its access level. A nil
// set means no permissions mapping was present (or it was not a mapping).
type PermissionSet map[string]string

// Step is one entry of a job's step sequence. Index is the position in the
// original sequence, counting entries that were skipped as non-mappings.
type Step struct {
	Index int
	Uses  string
	// HasUses distinguishes an absent uses key from an empty value.
	HasUses bool
}

// Job is one entry of the jobs mapping, in declaration order.
type Job struct {
	Name        string
	HasTimeout  bool
	Permissions PermissionSet
	Steps       []Step
}

// Document is the parsed view of one workflow file. Jobs preserve the
// declaration order of the source mapping.
type Document struct {
	Permissions PermissionSet
	Jobs        []Job
}

// Parse decodes workflow YAML into a Document. A top-level document that
// is not a mapping yields an empty Document, not an error.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return &Document{}, nil
	}
	return FromNode(root.Content[0]), nil
}

// FromNode builds a Document from an already-decoded YAML node.
func FromNode(node *yaml.Node) *Document {
	node = resolveAlias(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return &Document{}
	}

	doc := &Document{}
	for key, value := range mappingPairs(node) {
		switch key {
		case "permissions":
			doc.Permissions = permissionSet(value)
		case "jobs":
			doc.Jobs = jobList(value)
		}
	}
	return doc
}

// jobList walks the jobs mapping in declaration order. Entries whose value
// is not a mapping are dropped here; the analyzer never sees them.
func jobList(node *yaml.Node) []Job {
	node = resolveAlias(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}

	var jobs []Job
	for name, value := range mappingPairs(node) {
		value = resolveAlias(value)
		if value == nil || value.Kind != yaml.MappingNode {
			continue
		}
		jobs = append(jobs, jobFromNode(name, value))
	}
	return jobs
}

func jobFromNode(name string, node *yaml.Node) Job {
	job := Job{Name: name}
	for key, value := range mappingPairs(node) {
		switch key {
		case "timeout-minutes":
			// Presence is all that matters, the value is not validated.
			job.HasTimeout = true
		case "permissions":
			job.Permissions = permissionSet(value)
		case "steps":
			job.Steps = stepList(value)
		}
	}
	return job
}

// stepList keeps the original sequence index on each retained step so that
// reported step positions match the source document.
func stepList(node *yaml.Node) []Step {
	node = resolveAlias(node)
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil
	}

	var steps []Step
	for i, entry := range node.Content {
		entry = resolveAlias(entry)
		if entry == nil || entry.Kind != yaml.MappingNode {
			continue
		}
		step := Step{Index: i}
		for key, value := range mappingPairs(entry) {
			if key == "uses" {
				value = resolveAlias(value)
				if value != nil && value.Kind == yaml.ScalarNode {
					step.Uses = value.Value
					step.HasUses = step.Uses != ""
				}
			}
		}
		steps = append(steps, step)
	}
	return steps
}

// permissionSet keeps only scalar values; non-scalar values can never equal
// an access-level string, so dropping them is behavior-preserving.
func permissionSet(node *yaml.Node) PermissionSet {
	node = resolveAlias(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}

	perms := make(PermissionSet, len(node.Content)/2)
	for key, value := range mappingPairs(node) {
		value = resolveAlias(value)
		if value != nil && value.Kind == yaml.ScalarNode {
			perms[key] = value.Value
		}
	}
	return perms
}

// mappingPairs iterates the key/value pairs of a mapping node, skipping
// pairs whose key is not a scalar.
func mappingPairs(node *yaml.Node) func(yield func(string, *yaml.Node) bool) {
	return func(yield func(string, *yaml.Node) bool) {
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := resolveAlias(node.Content[i])
			if key == nil || key.Kind != yaml.ScalarNode {
				continue
			}
			if !yield(key.Value, node.Content[i+1]) {
				return
			}
		}
	}
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}
