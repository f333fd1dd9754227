package rules

import (
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
)

const dockerPrefix = "docker://"

// DescribeDockerImage parses a docker:// uses value and returns the fully
// qualified image reference for reporting, or "" when the value is not a
// docker reference or does not parse. Parsing is offline; nothing is
// resolved against a registry.
func DescribeDockerImage(uses string) string {
	if !strings.HasPrefix(uses, dockerPrefix) {
		return ""
	}
	ref, err := name.ParseReference(strings.TrimPrefix(uses, dockerPrefix), name.WeakValidation)
	if err != nil {
		return ""
	}
	return ref.Name()
}
