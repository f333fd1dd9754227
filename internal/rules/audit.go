package rules

import (
	"strings"

	"github.com/wfaudit/wfaudit/internal/workflow"
)

// IsBroad reports whether a permission set contains an explicit write-level
// grant. A nil set (absent or non-mapping permissions block) is never broad;
// only the exact string "write" counts, case-insensitively. Values like
// "read-write" do not trigger.
func IsBroad(perms workflow.PermissionSet) bool {
	for _, level := range perms {
		if strings.EqualFold(level, "write") {
			return true
		}
	}
	return false
}

// IsMissingTimeout reports whether a job has no timeout key at all. The
// check is presence, not value validity: an explicit zero still counts as
// configured.
func IsMissingTimeout(job workflow.Job) bool {
	return !job.HasTimeout
}
