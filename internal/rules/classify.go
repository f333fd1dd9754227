// Package rules implements the smell detectors and the per-document
// analyzer. Every detector is a pure function of its input.
package rules

import "strings"

// NoRef is the sentinel ref reported for uses values without an '@'.
const NoRef = "<none>"

// floatingRefs are branch-like refs that move over time.
var floatingRefs = map[string]struct{}{
	"main":    {},
	"master":  {},
	"dev":     {},
	"develop": {},
	"head":    {},
}

// ActionReference is a step's uses value split at the last '@'.
type ActionReference struct {
	Name string
	Ref  string
}

// ParseUses splits a uses value into action name and ref. Without an '@'
// the whole value is the name and the ref is NoRef.
func ParseUses(uses string) ActionReference {
	at := strings.LastIndex(uses, "@")
	if at < 0 {
		return ActionReference{Name: uses, Ref: NoRef}
	}
	return ActionReference{Name: uses[:at], Ref: uses[at+1:]}
}

// ClassifyUses reports whether a uses value is a floating reference, plus
// the ref as given (un-lowered) for reporting.
//
// The pinned check is a heuristic: a ref that starts with 'v' and contains
// a digit anywhere looks like a version tag. Anything else, including full
// commit SHAs and tags that do not exist, falls through to the permissive
// non-floating default.
func ClassifyUses(uses string) (bool, string) {
	ref := ParseUses(uses).Ref
	if ref == NoRef {
		// no ref => treat as floating
		return true, NoRef
	}

	clean := strings.ToLower(strings.TrimSpace(ref))
	if _, ok := floatingRefs[clean]; ok {
		return true, ref
	}
	if strings.HasPrefix(clean, "v") && strings.ContainsAny(clean, "0123456789") {
		return false, ref
	}
	// everything else we'll treat as okay for now
	return false, ref
}
