package models

import "time"

// Summary counts findings per smell kind. All three counts are always
// present, zero when nothing was found.
type Summary struct {
	FloatingTag      int `json:"floating_tag"`
	MissingTimeout   int `json:"missing_timeout"`
	BroadPermissions int `json:"broad_permissions"`
}

// Add bumps the counter for one smell kind.
func (s *Summary) Add(smell Smell) {
	switch smell {
	case SmellFloatingTag:
		s.FloatingTag++
	case SmellMissingTimeout:
		s.MissingTimeout++
	case SmellBroadPermissions:
		s.BroadPermissions++
	}
}

// Count returns the counter for one smell kind.
func (s Summary) Count(smell Smell) int {
	switch smell {
	case SmellFloatingTag:
		return s.FloatingTag
	case SmellMissingTimeout:
		return s.MissingTimeout
	case SmellBroadPermissions:
		return s.BroadPermissions
	default:
		return 0
	}
}

// Total across all smell kinds.
func (s Summary) Total() int {
	return s.FloatingTag + s.MissingTimeout + s.BroadPermissions
}

// Summarize derives a Summary from a finding sequence.
func Summarize(findings []Finding) Summary {
	var s Summary
	for _, f := range findings {
		s.Add(f.Smell)
	}
	return s
}

// ScanReport aggregates findings across all workflow files of one
// repository scan.
type ScanReport struct {
	Timestamp    time.Time `json:"timestamp"`
	Repo         string    `json:"repo"`
	FilesScanned int       `json:"filesScanned"`
	Findings     []Finding `json:"findings"`
	Summary      Summary   `json:"summary"`
}
