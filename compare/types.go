package compare

import (
	"github.com/crmarques/snapdiff/resource"
	"github.com/crmarques/snapdiff/value"
)

// DiffEntry is one field whose value differs between the two sides.
type DiffEntry struct {
	FieldPath string      `json:"fieldPath" yaml:"fieldPath"`
	Alias     string      `json:"alias,omitempty" yaml:"alias,omitempty"`
	Left      value.Value `json:"left" yaml:"left"`
	Right     value.Value `json:"right" yaml:"right"`
}

// ComparisonResult describes one left resource. Identity is the left side's
// full identity, group included.
type ComparisonResult struct {
	Identity       resource.Identity  `json:"identity" yaml:"identity"`
	Left           *resource.Resource `json:"left,omitempty" yaml:"left,omitempty"`
	Right          *resource.Resource `json:"right,omitempty" yaml:"right,omitempty"`
	MissingOnRight bool               `json:"missingOnRight" yaml:"missingOnRight"`
	Differences    []DiffEntry        `json:"differences,omitempty" yaml:"differences,omitempty"`
}

func (r ComparisonResult) HasDifferences() bool {
	return r.MissingOnRight || len(r.Differences) > 0
}

// Report holds only the pairings that differ, sorted by left identity, and
// every error accumulated while producing them.
type Report struct {
	RunID   string             `json:"runId" yaml:"runId"`
	Mode    string             `json:"mode" yaml:"mode"`
	Results []ComparisonResult `json:"results" yaml:"results"`
	Errors  []error            `json:"-" yaml:"-"`
}

func (r Report) HasDifferences() bool {
	for _, result := range r.Results {
		if result.HasDifferences() {
			return true
		}
	}
	return false
}

// DifferenceCount counts field differences; a missing-on-right result counts
// as one.
func (r Report) DifferenceCount() int {
	count := 0
	for _, result := range r.Results {
		if result.MissingOnRight {
			count++
			continue
		}
		count += len(result.Differences)
	}
	return count
}
