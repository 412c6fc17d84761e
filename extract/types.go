package extract

import (
	"github.com/crmarques/snapdiff/resource"
	"github.com/crmarques/snapdiff/value"
)

// ExtractedValue is the value one spec selected from one resource. Absent is
// set when the field did not resolve; Value is then the zero Value.
type ExtractedValue struct {
	DisplayKey string      `json:"displayKey" yaml:"displayKey"`
	Path       string      `json:"path" yaml:"path"`
	Alias      string      `json:"alias,omitempty" yaml:"alias,omitempty"`
	Value      value.Value `json:"value" yaml:"value"`
	Absent     bool        `json:"absent,omitempty" yaml:"absent,omitempty"`
}

type Record struct {
	Resource resource.Resource `json:"resource" yaml:"resource"`
	Values   []ExtractedValue  `json:"values" yaml:"values"`
}

// Lookup returns the first value whose display key matches.
func (r Record) Lookup(displayKey string) (ExtractedValue, bool) {
	for _, item := range r.Values {
		if item.DisplayKey == displayKey {
			return item, true
		}
	}
	return ExtractedValue{}, false
}

type Report struct {
	RunID   string   `json:"runId" yaml:"runId"`
	Records []Record `json:"records" yaml:"records"`
	Errors  []error  `json:"-" yaml:"-"`
}

func (r Report) ValueCount() int {
	count := 0
	for _, record := range r.Records {
		count += len(record.Values)
	}
	return count
}
