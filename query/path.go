// Package query parses and evaluates dot/bracket path expressions such as
// spec.containers[0].image or metadata.annotations.'app.example.io/owner'.
//
// Segments are separated by '.', and each may be followed by any number of
// [n] index suffixes. A leading [n] indexes a root list. A segment wrapped in
// single quotes is one literal key: dots and brackets inside it are not
// separators, and the quotes are stripped.
package query

import (
	"strconv"
	"strings"

	"github.com/crmarques/snapdiff/faults"
	"github.com/crmarques/snapdiff/value"
)

type Step struct {
	Key     string
	Index   int
	IsIndex bool
}

func KeyStep(key string) Step {
	return Step{Key: key}
}

func IndexStep(index int) Step {
	return Step{Index: index, IsIndex: true}
}

func (s Step) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return quoteKey(s.Key)
}

// Path is a parsed expression. The zero Path has no steps and resolves to Absent.
type Path struct {
	steps []Step
}

func NewPath(steps ...Step) Path {
	return Path{steps: append([]Step(nil), steps...)}
}

func (p Path) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

func (p Path) IsEmpty() bool {
	return len(p.steps) == 0
}

// String renders the canonical form of p, quoting keys that would otherwise
// be split.
func (p Path) String() string {
	var builder strings.Builder
	for idx, step := range p.steps {
		if !step.IsIndex && idx > 0 {
			builder.WriteByte('.')
		}
		builder.WriteString(step.String())
	}
	return builder.String()
}

// Resolve walks v left to right and stops at the first miss.
func (p Path) Resolve(v value.Value) value.Value {
	if len(p.steps) == 0 {
		return value.Absent
	}

	current := v
	for _, step := range p.steps {
		var (
			next  value.Value
			found bool
		)
		if step.IsIndex {
			next, found = current.Index(step.Index)
		} else {
			next, found = current.Get(step.Key)
		}
		if !found {
			return value.Absent
		}
		current = next
	}
	return current
}

// Resolve parses expr and evaluates it against v. An empty or unparsable
// expression resolves to Absent.
func Resolve(v value.Value, expr string) value.Value {
	path, err := Parse(expr)
	if err != nil {
		return value.Absent
	}
	return path.Resolve(v)
}

// Validate reports whether expr is a usable path expression.
func Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return syntaxError(expr, "path must not be empty")
	}
	_, err := Parse(expr)
	return err
}

func quoteKey(key string) string {
	if key == "" || strings.ContainsAny(key, ".[]") || strings.HasPrefix(key, "'") {
		return "'" + key + "'"
	}
	return key
}

func syntaxError(expr string, message string) error {
	return faults.NewTypedError(faults.ValidationError, "invalid path "+strconv.Quote(expr)+": "+message, nil)
}
