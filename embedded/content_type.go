package embedded

import (
	"strings"

	"github.com/crmarques/snapdiff/faults"
)

// ContentType says how an embedded string is reinterpreted.
type ContentType int

const (
	Text ContentType = iota
	Structured
	LineKV
)

var contentTypeNames = map[ContentType]string{
	Text:       "text",
	Structured: "yaml",
	LineKV:     "properties",
}

var contentTypeAliases = map[string]ContentType{
	"text":       Text,
	"yaml":       Structured,
	"yml":        Structured,
	"structured": Structured,
	"properties": LineKV,
	"line-kv":    LineKV,
}

// String returns the persisted name: text, yaml or properties.
func (c ContentType) String() string {
	if name, ok := contentTypeNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseContentType accepts persisted names and their aliases,
// case-insensitively. An empty name means Text.
func ParseContentType(name string) (ContentType, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return Text, nil
	}
	if contentType, ok := contentTypeAliases[normalized]; ok {
		return contentType, nil
	}
	return Text, faults.NewTypedError(
		faults.ValidationError,
		"unsupported content type "+name+" (expected text, yaml or properties)",
		nil,
	)
}

func (c ContentType) MarshalText() ([]byte, error) {
	if _, ok := contentTypeNames[c]; !ok {
		return nil, faults.NewTypedError(faults.ValidationError, "unsupported content type", nil)
	}
	return []byte(c.String()), nil
}

func (c *ContentType) UnmarshalText(data []byte) error {
	parsed, err := ParseContentType(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
