// Package embedded reinterprets string fields, typically entries of a
// ConfigMap's data map, as nested values.
package embedded

import (
	"strings"

	"github.com/crmarques/snapdiff/document"
	"github.com/crmarques/snapdiff/faults"
	"github.com/crmarques/snapdiff/value"
)

const failurePrefix = "parse failed: "

// Decode reinterprets raw according to contentType.
//
// A structured parse failure still returns a value: a String describing the
// failure, alongside a DecodeError. Callers that only need something to show
// may keep the value and record the error.
func Decode(raw string, contentType ContentType) (value.Value, error) {
	switch contentType {
	case Structured:
		return decodeStructured(raw)
	case LineKV:
		return ParseLineKV(raw), nil
	case Text:
		return value.String(raw), nil
	default:
		return value.Absent, faults.NewTypedError(faults.ValidationError, "unsupported content type", nil)
	}
}

func decodeStructured(raw string) (value.Value, error) {
	if strings.TrimSpace(raw) == "" {
		return value.FromMap(value.NewMap()), nil
	}

	decoded, err := document.DecodeFirst([]byte(raw))
	if err != nil {
		return value.String(failurePrefix + err.Error()),
			faults.NewTypedError(faults.DecodeError, "failed to parse embedded yaml", err)
	}
	if decoded.IsNull() {
		return value.FromMap(value.NewMap()), nil
	}
	return decoded, nil
}

// ParseLineKV reads key=value or key: value lines. Blank lines and lines
// starting with '#' or '!' are skipped, as are lines without a key before the
// first separator. A later duplicate key overwrites the earlier value in place.
func ParseLineKV(raw string) value.Value {
	result := value.NewMap()
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}

		separator := strings.IndexAny(line, "=:")
		if separator <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:separator])
		item := strings.TrimSpace(line[separator+1:])
		result.Set(key, value.String(item))
	}
	return value.FromMap(result)
}
