package queryspec

import (
	"github.com/crmarques/snapdiff/embedded"
	"github.com/crmarques/snapdiff/query"
	"github.com/crmarques/snapdiff/value"
)

// EmbeddedRaw returns content.data[key] as text. A missing entry, or a
// missing or non-map data field, yields the empty string; non-string scalars
// are rendered as text.
func EmbeddedRaw(content value.Value, key string) string {
	data, found := content.Get(EmbeddedDataField)
	if !found {
		return ""
	}
	raw, found := data.Get(key)
	if !found {
		return ""
	}
	return value.Text(raw)
}

// DecodeEmbedded reads and decodes the embedded entry named by spec. On a
// decode failure the returned value is the diagnostic string.
func DecodeEmbedded(content value.Value, spec Spec) (value.Value, error) {
	return embedded.Decode(EmbeddedRaw(content, spec.EmbeddedKey), spec.ContentType)
}

// Select applies the spec's inner path to an already decoded embedded value.
// Line-kv keys often contain dots, so an inner path naming an existing key
// verbatim matches that key before being parsed as a path.
func Select(decoded value.Value, spec Spec) value.Value {
	if !spec.UsesInnerPath() {
		return decoded
	}
	if spec.ContentType == embedded.LineKV {
		if item, found := decoded.Get(spec.InnerPath); found {
			return item
		}
	}
	return query.Resolve(decoded, spec.InnerPath)
}

// Evaluate resolves spec against one resource's content. A missing field
// yields Absent. An embedded decode failure returns the diagnostic string
// together with the error.
func Evaluate(content value.Value, spec Spec) (value.Value, error) {
	if !spec.Embedded {
		return query.Resolve(content, spec.Path), nil
	}

	decoded, err := DecodeEmbedded(content, spec)
	if err != nil {
		return decoded, err
	}
	return Select(decoded, spec), nil
}
