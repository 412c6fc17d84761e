// Package identity reads and validates the identity fields of a document.
package identity

import (
	"errors"
	"strings"

	"github.com/crmarques/snapdiff/value"
)

const defaultNamespace = "default"

var (
	ErrNotMapping      = errors.New("document is not a mapping")
	ErrMissingKind     = errors.New("missing kind")
	ErrMissingMetadata = errors.New("metadata is missing or not a mapping")
	ErrMissingName     = errors.New("missing metadata.name")
)

type Fields struct {
	Kind       string
	Name       string
	Namespace  string
	APIVersion string
}

// Resolve extracts kind, metadata.name and metadata.namespace from content.
// A missing or empty namespace defaults to "default".
func Resolve(content value.Value) (Fields, error) {
	if _, ok := content.AsMap(); !ok {
		return Fields{}, ErrNotMapping
	}

	kind, ok := LookupScalarAttribute(content, "kind")
	if !ok {
		return Fields{}, ErrMissingKind
	}

	metadata, found := content.Get("metadata")
	if !found {
		return Fields{}, ErrMissingMetadata
	}
	if _, isMap := metadata.AsMap(); !isMap {
		return Fields{}, ErrMissingMetadata
	}

	name, ok := LookupScalarAttribute(metadata, "name")
	if !ok {
		return Fields{}, ErrMissingName
	}

	namespace, ok := LookupScalarAttribute(metadata, "namespace")
	if !ok {
		namespace = defaultNamespace
	}
	apiVersion, _ := LookupScalarAttribute(content, "apiVersion")

	return Fields{
		Kind:       kind,
		Name:       name,
		Namespace:  namespace,
		APIVersion: apiVersion,
	}, nil
}

// LookupScalarAttribute follows a plain dotted path of map keys and returns the
// scalar found there as trimmed text. Empty text, containers and null count as
// not found.
func LookupScalarAttribute(payload value.Value, attribute string) (string, bool) {
	trimmed := strings.TrimSpace(attribute)
	if trimmed == "" {
		return "", false
	}

	current := payload
	for _, segment := range strings.Split(trimmed, ".") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			return "", false
		}

		next, exists := current.Get(segment)
		if !exists {
			return "", false
		}
		current = next
	}

	return scalarString(current)
}

func scalarString(item value.Value) (string, bool) {
	switch item.Kind() {
	case value.KindString, value.KindNumber, value.KindBool:
		text := strings.TrimSpace(value.Text(item))
		return text, text != ""
	default:
		return "", false
	}
}
