package resource

import (
	"strconv"

	gojson "github.com/goccy/go-json"
	"github.com/opencontainers/go-digest"

	"github.com/crmarques/snapdiff/faults"
	"github.com/crmarques/snapdiff/resource/identity"
	"github.com/crmarques/snapdiff/value"
)

// Origin describes where a document was read from.
type Origin struct {
	Group         string
	Layout        Layout
	SourcePath    string
	DocumentIndex int
}

// New validates the identity fields of content and builds a Resource.
// Documents failing validation return an InvalidDocumentError carrying the
// source path.
func New(content value.Value, origin Origin) (Resource, error) {
	fields, err := identity.Resolve(content)
	if err != nil {
		return Resource{}, faults.NewPathError(
			faults.InvalidDocumentError,
			origin.SourcePath,
			"document "+strconv.Itoa(origin.DocumentIndex),
			err,
		)
	}

	sum, err := Digest(content)
	if err != nil {
		return Resource{}, internalError("failed to digest document", err)
	}

	return Resource{
		Kind:               fields.Kind,
		Name:               fields.Name,
		Namespace:          fields.Namespace,
		Group:              origin.Group,
		APIVersion:         fields.APIVersion,
		RelativePath:       origin.Layout.RelativePath,
		ResourceTypeFolder: origin.Layout.ResourceTypeFolder,
		SourcePath:         origin.SourcePath,
		DocumentIndex:      origin.DocumentIndex,
		Digest:             sum,
		Content:            content,
	}, nil
}

// Digest hashes the canonical JSON form of content. Map keys are sorted, so
// two documents differing only in key order share a digest.
func Digest(content value.Value) (digest.Digest, error) {
	encoded, err := gojson.Marshal(value.ToAny(content))
	if err != nil {
		return "", err
	}
	return digest.FromBytes(encoded), nil
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
