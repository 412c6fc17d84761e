// Package repository defines the sources a group tree can be loaded from.
package repository

import (
	"context"
	"path"
	"strings"
)

// TreeReader lists and reads the structured documents of one group tree.
// Paths passed to and returned from a TreeReader are slash-separated and
// relative to the tree root.
type TreeReader interface {
	// Name is the group the tree represents.
	Name() string
	// Location is a human-readable description of the tree root.
	Location() string
	// ListDocuments returns the relative paths of every document file, sorted.
	ListDocuments(ctx context.Context) ([]string, error)
	ReadDocument(ctx context.Context, relativePath string) ([]byte, error)
	// DocumentLocation is the display path of a document, used in errors and
	// as Resource.SourcePath.
	DocumentLocation(relativePath string) string
}

var documentExtensions = map[string]struct{}{
	".yaml": {},
	".yml":  {},
}

// IsDocumentFile reports whether name carries a structured-document extension.
// The check is case-insensitive.
func IsDocumentFile(name string) bool {
	_, ok := documentExtensions[strings.ToLower(path.Ext(name))]
	return ok
}
