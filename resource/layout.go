package resource

import (
	"path"
	"path/filepath"
	"strings"
)

// UnknownGroup is used when a single file sits too shallow for its group to
// be inferred from the folder layout.
const UnknownGroup = "unknown"

// Layout is the position of a file inside a group tree laid out as
// group/namespace/resourceTypeFolder/file.
type Layout struct {
	RelativePath       string `json:"relativePath" yaml:"relativePath"`
	NamespaceFolder    string `json:"namespaceFolder,omitempty" yaml:"namespaceFolder,omitempty"`
	ResourceTypeFolder string `json:"resourceTypeFolder,omitempty" yaml:"resourceTypeFolder,omitempty"`
}

// ResolveLayout computes the layout of filePath relative to root.
func ResolveLayout(filePath string, root string) (Layout, error) {
	if filepath.IsAbs(filePath) != filepath.IsAbs(root) {
		var err error
		if filePath, err = filepath.Abs(filePath); err != nil {
			return Layout{}, validationError("failed to resolve file path", err)
		}
		if root, err = filepath.Abs(root); err != nil {
			return Layout{}, validationError("failed to resolve root path", err)
		}
	}

	rel, err := filepath.Rel(root, filePath)
	if err != nil {
		return Layout{}, validationError("file is not inside root "+root, err)
	}
	return LayoutFromRelative(filepath.ToSlash(rel)), nil
}

// LayoutFromRelative derives the layout from a slash-separated path that is
// already relative to the group root.
//
// With three or more segments the resource type folder is the second one; with
// exactly two it is the first; shallower paths carry none.
func LayoutFromRelative(rel string) Layout {
	cleaned := path.Clean(strings.TrimPrefix(filepath.ToSlash(rel), "/"))
	segments := strings.Split(cleaned, "/")

	layout := Layout{RelativePath: cleaned}
	switch {
	case len(segments) >= 3:
		layout.NamespaceFolder = segments[0]
		layout.ResourceTypeFolder = segments[1]
	case len(segments) == 2:
		layout.NamespaceFolder = segments[0]
		layout.ResourceTypeFolder = segments[0]
	}
	return layout
}

// InferGroup returns the fourth-from-last segment of filePath, or UnknownGroup
// when the path is too shallow.
func InferGroup(filePath string) string {
	segments := strings.Split(filepath.ToSlash(filepath.Clean(filePath)), "/")
	if len(segments) < 4 {
		return UnknownGroup
	}
	group := segments[len(segments)-4]
	if group == "" || group == "." {
		return UnknownGroup
	}
	return group
}

// DefaultRoot is the group root implied by the layout: the grandparent of the
// file's directory.
func DefaultRoot(filePath string) string {
	return filepath.Dir(filepath.Dir(filepath.Dir(filePath)))
}
