package resource

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/opencontainers/go-digest"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/crmarques/snapdiff/value"
)

const DefaultNamespace = "default"

// Resource is one validated document loaded from a tree. Content is always a
// Map at the top level.
type Resource struct {
	Kind               string        `json:"kind" yaml:"kind"`
	Name               string        `json:"name" yaml:"name"`
	Namespace          string        `json:"namespace" yaml:"namespace"`
	Group              string        `json:"group" yaml:"group"`
	APIVersion         string        `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	RelativePath       string        `json:"relativePath" yaml:"relativePath"`
	ResourceTypeFolder string        `json:"resourceTypeFolder,omitempty" yaml:"resourceTypeFolder,omitempty"`
	SourcePath         string        `json:"sourcePath" yaml:"sourcePath"`
	DocumentIndex      int           `json:"documentIndex" yaml:"documentIndex"`
	Digest             digest.Digest `json:"digest,omitempty" yaml:"digest,omitempty"`
	Content            value.Value   `json:"-" yaml:"-"`
}

type Identity struct {
	Group     string `json:"group" yaml:"group"`
	Namespace string `json:"namespace" yaml:"namespace"`
	Kind      string `json:"kind" yaml:"kind"`
	Name      string `json:"name" yaml:"name"`
}

func (i Identity) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", i.Group, i.Namespace, i.Kind, i.Name)
}

func CompareIdentity(a Identity, b Identity) int {
	return cmp.Or(
		cmp.Compare(a.Group, b.Group),
		cmp.Compare(a.Namespace, b.Namespace),
		cmp.Compare(a.Kind, b.Kind),
		cmp.Compare(a.Name, b.Name),
	)
}

// MatchMode selects which identity fields align resources across two trees.
type MatchMode int

const (
	// MatchGroup pairs resources of two different groups, so the group itself
	// is left out of the key.
	MatchGroup MatchMode = iota
	// MatchFile pairs documents of two single files by kind and name.
	MatchFile
)

func (m MatchMode) String() string {
	if m == MatchFile {
		return "file"
	}
	return "group"
}

type MatchKey struct {
	Namespace string
	Kind      string
	Name      string
}

func (r Resource) Identity() Identity {
	return Identity{Group: r.Group, Namespace: r.Namespace, Kind: r.Kind, Name: r.Name}
}

func (r Resource) MatchKey(mode MatchMode) MatchKey {
	if mode == MatchFile {
		return MatchKey{Kind: r.Kind, Name: r.Name}
	}
	return MatchKey{Namespace: r.Namespace, Kind: r.Kind, Name: r.Name}
}

func (r Resource) GroupVersionKind() schema.GroupVersionKind {
	return schema.FromAPIVersionAndKind(r.APIVersion, r.Kind)
}

// Sort orders resources by relative path, then document index.
func Sort(items []Resource) {
	slices.SortStableFunc(items, func(a Resource, b Resource) int {
		return cmp.Or(
			cmp.Compare(a.RelativePath, b.RelativePath),
			cmp.Compare(a.DocumentIndex, b.DocumentIndex),
		)
	})
}

// SortByIdentity orders resources by (group, namespace, kind, name), keeping
// load order for duplicates.
func SortByIdentity(items []Resource) {
	slices.SortStableFunc(items, func(a Resource, b Resource) int {
		return CompareIdentity(a.Identity(), b.Identity())
	})
}
