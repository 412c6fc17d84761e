// Package queryspec describes the fields a comparison or extraction reads from
// each resource, and evaluates them against resource content.
package queryspec

import (
	"strconv"
	"strings"

	"github.com/crmarques/snapdiff/embedded"
	"github.com/crmarques/snapdiff/faults"
	"github.com/crmarques/snapdiff/query"
)

// EmbeddedDataField is the top-level map holding embedded documents.
const EmbeddedDataField = "data"

// Spec selects either a direct field (Path) or a field inside an embedded
// document stored under data[EmbeddedKey]. Embedded picks which set of fields
// is in effect.
type Spec struct {
	Embedded    bool                 `json:"embedded" yaml:"embedded"`
	Path        string               `json:"path,omitempty" yaml:"path,omitempty"`
	EmbeddedKey string               `json:"embeddedKey,omitempty" yaml:"embeddedKey,omitempty"`
	ContentType embedded.ContentType `json:"contentType" yaml:"contentType"`
	InnerPath   string               `json:"innerPath,omitempty" yaml:"innerPath,omitempty"`
	Alias       string               `json:"alias,omitempty" yaml:"alias,omitempty"`
}

func NewDirect(path string, alias string) Spec {
	return Spec{Path: path, Alias: alias}
}

func NewEmbedded(key string, contentType embedded.ContentType, innerPath string, alias string) Spec {
	return Spec{
		Embedded:    true,
		EmbeddedKey: key,
		ContentType: contentType,
		InnerPath:   innerPath,
		Alias:       alias,
	}
}

func (s Spec) Validate() error {
	if !s.Embedded {
		if err := query.Validate(s.Path); err != nil {
			return err
		}
		return nil
	}

	if strings.TrimSpace(s.EmbeddedKey) == "" {
		return faults.NewTypedError(faults.ValidationError, "embedded spec requires a data key", nil)
	}
	if _, err := s.ContentType.MarshalText(); err != nil {
		return err
	}
	if s.InnerPath != "" {
		if err := query.Validate(s.InnerPath); err != nil {
			return err
		}
	}
	return nil
}

// UsesInnerPath reports whether the inner path applies. Text content is
// compared whole, so its inner path is ignored.
func (s Spec) UsesInnerPath() bool {
	return s.Embedded && s.ContentType != embedded.Text && s.InnerPath != ""
}

// EmbeddedPath is the field path of the embedded entry itself: data.<key>.
func (s Spec) EmbeddedPath() string {
	return EmbeddedDataField + "." + s.EmbeddedKey
}

// DisplayPath is the field path reported for this spec, for example
// spec.replicas or data.application.yaml.server.port.
func (s Spec) DisplayPath() string {
	if !s.Embedded {
		return s.Path
	}
	if s.UsesInnerPath() {
		return s.EmbeddedPath() + "." + s.InnerPath
	}
	return s.EmbeddedPath()
}

func (s Spec) DisplayKey() string {
	return DisplayKey(s.DisplayPath(), s.Alias)
}

// DisplayKey renders "path" or "path (alias)".
func DisplayKey(path string, alias string) string {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return path
	}
	return path + " (" + alias + ")"
}

// ValidateAll checks every spec and returns the first failure, annotated with
// the spec's position.
func ValidateAll(specs []Spec) error {
	for idx, spec := range specs {
		if err := spec.Validate(); err != nil {
			return faults.NewTypedError(faults.ValidationError, "spec "+strconv.Itoa(idx+1)+" is invalid", err)
		}
	}
	return nil
}
