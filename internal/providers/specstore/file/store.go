// Package file persists key configurations as a versioned YAML document:
//
//	version: 1
//	key_configs:
//	  - key_path: spec.replicas
//	    alias: replicas
//	    ...
package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.yaml.in/yaml/v3"

	"github.com/crmarques/snapdiff/debugctx"
	"github.com/crmarques/snapdiff/document"
	"github.com/crmarques/snapdiff/faults"
	"github.com/crmarques/snapdiff/internal/providers/shared/fsutil"
	"github.com/crmarques/snapdiff/queryspec"
	"github.com/crmarques/snapdiff/repository"
)

const (
	CurrentVersion    = 1
	versionConstraint = "^1"
)

var _ repository.SpecStore = (*Store)(nil)

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: filepath.Clean(path)}
}

func (s *Store) Path() string {
	return s.path
}

type storeFile struct {
	Version    yaml.Node `yaml:"version"`
	KeyConfigs yaml.Node `yaml:"key_configs"`
}

type storeOutput struct {
	Version    int                `yaml:"version"`
	KeyConfigs []queryspec.Record `yaml:"key_configs"`
}

// Load reads every record in the store. Entries that are not mappings are
// skipped; every kept record is normalized.
func (s *Store) Load(ctx context.Context) ([]queryspec.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(s.path) == "" || s.path == "." {
		return nil, validationError("", "spec store path must not be empty", nil)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, faults.NewPathError(faults.NotFoundError, s.path, "spec store does not exist", nil)
		}
		return nil, internalError(s.path, "failed to read spec store", err)
	}

	var decoded storeFile
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		return nil, faults.NewPathError(faults.MalformedTextError, s.path, "malformed spec store", err)
	}

	if err := checkVersion(decoded.Version); err != nil {
		return nil, faults.NewPathError(faults.ValidationError, s.path, "unsupported spec store version", err)
	}

	if decoded.KeyConfigs.Kind == 0 {
		return []queryspec.Record{}, nil
	}
	if decoded.KeyConfigs.Kind != yaml.SequenceNode {
		return nil, validationError(s.path, "key_configs must be a list", nil)
	}

	records := make([]queryspec.Record, 0, len(decoded.KeyConfigs.Content))
	for idx, item := range decoded.KeyConfigs.Content {
		if item.Kind != yaml.MappingNode {
			debugctx.Logger(ctx).V(1).Info("skipping non-mapping key config", "path", s.path, "index", idx)
			continue
		}

		normalizeFlag(item, "is_configmap_file")
		var record queryspec.Record
		if err := item.Decode(&record); err != nil {
			return nil, validationError(s.path, "key config "+strconv.Itoa(idx+1)+" is invalid", err)
		}
		records = append(records, record.Normalize())
	}
	return records, nil
}

// normalizeFlag rewrites a loosely typed scalar flag (1, "yes", "on") as a
// YAML bool. Unknown non-empty scalars count as set, null and empty as unset.
func normalizeFlag(mapping *yaml.Node, key string) {
	for idx := 0; idx+1 < len(mapping.Content); idx += 2 {
		if mapping.Content[idx].Value != key {
			continue
		}
		node := mapping.Content[idx+1]
		if node.Kind != yaml.ScalarNode {
			return
		}
		set := true
		switch strings.ToLower(strings.TrimSpace(node.Value)) {
		case "", "~", "null", "false", "no", "n", "off", "0", "0.0":
			set = false
		}
		node.Tag = "!!bool"
		node.Style = 0
		node.Value = strconv.FormatBool(set)
		return
	}
}

func checkVersion(node yaml.Node) error {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.ScalarNode {
		return errors.New("version must be a scalar")
	}

	version, err := semver.NewVersion(strings.TrimSpace(node.Value))
	if err != nil {
		return err
	}
	constraint, err := semver.NewConstraint(versionConstraint)
	if err != nil {
		return err
	}
	if !constraint.Check(version) {
		return errors.New("version " + node.Value + " does not satisfy " + versionConstraint)
	}
	return nil
}

// Save replaces the store with records, written atomically.
func (s *Store) Save(ctx context.Context, records []queryspec.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(s.path) == "" || s.path == "." {
		return validationError("", "spec store path must not be empty", nil)
	}

	normalized := make([]queryspec.Record, 0, len(records))
	for _, record := range records {
		normalized = append(normalized, record.Normalize())
	}

	encoded, err := document.MarshalWithIndent(storeOutput{Version: CurrentVersion, KeyConfigs: normalized}, 2)
	if err != nil {
		return internalError(s.path, "failed to encode spec store", err)
	}

	if err := writeAtomic(s.path, encoded); err != nil {
		return err
	}
	debugctx.Logger(ctx).V(1).Info("spec store saved", "path", s.path, "records", len(normalized))
	return nil
}

// Append adds record to the store, creating the store when it does not exist.
func (s *Store) Append(ctx context.Context, record queryspec.Record) error {
	records, err := s.Load(ctx)
	if err != nil && !faults.IsCategory(err, faults.NotFoundError) {
		return err
	}
	return s.Save(ctx, append(records, record))
}

func writeAtomic(targetPath string, encoded []byte) error {
	if err := fsutil.WriteFileAtomic(targetPath, encoded, 0o644); err != nil {
		return internalError(targetPath, "failed to write spec store", err)
	}
	return nil
}

func validationError(path string, message string, cause error) error {
	return faults.NewPathError(faults.ValidationError, path, message, cause)
}

func internalError(path string, message string, cause error) error {
	return faults.NewPathError(faults.InternalError, path, message, cause)
}
