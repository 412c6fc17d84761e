package fsstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/crmarques/snapdiff/faults"
	"github.com/crmarques/snapdiff/repository"
)

var _ repository.TreeReader = (*TreeReader)(nil)

// TreeReader reads a group tree through a billy filesystem rooted at the
// group folder.
type TreeReader struct {
	fs       billy.Filesystem
	name     string
	location string
}

// NewLocalTreeReader opens the directory at root. The group name is the base
// name of root.
func NewLocalTreeReader(root string) (*TreeReader, error) {
	cleaned := filepath.Clean(root)
	info, err := os.Stat(cleaned)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFoundError(cleaned, "path does not exist")
		}
		return nil, internalError(cleaned, "failed to inspect tree root", err)
	}
	if !info.IsDir() {
		return nil, validationError(cleaned, "tree root is not a directory")
	}

	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return nil, internalError(cleaned, "failed to resolve tree root", err)
	}

	return &TreeReader{
		fs:       osfs.New(absolute),
		name:     filepath.Base(absolute),
		location: cleaned,
	}, nil
}

// NewTreeReader wraps an existing filesystem, such as an in-memory one.
func NewTreeReader(fs billy.Filesystem, name string, location string) *TreeReader {
	return &TreeReader{fs: fs, name: name, location: location}
}

func (r *TreeReader) Name() string {
	return r.name
}

func (r *TreeReader) Location() string {
	return r.location
}

func (r *TreeReader) DocumentLocation(relativePath string) string {
	if r.location == "" {
		return relativePath
	}
	return filepath.Join(r.location, filepath.FromSlash(relativePath))
}

func (r *TreeReader) ListDocuments(ctx context.Context) ([]string, error) {
	var items []string
	if err := r.walk(ctx, "", &items); err != nil {
		return nil, err
	}
	sort.Strings(items)
	return items, nil
}

func (r *TreeReader) walk(ctx context.Context, dir string, items *[]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	listPath := dir
	if listPath == "" {
		listPath = "/"
	}
	entries, err := r.fs.ReadDir(listPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && dir == "" {
			return notFoundError(r.location, "path does not exist")
		}
		return internalError(r.DocumentLocation(dir), "failed to list directory", err)
	}

	for _, entry := range entries {
		relativePath := path.Join(dir, entry.Name())

		info := entry
		if entry.Mode()&os.ModeSymlink != 0 {
			// Linked directories are not descended.
			resolved, statErr := r.fs.Stat(relativePath)
			if statErr != nil || resolved.IsDir() {
				continue
			}
			info = resolved
		}

		switch {
		case info.IsDir():
			if err := r.walk(ctx, relativePath, items); err != nil {
				return err
			}
		case info.Mode().IsRegular() && repository.IsDocumentFile(entry.Name()):
			*items = append(*items, relativePath)
		}
	}
	return nil
}

func (r *TreeReader) ReadDocument(ctx context.Context, relativePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cleaned, err := cleanRelativePath(relativePath)
	if err != nil {
		return nil, err
	}

	data, err := util.ReadFile(r.fs, cleaned)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFoundError(r.DocumentLocation(cleaned), "path does not exist")
		}
		return nil, internalError(r.DocumentLocation(cleaned), "failed to read document", err)
	}
	return data, nil
}

func cleanRelativePath(relativePath string) (string, error) {
	cleaned := path.Clean(strings.TrimPrefix(filepath.ToSlash(relativePath), "/"))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", validationError(relativePath, fmt.Sprintf("document path %q escapes the tree root", relativePath))
	}
	return cleaned, nil
}

func validationError(location string, message string) error {
	return faults.NewPathError(faults.ValidationError, location, message, nil)
}

func notFoundError(location string, message string) error {
	return faults.NewPathError(faults.NotFoundError, location, message, nil)
}

func internalError(location string, message string, cause error) error {
	return faults.NewPathError(faults.InternalError, location, message, cause)
}
