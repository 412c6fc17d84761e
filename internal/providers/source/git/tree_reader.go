package git

import (
	"context"
	"errors"
	"path"
	"path/filepath"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/crmarques/snapdiff/faults"
	"github.com/crmarques/snapdiff/repository"
)

var _ repository.TreeReader = (*TreeReader)(nil)

// LocatorPrefix marks a tree argument that names a git revision instead of a
// directory: git:<repository>@<revision>[:<subdir>].
const LocatorPrefix = "git:"

type Reference struct {
	Repository string
	Revision   string
	Subdir     string
}

func (r Reference) String() string {
	text := LocatorPrefix + r.Repository + "@" + r.Revision
	if r.Subdir != "" {
		text += ":" + r.Subdir
	}
	return text
}

// IsLocator reports whether value uses the git locator syntax.
func IsLocator(value string) bool {
	return strings.HasPrefix(value, LocatorPrefix)
}

func ParseReference(locator string) (Reference, error) {
	if !IsLocator(locator) {
		return Reference{}, validationError("git locator must start with "+LocatorPrefix, nil)
	}
	body := strings.TrimPrefix(locator, LocatorPrefix)

	at := strings.LastIndex(body, "@")
	if at <= 0 || at == len(body)-1 {
		return Reference{}, validationError("git locator must have the form git:<repository>@<revision>[:<subdir>]", nil)
	}

	ref := Reference{Repository: body[:at], Revision: body[at+1:]}
	if idx := strings.Index(ref.Revision, ":"); idx >= 0 {
		ref.Subdir = strings.Trim(path.Clean(ref.Revision[idx+1:]), "/")
		ref.Revision = ref.Revision[:idx]
		if ref.Subdir == "." {
			ref.Subdir = ""
		}
	}
	if strings.TrimSpace(ref.Revision) == "" {
		return Reference{}, validationError("git locator revision must not be empty", nil)
	}
	return ref, nil
}

// TreeReader serves the documents of one commit tree. The group name is the
// base name of the subdirectory, or of the repository when none is given.
type TreeReader struct {
	ref  Reference
	tree *object.Tree
	name string
}

func Open(ctx context.Context, ref Reference) (*TreeReader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	repo, err := gogit.PlainOpen(ref.Repository)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, notFoundError(ref.String(), "git repository does not exist")
		}
		return nil, internalError(ref.String(), "failed to open git repository", err)
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(ref.Revision))
	if err != nil {
		return nil, notFoundError(ref.String(), "git revision "+ref.Revision+" not found")
	}

	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, internalError(ref.String(), "failed to load git commit", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, internalError(ref.String(), "failed to load git tree", err)
	}

	if ref.Subdir != "" {
		tree, err = tree.Tree(ref.Subdir)
		if err != nil {
			if errors.Is(err, object.ErrDirectoryNotFound) {
				return nil, notFoundError(ref.String(), "path does not exist")
			}
			return nil, internalError(ref.String(), "failed to load git subtree", err)
		}
	}

	name := path.Base(ref.Subdir)
	if ref.Subdir == "" {
		absolute, absErr := filepath.Abs(ref.Repository)
		if absErr != nil {
			absolute = ref.Repository
		}
		name = filepath.Base(absolute)
	}

	return &TreeReader{ref: ref, tree: tree, name: name}, nil
}

func (r *TreeReader) Name() string {
	return r.name
}

func (r *TreeReader) Location() string {
	return r.ref.String()
}

func (r *TreeReader) DocumentLocation(relativePath string) string {
	return r.ref.String() + "/" + relativePath
}

func (r *TreeReader) ListDocuments(ctx context.Context) ([]string, error) {
	var items []string
	err := r.tree.Files().ForEach(func(file *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !file.Mode.IsFile() || !repository.IsDocumentFile(file.Name) {
			return nil
		}
		items = append(items, file.Name)
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, internalError(r.Location(), "failed to list git tree", err)
	}

	sort.Strings(items)
	return items, nil
}

func (r *TreeReader) ReadDocument(ctx context.Context, relativePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := r.tree.File(relativePath)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, notFoundError(r.DocumentLocation(relativePath), "path does not exist")
		}
		return nil, internalError(r.DocumentLocation(relativePath), "failed to open git file", err)
	}

	contents, err := file.Contents()
	if err != nil {
		return nil, internalError(r.DocumentLocation(relativePath), "failed to read git file", err)
	}
	return []byte(contents), nil
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func notFoundError(location string, message string) error {
	return faults.NewPathError(faults.NotFoundError, location, message, nil)
}

func internalError(location string, message string, cause error) error {
	return faults.NewPathError(faults.InternalError, location, message, cause)
}
