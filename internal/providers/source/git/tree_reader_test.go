package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/crmarques/snapdiff/faults"
)

func TestParseReference(t *testing.T) {
	t.Parallel()

	ref, err := ParseReference("git:/srv/snapshots@v1.2:clusters/prod/")
	if err != nil {
		t.Fatalf("ParseReference returned error: %v", err)
	}
	want := Reference{Repository: "/srv/snapshots", Revision: "v1.2", Subdir: "clusters/prod"}
	if ref != want {
		t.Fatalf("expected %+v, got %+v", want, ref)
	}
	if ref.String() != "git:/srv/snapshots@v1.2:clusters/prod" {
		t.Fatalf("unexpected string form %q", ref.String())
	}

	ref, err = ParseReference("git:repo@HEAD~1")
	if err != nil {
		t.Fatalf("ParseReference returned error: %v", err)
	}
	if ref.Revision != "HEAD~1" || ref.Subdir != "" {
		t.Fatalf("unexpected reference %+v", ref)
	}

	for _, invalid := range []string{"repo@HEAD", "git:repo", "git:@HEAD", "git:repo@", "git:repo@:sub"} {
		if _, err := ParseReference(invalid); !faults.IsCategory(err, faults.ValidationError) {
			t.Fatalf("expected validation error for %q, got %v", invalid, err)
		}
	}
}

func TestOpenReadsCommittedTree(t *testing.T) {
	t.Parallel()

	repoDir := t.TempDir()
	repo, err := gogit.PlainInit(repoDir, false)
	if err != nil {
		t.Fatalf("PlainInit returned error: %v", err)
	}
	commitFile(t, repo, repoDir, "prod/ns1/services/web.yaml", "kind: Service\nmetadata:\n  name: web\n", "first")
	commitFile(t, repo, repoDir, "prod/ns1/services/notes.txt", "ignored", "notes")
	commitFile(t, repo, repoDir, "prod/ns1/services/web.yaml", "kind: Service\nmetadata:\n  name: web2\n", "second")

	reader, err := Open(context.Background(), Reference{Repository: repoDir, Revision: "HEAD~1", Subdir: "prod"})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if reader.Name() != "prod" {
		t.Fatalf("expected group prod, got %q", reader.Name())
	}

	items, err := reader.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments returned error: %v", err)
	}
	if len(items) != 1 || items[0] != "ns1/services/web.yaml" {
		t.Fatalf("unexpected documents %v", items)
	}

	data, err := reader.ReadDocument(context.Background(), items[0])
	if err != nil {
		t.Fatalf("ReadDocument returned error: %v", err)
	}
	if string(data) != "kind: Service\nmetadata:\n  name: web\n" {
		t.Fatalf("expected content of the older revision, got %q", data)
	}
}

func TestOpenMissingTargets(t *testing.T) {
	t.Parallel()

	repoDir := t.TempDir()
	repo, err := gogit.PlainInit(repoDir, false)
	if err != nil {
		t.Fatalf("PlainInit returned error: %v", err)
	}
	commitFile(t, repo, repoDir, "prod/ns1/services/web.yaml", "kind: Service\n", "first")

	cases := []Reference{
		{Repository: filepath.Join(t.TempDir(), "absent"), Revision: "HEAD"},
		{Repository: repoDir, Revision: "no-such-branch"},
		{Repository: repoDir, Revision: "HEAD", Subdir: "staging"},
	}
	for _, ref := range cases {
		if _, err := Open(context.Background(), ref); !faults.IsCategory(err, faults.NotFoundError) {
			t.Fatalf("expected not found error for %s, got %v", ref, err)
		}
	}
}

func commitFile(t *testing.T, repo *gogit.Repository, repoDir string, filename string, content string, message string) {
	t.Helper()

	path := filepath.Join(repoDir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create commit directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write commit file: %v", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to open worktree: %v", err)
	}
	if _, err := worktree.Add(filename); err != nil {
		t.Fatalf("failed to add file: %v", err)
	}
	if _, err := worktree.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "snapdiff-test",
			Email: "snapdiff@example.com",
			When:  time.Unix(0, 0),
		},
	}); err != nil {
		t.Fatalf("failed to commit file: %v", err)
	}
}
