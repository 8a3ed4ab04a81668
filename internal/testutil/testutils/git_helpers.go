package helpers

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Signature is the fixed identity used by test commits so ids are stable
// across runs.
var Signature = object.Signature{
	Name:  "Test Author",
	Email: "test@example.com",
	When:  time.Date(2016, 7, 2, 14, 53, 45, 0, time.FixedZone("", 3600)),
}

// SetupTestGitRepo initializes a temporary git repository for testing.
// Returns the repository, its worktree, and the absolute path to the temporary directory.
func SetupTestGitRepo(t *testing.T) (*git.Repository, *git.Worktree, string) {
	t.Helper()

	tempDir := t.TempDir()

	repo, err := git.PlainInit(tempDir, false)
	if err != nil {
		t.Fatalf("failed to initialize git repo: %v", err)
	}

	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}

	return repo, w, tempDir
}

// SetupBareRepo initializes an empty bare repository usable as a push or
// fetch remote through its path.
func SetupBareRepo(t *testing.T) (*git.Repository, string) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, true)
	if err != nil {
		t.Fatalf("failed to initialize bare repo: %v", err)
	}
	return repo, dir
}

// CommitFile writes name with content into the worktree, stages it and
// commits with the fixed test signature.
func CommitFile(t *testing.T, w *git.Worktree, dir, name, content, message string) plumbing.Hash {
	t.Helper()

	full := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	if _, err := w.Add(name); err != nil {
		t.Fatalf("failed to stage %s: %v", name, err)
	}
	sig := Signature
	h, err := w.Commit(message, &git.CommitOptions{Author: &sig, Committer: &sig})
	if err != nil {
		t.Fatalf("failed to commit %s: %v", name, err)
	}
	return h
}

// Repack writes every reachable object into a single pack file.
func Repack(t *testing.T, repo *git.Repository) {
	t.Helper()

	if err := repo.RepackObjects(&git.RepackConfig{}); err != nil {
		t.Fatalf("failed to repack: %v", err)
	}
}

var looseDir = regexp.MustCompile(`^[0-9a-f]{2}$`)

// DropLooseObjects deletes the loose object directories of gitDir so only
// packed objects remain.
func DropLooseObjects(t *testing.T, gitDir string) {
	t.Helper()

	objects := filepath.Join(gitDir, "objects")
	entries, err := os.ReadDir(objects)
	if err != nil {
		t.Fatalf("failed to read objects dir: %v", err)
	}
	for _, e := range entries {
		if e.IsDir() && looseDir.MatchString(e.Name()) {
			if err := os.RemoveAll(filepath.Join(objects, e.Name())); err != nil {
				t.Fatalf("failed to remove %s: %v", e.Name(), err)
			}
		}
	}
}
