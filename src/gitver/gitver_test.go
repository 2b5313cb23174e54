package gitver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func TestDetectOutsideRepository(t *testing.T) {
	info, err := Detect(t.TempDir())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if info != (Info{}) {
		t.Errorf("info = %+v, want empty", info)
	}
}

func TestDetectUnbornHead(t *testing.T) {
	dir := t.TempDir()
	if _, err := git.PlainInit(dir, false); err != nil {
		t.Fatal(err)
	}
	info, err := Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if info.SHA != "" {
		t.Errorf("SHA = %q, want empty before first commit", info.SHA)
	}
}

func TestDetectCommit(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README"), []byte("sbox\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("README"); err != nil {
		t.Fatal(err)
	}
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "ci", Email: "ci@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatal(err)
	}

	sub := filepath.Join(dir, "engine", "Tools")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	info, err := Detect(sub)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if info.SHA != hash.String()[:shortLen] {
		t.Errorf("SHA = %q, want %q", info.SHA, hash.String()[:shortLen])
	}
	if info.Branch != "master" {
		t.Errorf("Branch = %q, want master", info.Branch)
	}
}
