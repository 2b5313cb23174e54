// Package gitver reads the commit and branch of the source tree so a build
// log records what was built. It never inspects changed files.
package gitver

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
)

// shortLen is the abbreviated SHA length shown in output.
const shortLen = 7

// Info identifies the checked-out revision of a source tree.
type Info struct {
	SHA    string // abbreviated commit hash; empty outside a repository
	Branch string // empty when HEAD is detached
}

// Detect opens the repository containing rootDir, searching parent
// directories for .git. A directory that is not inside a repository, or a
// repository without commits, yields an empty Info and no error.
func Detect(rootDir string) (Info, error) {
	repo, err := git.PlainOpenWithOptions(rootDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return Info{}, nil
		}
		return Info{}, fmt.Errorf("opening repository at %s: %w", rootDir, err)
	}

	head, err := repo.Head()
	if err != nil {
		// Unborn HEAD in a freshly initialised repository.
		return Info{}, nil
	}

	info := Info{SHA: head.Hash().String()}
	if len(info.SHA) > shortLen {
		info.SHA = info.SHA[:shortLen]
	}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}
	return info, nil
}
