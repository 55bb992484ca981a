// Package gitx reads repository state through go-git and reports branch
// switches by watching HEAD.
package gitx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNotInRepo is returned when no repository encloses the directory.
var ErrNotInRepo = errors.New("not in a git repository")

// HeadState is what HEAD points at.
type HeadState struct {
	// Branch is the short branch name; empty when detached.
	Branch string

	// Commit is the commit HEAD resolves to; empty on an unborn branch.
	Commit string

	Detached bool
}

// Repository provides the repository facts the daemon needs.
type Repository interface {
	// Root returns the worktree root.
	Root() string

	// GitDir returns the directory holding this worktree's HEAD.
	GitDir() string

	// Head reads HEAD.
	Head() (HeadState, error)
}

// GoGitRepo implements Repository with go-git.
type GoGitRepo struct {
	repo   *git.Repository
	root   string
	gitDir string
}

// Open finds the repository enclosing dir, walking up parent directories.
func Open(dir string) (*GoGitRepo, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(absDir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%s: %w", absDir, ErrNotInRepo)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		// bare repositories have no tabs to track
		return nil, fmt.Errorf("%s: %w", absDir, ErrNotInRepo)
	}
	root := wt.Filesystem.Root()

	gitDir, err := resolveGitDir(root)
	if err != nil {
		return nil, err
	}

	return &GoGitRepo{repo: repo, root: root, gitDir: gitDir}, nil
}

// Root returns the worktree root.
func (r *GoGitRepo) Root() string {
	return r.root
}

// GitDir returns the directory holding this worktree's HEAD.
func (r *GoGitRepo) GitDir() string {
	return r.gitDir
}

// Head reads HEAD without following it past the first level, so a symbolic
// HEAD on an unborn branch still reports its branch name.
func (r *GoGitRepo) Head() (HeadState, error) {
	ref, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return HeadState{}, fmt.Errorf("failed to read HEAD: %w", err)
	}

	if ref.Type() == plumbing.HashReference {
		return HeadState{Commit: ref.Hash().String(), Detached: true}, nil
	}

	state := HeadState{}
	if target := ref.Target(); target.IsBranch() {
		state.Branch = target.Short()
	} else {
		state.Detached = true
	}

	resolved, err := r.repo.Reference(plumbing.HEAD, true)
	switch {
	case err == nil:
		state.Commit = resolved.Hash().String()
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		// unborn
	default:
		return HeadState{}, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	return state, nil
}

// resolveGitDir returns root/.git, or the directory a .git file points to
// for linked worktrees and submodules.
func resolveGitDir(root string) (string, error) {
	dotGit := filepath.Join(root, ".git")
	info, err := os.Stat(dotGit)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", dotGit, err)
	}
	if info.IsDir() {
		return dotGit, nil
	}

	data, err := os.ReadFile(dotGit)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", dotGit, err)
	}
	line := strings.TrimSpace(string(data))
	if !strings.HasPrefix(line, "gitdir:") {
		return "", fmt.Errorf("malformed .git file %s", dotGit)
	}
	dir := strings.TrimSpace(strings.TrimPrefix(line, "gitdir:"))
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return filepath.Clean(dir), nil
}

// FakeRepo implements Repository with settable values for testing.
type FakeRepo struct {
	root   string
	gitDir string
	head   HeadState
	err    error
}

// NewFakeRepo creates a FakeRepo on the given branch.
func NewFakeRepo(root, branch string) *FakeRepo {
	return &FakeRepo{
		root:   root,
		gitDir: filepath.Join(root, ".git"),
		head:   HeadState{Branch: branch},
	}
}

// SetBranch points HEAD at branch.
func (f *FakeRepo) SetBranch(branch string) {
	f.head = HeadState{Branch: branch}
}

// Detach points HEAD at a bare commit.
func (f *FakeRepo) Detach(commit string) {
	f.head = HeadState{Commit: commit, Detached: true}
}

// SetError makes Head fail.
func (f *FakeRepo) SetError(err error) {
	f.err = err
}

// Root returns the configured root.
func (f *FakeRepo) Root() string {
	return f.root
}

// GitDir returns root/.git.
func (f *FakeRepo) GitDir() string {
	return f.gitDir
}

// Head returns the configured head or error.
func (f *FakeRepo) Head() (HeadState, error) {
	if f.err != nil {
		return HeadState{}, f.err
	}
	return f.head, nil
}
