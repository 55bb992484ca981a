package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/branchtabs/internal/view"
)

// List returns every remembered branch with its tabs.
func (e *Engine) List(ctx context.Context, req *ListRequest) (*ListResult, error) {
	var res *ListResult
	err := e.withWorkspace(req.CWD, func(ws *Workspace) error {
		res = &ListResult{
			Root:         ws.Repo.Root(),
			WorkspaceID:  ws.ID,
			ActiveBranch: currentBranch(ws.Repo),
			AutoRestore:  ws.Memory.AutoRestore(),
			Branches:     view.Build(ws.Memory),
		}
		return nil
	})
	return res, err
}

// Show returns one branch's tabs, flagging paths that no longer exist.
func (e *Engine) Show(ctx context.Context, req *ShowRequest) (*ShowResult, error) {
	var res *ShowResult
	err := e.withWorkspace(req.CWD, func(ws *Workspace) error {
		branch := req.Branch
		if branch == "" {
			branch = currentBranch(ws.Repo)
			if branch == "" {
				return fmt.Errorf("%w: HEAD is detached, name a branch", ErrValidation)
			}
		}

		tabs := ws.Memory.Tabs(branch)
		expiry, hasExpiry := ws.Memory.Expiry(branch)
		if len(tabs) == 0 && !hasExpiry {
			return fmt.Errorf("%w: no tabs remembered for branch '%s'", ErrNotFound, branch)
		}

		res = &ShowResult{Branch: branch, Tabs: tabs}
		if hasExpiry {
			res.ExpiresAt = &expiry
		}
		for _, tab := range tabs {
			if ok, err := e.fs.IsRegularFile(tab.Path); err != nil || !ok {
				res.Missing = append(res.Missing, tab.Path)
			}
		}
		return nil
	})
	return res, err
}
