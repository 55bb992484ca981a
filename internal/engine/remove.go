package engine

import (
	"context"
	"fmt"
	"slices"
)

// Remove forgets a single tab, or a whole branch when req.Path is empty.
func (e *Engine) Remove(ctx context.Context, req *RemoveRequest) (*RemoveResult, error) {
	if req.Branch == "" {
		return nil, fmt.Errorf("%w: branch is required", ErrValidation)
	}

	var res *RemoveResult
	err := e.withWorkspace(req.CWD, func(ws *Workspace) error {
		res = &RemoveResult{Branch: req.Branch, Path: req.Path}

		if req.Path != "" {
			removed, err := ws.Memory.RemoveTab(req.Branch, req.Path)
			if err != nil {
				return fmt.Errorf("failed to remove tab: %w", err)
			}
			if !removed {
				return fmt.Errorf("%w: tab '%s' on branch '%s'", ErrNotFound, req.Path, req.Branch)
			}
			res.Removed = true
			return nil
		}

		if !slices.Contains(ws.Memory.Branches(), req.Branch) {
			return fmt.Errorf("%w: branch '%s'", ErrNotFound, req.Branch)
		}
		if err := ws.Memory.DeleteBranch(req.Branch); err != nil {
			return fmt.Errorf("failed to delete branch: %w", err)
		}
		res.Removed = true
		return nil
	})
	return res, err
}

// Clear forgets every branch and resets auto-restore.
func (e *Engine) Clear(ctx context.Context, req *ClearRequest) (*ClearResult, error) {
	var res *ClearResult
	err := e.withWorkspace(req.CWD, func(ws *Workspace) error {
		n := len(ws.Memory.Branches())
		if err := ws.Memory.ClearAll(); err != nil {
			return fmt.Errorf("failed to clear memory: %w", err)
		}
		res = &ClearResult{Branches: n}
		return nil
	})
	return res, err
}

// SetAutoRestore persists the auto-restore preference.
func (e *Engine) SetAutoRestore(ctx context.Context, req *AutoRestoreRequest) (*AutoRestoreResult, error) {
	var res *AutoRestoreResult
	err := e.withWorkspace(req.CWD, func(ws *Workspace) error {
		before := ws.Memory.AutoRestore()
		if err := ws.Memory.SetAutoRestore(req.Enabled); err != nil {
			return err
		}
		res = &AutoRestoreResult{Enabled: req.Enabled, Changed: before != req.Enabled}
		return nil
	})
	return res, err
}

// Sweep drops expired branch memories.
func (e *Engine) Sweep(ctx context.Context, req *SweepRequest) (*SweepResult, error) {
	var res *SweepResult
	err := e.withWorkspace(req.CWD, func(ws *Workspace) error {
		before := ws.Memory.Expiries()
		kept, err := ws.Memory.SweepExpired(e.clock.Now())
		if err != nil {
			return fmt.Errorf("failed to sweep: %w", err)
		}

		res = &SweepResult{Swept: []string{}, Kept: kept}
		for _, branch := range sortedKeys(before) {
			if _, ok := kept[branch]; !ok {
				res.Swept = append(res.Swept, branch)
			}
		}
		return nil
	})
	return res, err
}
