package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/danieljhkim/branchtabs/internal/clock"
	"github.com/danieljhkim/branchtabs/internal/config"
	"github.com/danieljhkim/branchtabs/internal/engine"
	"github.com/danieljhkim/branchtabs/internal/fsops"
	"github.com/danieljhkim/branchtabs/internal/log"
	"github.com/danieljhkim/branchtabs/internal/memory"
)

// setupRepo creates a git repository on master with one commit, points
// BRANCHTABS_ROOT at a temp dir and changes into the repository.
func setupRepo(t *testing.T) string {
	t.Helper()

	repoDir := t.TempDir()
	repo, err := git.PlainInit(repoDir, false)
	if err != nil {
		t.Fatalf("PlainInit() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(repoDir, "main.go"), []byte("package main\n"), 0644); err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("main.go"); err != nil {
		t.Fatal(err)
	}
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	t.Setenv("BRANCHTABS_ROOT", t.TempDir())
	t.Setenv("BRANCHTABS_BACKEND", "")

	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(repoDir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	t.Cleanup(func() {
		jsonOutput = false
		clearForce = false
		logLevel = ""
	})
	return repoDir
}

// seed writes tabs for the given branches straight into the workspace.
func seed(t *testing.T, repoDir string, tabs map[string][]memory.TabRecord) {
	t.Helper()

	paths, err := config.DefaultPaths()
	if err != nil {
		t.Fatal(err)
	}
	eng := engine.New(paths, config.Default(), fsops.NewRealFS(), clock.RealClock{}, nil, log.Nop())
	ws, err := eng.OpenWorkspace(repoDir)
	if err != nil {
		t.Fatalf("OpenWorkspace() error = %v", err)
	}
	defer func() { _ = ws.Close() }()

	for branch, records := range tabs {
		if err := ws.Memory.SetTabs(branch, records); err != nil {
			t.Fatal(err)
		}
		if err := ws.Memory.RefreshExpiry(branch); err != nil {
			t.Fatal(err)
		}
	}
}

// runJSON executes the root command with --json and decodes stdout into out.
func runJSON(t *testing.T, out interface{}, args ...string) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	rootCmd.SetArgs(append(args, "--json"))
	err := rootCmd.Execute()

	_ = w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)

	if err != nil {
		t.Fatalf("Execute(%v) error = %v", args, err)
	}
	if out == nil {
		return
	}
	if err := json.Unmarshal(buf.Bytes(), out); err != nil {
		t.Fatalf("invalid JSON from %v: %v\n%s", args, err, buf.String())
	}
}

func TestLsCommand(t *testing.T) {
	repoDir := setupRepo(t)
	a := filepath.Join(repoDir, "a.go")
	seed(t, repoDir, map[string][]memory.TabRecord{
		"feature": {{Path: a, Position: 1}},
		"main":    {{Path: a, Position: 2}},
	})

	var result engine.ListResult
	runJSON(t, &result, "ls")

	if result.ActiveBranch != "master" {
		t.Errorf("ActiveBranch = %q, want master", result.ActiveBranch)
	}
	if len(result.Branches) != 2 {
		t.Fatalf("len(Branches) = %d, want 2", len(result.Branches))
	}
	if result.Branches[0].Branch != "feature" || result.Branches[1].Branch != "main" {
		t.Errorf("Branches = %+v, want feature then main", result.Branches)
	}
	if result.Branches[0].ExpiresAt == nil {
		t.Error("expected feature to carry an expiry")
	}
}

func TestShowCommand_FlagsMissingFiles(t *testing.T) {
	repoDir := setupRepo(t)
	present := filepath.Join(repoDir, "main.go")
	gone := filepath.Join(repoDir, "gone.go")
	seed(t, repoDir, map[string][]memory.TabRecord{
		"feature": {{Path: present, Position: 1}, {Path: gone, Position: 2}},
	})

	var result engine.ShowResult
	runJSON(t, &result, "show", "feature")

	if len(result.Tabs) != 2 {
		t.Fatalf("len(Tabs) = %d, want 2", len(result.Tabs))
	}
	if len(result.Missing) != 1 || result.Missing[0] != gone {
		t.Errorf("Missing = %v, want [%s]", result.Missing, gone)
	}
}

func TestRmCommand(t *testing.T) {
	repoDir := setupRepo(t)
	a := filepath.Join(repoDir, "a.go")
	b := filepath.Join(repoDir, "b.go")
	seed(t, repoDir, map[string][]memory.TabRecord{
		"feature": {{Path: a, Position: 1}, {Path: b, Position: 1}},
		"old":     {{Path: a, Position: 1}},
	})

	runJSON(t, nil, "rm", "feature", a)
	runJSON(t, nil, "rm", "old")

	var list engine.ListResult
	runJSON(t, &list, "ls")

	if len(list.Branches) != 1 {
		t.Fatalf("Branches = %+v, want only feature", list.Branches)
	}
	tabs := list.Branches[0].Tabs
	if len(tabs) != 1 || tabs[0].Path != b {
		t.Errorf("feature tabs = %+v, want only %s", tabs, b)
	}
}

func TestRmCommand_UnknownBranch(t *testing.T) {
	setupRepo(t)

	rootCmd.SetArgs([]string{"rm", "nope", "--json"})
	if err := rootCmd.Execute(); err == nil {
		t.Error("expected error for unknown branch")
	}
}

func TestAutoRestoreAndClearCommands(t *testing.T) {
	repoDir := setupRepo(t)
	seed(t, repoDir, map[string][]memory.TabRecord{
		"feature": {{Path: filepath.Join(repoDir, "a.go"), Position: 1}},
	})

	var set engine.AutoRestoreResult
	runJSON(t, &set, "auto-restore", "on")
	if !set.Enabled || !set.Changed {
		t.Errorf("auto-restore on = %+v, want enabled and changed", set)
	}

	var get engine.AutoRestoreResult
	runJSON(t, &get, "auto-restore")
	if !get.Enabled {
		t.Error("expected auto-restore to read back as on")
	}

	var cleared engine.ClearResult
	runJSON(t, &cleared, "clear", "--force")
	if cleared.Branches != 1 {
		t.Errorf("cleared %d branches, want 1", cleared.Branches)
	}

	var list engine.ListResult
	runJSON(t, &list, "ls")
	if len(list.Branches) != 0 || list.AutoRestore {
		t.Errorf("after clear: %+v, want empty with auto-restore off", list)
	}
}

func TestAutoRestoreCommand_RejectsBadArg(t *testing.T) {
	setupRepo(t)

	rootCmd.SetArgs([]string{"auto-restore", "maybe"})
	if err := rootCmd.Execute(); err == nil {
		t.Error("expected error for invalid argument")
	}
}

func TestWorkspacesCommand(t *testing.T) {
	repoDir := setupRepo(t)
	seed(t, repoDir, map[string][]memory.TabRecord{
		"feature": {{Path: filepath.Join(repoDir, "a.go"), Position: 1}},
	})

	var result engine.ListWorkspacesResult
	runJSON(t, &result, "workspaces")

	if len(result.Workspaces) != 1 {
		t.Fatalf("len(Workspaces) = %d, want 1", len(result.Workspaces))
	}
	if got := result.Workspaces[0]; got.Branches != 1 || got.Backend != config.BackendJSON {
		t.Errorf("workspace = %+v, want 1 branch on json backend", got)
	}
}

func TestNotInRepo(t *testing.T) {
	t.Setenv("BRANCHTABS_ROOT", t.TempDir())
	dir := t.TempDir()
	oldWD, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
		jsonOutput = false
	})

	rootCmd.SetArgs([]string{"ls", "--json"})
	if err := rootCmd.Execute(); err == nil {
		t.Error("expected error outside a repository")
	}
}
