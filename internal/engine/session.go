package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/danieljhkim/branchtabs/internal/clock"
	"github.com/danieljhkim/branchtabs/internal/fsops"
	"github.com/danieljhkim/branchtabs/internal/gitx"
	"github.com/danieljhkim/branchtabs/internal/host"
	"github.com/danieljhkim/branchtabs/internal/memory"
	"github.com/danieljhkim/branchtabs/internal/tabwatch"
)

// Prompt answers.
const (
	AnswerYes    = "Yes"
	AnswerNo     = "No"
	AnswerAlways = "Always"
	AnswerNotNow = "Not now"
)

// SessionConfig holds a Session's collaborators.
type SessionConfig struct {
	Repo    gitx.Repository
	Editor  host.Editor
	Memory  *memory.Store
	FS      fsops.FS
	Clock   clock.Clock
	Refresh func()
	Logger  zerolog.Logger
}

// Session reconciles editor tabs with the checked-out branch for one
// repository. It is not safe for concurrent use; the daemon drives it from a
// single Loop.
type Session struct {
	repo    gitx.Repository
	editor  host.Editor
	mem     *memory.Store
	fs      fsops.FS
	clock   clock.Clock
	refresh func()
	log     zerolog.Logger

	watcher *tabwatch.Watcher
	active  string
}

// NewSession creates an idle Session.
func NewSession(cfg SessionConfig) *Session {
	refresh := cfg.Refresh
	if refresh == nil {
		refresh = func() {}
	}
	logger := cfg.Logger.With().Str("component", "session").Logger()
	return &Session{
		repo:    cfg.Repo,
		editor:  cfg.Editor,
		mem:     cfg.Memory,
		fs:      cfg.FS,
		clock:   cfg.Clock,
		refresh: refresh,
		log:     logger,
		watcher: tabwatch.New(cfg.Editor, cfg.Memory, refresh, cfg.Logger),
	}
}

// Start runs the once-per-repository work: sweep expired memories, then
// bind to the current branch.
func (s *Session) Start(ctx context.Context) {
	s.Sweep(ctx)
	s.HandleBranchChange(ctx)
}

// ActiveBranch returns the branch being tracked.
func (s *Session) ActiveBranch() (string, bool) {
	return s.active, s.active != ""
}

// HandleBranchChange reacts to a HEAD change notification. The first branch
// seen is bound without restoring; a different branch triggers unbind,
// restore and rebind. Detached or unreadable HEADs are ignored.
func (s *Session) HandleBranchChange(ctx context.Context) {
	defer s.recover("branch change")

	head, err := s.repo.Head()
	if err != nil {
		s.log.Debug().Err(err).Msg("cannot read HEAD, ignoring change")
		return
	}
	if head.Detached || head.Branch == "" {
		s.log.Debug().Str("commit", head.Commit).Msg("detached HEAD, ignoring change")
		return
	}

	next := head.Branch
	if s.active == "" {
		s.watcher.Bind(next)
		s.active = next
		s.log.Info().Str("branch", next).Msg("tracking branch")
		return
	}
	if next == s.active {
		return
	}

	prev := s.active
	s.log.Info().Str("from", prev).Str("to", next).Msg("branch switched")

	s.watcher.Unbind()
	func() {
		defer s.recover("restore")
		s.Restore(ctx, next)
	}()
	s.watcher.Bind(next)
	s.active = next
	s.refresh()
}

// Outcome is how a restore ended.
type Outcome string

const (
	OutcomeEmpty    Outcome = "empty"
	OutcomeDeclined Outcome = "declined"
	OutcomeRestored Outcome = "restored"
)

// SkippedTab is a remembered tab that could not be reopened.
type SkippedTab struct {
	Path   string
	Reason string
}

// RestoreResult describes a restore.
type RestoreResult struct {
	Branch  string
	Outcome Outcome

	// Tabs is how many tabs were remembered.
	Tabs int

	Opened  []string
	Skipped []SkippedTab

	// AutoRestore is the preference after the flow, including an opt-in
	// given during it.
	AutoRestore bool
}

// Restore reopens branch's remembered tabs, asking first unless
// auto-restore is on. The branch's expiry is refreshed whenever it had tabs,
// whether or not the user accepted.
func (s *Session) Restore(ctx context.Context, branch string) RestoreResult {
	res := RestoreResult{Branch: branch, Outcome: OutcomeEmpty}

	tabs := s.mem.Tabs(branch)
	res.Tabs = len(tabs)
	auto := s.mem.AutoRestore()
	res.AutoRestore = auto
	if len(tabs) == 0 {
		return res
	}
	defer s.refreshExpiry(branch)

	if !auto {
		answer, err := s.editor.Confirm(ctx, restorePrompt(branch, len(tabs)), AnswerYes, AnswerNo)
		if err != nil {
			s.log.Warn().Err(err).Str("branch", branch).Msg("restore prompt failed")
		}
		if answer != AnswerYes {
			res.Outcome = OutcomeDeclined
			return res
		}
	}

	if err := s.editor.CloseAll(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to close editors")
	}

	for _, tab := range tabs {
		if reason := s.openTab(ctx, tab); reason != "" {
			res.Skipped = append(res.Skipped, SkippedTab{Path: tab.Path, Reason: reason})
			continue
		}
		res.Opened = append(res.Opened, tab.Path)
	}
	res.Outcome = OutcomeRestored

	s.log.Info().
		Str("branch", branch).
		Int("opened", len(res.Opened)).
		Int("skipped", len(res.Skipped)).
		Msg("restored tabs")

	if auto {
		s.editor.Notify(ctx, fmt.Sprintf("Restored %s for branch '%s'.", pluralTabs(len(res.Opened)), branch))
		return res
	}

	answer, err := s.editor.Confirm(ctx, "Restore tabs automatically when switching branches?", AnswerAlways, AnswerNotNow)
	if err != nil {
		s.log.Warn().Err(err).Msg("auto-restore prompt failed")
	}
	if answer == AnswerAlways {
		if err := s.mem.SetAutoRestore(true); err != nil {
			s.log.Error().Err(err).Msg("failed to enable auto-restore")
		} else {
			res.AutoRestore = true
		}
	}
	return res
}

// openTab returns a non-empty reason when tab was skipped.
func (s *Session) openTab(ctx context.Context, tab memory.TabRecord) string {
	ok, err := s.fs.IsRegularFile(tab.Path)
	if err != nil || !ok {
		s.log.Warn().Err(err).Str("path", tab.Path).Msg("remembered file is gone, skipping")
		return "file not found"
	}
	if err := s.editor.Open(ctx, tab.Path, tab.Position); err != nil {
		s.log.Warn().Err(err).Str("path", tab.Path).Msg("failed to open file, skipping")
		return err.Error()
	}
	return ""
}

func (s *Session) refreshExpiry(branch string) {
	if err := s.mem.RefreshExpiry(branch); err != nil {
		s.log.Error().Err(err).Str("branch", branch).Msg("failed to refresh expiry")
	}
}

// Sweep drops every branch memory whose expiry has passed and returns the
// surviving expiries. Store failures are logged and yield an empty result.
func (s *Session) Sweep(context.Context) map[string]time.Time {
	kept, err := s.mem.SweepExpired(s.clock.Now())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to sweep expired memories")
		kept = map[string]time.Time{}
	}
	s.refresh()
	return kept
}

// HandleCommand runs an editor command.
func (s *Session) HandleCommand(ctx context.Context, cmd host.Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Bytes("stack", debug.Stack()).Msg("command panicked")
			err = fmt.Errorf("command %s panicked: %v", cmd.Name, r)
		}
	}()

	switch cmd.Name {
	case host.CmdClearAll:
		err = s.mem.ClearAll()
		if err == nil {
			s.editor.Notify(ctx, "Cleared all remembered tabs.")
		}
	case host.CmdEnableAutoRestore:
		err = s.mem.SetAutoRestore(true)
	case host.CmdDisableAutoRestore:
		err = s.mem.SetAutoRestore(false)
	case host.CmdDeleteTab:
		if cmd.Branch == "" || cmd.Path == "" {
			return fmt.Errorf("%w: deleteTab needs branch and path", ErrValidation)
		}
		_, err = s.mem.RemoveTab(cmd.Branch, cmd.Path)
	case host.CmdDeleteBranch:
		if cmd.Branch == "" {
			return fmt.Errorf("%w: deleteBranch needs branch", ErrValidation)
		}
		err = s.mem.DeleteBranch(cmd.Branch)
	case host.CmdRestore:
		err = s.restoreActive(ctx, cmd.Branch)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
	}
	if err != nil {
		return fmt.Errorf("command %s: %w", cmd.Name, err)
	}

	s.refresh()
	return nil
}

// restoreActive reopens the active branch's tabs on demand, with the
// watcher unbound so close-all does not erase them.
func (s *Session) restoreActive(ctx context.Context, branch string) error {
	if s.active == "" {
		return fmt.Errorf("%w: no branch tracked yet", ErrNotActive)
	}
	if branch != "" && branch != s.active {
		return fmt.Errorf("%w: %s", ErrNotActive, branch)
	}

	s.watcher.Unbind()
	defer s.watcher.Bind(s.active)
	s.Restore(ctx, s.active)
	return nil
}

// Close stops recording tab changes.
func (s *Session) Close() {
	s.watcher.Unbind()
}

func (s *Session) recover(what string) {
	if r := recover(); r != nil {
		s.log.Error().
			Str("during", what).
			Str("panic", fmt.Sprint(r)).
			Bytes("stack", debug.Stack()).
			Msg("recovered from panic")
	}
}

func restorePrompt(branch string, n int) string {
	return fmt.Sprintf("Restore %s for branch '%s'?", pluralTabs(n), branch)
}

func pluralTabs(n int) string {
	if n == 1 {
		return "1 tab"
	}
	return fmt.Sprintf("%d tabs", n)
}

// sortedKeys returns the keys of m in order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
