// Package memory is the durable branch memory: for every branch, the ordered
// list of tabs that were open while it was checked out, and when that list
// expires.
//
// Three keys are kept in the workspace store:
//
//	branchTabs      map[branch][]TabRecord
//	branchExpiries  map[branch]unix-milliseconds
//	autoRestore     bool
//
// Reads never fail from the caller's point of view: a missing or unreadable
// key is logged and treated as empty. Writes return their error.
package memory

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/danieljhkim/branchtabs/internal/clock"
	"github.com/danieljhkim/branchtabs/internal/state"
)

const (
	keyBranchTabs     = "branchTabs"
	keyBranchExpiries = "branchExpiries"
	keyAutoRestore    = "autoRestore"
)

// DefaultPosition is the layout column a newly opened tab is recorded in.
const DefaultPosition = 1

// TabRecord is one remembered tab.
type TabRecord struct {
	// Path is the absolute file path
	Path string `json:"path"`

	// Position is the 1-based editor column the tab occupies
	Position int `json:"position"`
}

// Store reads and writes branch memory through a workspace state.Store.
type Store struct {
	kv    state.Store
	clock clock.Clock
	ttl   time.Duration
	log   zerolog.Logger
}

// New creates a Store. ttl is how long a restored branch keeps its tabs.
func New(kv state.Store, clk clock.Clock, ttl time.Duration, logger zerolog.Logger) *Store {
	return &Store{
		kv:    kv,
		clock: clk,
		ttl:   ttl,
		log:   logger.With().Str("component", "memory").Logger(),
	}
}

// Tabs returns the tabs stored for branch, or an empty list.
func (s *Store) Tabs(branch string) []TabRecord {
	all, err := s.loadTabs()
	if err != nil {
		s.log.Warn().Err(err).Str("branch", branch).Msg("failed to read branch tabs")
		return []TabRecord{}
	}
	tabs := all[branch]
	if tabs == nil {
		return []TabRecord{}
	}
	return append([]TabRecord(nil), tabs...)
}

// SetTabs replaces the tabs stored for branch.
func (s *Store) SetTabs(branch string, tabs []TabRecord) error {
	all, err := s.loadTabs()
	if err != nil {
		return err
	}
	if tabs == nil {
		tabs = []TabRecord{}
	}
	all[branch] = append([]TabRecord(nil), tabs...)
	return s.saveTabs(all)
}

// AddOrUpdateTab records path for branch. An unknown path is appended; a
// known path with a different position has its position replaced in place.
// It reports whether anything changed.
func (s *Store) AddOrUpdateTab(branch, path string, position int) (bool, error) {
	all, err := s.loadTabs()
	if err != nil {
		return false, err
	}

	tabs := all[branch]
	for i, tab := range tabs {
		if tab.Path != path {
			continue
		}
		if tab.Position == position {
			return false, nil
		}
		tabs[i].Position = position
		all[branch] = tabs
		return true, s.saveTabs(all)
	}

	all[branch] = append(tabs, TabRecord{Path: path, Position: position})
	return true, s.saveTabs(all)
}

// UpdatePosition changes the position of a path already recorded for
// branch. Unknown paths are left alone. It reports whether anything changed.
func (s *Store) UpdatePosition(branch, path string, position int) (bool, error) {
	all, err := s.loadTabs()
	if err != nil {
		return false, err
	}

	tabs := all[branch]
	for i, tab := range tabs {
		if tab.Path != path || tab.Position == position {
			continue
		}
		tabs[i].Position = position
		all[branch] = tabs
		return true, s.saveTabs(all)
	}
	return false, nil
}

// RemoveTab forgets path for branch. It reports whether anything changed.
func (s *Store) RemoveTab(branch, path string) (bool, error) {
	all, err := s.loadTabs()
	if err != nil {
		return false, err
	}

	tabs := all[branch]
	kept := make([]TabRecord, 0, len(tabs))
	for _, tab := range tabs {
		if tab.Path != path {
			kept = append(kept, tab)
		}
	}
	if len(kept) == len(tabs) {
		return false, nil
	}
	all[branch] = kept
	return true, s.saveTabs(all)
}

// DeleteBranch removes the branch's tab list and its expiry.
func (s *Store) DeleteBranch(branch string) error {
	all, err := s.loadTabs()
	if err != nil {
		return err
	}
	expiries, err := s.loadExpiries()
	if err != nil {
		return err
	}

	delete(all, branch)
	delete(expiries, branch)

	if err := s.saveTabs(all); err != nil {
		return err
	}
	return s.saveExpiries(expiries)
}

// ClearAll removes every branch's tabs and expiry and turns auto-restore off.
func (s *Store) ClearAll() error {
	if err := s.kv.Delete(keyBranchTabs); err != nil {
		return fmt.Errorf("failed to clear branch tabs: %w", err)
	}
	if err := s.kv.Delete(keyBranchExpiries); err != nil {
		return fmt.Errorf("failed to clear branch expiries: %w", err)
	}
	return s.SetAutoRestore(false)
}

// RefreshExpiry sets the branch's expiry to now + ttl.
func (s *Store) RefreshExpiry(branch string) error {
	expiries, err := s.loadExpiries()
	if err != nil {
		return err
	}
	expiries[branch] = clock.ExpiresAt(s.clock, s.ttl).UnixMilli()
	return s.saveExpiries(expiries)
}

// Expiry returns when branch's tabs expire, if an expiry is recorded.
func (s *Store) Expiry(branch string) (time.Time, bool) {
	expiry, ok := s.Expiries()[branch]
	return expiry, ok
}

// Expiries returns every recorded expiry.
func (s *Store) Expiries() map[string]time.Time {
	raw, err := s.loadExpiries()
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to read branch expiries")
		return map[string]time.Time{}
	}
	out := make(map[string]time.Time, len(raw))
	for branch, ms := range raw {
		out[branch] = time.UnixMilli(ms).UTC()
	}
	return out
}

// SweepExpired deletes the tabs of every branch whose expiry is at or
// before now and drops those branches from the expiry map. Unexpired
// branches keep their original expiry. The pruned expiry map is persisted
// and returned.
func (s *Store) SweepExpired(now time.Time) (map[string]time.Time, error) {
	expiries, err := s.loadExpiries()
	if err != nil {
		return nil, err
	}
	all, err := s.loadTabs()
	if err != nil {
		return nil, err
	}

	kept := make(map[string]int64, len(expiries))
	swept := 0
	for branch, ms := range expiries {
		if clock.Expired(time.UnixMilli(ms), now) {
			delete(all, branch)
			swept++
			continue
		}
		kept[branch] = ms
	}

	if swept > 0 {
		if err := s.saveTabs(all); err != nil {
			return nil, err
		}
	}
	if err := s.saveExpiries(kept); err != nil {
		return nil, err
	}

	s.log.Debug().Int("swept", swept).Int("kept", len(kept)).Msg("swept expired branch memories")

	out := make(map[string]time.Time, len(kept))
	for branch, ms := range kept {
		out[branch] = time.UnixMilli(ms).UTC()
	}
	return out, nil
}

// AutoRestore reports the persisted auto-restore preference.
func (s *Store) AutoRestore() bool {
	var v bool
	if err := s.kv.Get(keyAutoRestore, &v); err != nil {
		if !errors.Is(err, state.ErrNotFound) {
			s.log.Warn().Err(err).Msg("failed to read auto-restore preference")
		}
		return false
	}
	return v
}

// SetAutoRestore persists the auto-restore preference.
func (s *Store) SetAutoRestore(enabled bool) error {
	if err := s.kv.Put(keyAutoRestore, enabled); err != nil {
		return fmt.Errorf("failed to save auto-restore preference: %w", err)
	}
	return nil
}

// Branches returns, sorted, every branch that has an expiry or at least one
// stored tab.
func (s *Store) Branches() []string {
	seen := make(map[string]bool)
	if all, err := s.loadTabs(); err != nil {
		s.log.Warn().Err(err).Msg("failed to read branch tabs")
	} else {
		for branch, tabs := range all {
			if len(tabs) > 0 {
				seen[branch] = true
			}
		}
	}
	for branch := range s.Expiries() {
		seen[branch] = true
	}

	branches := make([]string, 0, len(seen))
	for branch := range seen {
		branches = append(branches, branch)
	}
	sort.Strings(branches)
	return branches
}

func (s *Store) loadTabs() (map[string][]TabRecord, error) {
	all := make(map[string][]TabRecord)
	if err := s.kv.Get(keyBranchTabs, &all); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return make(map[string][]TabRecord), nil
		}
		return nil, fmt.Errorf("failed to load branch tabs: %w", err)
	}
	if all == nil {
		all = make(map[string][]TabRecord)
	}
	return all, nil
}

func (s *Store) saveTabs(all map[string][]TabRecord) error {
	if err := s.kv.Put(keyBranchTabs, all); err != nil {
		return fmt.Errorf("failed to save branch tabs: %w", err)
	}
	return nil
}

func (s *Store) loadExpiries() (map[string]int64, error) {
	expiries := make(map[string]int64)
	if err := s.kv.Get(keyBranchExpiries, &expiries); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return make(map[string]int64), nil
		}
		return nil, fmt.Errorf("failed to load branch expiries: %w", err)
	}
	if expiries == nil {
		expiries = make(map[string]int64)
	}
	return expiries, nil
}

func (s *Store) saveExpiries(expiries map[string]int64) error {
	if err := s.kv.Put(keyBranchExpiries, expiries); err != nil {
		return fmt.Errorf("failed to save branch expiries: %w", err)
	}
	return nil
}
