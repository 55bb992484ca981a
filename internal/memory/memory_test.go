package memory

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/branchtabs/internal/clock"
	"github.com/danieljhkim/branchtabs/internal/fsops"
	"github.com/danieljhkim/branchtabs/internal/state"
)

const ttl = 30 * 24 * time.Hour

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *clock.FakeClock) {
	t.Helper()
	clk := clock.NewFakeClock(epoch)
	kv := state.NewFileStore(fsops.NewRealFS(), clk, filepath.Join(t.TempDir(), "ws.json"), "/src/app")
	return New(kv, clk, ttl, zerolog.Nop()), clk
}

func TestTabs_EmptyWhenAbsent(t *testing.T) {
	s, _ := newTestStore(t)

	tabs := s.Tabs("main")
	require.NotNil(t, tabs)
	assert.Empty(t, tabs)
}

func TestAddOrUpdateTab(t *testing.T) {
	s, _ := newTestStore(t)

	changed, err := s.AddOrUpdateTab("main", "/src/app/a.go", 1)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.AddOrUpdateTab("main", "/src/app/b.go", 2)
	require.NoError(t, err)
	assert.True(t, changed)

	t.Run("same path and position is a no-op", func(t *testing.T) {
		changed, err := s.AddOrUpdateTab("main", "/src/app/a.go", 1)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, []TabRecord{{"/src/app/a.go", 1}, {"/src/app/b.go", 2}}, s.Tabs("main"))
	})

	t.Run("new position replaces in place", func(t *testing.T) {
		changed, err := s.AddOrUpdateTab("main", "/src/app/a.go", 3)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, []TabRecord{{"/src/app/a.go", 3}, {"/src/app/b.go", 2}}, s.Tabs("main"))
	})

	t.Run("branches are independent", func(t *testing.T) {
		assert.Empty(t, s.Tabs("feature"))
	})
}

func TestAddOrUpdateTab_Idempotent(t *testing.T) {
	once, _ := newTestStore(t)
	twice, _ := newTestStore(t)

	_, err := once.AddOrUpdateTab("main", "/src/app/a.go", 2)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := twice.AddOrUpdateTab("main", "/src/app/a.go", 2)
		require.NoError(t, err)
	}

	assert.Equal(t, once.Tabs("main"), twice.Tabs("main"))
}

func TestUpdatePosition(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.SetTabs("main", []TabRecord{{"/a", 1}, {"/b", 2}}))

	tests := []struct {
		name     string
		path     string
		position int
		changed  bool
		want     []TabRecord
	}{
		{"unknown path is not added", "/c", 2, false, []TabRecord{{"/a", 1}, {"/b", 2}}},
		{"same position is a no-op", "/b", 2, false, []TabRecord{{"/a", 1}, {"/b", 2}}},
		{"known path moves in place", "/a", 3, true, []TabRecord{{"/a", 3}, {"/b", 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed, err := s.UpdatePosition("main", tt.path, tt.position)
			require.NoError(t, err)
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.want, s.Tabs("main"))
		})
	}

	changed, err := s.UpdatePosition("feature", "/a", 2)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, s.Tabs("feature"))
}

func TestOpenThenCloseRestoresList(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.SetTabs("main", []TabRecord{{"/src/app/a.go", 1}}))
	before := s.Tabs("main")

	for _, path := range []string{"/src/app/b.go", "/src/app/c.go"} {
		_, err := s.AddOrUpdateTab("main", path, DefaultPosition)
		require.NoError(t, err)
		_, err = s.RemoveTab("main", path)
		require.NoError(t, err)
	}

	assert.Equal(t, before, s.Tabs("main"))
}

func TestRemoveTab(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.SetTabs("main", []TabRecord{{"/a", 1}, {"/b", 2}, {"/c", 1}}))

	changed, err := s.RemoveTab("main", "/b")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []TabRecord{{"/a", 1}, {"/c", 1}}, s.Tabs("main"))

	changed, err = s.RemoveTab("main", "/missing")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = s.RemoveTab("unknown-branch", "/a")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSetTabs_CopiesInput(t *testing.T) {
	s, _ := newTestStore(t)
	in := []TabRecord{{"/a", 1}}
	require.NoError(t, s.SetTabs("main", in))

	in[0].Path = "/mutated"
	assert.Equal(t, "/a", s.Tabs("main")[0].Path)

	out := s.Tabs("main")
	out[0].Path = "/mutated"
	assert.Equal(t, "/a", s.Tabs("main")[0].Path)
}

func TestDeleteBranch(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.SetTabs("feature", []TabRecord{{"/a", 1}}))
	require.NoError(t, s.RefreshExpiry("feature"))
	require.NoError(t, s.SetTabs("main", []TabRecord{{"/b", 1}}))
	require.NoError(t, s.RefreshExpiry("main"))

	require.NoError(t, s.DeleteBranch("feature"))

	assert.Empty(t, s.Tabs("feature"))
	_, ok := s.Expiry("feature")
	assert.False(t, ok)
	assert.Equal(t, []string{"main"}, s.Branches())
}

func TestRefreshExpiry(t *testing.T) {
	s, clk := newTestStore(t)

	require.NoError(t, s.RefreshExpiry("main"))
	expiry, ok := s.Expiry("main")
	require.True(t, ok)
	assert.True(t, expiry.Equal(epoch.Add(ttl)))

	clk.Advance(24 * time.Hour)
	require.NoError(t, s.RefreshExpiry("main"))
	expiry, _ = s.Expiry("main")
	assert.True(t, expiry.Equal(epoch.Add(24*time.Hour+ttl)))
}

func TestSweepExpired(t *testing.T) {
	s, clk := newTestStore(t)

	// old expires at epoch+ttl, fresh at epoch+10d+ttl
	require.NoError(t, s.SetTabs("old", []TabRecord{{"/old", 1}}))
	require.NoError(t, s.RefreshExpiry("old"))
	clk.Advance(10 * 24 * time.Hour)
	require.NoError(t, s.SetTabs("fresh", []TabRecord{{"/fresh", 2}}))
	require.NoError(t, s.RefreshExpiry("fresh"))
	require.NoError(t, s.SetTabs("untracked", []TabRecord{{"/u", 1}}))

	freshExpiry, _ := s.Expiry("fresh")

	t.Run("nothing expired yet", func(t *testing.T) {
		kept, err := s.SweepExpired(clk.Now())
		require.NoError(t, err)
		assert.Len(t, kept, 2)
		assert.Len(t, s.Tabs("old"), 1)
	})

	t.Run("expiry equal to now is swept", func(t *testing.T) {
		kept, err := s.SweepExpired(epoch.Add(ttl))
		require.NoError(t, err)

		assert.Equal(t, map[string]time.Time{"fresh": freshExpiry}, kept)
		assert.Empty(t, s.Tabs("old"))
		_, ok := s.Expiry("old")
		assert.False(t, ok)
	})

	t.Run("others untouched", func(t *testing.T) {
		assert.Equal(t, []TabRecord{{"/fresh", 2}}, s.Tabs("fresh"))
		expiry, ok := s.Expiry("fresh")
		require.True(t, ok)
		assert.True(t, expiry.Equal(freshExpiry), "sweep must not extend a live expiry")
		assert.Equal(t, []TabRecord{{"/u", 1}}, s.Tabs("untracked"))
	})
}

func TestAutoRestore(t *testing.T) {
	s, _ := newTestStore(t)

	assert.False(t, s.AutoRestore())
	require.NoError(t, s.SetAutoRestore(true))
	assert.True(t, s.AutoRestore())
	require.NoError(t, s.SetAutoRestore(false))
	assert.False(t, s.AutoRestore())
}

func TestClearAll(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.SetTabs("main", []TabRecord{{"/a", 1}}))
	require.NoError(t, s.RefreshExpiry("main"))
	require.NoError(t, s.SetAutoRestore(true))

	require.NoError(t, s.ClearAll())

	assert.Empty(t, s.Tabs("main"))
	assert.Empty(t, s.Expiries())
	assert.Empty(t, s.Branches())
	assert.False(t, s.AutoRestore())
}

func TestBranches(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.SetTabs("zeta", []TabRecord{{"/z", 1}}))
	require.NoError(t, s.SetTabs("empty", nil))
	require.NoError(t, s.RefreshExpiry("alpha"))
	require.NoError(t, s.SetTabs("mid", []TabRecord{{"/m", 1}}))
	require.NoError(t, s.RefreshExpiry("mid"))

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, s.Branches())
}

// brokenKV fails every read with a non-NotFound error.
type brokenKV struct {
	state.Store
	puts int
}

func (b *brokenKV) Get(string, any) error { return errors.New("disk on fire") }
func (b *brokenKV) Put(string, any) error { b.puts++; return nil }
func (b *brokenKV) Delete(string) error   { return nil }

func TestReadFailures(t *testing.T) {
	kv := &brokenKV{}
	s := New(kv, clock.NewFakeClock(epoch), ttl, zerolog.Nop())

	assert.Empty(t, s.Tabs("main"))
	assert.Empty(t, s.Expiries())
	assert.Empty(t, s.Branches())
	assert.False(t, s.AutoRestore())

	_, err := s.AddOrUpdateTab("main", "/a", 1)
	assert.Error(t, err)
	_, err = s.SweepExpired(epoch)
	assert.Error(t, err)
	assert.Zero(t, kv.puts, "a failed read must not overwrite stored data")
}
