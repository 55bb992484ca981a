package view

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/branchtabs/internal/clock"
	"github.com/danieljhkim/branchtabs/internal/memory"
	"github.com/danieljhkim/branchtabs/internal/state"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newMemory(t *testing.T) *memory.Store {
	t.Helper()
	return memory.New(state.NewMemStore(), clock.NewFakeClock(now), 30*24*time.Hour, zerolog.Nop())
}

func TestRootsAndChildren(t *testing.T) {
	mem := newMemory(t)
	require.NoError(t, mem.SetTabs("main", []memory.TabRecord{{Path: "/src/a.ts", Position: 1}, {Path: "/src/b.ts", Position: 2}}))
	require.NoError(t, mem.SetTabs("feature", []memory.TabRecord{{Path: "/src/c.ts", Position: 1}}))
	require.NoError(t, mem.RefreshExpiry("main"))

	roots := Roots(mem)
	require.Len(t, roots, 2)
	assert.Equal(t, BranchNode{Name: "feature", TabCount: 1}, roots[0])
	assert.Equal(t, BranchNode{Name: "main", Expiry: now.Add(30 * 24 * time.Hour), HasExpiry: true, TabCount: 2}, roots[1])

	children := Children(mem, roots[1])
	assert.Equal(t, []Node{
		TabNode{Branch: "main", Path: "/src/a.ts", Position: 1},
		TabNode{Branch: "main", Path: "/src/b.ts", Position: 2},
	}, children)

	assert.Nil(t, Children(mem, children[0]), "tabs are leaves")
}

func TestDeletedBranchIsNotARoot(t *testing.T) {
	mem := newMemory(t)
	require.NoError(t, mem.SetTabs("feature", []memory.TabRecord{{Path: "/src/a.ts", Position: 1}}))
	require.NoError(t, mem.RefreshExpiry("feature"))
	require.Len(t, Roots(mem), 1)

	require.NoError(t, mem.DeleteBranch("feature"))
	assert.Empty(t, Roots(mem))
	assert.Empty(t, mem.Tabs("feature"))
}

func TestBuild(t *testing.T) {
	mem := newMemory(t)
	require.NoError(t, mem.SetTabs("main", []memory.TabRecord{{Path: "/src/a.ts", Position: 1}}))
	require.NoError(t, mem.RefreshExpiry("main"))
	require.NoError(t, mem.RefreshExpiry("stale"))

	trees := Build(mem)
	require.Len(t, trees, 2)

	assert.Equal(t, "main", trees[0].Branch)
	require.NotNil(t, trees[0].ExpiresAt)
	assert.Equal(t, []TreeTab{{Path: "/src/a.ts", Position: 1}}, trees[0].Tabs)

	assert.Equal(t, "stale", trees[1].Branch)
	assert.NotNil(t, trees[1].Tabs)
	assert.Empty(t, trees[1].Tabs)
}

func TestLabelAndDetail(t *testing.T) {
	tests := []struct {
		name   string
		node   Node
		label  string
		detail string
	}{
		{
			name:   "branch without expiry",
			node:   BranchNode{Name: "main", TabCount: 1},
			label:  "main",
			detail: "1 tab",
		},
		{
			name:   "branch with expiry",
			node:   BranchNode{Name: "dev", TabCount: 3, HasExpiry: true, Expiry: now.Add(72 * time.Hour)},
			label:  "dev",
			detail: "3 tabs, expires in 3 days",
		},
		{
			name:   "tab",
			node:   TabNode{Branch: "main", Path: "/src/app/index.ts", Position: 2},
			label:  "index.ts",
			detail: "/src/app/index.ts (column 2)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.label, Label(tt.node))
			assert.Equal(t, tt.detail, Detail(tt.node, now))
		})
	}
}

func TestExpiresIn(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Minute, "expired"},
		{0, "expired"},
		{30 * time.Minute, "expires in <1 hour"},
		{5 * time.Hour, "expires in 5 hours"},
		{47 * time.Hour, "expires in 47 hours"},
		{30 * 24 * time.Hour, "expires in 30 days"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpiresIn(now.Add(tt.d), now))
		})
	}
}
