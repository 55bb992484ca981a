// Package view turns branch memory into the two-level tree shown to users:
// branches at the root, their remembered tabs beneath.
package view

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/danieljhkim/branchtabs/internal/memory"
)

// Source is the read side of branch memory.
type Source interface {
	Branches() []string
	Tabs(branch string) []memory.TabRecord
	Expiry(branch string) (time.Time, bool)
}

// Node is a tree entry: either a BranchNode or a TabNode.
type Node interface {
	node()
}

// BranchNode is a root entry.
type BranchNode struct {
	Name      string
	Expiry    time.Time
	HasExpiry bool
	TabCount  int
}

// TabNode is a remembered tab under a branch.
type TabNode struct {
	Branch   string
	Path     string
	Position int
}

func (BranchNode) node() {}
func (TabNode) node()    {}

// Roots returns one BranchNode per remembered branch, sorted by name.
func Roots(src Source) []Node {
	names := src.Branches()
	nodes := make([]Node, 0, len(names))
	for _, name := range names {
		expiry, ok := src.Expiry(name)
		nodes = append(nodes, BranchNode{
			Name:      name,
			Expiry:    expiry,
			HasExpiry: ok,
			TabCount:  len(src.Tabs(name)),
		})
	}
	return nodes
}

// Children returns the tabs under a branch node in stored order. Tabs are
// leaves.
func Children(src Source, n Node) []Node {
	b, ok := n.(BranchNode)
	if !ok {
		return nil
	}
	tabs := src.Tabs(b.Name)
	nodes := make([]Node, 0, len(tabs))
	for _, tab := range tabs {
		nodes = append(nodes, TabNode{Branch: b.Name, Path: tab.Path, Position: tab.Position})
	}
	return nodes
}

// Tree is a branch with its tabs, for serialisation.
type Tree struct {
	Branch    string     `json:"branch"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Tabs      []TreeTab  `json:"tabs"`
}

// TreeTab is one tab in a Tree.
type TreeTab struct {
	Path     string `json:"path"`
	Position int    `json:"position"`
}

// Build returns the whole tree.
func Build(src Source) []Tree {
	roots := Roots(src)
	out := make([]Tree, 0, len(roots))
	for _, root := range roots {
		b := root.(BranchNode)
		t := Tree{Branch: b.Name, Tabs: []TreeTab{}}
		if b.HasExpiry {
			exp := b.Expiry
			t.ExpiresAt = &exp
		}
		for _, child := range Children(src, b) {
			tab := child.(TabNode)
			t.Tabs = append(t.Tabs, TreeTab{Path: tab.Path, Position: tab.Position})
		}
		out = append(out, t)
	}
	return out
}

// Label returns the primary text for a node.
func Label(n Node) string {
	switch n := n.(type) {
	case BranchNode:
		return n.Name
	case TabNode:
		return filepath.Base(n.Path)
	default:
		return ""
	}
}

// Detail returns secondary text for a node, relative to now.
func Detail(n Node, now time.Time) string {
	switch n := n.(type) {
	case BranchNode:
		tabs := pluralize(n.TabCount, "tab")
		if !n.HasExpiry {
			return tabs
		}
		return fmt.Sprintf("%s, %s", tabs, ExpiresIn(n.Expiry, now))
	case TabNode:
		return fmt.Sprintf("%s (column %d)", n.Path, n.Position)
	default:
		return ""
	}
}

// ExpiresIn renders the time until expiry in days or hours.
func ExpiresIn(expiry, now time.Time) string {
	d := expiry.Sub(now)
	switch {
	case d <= 0:
		return "expired"
	case d >= 48*time.Hour:
		return fmt.Sprintf("expires in %d days", int(d/(24*time.Hour)))
	case d >= time.Hour:
		return fmt.Sprintf("expires in %d hours", int(d/time.Hour))
	default:
		return "expires in <1 hour"
	}
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
