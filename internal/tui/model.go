// Package tui is the interactive branch memory browser behind
// `branchtabs browse`.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/danieljhkim/branchtabs/internal/clock"
	"github.com/danieljhkim/branchtabs/internal/view"
)

// Memory is what the browser reads and edits.
type Memory interface {
	view.Source
	DeleteBranch(branch string) error
	RemoveTab(branch, path string) (bool, error)
}

type row struct {
	node  view.Node
	depth int
}

// Model is the bubbletea model for the browser.
type Model struct {
	mem    Memory
	clock  clock.Clock
	title  string
	active string

	keys KeyMap
	help help.Model

	rows     []row
	cursor   int
	expanded map[string]bool

	// pending is the node awaiting delete confirmation
	pending view.Node

	status string
	err    error
}

// New creates a browser over mem. active is highlighted when present.
func New(mem Memory, clk clock.Clock, title, active string) Model {
	m := Model{
		mem:      mem,
		clock:    clk,
		title:    title,
		active:   active,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		expanded: make(map[string]bool),
	}
	if active != "" {
		m.expanded[active] = true
	}
	m.reload()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Selected returns the node under the cursor.
func (m Model) Selected() (view.Node, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil, false
	}
	return m.rows[m.cursor].node, true
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.pending != nil {
			return m.updateConfirm(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.forget(m.pending)
		m.pending = nil
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.pending = nil
		m.status = "Cancelled."
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status, m.err = "", nil

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Home):
		m.cursor = 0

	case key.Matches(msg, m.keys.End):
		m.cursor = max(len(m.rows)-1, 0)

	case key.Matches(msg, m.keys.Expand):
		if n, ok := m.Selected(); ok {
			if b, ok := n.(view.BranchNode); ok {
				m.expanded[b.Name] = !m.expanded[b.Name]
				m.reload()
			}
		}

	case key.Matches(msg, m.keys.Collapse):
		if n, ok := m.Selected(); ok {
			switch n := n.(type) {
			case view.BranchNode:
				m.expanded[n.Name] = false
				m.reload()
			case view.TabNode:
				m.expanded[n.Branch] = false
				m.reload()
				m.selectBranch(n.Branch)
			}
		}

	case key.Matches(msg, m.keys.Delete):
		if n, ok := m.Selected(); ok {
			m.pending = n
		}

	case key.Matches(msg, m.keys.Refresh):
		m.reload()
		m.status = "Refreshed."

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) forget(n view.Node) {
	switch n := n.(type) {
	case view.BranchNode:
		if err := m.mem.DeleteBranch(n.Name); err != nil {
			m.err = err
			return
		}
		delete(m.expanded, n.Name)
		m.status = fmt.Sprintf("Forgot branch '%s'.", n.Name)
	case view.TabNode:
		if _, err := m.mem.RemoveTab(n.Branch, n.Path); err != nil {
			m.err = err
			return
		}
		m.status = fmt.Sprintf("Forgot %s on '%s'.", view.Label(n), n.Branch)
	}
	m.reload()
}

// reload rebuilds the visible rows, keeping the cursor in range.
func (m *Model) reload() {
	rows := make([]row, 0, len(m.rows))
	for _, root := range view.Roots(m.mem) {
		rows = append(rows, row{node: root})
		b := root.(view.BranchNode)
		if !m.expanded[b.Name] {
			continue
		}
		for _, child := range view.Children(m.mem, b) {
			rows = append(rows, row{node: child, depth: 1})
		}
	}
	m.rows = rows
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) selectBranch(name string) {
	for i, r := range m.rows {
		if b, ok := r.node.(view.BranchNode); ok && b.Name == name {
			m.cursor = i
			return
		}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("branchtabs"))
	if m.title != "" {
		b.WriteString(SubtleStyle.Render("  " + m.title))
	}
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(SubtleStyle.Render("  No remembered tabs."))
		b.WriteString("\n")
	}

	now := m.clock.Now()
	for i, r := range m.rows {
		line := m.renderRow(r, now)
		if i == m.cursor {
			line = SelectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	switch {
	case m.pending != nil:
		b.WriteString("\n")
		b.WriteString(WarningStyle.Render(fmt.Sprintf("Forget %s? (y/n)", describe(m.pending))))
		b.WriteString("\n")
	case m.err != nil:
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	case m.status != "":
		b.WriteString("\n")
		b.WriteString(SubtleStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(FooterStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderRow(r row, now time.Time) string {
	switch n := r.node.(type) {
	case view.BranchNode:
		marker := "▸"
		if m.expanded[n.Name] {
			marker = "▾"
		}
		style := BranchStyle
		if n.Name == m.active {
			style = ActiveBranchStyle
		}
		return fmt.Sprintf("%s %s  %s", marker, style.Render(n.Name), SubtleStyle.Render(view.Detail(n, now)))
	case view.TabNode:
		return fmt.Sprintf("    %s  %s", TabStyle.Render(view.Label(n)), SubtleStyle.Render(view.Detail(n, now)))
	default:
		return ""
	}
}

func describe(n view.Node) string {
	switch n := n.(type) {
	case view.BranchNode:
		return fmt.Sprintf("branch '%s' and its %d tab(s)", n.Name, n.TabCount)
	case view.TabNode:
		return fmt.Sprintf("%s on '%s'", n.Path, n.Branch)
	default:
		return "selection"
	}
}
