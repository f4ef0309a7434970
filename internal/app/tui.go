package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/productdevbook/port-kill/internal/killer"
	"github.com/productdevbook/port-kill/internal/menu"
	"github.com/productdevbook/port-kill/internal/monitor"
)

// guardPoll is how often a held back snapshot is retried while a kill is active.
const guardPoll = 250 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#7D56F4"))

	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	okStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

type snapshotMsg monitor.Snapshot

type batchMsg killer.Batch

type guardTickMsg struct{}

// model is the interactive menu. Items are rebuilt from every snapshot
// unless a kill batch is active, in which case the latest snapshot waits
// until the guard clears.
type model struct {
	ctx     context.Context
	session *Session

	snap    monitor.Snapshot
	pending monitor.Snapshot
	held    bool
	items   []menu.Item
	visible []menu.Item
	cursor  int

	filter    textinput.Model
	filtering bool

	message string
	width   int
}

func newModel(ctx context.Context, s *Session) *model {
	ti := textinput.New()
	ti.Placeholder = "filter processes"
	ti.Prompt = "/ "
	ti.CharLimit = 64

	m := &model{ctx: ctx, session: s, filter: ti, width: 80}
	m.apply(s.Monitor().Current())
	return m
}

// RunInteractive runs the terminal menu until the user quits or ctx is done.
func RunInteractive(ctx context.Context, s *Session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Monitor().Run(ctx) }()

	p := tea.NewProgram(newModel(ctx, s), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()

	cancel()
	if monErr := <-done; monErr != nil {
		return monErr
	}
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("run interactive menu: %w", err)
	}
	return nil
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.waitSnapshot(), m.waitBatch(), textinput.Blink)
}

func (m *model) waitSnapshot() tea.Cmd {
	updates := m.session.Monitor().Updates()
	return func() tea.Msg {
		select {
		case snap := <-updates:
			return snapshotMsg(snap)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *model) waitBatch() tea.Cmd {
	results := m.session.Controller().Results()
	return func() tea.Msg {
		select {
		case b := <-results:
			return batchMsg(b)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func guardTick() tea.Cmd {
	return tea.Tick(guardPoll, func(time.Time) tea.Msg { return guardTickMsg{} })
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case snapshotMsg:
		snap := monitor.Snapshot(msg)
		if m.session.Controller().Guard().Active() {
			first := !m.held
			m.pending, m.held = snap, true
			if first {
				return m, tea.Batch(m.waitSnapshot(), guardTick())
			}
			return m, m.waitSnapshot()
		}
		m.pending, m.held = nil, false
		m.apply(snap)
		return m, m.waitSnapshot()

	case guardTickMsg:
		if !m.held {
			return m, nil
		}
		if m.session.Controller().Guard().Active() {
			return m, guardTick()
		}
		m.apply(m.pending)
		m.pending, m.held = nil, false
		return m, nil

	case batchMsg:
		m.message = describeBatch(killer.Batch(msg))
		return m, m.waitBatch()

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateMenu(msg)
	}
	return m, nil
}

func (m *model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.refilter()
		return m, nil
	case "enter":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refilter()
	return m, cmd
}

func (m *model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "/":
		m.filtering = true
		return m, m.filter.Focus()
	case "a":
		if item, ok := menu.Find(m.items, "kill-all"); ok {
			return m, m.trigger(item.Action)
		}
	case "enter", " ":
		return m, m.trigger(menu.ActionAt(m.visible, m.cursor))
	}
	return m, nil
}

// trigger runs the action carried by the selected item.
func (m *model) trigger(action menu.Action) tea.Cmd {
	if action.Kind == menu.Quit {
		return tea.Quit
	}
	req, ok := action.Request()
	if !ok {
		return nil
	}
	if m.session.Controller().Dispatch(m.ctx, req) {
		m.message = warnStyle.Render(fmt.Sprintf("%s in progress...", req))
	}
	return nil
}

func (m *model) apply(snap monitor.Snapshot) {
	var selected string
	if m.cursor >= 0 && m.cursor < len(m.visible) {
		selected = m.visible[m.cursor].ID
	}

	m.snap = snap
	m.items = menu.Build(snap, m.session.Options().ShowPID)
	m.refilter()

	if i := slices.IndexFunc(m.visible, func(it menu.Item) bool { return it.ID == selected }); i >= 0 {
		m.cursor = i
	}
}

// refilter narrows the process entries to those matching the filter text.
// Kill-all and quit stay reachable.
func (m *model) refilter() {
	query := strings.TrimSpace(m.filter.Value())
	if query == "" {
		m.visible = m.items
		m.clampCursor()
		return
	}

	var (
		procs  []menu.Item
		labels []string
	)
	for _, it := range m.items {
		if it.Action.Kind == menu.KillOne {
			procs = append(procs, it)
			labels = append(labels, it.Label)
		}
	}

	matches := fuzzy.Find(query, labels)
	idx := make([]int, 0, len(matches))
	for _, match := range matches {
		idx = append(idx, match.Index)
	}
	slices.Sort(idx)

	visible := make([]menu.Item, 0, len(idx)+3)
	for _, it := range m.items {
		if it.Action.Kind == menu.KillAll {
			visible = append(visible, it)
		}
	}
	for _, i := range idx {
		visible = append(visible, procs[i])
	}
	for _, it := range m.items {
		if it.Action.Kind == menu.Quit {
			visible = append(visible, it)
		}
	}
	m.visible = visible
	m.clampCursor()
}

func (m *model) clampCursor() {
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if len(m.visible) > 0 && m.visible[m.cursor].Separator {
		m.move(1)
	}
}

// move steps the cursor over separators.
func (m *model) move(delta int) {
	for i := m.cursor + delta; i >= 0 && i < len(m.visible); i += delta {
		if !m.visible[i].Separator {
			m.cursor = i
			return
		}
	}
}

func (m *model) View() string {
	var b strings.Builder

	status := menu.StatusFor(len(m.snap))
	b.WriteString(titleStyle.Render("Port Kill " + status.Text))
	b.WriteString("  ")
	b.WriteString(status.Tooltip)
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(m.session.Options().Description()))
	b.WriteString("\n\n")

	for i, it := range m.visible {
		if it.Separator {
			b.WriteString(separatorStyle.Render(strings.Repeat("─", min(m.width, 40))))
			b.WriteString("\n")
			continue
		}
		line := "  " + it.Label
		if i == m.cursor {
			line = selectedStyle.Render("> " + it.Label)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.filtering || m.filter.Value() != "" {
		b.WriteString("\n")
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}
	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(m.message)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(separatorStyle.Render("enter: select • a: kill all • /: filter • q: quit"))
	return b.String()
}

func describeBatch(b killer.Batch) string {
	if b.Rejected {
		return warnStyle.Render("A kill is already in progress")
	}
	if len(b.Outcomes) == 0 {
		return okStyle.Render("No processes to kill")
	}

	if !b.Succeeded() {
		return errorStyle.Render(b.Err().Error())
	}

	var killed, skipped int
	for _, o := range b.Outcomes {
		switch o.Status {
		case killer.Killed:
			killed++
		case killer.Skipped:
			skipped++
		}
	}
	msg := fmt.Sprintf("Killed %d process(es)", killed)
	if skipped > 0 {
		msg += fmt.Sprintf(", skipped %d", skipped)
	}
	return okStyle.Render(msg)
}
