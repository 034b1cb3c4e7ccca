package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/liquers/liquers-go/internal/monitor"
	"github.com/liquers/liquers-go/internal/registry"
	"github.com/liquers/liquers-go/internal/util"
)

// panel binds a console to its registry handle, in creation order.
type panel struct {
	handle  registry.Handle
	console *Console
}

// Model holds the TUI application state. The coordinator's Cycle runs on the
// bubbletea goroutine from the tick handler, so the registry is shared only
// between that goroutine and the evaluator's notification writers, which go
// through the asset layer and never touch the registry directly.
type Model struct {
	coordinator *monitor.Coordinator
	consumers   *registry.Registry

	input        textinput.Model
	panels       []panel
	focus        int
	tickInterval time.Duration
	width        int
	height       int
	quitting     bool
	statusLine   string
}

// NewModel creates the TUI model.
func NewModel(coord *monitor.Coordinator, reg *registry.Registry, tickInterval time.Duration) Model {
	ti := textinput.New()
	ti.Placeholder = "query, e.g. text-Hello/uppercase"
	ti.Prompt = "> "
	ti.Focus()
	if tickInterval <= 0 {
		tickInterval = 50 * time.Millisecond
	}
	return Model{
		coordinator:  coord,
		consumers:    reg,
		input:        ti,
		focus:        -1,
		tickInterval: tickInterval,
	}
}

// Init schedules the first coordination tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick(m.tickInterval))
}

// Update handles bubbletea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		return m, nil

	case TickMsg:
		m.coordinator.Cycle()
		return m, tick(m.tickInterval)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			return m.submitQuery(false), nil
		case "ctrl+n":
			return m.submitQuery(true), nil
		case "ctrl+w":
			return m.closeFocusedPanel(), nil
		case "tab":
			return m.cycleFocus(1), nil
		case "shift+tab":
			return m.cycleFocus(-1), nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitQuery sends the prompt content as an observation request. With
// newPanel, or when no panel exists, a fresh console is registered;
// otherwise the focused panel's handle is reused, which replaces its
// monitoring entry with the new query.
func (m Model) submitQuery(newPanel bool) Model {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return m
	}

	if newPanel || len(m.panels) == 0 {
		console := NewConsole(query)
		h := m.consumers.Add(console)
		m.panels = append(m.panels, panel{handle: h, console: console})
		m.focus = len(m.panels) - 1
	}

	p := m.panels[m.focus]
	p.console.SetQuery(query)
	if !m.coordinator.Submit(monitor.Request{Handle: p.handle, Query: query}) {
		m.statusLine = "request buffer full, try again"
		return m
	}

	m.statusLine = ""
	m.input.SetValue("")
	return m
}

// closeFocusedPanel removes the focused console from the registry. Its
// monitoring entry auto-stops on the next delivery attempt.
func (m Model) closeFocusedPanel() Model {
	if m.focus < 0 || m.focus >= len(m.panels) {
		return m
	}
	m.consumers.Remove(m.panels[m.focus].handle)
	m.panels = append(m.panels[:m.focus], m.panels[m.focus+1:]...)
	if m.focus >= len(m.panels) {
		m.focus = len(m.panels) - 1
	}
	return m
}

func (m Model) cycleFocus(delta int) Model {
	if len(m.panels) == 0 {
		return m
	}
	m.focus = (m.focus + delta + len(m.panels)) % len(m.panels)
	return m
}

// View renders the prompt and all console panels.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("liquers"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.statusLine != "" {
		b.WriteString(errorStyle.Render(m.statusLine))
		b.WriteString("\n")
	}

	for i, p := range m.panels {
		style := panelStyle
		if i == m.focus {
			style = focusedPanelStyle
		}
		b.WriteString(style.Render(renderConsole(p.console.state())))
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render("enter: run  ctrl+n: new panel  ctrl+w: close  tab: focus  esc: quit"))
	return b.String()
}

// renderConsole draws one console's latest snapshot state.
func renderConsole(st consoleState) string {
	var lines []string

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		queryStyle.Render(util.TruncateANSI(st.query, 72)),
		mutedStyle.Render("  "),
		statusStyle(st.status.String()).Render(st.status.String()),
	)
	lines = append(lines, header)

	if pr := st.metadata.Progress; pr.Total > 0 && !st.status.Terminal() {
		lines = append(lines, mutedStyle.Render(
			fmt.Sprintf("step %d/%d %s", pr.Step, pr.Total, pr.Message)))
	}

	switch {
	case st.err != nil:
		lines = append(lines, errorStyle.Render(st.err.Error()))
	case st.value != nil:
		lines = append(lines, util.TruncateLines(st.value.Text(), 10, mutedStyle.Render("…")))
	default:
		lines = append(lines, mutedStyle.Render("(no value yet)"))
	}

	if st.metadata.Message != "" && st.err == nil {
		lines = append(lines, mutedStyle.Render(st.metadata.Message))
	}

	return strings.Join(lines, "\n")
}
