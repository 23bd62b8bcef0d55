package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// redrawInterval is how often the renderer re-reads the dashboard state.
const redrawInterval = 250 * time.Millisecond

var (
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true).Padding(0, 1)
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	systemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	frameStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
)

type redrawMsg struct{}

// nextRedraw resolves on the display tick or as soon as the state changes,
// whichever comes first.
func nextRedraw(state *State) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-state.Wake():
		case <-time.After(redrawInterval):
		}
		return redrawMsg{}
	}
}

// Model renders read-only snapshots of the dashboard state. All key presses
// except quit are forwarded onto the event pipeline; the consumer decides
// what they mean. The model holds no supervision state of its own.
type Model struct {
	state    *State
	pipeline *Pipeline
	snap     Snapshot
	width    int
	height   int
}

func NewModel(state *State, pipeline *Pipeline) Model {
	return Model{state: state, pipeline: pipeline, snap: state.Snapshot()}
}

func (m Model) Init() tea.Cmd { return nextRedraw(m.state) }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		default:
			m.pipeline.Send(Input{Key: msg.String()})
		}
	case redrawMsg:
		m.snap = m.state.Snapshot()
		return m, nextRedraw(m.state)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m Model) View() string {
	if len(m.snap.Tabs) == 0 {
		return "waiting for commands..."
	}
	var b strings.Builder

	names := make([]string, 0, len(m.snap.Tabs))
	for i, tab := range m.snap.Tabs {
		style := tabStyle
		if i == m.snap.Index {
			style = activeTabStyle
		}
		names = append(names, style.Render(tab.Title))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Bottom, names...))
	b.WriteString("\n")

	content := m.snap.Tabs[m.snap.Index].Content
	visible := m.height - 6
	if visible < 1 {
		visible = len(content)
	}
	if len(content) > visible {
		content = content[len(content)-visible:]
	}
	lines := make([]string, 0, len(content))
	for _, msg := range content {
		switch msg.Severity {
		case SeverityError:
			lines = append(lines, errorStyle.Render(msg.Text))
		case SeveritySystem:
			lines = append(lines, systemStyle.Render(msg.Text))
		default:
			lines = append(lines, infoStyle.Render(msg.Text))
		}
	}
	b.WriteString(frameStyle.Render(strings.Join(lines, "\n")))
	return b.String()
}

// RunRenderer drives the dashboard until the user quits. Supervision keeps
// running after the renderer exits.
func RunRenderer(state *State, pipeline *Pipeline) error {
	p := tea.NewProgram(NewModel(state, pipeline), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
