// Package command is the ':' palette of the dashboard.
package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/field-service/internal/theme"
)

// CommandMsg is emitted when a palette line is submitted.
type CommandMsg struct {
	Name string
	Args []string
}

// Commands lists what the palette understands, for the hint line.
var Commands = []string{
	"refresh", "undo", "debug", "notifications", "order count|store|city",
	"min <n>", "state <uf>", "clear", "status <name>", "day", "quit",
}

const maxHistory = 20

// Parse splits a palette line into a command name and its arguments.
// The name is lower-cased; arguments keep their case.
func Parse(line string) (CommandMsg, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return CommandMsg{}, false
	}
	return CommandMsg{Name: strings.ToLower(fields[0]), Args: fields[1:]}, true
}

// Complete returns the single command name starting with prefix. It
// reports false when nothing or more than one name matches.
func Complete(prefix string) (string, bool) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", false
	}
	var match string
	for _, c := range Commands {
		name, _, _ := strings.Cut(c, " ")
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if match != "" {
			return "", false
		}
		match = name
	}
	return match, match != ""
}

// Model is the command palette.
type Model struct {
	input   textinput.Model
	history []string
	cursor  int
	width   int
	height  int
}

// New creates the palette.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "digite um comando..."
	ti.Prompt = ": "
	ti.Focus()

	m := Model{input: ti}
	m.SetSize(width, height)
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles enter (submit), tab (complete the name) and up/down
// (recall earlier lines).
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			return m.submit()
		case "tab":
			if !strings.Contains(m.input.Value(), " ") {
				if name, ok := Complete(m.input.Value()); ok {
					m.input.SetValue(name + " ")
					m.input.CursorEnd()
				}
			}
			return m, nil
		case "up":
			m.recall(-1)
			return m, nil
		case "down":
			m.recall(1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.Reset()

	cmd, ok := Parse(line)
	if !ok {
		return m, nil
	}
	if n := len(m.history); n == 0 || m.history[n-1] != line {
		m.history = append(m.history, line)
		if len(m.history) > maxHistory {
			m.history = m.history[1:]
		}
	}
	m.cursor = len(m.history)
	return m, func() tea.Msg { return cmd }
}

func (m *Model) recall(step int) {
	next := m.cursor + step
	if next < 0 || next > len(m.history) {
		return
	}
	m.cursor = next
	if next == len(m.history) {
		m.input.Reset()
		return
	}
	m.input.SetValue(m.history[next])
	m.input.CursorEnd()
}

// Value returns the current input line.
func (m Model) Value() string { return m.input.Value() }

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(theme.ColorWhite).
	MarginBottom(1)

func (m Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Comandos"),
		m.input.View(),
		"",
		theme.HelpStyle.Render(strings.Join(Commands, " · ")),
	)
	return theme.DetailPanelStyle.Width(m.width - 4).Render(content)
}

// SetSize updates the palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
