// Package debug renders the operator's inspection panels: the last gateway
// call with the recent transition log, and the unread notifications.
package debug

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/field-service/internal/jira"
	"github.com/nhle/field-service/internal/keys"
	"github.com/nhle/field-service/internal/model"
	"github.com/nhle/field-service/internal/store"
	"github.com/nhle/field-service/internal/theme"
)

// CloseMsg signals the parent to close the panel.
type CloseMsg struct{}

// MarkAllReadMsg asks the parent to mark every notification read.
type MarkAllReadMsg struct{}

type panel int

const (
	panelDiagnostics panel = iota
	panelNotifications
)

// Model is the inspection panel.
type Model struct {
	panel    panel
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new panel model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width-4, height-4)
	vp.Style = lipgloss.NewStyle()
	return Model{viewport: vp, keys: k, width: width, height: height}
}

// ShowDiagnostics fills the panel with the last gateway call, if any, and
// the most recent transition log rows.
func (m *Model) ShowDiagnostics(last jira.DebugInfo, ok bool, log []store.TransitionRecord) {
	m.panel = panelDiagnostics
	m.viewport.SetContent(RenderDiagnostics(last, ok, log))
	m.viewport.GotoTop()
}

// ShowNotifications fills the panel with unread notifications.
func (m *Model) ShowNotifications(notes []model.Notification) {
	m.panel = panelNotifications
	m.viewport.SetContent(RenderNotifications(notes))
	m.viewport.GotoTop()
}

// Update handles messages for the panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return CloseMsg{} }
		case key.Matches(msg, m.keys.Select) && m.panel == panelNotifications:
			return m, func() tea.Msg { return MarkAllReadMsg{} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the panel.
func (m Model) View() string {
	title := "Diagnóstico"
	hint := "esc fecha"
	if m.panel == panelNotifications {
		title = "Notificações"
		hint = "enter marca todas como lidas · esc fecha"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		m.viewport.View(),
		theme.HelpStyle.Render(hint),
	)
	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width - 4
	m.viewport.Height = height - 4
}

// RenderDiagnostics formats the last call as indented JSON followed by the
// transition log.
func RenderDiagnostics(last jira.DebugInfo, ok bool, log []store.TransitionRecord) string {
	var b strings.Builder

	b.WriteString("Última chamada\n")
	if !ok {
		b.WriteString("  nenhuma chamada registrada\n")
	} else {
		data, err := json.MarshalIndent(last, "", "  ")
		if err != nil {
			fmt.Fprintf(&b, "  %v\n", err)
		} else {
			b.Write(data)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nTransições recentes\n")
	if len(log) == 0 {
		b.WriteString("  nenhuma\n")
	}
	for _, r := range log {
		result := theme.SuccessStyle.Render("ok")
		if !r.Success {
			result = theme.ErrorStyle.Render(fmt.Sprintf("falhou (%d)", r.StatusCode))
		}
		line := fmt.Sprintf("  %s  %-8s %-10s t=%s  %s",
			r.CreatedAt.Local().Format("02/01 15:04:05"), r.Action, r.IssueKey, r.TransitionID, result)
		if r.Error != "" {
			line += "  " + r.Error
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// RenderNotifications lists notifications newest first as given.
func RenderNotifications(notes []model.Notification) string {
	if len(notes) == 0 {
		return "Nenhuma notificação nova."
	}
	var b strings.Builder
	for _, n := range notes {
		style := lipgloss.NewStyle()
		if n.Kind == model.NotificationCriticalStore {
			style = theme.CriticalStyle
		}
		fmt.Fprintf(&b, "%s  %s\n", n.CreatedAt.Local().Format("02/01 15:04"), style.Render(n.Message))
	}
	return b.String()
}
