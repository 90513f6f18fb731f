// Package help renders the shortcut overlay and the legend for the board's
// markers.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/field-service/internal/dashboard"
	"github.com/nhle/field-service/internal/keys"
	"github.com/nhle/field-service/internal/theme"
)

// Model is the help overlay.
type Model struct {
	keys       *keys.KeyMap
	help       help.Model
	thresholds dashboard.Thresholds
	tabs       []string
	width      int
	height     int
}

// New creates the overlay. tabs are the monitored statuses in tab order.
func New(k *keys.KeyMap, th dashboard.Thresholds, tabs []string, width, height int) Model {
	h := help.New()
	h.ShowAll = true
	m := Model{
		keys:       k,
		help:       h,
		thresholds: th,
		tabs:       tabs,
	}
	m.SetSize(width, height)
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(tea.Msg) (Model, tea.Cmd) { return m, nil }

var sectionStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(theme.ColorWhite).
	MarginTop(1)

// View renders the shortcuts, the tab list and the marker legend.
func (m Model) View() string {
	sections := []string{
		theme.HeaderStyle.Render("Atalhos"),
		m.help.View(m.keys),
	}

	if len(m.tabs) > 0 {
		var tabs []string
		for i, name := range m.tabs {
			tabs = append(tabs, fmt.Sprintf("%d %s", i+1, theme.StatusStyle(name).Render(name)))
		}
		sections = append(sections,
			sectionStyle.Render("Abas"),
			strings.Join(tabs, "  "))
	}

	sections = append(sections,
		sectionStyle.Render("Marcadores"),
		theme.CriticalStyle.Render("!")+"   "+m.criticalRule(),
		theme.DuplicateStyle.Render("dup")+" dois chamados com o mesmo PDV e ativo",
	)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) criticalRule() string {
	days := int(m.thresholds.Stale.Hours() / 24)
	return fmt.Sprintf("loja crítica: %d ou mais chamados ou sem atualização há %d dias",
		m.thresholds.CriticalCount, days)
}

// SetSize updates the overlay dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
