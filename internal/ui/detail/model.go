// Package detail shows the tickets of one store together with the dispatch
// message sent to the field technician.
package detail

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/field-service/internal/keys"
	"github.com/nhle/field-service/internal/model"
	"github.com/nhle/field-service/internal/theme"
	"github.com/nhle/field-service/internal/ticket"
	"github.com/nhle/field-service/internal/ui/storelist"
)

// BackMsg signals the parent to navigate back to the store list.
type BackMsg struct{}

// Action names carried by ActionMsg.
const (
	ActionTransition = "transition"
	ActionDispatch   = "dispatch"
	ActionDraft      = "draft"
)

// ActionMsg asks the parent to act on the store's tickets.
type ActionMsg struct {
	Action  string
	Store   string
	Status  string
	Tickets []ticket.Ticket
}

// Keys returns the ticket keys of the action.
func (a ActionMsg) Keys() []string {
	keys := make([]string, len(a.Tickets))
	for i, t := range a.Tickets {
		keys[i] = t.Key
	}
	return keys
}

// CopiedMsg reports the result of copying the dispatch message.
type CopiedMsg struct {
	Err error
}

var (
	defaultCopy     = clipboard.WriteAll
	copyToClipboard = defaultCopy
)

// Model is the store detail view component.
type Model struct {
	item     *storelist.StoreItem
	status   string
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetStore updates the store being displayed and re-renders the content.
func (m *Model) SetStore(item storelist.StoreItem, status string) {
	m.item = &item
	m.status = status
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Store returns the store being displayed.
func (m Model) Store() (storelist.StoreItem, bool) {
	if m.item == nil {
		return storelist.StoreItem{}, false
	}
	return *m.item, true
}

// Message returns the dispatch message of the store being displayed.
func (m Model) Message() string {
	if m.item == nil {
		return ""
	}
	return ticket.DispatchMessage(m.item.Stats.Store, m.item.Tickets)
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(msg, m.keys.Transition):
			return m, m.action(ActionTransition)

		case key.Matches(msg, m.keys.Dispatch):
			return m, m.action(ActionDispatch)

		case key.Matches(msg, m.keys.Draft):
			return m, m.action(ActionDraft)

		case key.Matches(msg, m.keys.Copy):
			if text := m.Message(); text != "" {
				return m, func() tea.Msg {
					return CopiedMsg{Err: copyToClipboard(text)}
				}
			}
			return m, nil
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) action(name string) tea.Cmd {
	if m.item == nil {
		return nil
	}
	msg := ActionMsg{
		Action:  name,
		Store:   m.item.Stats.Store,
		Status:  m.status,
		Tickets: append([]ticket.Ticket(nil), m.item.Tickets...),
	}
	return func() tea.Msg { return msg }
}

// View renders the detail view.
func (m Model) View() string {
	if m.item == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No store selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.item == nil {
		return ""
	}

	it := m.item
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	title := fmt.Sprintf("Loja %s", it.Stats.Store)
	if it.Stats.Critical {
		title += " " + theme.CriticalStyle.Render("! crítica")
	}
	sections = append(sections, titleStyle.Render(title))
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
		theme.StatusStyle(m.status).Render(m.status),
		"  ",
		fmt.Sprintf("%d chamado(s)", it.Stats.Count),
	))
	sections = append(sections, "")

	dupKeys := make(map[string]bool)
	for _, k := range ticket.DuplicateKeys(it.Tickets) {
		dupKeys[k] = true
	}

	keyStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	for _, t := range it.Tickets {
		line := fmt.Sprintf("%s  PDV %s  ativo %s  %s",
			keyStyle.Render(t.Key), t.POS, t.Asset, t.Problem)
		if m.status == model.StatusScheduled {
			line += metaStyle.Render("  " + ticket.ScheduleDay(t.ScheduledAt))
		}
		if dupKeys[t.Key] {
			line += theme.DuplicateStyle.Render("  dup")
		}
		sections = append(sections, line)
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(0, min(m.width-4, 80))))
	sections = append(sections, "", separator, "")

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	sections = append(sections, headerStyle.Render("Mensagem"))
	sections = append(sections, m.Message())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.item != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
