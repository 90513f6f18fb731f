// Package storelist renders the stores of one status tab, with their open
// ticket counts and the critical and duplicate markers.
package storelist

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/field-service/internal/dashboard"
	"github.com/nhle/field-service/internal/keys"
	"github.com/nhle/field-service/internal/theme"
	"github.com/nhle/field-service/internal/ticket"
)

// SelectedStoreMsg is sent when the user opens a store.
type SelectedStoreMsg struct {
	Item StoreItem
}

// Model is the store list of the active status tab.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	thresholds  dashboard.Thresholds
	highlight   dashboard.Highlight
	status      string
	tickets     []ticket.Ticket
	now         func() time.Time
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new store list model.
func New(k *keys.KeyMap, th dashboard.Thresholds, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{CriticalCount: th.CriticalCount}, width, height-2)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "store or city..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		keys:        k,
		thresholds:  th,
		now:         time.Now,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetTickets replaces the tickets shown, all in status, and rebuilds the
// store rows.
func (m *Model) SetTickets(status string, tickets []ticket.Ticket) tea.Cmd {
	m.status = status
	m.tickets = tickets
	return m.rebuild()
}

// Status returns the status of the tab being shown.
func (m Model) Status() string { return m.status }

// Searching reports whether the search input has focus.
func (m Model) Searching() bool { return m.searchMode }

// Highlight returns the active filter.
func (m Model) Highlight() dashboard.Highlight { return m.highlight }

// SetHighlight replaces the filter and ordering.
func (m *Model) SetHighlight(h dashboard.Highlight) tea.Cmd {
	m.highlight = h
	return m.rebuild()
}

// Items returns the rows currently shown, in display order.
func (m Model) Items() []StoreItem {
	items := m.list.Items()
	out := make([]StoreItem, 0, len(items))
	for _, it := range items {
		if si, ok := it.(StoreItem); ok {
			out = append(out, si)
		}
	}
	return out
}

// SelectedItem returns the focused store.
func (m Model) SelectedItem() (StoreItem, bool) {
	si, ok := m.list.SelectedItem().(StoreItem)
	return si, ok
}

// BuildItems groups tickets by store and returns the rows accepted by h.
func BuildItems(tickets []ticket.Ticket, th dashboard.Thresholds, h dashboard.Highlight, now time.Time) []StoreItem {
	grouped := ticket.Group(tickets)
	stats := dashboard.StoreStatistics(tickets, th, now)

	var items []StoreItem
	for _, st := range dashboard.Highlights(stats, dashboard.Highlight{
		Min: h.Min, State: h.State, Order: h.Order,
	}) {
		group := grouped[st.Store]
		if !dashboard.MatchStore(st.Store, group, h.Query) {
			continue
		}
		items = append(items, StoreItem{
			Stats:      st,
			Tickets:    group,
			Duplicates: ticket.FindDuplicates(group),
		})
	}
	return items
}

func (m *Model) rebuild() tea.Cmd {
	built := BuildItems(m.tickets, m.thresholds, m.highlight, m.now())
	items := make([]list.Item, len(built))
	for i, it := range built {
		items[i] = it
	}
	m.list.Title = fmt.Sprintf("%s · %d stores · order: %s", m.status, len(items), m.highlight.Order)
	return m.list.SetItems(items)
}

// Update handles messages for the store list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.highlight.Query = m.searchInput.Value()
		return m, m.rebuild()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.highlight.Query = ""
		return m, m.rebuild()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.SelectedItem()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedStoreMsg{Item: item}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.CycleOrder):
		m.highlight.Order = (m.highlight.Order + 1) % 3
		return m, m.rebuild()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// FilterSummary describes the active filter for the status bar; empty when
// nothing filters the list.
func (m Model) FilterSummary() string {
	h := m.highlight
	var s string
	if h.Min > 0 {
		s += " min:" + strconv.Itoa(h.Min)
	}
	if h.State != "" {
		s += " state:" + h.State
	}
	if h.Query != "" {
		s += " /" + h.Query
	}
	if s == "" {
		return ""
	}
	return "filter" + s
}

// View renders the store list.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no store is listed.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.FilterSummary() != "" {
		return style.Render("No matching stores.\nType :clear to reset the filter.")
	}
	if m.status == "" {
		return style.Render("Loading tickets...")
	}
	return style.Render(fmt.Sprintf("No open tickets in %s.", m.status))
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
