package storelist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/field-service/internal/dashboard"
	"github.com/nhle/field-service/internal/theme"
	"github.com/nhle/field-service/internal/ticket"
)

// StoreItem is one store of the active status tab.
type StoreItem struct {
	Stats      dashboard.StoreStats
	Tickets    []ticket.Ticket
	Duplicates ticket.PairSet
}

// Keys returns the ticket keys of the store in display order.
func (i StoreItem) Keys() []string {
	keys := make([]string, len(i.Tickets))
	for n, t := range i.Tickets {
		keys[n] = t.Key
	}
	return keys
}

// FilterValue returns the string used for fuzzy filtering.
func (i StoreItem) FilterValue() string { return i.Stats.Store + " " + i.Stats.City }

// Title returns the store id.
func (i StoreItem) Title() string { return i.Stats.Store }

// Description returns a short summary line for the list.
func (i StoreItem) Description() string {
	parts := []string{
		fmt.Sprintf("%d chamado(s)", i.Stats.Count),
		location(i.Stats),
		relativeTime(i.Stats.LastUpdated),
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering store rows.
type ItemDelegate struct {
	// CriticalCount colors the count column.
	CriticalCount int
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single store line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	si, ok := item.(StoreItem)
	if !ok {
		return
	}
	fmt.Fprint(w, d.renderLine(si, index == m.Index()))
}

func (d ItemDelegate) renderLine(si StoreItem, isSelected bool) string {
	critical := "  "
	if si.Stats.Critical {
		critical = theme.CriticalStyle.Render("! ")
	}

	count := theme.CountStyle(si.Stats.Count, d.CriticalCount).
		Render(fmt.Sprintf("%3d", si.Stats.Count))

	dup := ""
	if len(si.Duplicates) > 0 {
		dup = theme.DuplicateStyle.Render(fmt.Sprintf(" dup×%d", len(si.Duplicates)))
	}

	updated := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(relativeTime(si.Stats.LastUpdated))

	line := fmt.Sprintf(
		"%s%s %-10s %-28s%s  %s",
		critical, count, si.Stats.Store, location(si.Stats), dup, updated,
	)

	if isSelected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// location renders "City/UF", skipping placeholders.
func location(st dashboard.StoreStats) string {
	var parts []string
	for _, p := range []string{st.City, st.State} {
		if p != "" && p != ticket.Placeholder {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ticket.Placeholder
	}
	return strings.Join(parts, "/")
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}
