// Package actionform holds the forms that move a store's tickets: the
// free transition form and the dispatch-to-field form.
package actionform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/field-service/internal/jira"
	"github.com/nhle/field-service/internal/theme"
	"github.com/nhle/field-service/internal/ticket"
	"github.com/nhle/field-service/internal/workflow"
)

// TransitionSubmitMsg asks the parent to move Keys through Transition.
// Schedule is set when the transition books a visit.
type TransitionSubmitMsg struct {
	Store      string
	From       string
	Keys       []string
	Transition jira.Transition
	Schedule   *workflow.Schedule
}

// DispatchSubmitMsg asks the parent to schedule Pending with Schedule and
// move Pending and Scheduled to the field.
type DispatchSubmitMsg struct {
	Store     string
	Pending   []string
	Scheduled []string
	Schedule  workflow.Schedule
}

// CancelMsg is dispatched when the user aborts a form.
type CancelMsg struct{}

type mode int

const (
	modeTransition mode = iota
	modeDispatch
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	transitionID string
	keys         []string
	date         string
	clock        string
	technicians  string
}

// Model is the Bubble Tea model for both action forms.
type Model struct {
	form        *huh.Form
	fb          *formBindings
	mode        mode
	store       string
	from        string
	transitions []jira.Transition
	pending     []string
	scheduled   []string
	location    *time.Location
	now         func() time.Time
	width       int
	height      int
}

// New creates a new action form model. Scheduled dates are read in loc.
func New(loc *time.Location, width, height int) Model {
	return Model{
		fb:       &formBindings{},
		location: loc,
		now:      time.Now,
		width:    width,
		height:   height,
	}
}

// StartTransition opens the transition form for the tickets of store, all
// currently in status from. transitions are the ones the first ticket
// offers.
func (m *Model) StartTransition(store, from string, tickets []ticket.Ticket, transitions []jira.Transition) tea.Cmd {
	m.mode = modeTransition
	m.store = store
	m.from = from
	m.transitions = transitions
	m.fb.transitionID = ""
	if len(transitions) > 0 {
		m.fb.transitionID = transitions[0].ID
	}
	m.fb.keys = nil
	for _, t := range tickets {
		m.fb.keys = append(m.fb.keys, t.Key)
	}
	m.resetSchedule()
	m.form = m.buildTransitionForm(tickets)
	return m.form.Init()
}

// StartDispatch opens the dispatch form for store. pending tickets are
// scheduled first; scheduled ones only move to the field.
func (m *Model) StartDispatch(store string, pending, scheduled []string) tea.Cmd {
	m.mode = modeDispatch
	m.store = store
	m.pending = pending
	m.scheduled = scheduled
	m.resetSchedule()
	m.form = m.buildDispatchForm()
	return m.form.Init()
}

func (m *Model) resetSchedule() {
	m.fb.date = m.now().In(m.location).Format("2006-01-02")
	m.fb.clock = "09:00"
	m.fb.technicians = ""
}

// Active reports whether a form is open.
func (m Model) Active() bool {
	return m.form != nil
}

// Update handles messages for the open form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		submit := m.handleSubmit()
		m.form = nil
		return m, submit
	}
	if m.form.State == huh.StateAborted {
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the open form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := fmt.Sprintf("Mover chamados · loja %s · %s", m.store, m.from)
	if m.schedules() {
		titleText += " · com agendamento"
	}
	if m.mode == modeDispatch {
		titleText = fmt.Sprintf("Enviar a campo · loja %s · %d a agendar, %d agendado(s)",
			m.store, len(m.pending), len(m.scheduled))
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildTransitionForm(tickets []ticket.Ticket) *huh.Form {
	transitions, fb := m.transitions, m.fb

	tOpts := make([]huh.Option[string], len(m.transitions))
	for i, t := range m.transitions {
		tOpts[i] = huh.NewOption(fmt.Sprintf("%s → %s", t.Name, t.To.Name), t.ID)
	}

	kOpts := make([]huh.Option[string], len(tickets))
	for i, t := range tickets {
		kOpts[i] = huh.NewOption(fmt.Sprintf("%s  PDV %s  %s", t.Key, t.POS, t.Problem), t.Key).Selected(true)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Transição").
				Options(tOpts...).
				Value(&m.fb.transitionID).
				Validate(validateRequired("Transição")),
			huh.NewMultiSelect[string]().
				Title("Chamados").
				Options(kOpts...).
				Value(&m.fb.keys).
				Validate(validateSelection),
		),
		m.scheduleGroup().WithHideFunc(func() bool {
			t, ok := findTransition(transitions, fb.transitionID)
			return !ok || !workflow.Schedules(t)
		}),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) buildDispatchForm() *huh.Form {
	return huh.NewForm(m.scheduleGroup()).
		WithWidth(m.formWidth()).
		WithHeight(m.formHeight())
}

func (m *Model) scheduleGroup() *huh.Group {
	return huh.NewGroup(
		huh.NewInput().
			Title("Data").
			Placeholder("YYYY-MM-DD").
			Value(&m.fb.date).
			Validate(validateDate),
		huh.NewInput().
			Title("Hora").
			Placeholder("HH:MM").
			Value(&m.fb.clock).
			Validate(validateClock),
		huh.NewText().
			Title("Técnicos").
			Placeholder("nome-documento-telefone, um por linha").
			Value(&m.fb.technicians),
	)
}

// schedules reports whether the selected transition books a visit.
func (m Model) schedules() bool {
	t, ok := m.selectedTransition()
	return ok && workflow.Schedules(t)
}

func (m Model) schedule() (workflow.Schedule, error) {
	at, err := workflow.ParseSchedule(m.fb.date, m.fb.clock, m.location)
	if err != nil {
		return workflow.Schedule{}, err
	}
	return workflow.Schedule{At: at, Technicians: m.fb.technicians}, nil
}

func (m Model) handleSubmit() tea.Cmd {
	switch m.mode {
	case modeDispatch:
		sched, err := m.schedule()
		if err != nil {
			return func() tea.Msg { return CancelMsg{} }
		}
		msg := DispatchSubmitMsg{
			Store:     m.store,
			Pending:   append([]string(nil), m.pending...),
			Scheduled: append([]string(nil), m.scheduled...),
			Schedule:  sched,
		}
		return func() tea.Msg { return msg }

	default:
		t, ok := m.selectedTransition()
		if !ok {
			return func() tea.Msg { return CancelMsg{} }
		}
		msg := TransitionSubmitMsg{
			Store:      m.store,
			From:       m.from,
			Keys:       append([]string(nil), m.fb.keys...),
			Transition: t,
		}
		if workflow.Schedules(t) {
			sched, err := m.schedule()
			if err != nil {
				return func() tea.Msg { return CancelMsg{} }
			}
			msg.Schedule = &sched
		}
		return func() tea.Msg { return msg }
	}
}

func (m Model) selectedTransition() (jira.Transition, bool) {
	return findTransition(m.transitions, m.fb.transitionID)
}

func findTransition(ts []jira.Transition, id string) (jira.Transition, bool) {
	for _, t := range ts {
		if t.ID == id {
			return t, true
		}
	}
	return jira.Transition{}, false
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s é obrigatório", fieldName)
		}
		return nil
	}
}

func validateSelection(keys []string) error {
	if len(keys) == 0 {
		return fmt.Errorf("selecione ao menos um chamado")
	}
	return nil
}

func validateDate(s string) error {
	if _, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("data inválida, use YYYY-MM-DD")
	}
	return nil
}

func validateClock(s string) error {
	if _, err := time.Parse("15:04", strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("hora inválida, use HH:MM")
	}
	return nil
}
