package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/field-service/internal/dashboard"
	"github.com/nhle/field-service/internal/keys"
	"github.com/nhle/field-service/internal/model"
	appsync "github.com/nhle/field-service/internal/sync"
	"github.com/nhle/field-service/internal/theme"
	"github.com/nhle/field-service/internal/ticket"
	"github.com/nhle/field-service/internal/ui"
	"github.com/nhle/field-service/internal/ui/actionform"
	"github.com/nhle/field-service/internal/ui/command"
	"github.com/nhle/field-service/internal/ui/debug"
	"github.com/nhle/field-service/internal/ui/detail"
	helpview "github.com/nhle/field-service/internal/ui/help"
	"github.com/nhle/field-service/internal/ui/storelist"
	"github.com/nhle/field-service/internal/workflow"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewForm
	ViewPanel
	ViewHelp
	ViewCommand
)

// Model is the root Bubble Tea model that manages view routing, the status
// tabs and the operator's actions.
type Model struct {
	deps             *Deps
	currentView      ViewState
	previousView     ViewState
	layout           ui.Layout
	keys             *keys.KeyMap
	thresholds       dashboard.Thresholds
	tabs             []string
	activeTab        int
	summary          dashboard.Summary
	storeList        storelist.Model
	detail           detail.Model
	form             actionform.Model
	panel            debug.Model
	helpView         helpview.Model
	commandView      command.Model
	now              func() time.Time
	ready            bool
	busy             bool
	unreadCount      int
	authErrorMessage string
	flash            string
	flashErr         bool
}

// New creates the root model. deps must carry a client, a session and a
// poller; the store and the stager are optional.
func New(deps *Deps) Model {
	k := keys.DefaultKeyMap()
	cfg := deps.Config
	th := dashboard.ThresholdsFrom(cfg.Dashboard)

	tabs := cfg.Statuses.StatusNames()

	return Model{
		deps:        deps,
		currentView: ViewList,
		keys:        k,
		thresholds:  th,
		tabs:        tabs,
		summary:     dashboard.Summarize(nil, tabs, th, time.Now()),
		storeList:   storelist.New(k, th, 80, 24),
		detail:      detail.New(k, 80, 24),
		form:        actionform.New(cfg.Schedule.Location(), 80, 24),
		panel:       debug.New(k, 80, 24),
		helpView:    helpview.New(k, th, tabs, 80, 24),
		commandView: command.New(80, 24),
		now:         time.Now,
	}
}

// Init starts the poller and waits for the first refresh.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.storeList.Init(),
		m.deps.Poller.Start(),
		m.fetchUnreadCount(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.storeList.SetSize(contentWidth, contentHeight)
		m.detail.SetSize(contentWidth, contentHeight)
		m.form.SetSize(contentWidth, contentHeight)
		m.panel.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case appsync.RefreshMsg:
		return m.handleRefresh(msg)

	case appsync.AuthErrorMsg:
		m.authErrorMessage = msg.Message
		return m, m.deps.Poller.WaitForNextResult()

	case unreadCountMsg:
		m.unreadCount = msg.count
		return m, nil

	case storelist.SelectedStoreMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detail.SetStore(msg.Item, m.activeStatus())
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case detail.ActionMsg:
		return m.handleAction(msg)

	case detail.CopiedMsg:
		if msg.Err != nil {
			m.setFlash(fmt.Sprintf("não foi possível copiar: %v", msg.Err), true)
		} else {
			m.setFlash("mensagem copiada", false)
		}
		return m, nil

	case transitionsLoadedMsg:
		m.busy = false
		if msg.err != nil || len(msg.transitions) == 0 {
			m.setFlash(fmt.Sprintf("nenhuma transição disponível na loja %s", msg.store), true)
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewForm
		return m, m.form.StartTransition(msg.store, msg.from, msg.tickets, msg.transitions)

	case actionform.TransitionSubmitMsg:
		m.currentView = m.previousView
		m.busy = true
		m.setFlash(fmt.Sprintf("movendo %d chamado(s) para %s...", len(msg.Keys), msg.Transition.To.Name), false)
		return m, m.runMove(msg.From, msg.Keys, msg.Transition, msg.Schedule)

	case actionform.DispatchSubmitMsg:
		m.currentView = m.previousView
		m.busy = true
		m.setFlash(fmt.Sprintf("enviando loja %s a campo...", msg.Store), false)
		return m, m.runDispatch(msg.Store, msg.Pending, msg.Scheduled, msg.Schedule)

	case actionform.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case moveDoneMsg:
		m.busy = false
		res := msg.result
		if res.OK() {
			m.setFlash(fmt.Sprintf("%d chamado(s) movido(s) para %s · u desfaz", res.Succeeded(), msg.to), false)
		} else {
			m.setFlash(fmt.Sprintf("%d/%d movido(s) para %s · falhas: %s",
				res.Succeeded(), len(res.Outcomes), msg.to, describeFailures(res.Failures())), true)
		}
		m.deps.Poller.RefreshNow()
		return m, nil

	case undoDoneMsg:
		m.busy = false
		if errors.Is(msg.err, workflow.ErrNothingToUndo) {
			m.setFlash("nada para desfazer", true)
			return m, nil
		}
		res := msg.result
		if res.Reverted() == len(res.Entry.Keys) {
			m.setFlash(fmt.Sprintf("%d chamado(s) voltaram para %s", res.Reverted(), res.Entry.From), false)
		} else {
			var failed []string
			for _, o := range res.Outcomes {
				if !o.Success {
					failed = append(failed, o.Key)
				}
			}
			m.setFlash(fmt.Sprintf("%d/%d revertido(s) · falhas: %s",
				res.Reverted(), len(res.Entry.Keys), strings.Join(failed, ", ")), true)
		}
		m.deps.Poller.RefreshNow()
		return m, nil

	case dispatchDoneMsg:
		m.busy = false
		if msg.result.OK() {
			m.setFlash(fmt.Sprintf("loja %s enviada a campo (%d chamado(s)) · u desfaz",
				msg.store, len(msg.result.Moved)), false)
		} else {
			m.setFlash(fmt.Sprintf("envio da loja %s incompleto · falhas: %s",
				msg.store, describeFailures(msg.result.Failures())), true)
		}
		m.deps.Poller.RefreshNow()
		return m, nil

	case draftDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.setFlash(fmt.Sprintf("rascunho não salvo: %v", msg.err), true)
		} else {
			m.setFlash(fmt.Sprintf("rascunho salvo: %s", msg.draft.Subject), false)
		}
		return m, nil

	case diagnosticsLoadedMsg:
		m.panel.ShowDiagnostics(msg.last, msg.ok, msg.log)
		m.openPanel()
		return m, nil

	case notificationsLoadedMsg:
		m.panel.ShowNotifications(msg.notes)
		m.openPanel()
		return m, nil

	case debug.CloseMsg:
		m.currentView = m.previousView
		return m, nil

	case debug.MarkAllReadMsg:
		return m, m.markAllRead()

	case notificationsReadMsg:
		if msg.err != nil {
			m.setFlash(fmt.Sprintf("notificações: %v", msg.err), true)
		}
		m.currentView = m.previousView
		return m, m.fetchUnreadCount()

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(msg)

	case tea.KeyMsg:
		if next, cmd, handled := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that work outside text inputs.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		m.deps.Poller.Stop()
		return m, tea.Quit, true
	}

	// Forms, the palette and the search input own every other key.
	if m.currentView == ViewForm || m.currentView == ViewCommand ||
		(m.currentView == ViewList && m.storeList.Searching()) {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit) && m.currentView == ViewList:
		m.deps.Poller.Stop()
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Refresh) && m.currentView != ViewPanel:
		m.deps.Poller.RefreshNow()
		m.setFlash("atualizando...", false)
		return m, nil, true

	case key.Matches(msg, m.keys.Undo) && m.currentView != ViewPanel:
		return m.startUndo()

	case key.Matches(msg, m.keys.Debug) && m.currentView != ViewPanel:
		return m, m.loadDiagnostics(), true

	case key.Matches(msg, m.keys.Notifications) && m.currentView != ViewPanel:
		return m, m.loadNotifications(), true
	}

	if m.currentView != ViewList || len(m.tabs) == 0 {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.NextTab):
		return m, m.selectTab((m.activeTab + 1) % len(m.tabs)), true
	case key.Matches(msg, m.keys.PrevTab):
		return m, m.selectTab((m.activeTab + len(m.tabs) - 1) % len(m.tabs)), true
	case key.Matches(msg, m.keys.TabScheduling):
		return m, m.selectTab(0), true
	case key.Matches(msg, m.keys.TabScheduled):
		return m, m.selectTab(1), true
	case key.Matches(msg, m.keys.TabInField):
		return m, m.selectTab(2), true

	case key.Matches(msg, m.keys.Transition),
		key.Matches(msg, m.keys.Dispatch),
		key.Matches(msg, m.keys.Draft):
		item, ok := m.storeList.SelectedItem()
		if !ok {
			return m, nil, true
		}
		action := detail.ActionTransition
		switch {
		case key.Matches(msg, m.keys.Dispatch):
			action = detail.ActionDispatch
		case key.Matches(msg, m.keys.Draft):
			action = detail.ActionDraft
		}
		next, cmd := m.handleAction(detail.ActionMsg{
			Action:  action,
			Store:   item.Stats.Store,
			Status:  m.activeStatus(),
			Tickets: item.Tickets,
		})
		return next, cmd, true
	}

	return m, nil, false
}

func (m Model) startUndo() (tea.Model, tea.Cmd, bool) {
	if m.busy {
		return m, nil, true
	}
	if m.deps.Session.History().Len() == 0 {
		m.setFlash("nada para desfazer", true)
		return m, nil, true
	}
	m.busy = true
	m.setFlash("desfazendo...", false)
	return m, m.runUndo(), true
}

func (m *Model) openPanel() {
	if m.currentView != ViewPanel {
		m.previousView = m.currentView
	}
	m.currentView = ViewPanel
}

// handleRefresh applies a completed refresh. A failed refresh keeps the
// previous board.
func (m Model) handleRefresh(msg appsync.RefreshMsg) (tea.Model, tea.Cmd) {
	wait := m.deps.Poller.WaitForNextResult()

	if msg.Error != nil {
		m.setFlash(fmt.Sprintf("falha ao atualizar: %v", msg.Error), true)
		return m, wait
	}
	m.authErrorMessage = ""

	m.summary = dashboard.Summarize(msg.Open, m.tabs, m.thresholds, msg.At)
	cmd := m.showActiveTab()

	if m.currentView == ViewDetail {
		if item, ok := m.detail.Store(); ok {
			m.reloadDetail(item.Stats.Store)
		}
	}

	if n := len(msg.Added); n > 0 {
		m.setFlash(fmt.Sprintf("%d chamado(s) novo(s)", n), false)
	}
	if len(msg.Critical) > 0 {
		m.setFlash("loja(s) crítica(s): "+strings.Join(msg.Critical, ", "), true)
	}

	return m, tea.Batch(cmd, wait, m.fetchUnreadCount())
}

// reloadDetail refreshes the open detail view from the current board, or
// returns to the list when the store has no tickets left.
func (m *Model) reloadDetail(storeID string) {
	for _, it := range m.storeList.Items() {
		if it.Stats.Store == storeID {
			m.detail.SetStore(it, m.activeStatus())
			return
		}
	}
	m.currentView = ViewList
}

// handleAction routes an action on a store's tickets.
func (m Model) handleAction(msg detail.ActionMsg) (tea.Model, tea.Cmd) {
	if m.busy || len(msg.Tickets) == 0 {
		return m, nil
	}

	switch msg.Action {
	case detail.ActionTransition:
		m.busy = true
		m.setFlash("carregando transições...", false)
		return m, m.loadTransitions(msg.Store, msg.Status, msg.Tickets)

	case detail.ActionDispatch:
		pending := m.summary.Grouped(model.StatusScheduling).Keys(msg.Store)
		scheduled := m.summary.Grouped(model.StatusScheduled).Keys(msg.Store)
		if len(pending)+len(scheduled) == 0 {
			m.setFlash(fmt.Sprintf("loja %s não tem chamados para enviar a campo", msg.Store), true)
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewForm
		return m, m.form.StartDispatch(msg.Store, pending, scheduled)

	case detail.ActionDraft:
		if m.deps.Stager == nil {
			m.setFlash("rascunhos de e-mail desativados (mail.enabled)", true)
			return m, nil
		}
		m.busy = true
		m.setFlash("salvando rascunho...", false)
		return m, m.stageDraft(msg.Store, msg.Tickets)
	}

	return m, nil
}

// selectTab switches the status tab shown by the store list.
func (m *Model) selectTab(i int) tea.Cmd {
	if i < 0 || i >= len(m.tabs) {
		return nil
	}
	m.activeTab = i
	return m.showActiveTab()
}

func (m *Model) showActiveTab() tea.Cmd {
	status := m.activeStatus()
	return m.storeList.SetTickets(status, m.summary.Buckets[status])
}

func (m Model) activeStatus() string {
	if len(m.tabs) == 0 {
		return ""
	}
	return m.tabs[m.activeTab]
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.storeList, cmd = m.storeList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewForm:
		m.form, cmd = m.form.Update(msg)
	case ViewPanel:
		m.panel, cmd = m.panel.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
			m.currentView = m.previousView
			return m, nil
		}
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerTitle := fmt.Sprintf("Field Service · %s · %d abertos", m.deps.Config.Jira.Project, m.summary.Total())
	if m.unreadCount > 0 {
		headerTitle += fmt.Sprintf(" [%d novas]", m.unreadCount)
	}
	header := m.layout.RenderHeader(headerTitle, m.syncStatus())
	tabs := m.layout.RenderTabs(m.tabItems(), m.activeTab)
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.statusLine())

	return m.layout.RenderWithFrame(header, tabs, content, statusBar)
}

func (m Model) tabItems() []ui.Tab {
	out := make([]ui.Tab, len(m.tabs))
	for i, st := range m.tabs {
		out[i] = ui.Tab{Label: st, Count: m.summary.Count(st)}
	}
	return out
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.storeList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewForm:
		return m.form.View()
	case ViewPanel:
		return m.panel.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// syncStatus returns a short string describing the refresh loop.
func (m Model) syncStatus() string {
	st := m.deps.Poller.Status()
	switch st.State {
	case appsync.SyncRunning:
		return "atualizando..."
	case appsync.SyncError:
		return "⚠ sem conexão"
	}
	if st.LastSync.IsZero() {
		return "aguardando"
	}
	return "atualizado " + st.LastSync.Local().Format("15:04:05")
}

// statusLine shows the latest message, else the key hints of the view.
func (m Model) statusLine() string {
	if m.authErrorMessage != "" && m.currentView == ViewList {
		return theme.ErrorStyle.Render(m.authErrorMessage)
	}
	if m.flash != "" && (m.currentView == ViewList || m.currentView == ViewDetail) {
		if m.flashErr {
			return theme.ErrorStyle.Render(m.flash)
		}
		return theme.SuccessStyle.Render(m.flash)
	}
	return m.keyHints()
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewDetail:
		return "esc back | t transition | f dispatch | m draft | y copy | u undo | j/k scroll"
	case ViewForm:
		return "enter submit | esc cancel"
	case ViewPanel:
		return "esc close | j/k scroll"
	default:
		if filterSummary := m.storeList.FilterSummary(); filterSummary != "" {
			return filterSummary + " | :clear reset"
		}
		return "q quit | ? help | tab status | / search | o order | t transition | f dispatch | u undo"
	}
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(cmd command.CommandMsg) tea.Cmd {
	h := m.storeList.Highlight()
	arg := ""
	if len(cmd.Args) > 0 {
		arg = cmd.Args[0]
	}

	switch cmd.Name {
	case "refresh", "sync":
		m.deps.Poller.RefreshNow()
		return nil
	case "undo":
		next, c, _ := m.startUndo()
		*m = next.(Model)
		return c
	case "debug":
		return m.loadDiagnostics()
	case "notifications":
		return m.loadNotifications()
	case "order":
		h.Order = dashboard.ParseOrder(arg)
		return m.storeList.SetHighlight(h)
	case "min":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			m.setFlash("uso: min <n>", true)
			return nil
		}
		h.Min = n
		return m.storeList.SetHighlight(h)
	case "state":
		h.State = strings.ToUpper(arg)
		return m.storeList.SetHighlight(h)
	case "clear":
		return m.storeList.SetHighlight(dashboard.Highlight{Order: h.Order})
	case "quit", "q":
		m.deps.Poller.Stop()
		return tea.Quit
	case "status":
		for i, st := range m.tabs {
			if strings.EqualFold(st, strings.Join(cmd.Args, " ")) {
				return m.selectTab(i)
			}
		}
		m.setFlash(fmt.Sprintf("status desconhecido: %s", strings.Join(cmd.Args, " ")), true)
		return nil
	case "day":
		return m.showScheduleDays()
	default:
		m.setFlash(fmt.Sprintf("comando desconhecido: %s", cmd.Name), true)
		return nil
	}
}

// showScheduleDays summarizes the scheduled tickets by day in the status
// bar.
func (m *Model) showScheduleDays() tea.Cmd {
	days := ticket.GroupBySchedule(m.summary.Buckets[model.StatusScheduled])
	if len(days) == 0 {
		m.setFlash("nenhum chamado agendado", false)
		return nil
	}
	parts := make([]string, 0, len(days))
	for _, day := range ticket.ScheduleDays(days) {
		parts = append(parts, fmt.Sprintf("%s: %d", day, days[day].Len()))
	}
	m.setFlash("agendados por dia · "+strings.Join(parts, " | "), false)
	return nil
}
