package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/field-service/internal/jira"
	"github.com/nhle/field-service/internal/model"
	"github.com/nhle/field-service/internal/notify"
	"github.com/nhle/field-service/internal/store"
	"github.com/nhle/field-service/internal/ticket"
	"github.com/nhle/field-service/internal/workflow"
)

// transitionsLoadedMsg carries the transitions offered to a store's first
// ticket.
type transitionsLoadedMsg struct {
	store       string
	from        string
	tickets     []ticket.Ticket
	transitions []jira.Transition
	err         error
}

// moveDoneMsg is sent after a batch transition.
type moveDoneMsg struct {
	to     string
	result workflow.BatchResult
}

// undoDoneMsg is sent after an undo.
type undoDoneMsg struct {
	result workflow.UndoResult
	err    error
}

// dispatchDoneMsg is sent after a dispatch to the field.
type dispatchDoneMsg struct {
	store  string
	result workflow.DispatchResult
}

// draftDoneMsg is sent after a dispatch draft was staged.
type draftDoneMsg struct {
	draft notify.Draft
	err   error
}

// diagnosticsLoadedMsg carries the last call and the transition log.
type diagnosticsLoadedMsg struct {
	last jira.DebugInfo
	ok   bool
	log  []store.TransitionRecord
}

// notificationsLoadedMsg carries the unread notifications.
type notificationsLoadedMsg struct {
	notes []model.Notification
}

// notificationsReadMsg is sent after every notification was marked read.
type notificationsReadMsg struct{ err error }

// unreadCountMsg carries the number of unread notifications to the UI.
type unreadCountMsg struct {
	count int
}

// loadTransitions fetches the transitions the first ticket offers.
func (m Model) loadTransitions(storeID, from string, tickets []ticket.Ticket) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		msg := transitionsLoadedMsg{store: storeID, from: from, tickets: tickets}
		if len(tickets) == 0 {
			return msg
		}
		msg.transitions, msg.err = client.Transitions(context.Background(), tickets[0].Key)
		return msg
	}
}

// runMove moves keys to the target status of t. Each key gets its own
// transition id toward that status. sched is sent with every transition
// when set.
func (m Model) runMove(from string, keys []string, t jira.Transition, sched *workflow.Schedule) tea.Cmd {
	session := m.deps.Session
	return func() tea.Msg {
		res := session.MoveBatch(context.Background(), workflow.BatchRequest{
			Keys:     keys,
			Select:   jira.ToStatus(t.To.Name),
			From:     from,
			To:       t.To.Name,
			Schedule: sched,
		})
		return moveDoneMsg{to: t.To.Name, result: res}
	}
}

// runUndo reverts the most recent batch.
func (m Model) runUndo() tea.Cmd {
	session := m.deps.Session
	return func() tea.Msg {
		res, err := session.Undo(context.Background())
		return undoDoneMsg{result: res, err: err}
	}
}

// runDispatch schedules pending keys and sends every key to the field.
func (m Model) runDispatch(storeID string, pending, scheduled []string, sched workflow.Schedule) tea.Cmd {
	session := m.deps.Session
	return func() tea.Msg {
		res := session.DispatchToField(context.Background(), pending, scheduled, sched)
		return dispatchDoneMsg{store: storeID, result: res}
	}
}

// stageDraft writes the dispatch message of a store to the drafts mailbox.
func (m Model) stageDraft(storeID string, tickets []ticket.Ticket) tea.Cmd {
	stager := m.deps.Stager
	return func() tea.Msg {
		d := notify.DispatchDraft("", nil, storeID, tickets, m.now())
		staged, err := stager.Stage(context.Background(), d)
		return draftDoneMsg{draft: staged, err: err}
	}
}

// loadDiagnostics reads the last call and the recent transition log.
func (m Model) loadDiagnostics() tea.Cmd {
	client := m.deps.Client
	s := m.deps.Store
	return func() tea.Msg {
		msg := diagnosticsLoadedMsg{}
		msg.last, msg.ok = client.Recorder().Last()
		if s != nil {
			msg.log, _ = s.GetTransitionLog(context.Background(), "", 20)
		}
		return msg
	}
}

// loadNotifications reads the unread notifications.
func (m Model) loadNotifications() tea.Cmd {
	s := m.deps.Store
	return func() tea.Msg {
		if s == nil {
			return notificationsLoadedMsg{}
		}
		notes, _ := s.GetUnreadNotifications(context.Background())
		return notificationsLoadedMsg{notes: notes}
	}
}

// markAllRead marks every notification read.
func (m Model) markAllRead() tea.Cmd {
	s := m.deps.Store
	return func() tea.Msg {
		if s == nil {
			return notificationsReadMsg{}
		}
		return notificationsReadMsg{err: s.MarkAllNotificationsRead(context.Background())}
	}
}

// fetchUnreadCount returns a tea.Cmd that queries the store for the
// number of unread notifications.
func (m Model) fetchUnreadCount() tea.Cmd {
	s := m.deps.Store
	return func() tea.Msg {
		if s == nil {
			return unreadCountMsg{count: 0}
		}
		notifications, err := s.GetUnreadNotifications(context.Background())
		if err != nil {
			return unreadCountMsg{count: 0}
		}
		return unreadCountMsg{count: len(notifications)}
	}
}

// describeFailures joins the first failures of a batch for the status bar.
func describeFailures(outcomes []jira.Outcome) string {
	const shown = 3
	parts := make([]string, 0, shown)
	for _, o := range outcomes {
		if len(parts) == shown {
			parts = append(parts, "...")
			break
		}
		var reason string
		switch {
		case errors.Is(o.Err, workflow.ErrNoTransition):
			reason = "sem transição"
		case errors.Is(o.Err, workflow.ErrNoInverse):
			reason = "sem retorno"
		case o.StatusCode == jira.StatusTransportFailure:
			reason = "sem conexão"
		case o.StatusCode != 0:
			reason = strconv.Itoa(o.StatusCode)
		default:
			reason = "erro"
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", o.Key, reason))
	}
	return strings.Join(parts, ", ")
}
