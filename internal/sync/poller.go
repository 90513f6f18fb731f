// Package sync refreshes the monitored tickets in the background and feeds
// the results to the TUI as Bubble Tea messages.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	gosync "sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/field-service/internal/dashboard"
	"github.com/nhle/field-service/internal/jira"
	"github.com/nhle/field-service/internal/jql"
	"github.com/nhle/field-service/internal/model"
	"github.com/nhle/field-service/internal/store"
	"github.com/nhle/field-service/internal/ticket"
)

// SyncState represents the current state of the refresh loop.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncRunning:
		return "running"
	case SyncError:
		return "error"
	default:
		return "idle"
	}
}

// SyncStatus holds the state of the refresh loop.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// RefreshMsg is a tea.Msg sent when a refresh completes.
type RefreshMsg struct {
	// Open holds the tickets in monitored statuses.
	Open []ticket.Ticket

	// Resolved holds the tickets resolved inside the configured window.
	Resolved []ticket.Ticket

	// Added holds tickets that entered the monitored set since the last
	// refresh. Empty on the first refresh.
	Added []ticket.Ticket

	// Critical lists stores that became critical in this refresh.
	Critical []string

	// Debug describes the failing request when Err is set.
	Debug jira.DebugInfo

	Error error
	At    time.Time
}

// AuthErrorMsg is a tea.Msg sent when Jira rejects the credentials.
type AuthErrorMsg struct {
	Message string
}

// Fetcher runs one paginated search. *jira.Client satisfies it.
type Fetcher interface {
	FetchAll(ctx context.Context, q jira.Query) ([]jira.Issue, jira.DebugInfo)
}

// Config selects what the poller fetches.
type Config struct {
	Project   string
	PageSize  int
	Fields    model.FieldSet
	Statuses  model.StatusConfig
	Dashboard model.DashboardConfig
	Location  *time.Location
}

// ConfigFrom builds a poller Config from the application config.
func ConfigFrom(cfg model.AppConfig) Config {
	return Config{
		Project:   cfg.Jira.Project,
		PageSize:  cfg.Jira.PageSize,
		Fields:    cfg.Fields,
		Statuses:  cfg.Statuses,
		Dashboard: cfg.Dashboard,
		Location:  cfg.Schedule.Location(),
	}
}

// fetchTimeout is the maximum time allowed for one refresh.
const fetchTimeout = 2 * time.Minute

// Poller periodically refreshes the monitored tickets.
type Poller struct {
	fetcher Fetcher
	store   store.Store
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time

	status    SyncStatus
	critical  map[string]bool
	baseline  bool
	resultCh  chan RefreshMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// Option customizes a Poller.
type Option func(*Poller)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// New creates a Poller. s may be nil, in which case nothing is cached and
// no notifications are recorded.
func New(f Fetcher, s store.Store, cfg Config, opts ...Option) *Poller {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	p := &Poller{
		fetcher:   f,
		store:     s,
		cfg:       cfg,
		logger:    slog.Default(),
		now:       time.Now,
		critical:  make(map[string]bool),
		resultCh:  make(chan RefreshMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start returns a tea.Cmd that starts the polling goroutine and waits for
// the first result.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()

	return p.waitForResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// RefreshNow triggers an immediate refresh.
func (p *Poller) RefreshNow() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A refresh is already pending.
	}
}

// Status returns the current state of the refresh loop.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// interval returns the regular delay between refreshes.
func (p *Poller) interval() time.Duration {
	d := time.Duration(p.cfg.Dashboard.RefreshSec) * time.Second
	if d <= 0 {
		d = 90 * time.Second
	}
	return d
}

// loop refreshes immediately, then on every tick or trigger. After a failed
// refresh the next one is scheduled with exponential backoff instead of the
// regular interval.
func (p *Poller) loop() {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 5 * time.Second
	bo.MaxInterval = p.interval()
	bo.MaxElapsedTime = 0

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-timer.C:
		case <-p.triggerCh:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		msg := p.Refresh(ctx)
		cancel()
		p.sendResult(msg)

		next := p.interval()
		if msg.Error != nil {
			next = bo.NextBackOff()
			p.logger.Warn("refresh failed, backing off", "retry_in", next, "error", msg.Error)
		} else {
			bo.Reset()
		}
		timer.Reset(next)
	}
}

// Refresh fetches open and resolved tickets concurrently, updates the cache
// and records notifications. A failed query fails the whole refresh and
// leaves the cache untouched.
func (p *Poller) Refresh(ctx context.Context) RefreshMsg {
	p.setStatus(SyncRunning, nil)

	now := p.now()
	msg := RefreshMsg{At: now}
	b := jql.New(p.cfg.Project)
	fields := p.cfg.Fields.SearchFields()

	var (
		openIssues     []jira.Issue
		resolvedIssues []jira.Issue
		failMu         gosync.Mutex
		firstFailure   *jira.DebugInfo
	)

	// The group cancels the other query after the first failure, so only
	// the first failing call carries the real status.
	fail := func(what string, d jira.DebugInfo) error {
		failMu.Lock()
		if firstFailure == nil {
			firstFailure = &d
		}
		failMu.Unlock()
		return fmt.Errorf("fetching %s tickets: %s", what, describe(d))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var dbg jira.DebugInfo
		openIssues, dbg = p.fetcher.FetchAll(gctx, jira.Query{
			JQL:      b.InStatuses(p.cfg.Statuses.StatusIDs()...),
			Fields:   fields,
			PageSize: p.cfg.PageSize,
		})
		if dbg.Failed() {
			return fail("open", dbg)
		}
		return nil
	})
	g.Go(func() error {
		var dbg jira.DebugInfo
		resolvedIssues, dbg = p.fetcher.FetchAll(gctx, jira.Query{
			JQL:      b.ResolvedWindow(p.cfg.Statuses.Resolved, now, p.cfg.Dashboard.ResolvedWindowDays),
			Fields:   fields,
			PageSize: p.cfg.PageSize,
		})
		if dbg.Failed() {
			return fail("resolved", dbg)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		msg.Error = err
		if firstFailure != nil {
			msg.Debug = *firstFailure
		}
		p.setStatus(SyncError, err)
		return msg
	}

	msg.Open = ticket.ProjectAll(openIssues, p.cfg.Fields)
	msg.Resolved = ticket.ProjectAll(resolvedIssues, p.cfg.Fields)

	if p.store != nil {
		res, err := p.store.SyncSnapshots(ctx, msg.Open, now)
		if err != nil {
			msg.Error = fmt.Errorf("caching tickets: %w", err)
			p.setStatus(SyncError, msg.Error)
			return msg
		}
		if !res.Initial {
			msg.Added = res.Added
		}
	}

	msg.Critical = p.newlyCritical(msg.Open, now)
	p.notify(ctx, msg)

	p.logger.Info("refresh",
		"open", len(msg.Open), "resolved", len(msg.Resolved),
		"added", len(msg.Added), "critical", len(msg.Critical))
	p.setStatus(SyncIdle, nil)
	return msg
}

// newlyCritical returns the stores that are critical now and were not on
// the previous refresh. The first refresh only establishes the baseline.
func (p *Poller) newlyCritical(open []ticket.Ticket, now time.Time) []string {
	th := dashboard.ThresholdsFrom(p.cfg.Dashboard)
	stats := dashboard.StoreStatistics(open, th, now)

	current := make(map[string]bool)
	var added []string
	for _, st := range dashboard.TopStores(stats, len(stats)) {
		if !st.Critical || st.Store == ticket.UnknownStore {
			continue
		}
		current[st.Store] = true
		if p.baseline && !p.critical[st.Store] {
			added = append(added, st.Store)
		}
	}

	p.critical = current
	p.baseline = true
	return added
}

func (p *Poller) notify(ctx context.Context, msg RefreshMsg) {
	if p.store == nil {
		return
	}
	for _, t := range msg.Added {
		n := model.Notification{
			IssueKey:  t.Key,
			Store:     t.Store,
			Kind:      model.NotificationNewTicket,
			Message:   fmt.Sprintf("Novo chamado %s na loja %s: %s", t.Key, t.Store, t.Summary),
			CreatedAt: msg.At,
		}
		if err := p.store.CreateNotification(ctx, n); err != nil {
			p.logger.Warn("creating notification", "key", t.Key, "error", err)
		}
	}
	for _, s := range msg.Critical {
		n := model.Notification{
			Store:     s,
			Kind:      model.NotificationCriticalStore,
			Message:   fmt.Sprintf("Loja %s ficou critica", s),
			CreatedAt: msg.At,
		}
		if err := p.store.CreateNotification(ctx, n); err != nil {
			p.logger.Warn("creating notification", "store", s, "error", err)
		}
	}
}

func describe(d jira.DebugInfo) string {
	if d.Error != nil {
		return fmt.Sprintf("status %d: %v", d.Status, d.Error)
	}
	return fmt.Sprintf("status %d", d.Status)
}

// setStatus updates the loop state.
func (p *Poller) setStatus(state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == SyncIdle {
		p.status.LastSync = p.now()
	}
}

// sendResult sends a RefreshMsg on the result channel without blocking.
func (p *Poller) sendResult(msg RefreshMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case result := <-p.resultCh:
			return resultMsg(result)
		case <-p.stopCh:
			return nil
		}
	}
}

// resultMsg turns a rejected-credentials refresh into an AuthErrorMsg.
func resultMsg(result RefreshMsg) tea.Msg {
	if result.Debug.Status == http.StatusUnauthorized {
		return AuthErrorMsg{Message: "Jira rejected the credentials. Run `fsdash login`."}
	}
	return result
}

// WaitForNextResult returns a tea.Cmd that waits for the next refresh.
// Call it after processing a RefreshMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
