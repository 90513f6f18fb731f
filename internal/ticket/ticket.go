// Package ticket projects raw issues into the fixed record the dashboard
// works with, and groups those records by store.
package ticket

import (
	"time"

	"github.com/nhle/field-service/internal/jira"
	"github.com/nhle/field-service/internal/model"
)

const (
	// Placeholder stands in for any missing attribute.
	Placeholder = "--"

	// UnknownStore is the group of issues without a store id.
	UnknownStore = "Loja Desconhecida"
)

// Ticket is the projection of one issue. Every attribute except
// ScheduledAt and the timestamps is either a value or Placeholder.
type Ticket struct {
	Key        string `json:"key"`
	Store      string `json:"store"`
	POS        string `json:"pdv"`
	Asset      string `json:"ativo"`
	Problem    string `json:"problema"`
	Address    string `json:"endereco"`
	State      string `json:"estado"`
	PostalCode string `json:"cep"`
	City       string `json:"cidade"`

	// ScheduledAt is the raw scheduled timestamp; empty when unset.
	ScheduledAt string `json:"data_agendada,omitempty"`

	Summary string    `json:"summary"`
	Status  string    `json:"status"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`

	// Resolved is zero while the ticket is open.
	Resolved time.Time `json:"resolved"`
}

// Project builds the Ticket of issue using the tenant field ids in fs.
// It never fails: absent or malformed fields become Placeholder.
func Project(issue jira.Issue, fs model.FieldSet) Ticket {
	f := issue.Fields

	t := Ticket{
		Key:        issue.Key,
		Store:      or(option(f, fs.Store), UnknownStore),
		POS:        or(text(f, fs.POS), Placeholder),
		Asset:      or(option(f, fs.Asset), Placeholder),
		Problem:    or(text(f, fs.Problem), Placeholder),
		Address:    or(text(f, fs.Address), Placeholder),
		State:      or(option(f, fs.State), Placeholder),
		PostalCode: or(text(f, fs.PostalCode), Placeholder),
		City:       or(text(f, fs.City), Placeholder),
		Summary:    f.Summary(),
		Status:     f.Status().Name,
		Created:    f.Created(),
		Updated:    f.Updated(),
		Resolved:   f.Resolved(),
	}
	if fs.ScheduledAt != "" {
		t.ScheduledAt, _ = f.String(fs.ScheduledAt)
	}
	return t
}

// ProjectAll projects every issue, preserving order.
func ProjectAll(issues []jira.Issue, fs model.FieldSet) []Ticket {
	out := make([]Ticket, 0, len(issues))
	for _, is := range issues {
		out = append(out, Project(is, fs))
	}
	return out
}

// HasStore reports whether the ticket carries a store id.
func (t Ticket) HasStore() bool { return t.Store != UnknownStore }

func text(f jira.Fields, id string) string {
	if id == "" {
		return ""
	}
	s, _ := f.Text(id)
	return s
}

func option(f jira.Fields, id string) string {
	if id == "" {
		return ""
	}
	s, _ := f.OptionValue(id)
	return s
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
