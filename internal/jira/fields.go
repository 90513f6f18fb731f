package jira

import (
	"encoding/json"
	"time"
)

// Fields holds an issue's fields keyed by field id ("status",
// "customfield_14954", ...). Values are decoded lazily by the accessors, so
// a field of an unexpected shape reads as absent instead of failing the page.
type Fields map[string]json.RawMessage

// Raw returns the undecoded value of id.
func (f Fields) Raw(id string) (json.RawMessage, bool) {
	raw, ok := f[id]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

// String returns a scalar field as text. Numbers are formatted; objects and
// arrays read as absent. Empty strings read as absent.
func (f Fields) String(id string) (string, bool) {
	raw, ok := f.Raw(id)
	if !ok {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}

	return "", false
}

// OptionValue returns the "value" of a select/dropdown custom field
// ({"value": "...", "id": "..."}). A plain string is accepted as well.
func (f Fields) OptionValue(id string) (string, bool) {
	raw, ok := f.Raw(id)
	if !ok {
		return "", false
	}

	var opt struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &opt); err == nil {
		return opt.Value, opt.Value != ""
	}

	return f.String(id)
}

// Status returns the issue status; the zero Status when absent.
func (f Fields) Status() Status {
	raw, ok := f.Raw("status")
	if !ok {
		return Status{}
	}
	var st Status
	if err := json.Unmarshal(raw, &st); err != nil {
		return Status{}
	}
	return st
}

// Summary returns the summary field.
func (f Fields) Summary() string {
	s, _ := f.String("summary")
	return s
}

// Time parses a timestamp field; the zero time when absent or malformed.
func (f Fields) Time(id string) time.Time {
	s, ok := f.String(id)
	if !ok {
		return time.Time{}
	}
	return ParseTime(s)
}

// Created returns the creation timestamp.
func (f Fields) Created() time.Time { return f.Time("created") }

// Updated returns the last update timestamp.
func (f Fields) Updated() time.Time { return f.Time("updated") }

// Resolved returns the resolution timestamp.
func (f Fields) Resolved() time.Time { return f.Time("resolutiondate") }

// ParseTime parses a Jira timestamp string. Jira uses the format
// "2006-01-02T15:04:05.000-0700". Unparseable input yields the zero time.
func ParseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	layouts := []string{
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02T15:04:05-0700",
		time.RFC3339Nano,
		"2006-01-02",
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}

	return time.Time{}
}

// FormatTime renders t in Jira's timestamp layout.
func FormatTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000-0700")
}

// NewFields builds Fields from plain Go values; it is mostly useful in tests
// and when replaying cached snapshots.
func NewFields(values map[string]any) Fields {
	f := make(Fields, len(values))
	for k, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			continue
		}
		f[k] = data
	}
	return f
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
