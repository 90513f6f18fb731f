package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/nhle/field-service/internal/jira"
	"github.com/nhle/field-service/internal/model"
)

// Schedule is the visit booked when a ticket is scheduled.
type Schedule struct {
	At time.Time

	// Technicians lists who attends, one per line
	// (name-document-phone).
	Technicians string
}

// ParseSchedule reads a date ("2006-01-02") and a clock ("15:04") as wall
// time in loc.
func ParseSchedule(date, clock string, loc *time.Location) (time.Time, error) {
	at, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(date)+" "+strings.TrimSpace(clock), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing schedule %q %q: %w", date, clock, err)
	}
	return at, nil
}

// Fields renders the schedule as transition fields. The timestamp is
// written in loc; technicians are sent as a rich-text document and omitted
// when blank.
func (s Schedule) Fields(fs model.FieldSet, loc *time.Location) map[string]any {
	fields := make(map[string]any, 2)
	if !s.At.IsZero() && fs.ScheduledAt != "" {
		fields[fs.ScheduledAt] = jira.FormatTime(s.At.In(loc))
	}
	if tec := strings.TrimSpace(s.Technicians); tec != "" && fs.Technicians != "" {
		fields[fs.Technicians] = jira.PlainTextToADF(tec)
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
