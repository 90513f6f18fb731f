package dashboard

import (
	"time"

	"github.com/nhle/field-service/internal/ticket"
)

// TrendPoint counts the tickets opened and resolved on one day.
type TrendPoint struct {
	Day      time.Time
	New      int
	Resolved int
}

// Trend counts tickets created (from open) and resolved (from resolved) per
// calendar day in loc, over the days ending at now. Every day of the window
// is present, oldest first.
func Trend(open, resolved []ticket.Ticket, now time.Time, days int, loc *time.Location) []TrendPoint {
	if days < 0 {
		days = 0
	}
	if loc == nil {
		loc = time.UTC
	}

	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	first := today.AddDate(0, 0, -days)
	window := time.Duration(days) * 24 * time.Hour

	points := make([]TrendPoint, 0, days+1)
	index := make(map[string]int, days+1)
	for d := first; !d.After(today); d = d.AddDate(0, 0, 1) {
		index[d.Format(time.DateOnly)] = len(points)
		points = append(points, TrendPoint{Day: d})
	}

	bump := func(ts time.Time, inc func(*TrendPoint)) {
		if ts.IsZero() || now.Sub(ts) > window || ts.After(now) {
			return
		}
		if i, ok := index[ts.In(loc).Format(time.DateOnly)]; ok {
			inc(&points[i])
		}
	}

	for _, t := range open {
		bump(t.Created, func(p *TrendPoint) { p.New++ })
	}
	for _, t := range resolved {
		bump(t.Resolved, func(p *TrendPoint) { p.Resolved++ })
	}
	return points
}
