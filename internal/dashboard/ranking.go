package dashboard

import (
	"sort"
	"strings"
)

// Order selects how highlighted stores are sorted.
type Order int

const (
	// ByCount sorts by ticket count descending, then store.
	ByCount Order = iota
	// ByStore sorts by store id, then count descending.
	ByStore
	// ByCity sorts by city, then store.
	ByCity
)

// ParseOrder reads "count", "store" or "city"; anything else is ByCount.
func ParseOrder(s string) Order {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "store":
		return ByStore
	case "city":
		return ByCity
	default:
		return ByCount
	}
}

func (o Order) String() string {
	switch o {
	case ByStore:
		return "store"
	case ByCity:
		return "city"
	default:
		return "count"
	}
}

// TopStores returns the n stores with the most open tickets, ties broken by
// store id.
func TopStores(stats map[string]StoreStats, n int) []StoreStats {
	out := values(stats)
	sortStats(out, ByCount)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Highlight filters the store list.
type Highlight struct {
	// Min is the minimum open-ticket count.
	Min int

	// State keeps only stores in this state (case-insensitive) when set.
	State string

	// Query keeps only stores whose id or city contains it.
	Query string

	Order Order
}

// Highlights returns the stores accepted by h, sorted by h.Order.
func Highlights(stats map[string]StoreStats, h Highlight) []StoreStats {
	state := strings.ToUpper(strings.TrimSpace(h.State))
	q := strings.ToLower(strings.TrimSpace(h.Query))

	var out []StoreStats
	for _, st := range stats {
		if st.Count < h.Min {
			continue
		}
		if state != "" && strings.ToUpper(st.State) != state {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(st.Store), q) &&
			!strings.Contains(strings.ToLower(st.City), q) {
			continue
		}
		out = append(out, st)
	}
	sortStats(out, h.Order)
	return out
}

func values(stats map[string]StoreStats) []StoreStats {
	out := make([]StoreStats, 0, len(stats))
	for _, st := range stats {
		out = append(out, st)
	}
	return out
}

func sortStats(s []StoreStats, o Order) {
	sort.Slice(s, func(i, j int) bool {
		a, b := s[i], s[j]
		switch o {
		case ByStore:
			if a.Store != b.Store {
				return a.Store < b.Store
			}
			return a.Count > b.Count
		case ByCity:
			if a.City != b.City {
				return a.City < b.City
			}
			return a.Store < b.Store
		default:
			if a.Count != b.Count {
				return a.Count > b.Count
			}
			return a.Store < b.Store
		}
	})
}
