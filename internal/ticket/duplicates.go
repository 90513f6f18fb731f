package ticket

// Pair identifies a piece of equipment: the point of sale and the asset on it.
type Pair struct {
	POS   string
	Asset string
}

// PairSet is a set of Pairs.
type PairSet map[Pair]struct{}

// Has reports whether p is in the set.
func (s PairSet) Has(p Pair) bool {
	_, ok := s[p]
	return ok
}

// pair returns the ticket's identifier pair, and false when either half is
// missing.
func (t Ticket) pair() (Pair, bool) {
	if missing(t.POS) || missing(t.Asset) {
		return Pair{}, false
	}
	return Pair{POS: t.POS, Asset: t.Asset}, true
}

func missing(s string) bool { return s == "" || s == Placeholder }

// FindDuplicates returns the (pos, asset) pairs shared by two or more
// tickets. Tickets missing either identifier never match anything.
func FindDuplicates(tickets []Ticket) PairSet {
	seen := make(map[Pair]bool, len(tickets))
	dups := make(PairSet)
	for _, t := range tickets {
		p, ok := t.pair()
		if !ok {
			continue
		}
		if seen[p] {
			dups[p] = struct{}{}
			continue
		}
		seen[p] = true
	}
	return dups
}

// DuplicateKeys returns the keys of every ticket involved in a duplicate
// pair, in input order.
func DuplicateKeys(tickets []Ticket) []string {
	dups := FindDuplicates(tickets)
	if len(dups) == 0 {
		return nil
	}

	var keys []string
	for _, t := range tickets {
		if p, ok := t.pair(); ok && dups.Has(p) {
			keys = append(keys, t.Key)
		}
	}
	return keys
}
