package ticket

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestFindDuplicates(t *testing.T) {
	tests := []struct {
		name    string
		tickets []Ticket
		want    PairSet
	}{
		{
			name: "one shared pair",
			tickets: []Ticket{
				{Key: "FSA-1", POS: "1", Asset: "A"},
				{Key: "FSA-2", POS: "1", Asset: "A"},
				{Key: "FSA-3", POS: "2", Asset: "B"},
			},
			want: PairSet{{POS: "1", Asset: "A"}: {}},
		},
		{
			name: "same pos different asset",
			tickets: []Ticket{
				{Key: "FSA-1", POS: "1", Asset: "A"},
				{Key: "FSA-2", POS: "1", Asset: "B"},
			},
			want: PairSet{},
		},
		{
			name: "missing identifiers never match",
			tickets: []Ticket{
				{Key: "FSA-1", POS: Placeholder, Asset: Placeholder},
				{Key: "FSA-2", POS: Placeholder, Asset: Placeholder},
				{Key: "FSA-3", POS: "", Asset: "A"},
				{Key: "FSA-4", POS: "", Asset: "A"},
				{Key: "FSA-5", POS: "3", Asset: Placeholder},
				{Key: "FSA-6", POS: "3", Asset: Placeholder},
			},
			want: PairSet{},
		},
		{
			name: "three of a kind",
			tickets: []Ticket{
				{Key: "FSA-1", POS: "9", Asset: "PINPAD"},
				{Key: "FSA-2", POS: "9", Asset: "PINPAD"},
				{Key: "FSA-3", POS: "9", Asset: "PINPAD"},
			},
			want: PairSet{{POS: "9", Asset: "PINPAD"}: {}},
		},
		{name: "empty", want: PairSet{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, FindDuplicates(tt.tickets)); diff != "" {
				t.Errorf("FindDuplicates() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDuplicateKeys(t *testing.T) {
	tickets := []Ticket{
		{Key: "FSA-1", POS: "1", Asset: "A"},
		{Key: "FSA-2", POS: "2", Asset: "B"},
		{Key: "FSA-3", POS: "1", Asset: "A"},
		{Key: "FSA-4", POS: Placeholder, Asset: Placeholder},
		{Key: "FSA-5", POS: Placeholder, Asset: Placeholder},
	}

	assert.Equal(t, []string{"FSA-1", "FSA-3"}, DuplicateKeys(tickets))
	assert.Nil(t, DuplicateKeys(tickets[:2]))
}
