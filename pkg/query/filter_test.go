package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID     string
	Name   string
	Status string
	Date   string
	Sort   int
}

var rowSchema = Schema[row]{
	"name":   {Kind: Substring, Get: func(r row) string { return r.Name }},
	"status": {Kind: Exact, Get: func(r row) string { return r.Status }},
	"date":   {Kind: Range, Get: func(r row) string { return r.Date }},
}

// tenRows returns the ten-row fixture: six Valid rows and four Invalid.
func tenRows() []row {
	statuses := []string{"Valid", "Invalid", "Valid", "Valid", "Invalid", "Valid", "Invalid", "Valid", "Valid", "Invalid"}
	rows := make([]row, len(statuses))
	for i, s := range statuses {
		rows[i] = row{
			ID:     fmt.Sprintf("r%02d", i+1),
			Name:   fmt.Sprintf("Anchor %d", i+1),
			Status: s,
			Date:   fmt.Sprintf("2024-01-%02d 12:00:00", i+1),
			Sort:   10 - i,
		}
	}
	return rows
}

func ids(rows []row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestIsPlaceholder(t *testing.T) {
	for _, v := range []string{"", "All", "all", "  ", " all "} {
		assert.True(t, IsPlaceholder(v), "%q should be a placeholder", v)
	}
	for _, v := range []string{"ALL", "Valid", "0"} {
		assert.False(t, IsPlaceholder(v), "%q should not be a placeholder", v)
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  []string
	}{
		{
			name:  "empty state returns every row",
			state: State{},
			want:  ids(tenRows()),
		},
		{
			name:  "placeholders are no-ops",
			state: State{"name": "", "status": "All", "date_from": "all"},
			want:  ids(tenRows()),
		},
		{
			name:  "substring is case-insensitive",
			state: State{"name": "ANCHOR 1"},
			want:  []string{"r01", "r10"},
		},
		{
			name:  "exact status",
			state: State{"status": "Invalid"},
			want:  []string{"r02", "r05", "r07", "r10"},
		},
		{
			name:  "date range inclusive with day-precision upper bound",
			state: State{"date_from": "2024-01-03", "date_to": "2024-01-05"},
			want:  []string{"r03", "r04", "r05"},
		},
		{
			name:  "open lower bound",
			state: State{"date_to": "2024-01-02"},
			want:  []string{"r01", "r02"},
		},
		{
			name:  "filters combine with AND",
			state: State{"status": "Valid", "date_from": "2024-01-04"},
			want:  []string{"r04", "r06", "r08", "r09"},
		},
		{
			name:  "unknown keys are ignored",
			state: State{"colour": "red"},
			want:  ids(tenRows()),
		},
		{
			name:  "no match",
			state: State{"name": "nobody"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tenRows(), rowSchema.Compile(tt.state)...)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApplyIsSubsetAndIdempotent(t *testing.T) {
	states := []State{
		{},
		{"status": "Valid"},
		{"name": "1", "status": "Invalid"},
		{"date_from": "2024-01-02", "date_to": "2024-01-08"},
	}
	source := tenRows()
	inSource := make(map[string]bool)
	for _, r := range source {
		inSource[r.ID] = true
	}

	for _, st := range states {
		preds := rowSchema.Compile(st)
		once := Apply(source, preds...)
		for _, r := range once {
			assert.True(t, inSource[r.ID], "filtered row %s not in source", r.ID)
		}
		twice := Apply(once, preds...)
		assert.Equal(t, ids(once), ids(twice))
	}
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	source := tenRows()
	_ = Apply(source, Equals(func(r row) string { return r.Status }, "Valid"))
	assert.Equal(t, tenRows(), source)
}

func TestBetweenSkipsEmptyValues(t *testing.T) {
	rows := []row{{ID: "a", Date: ""}, {ID: "b", Date: "2024-02-01"}}
	got := Apply(rows, Between(func(r row) string { return r.Date }, "2024-01-01", ""))
	assert.Equal(t, []string{"b"}, ids(got))
}

func TestBetweenDateTimeSeparators(t *testing.T) {
	rows := []row{
		{ID: "early", Date: "2024-03-01T09:00:00Z"},
		{ID: "late", Date: "2024-03-01T11:00:00Z"},
		{ID: "spaced", Date: "2024-03-01 10:30:00"},
	}
	date := func(r row) string { return r.Date }

	tests := []struct {
		name     string
		from, to string
		want     []string
	}{
		{"space lower bound", "2024-03-01 10:00", "", []string{"late", "spaced"}},
		{"T lower bound", "2024-03-01T10:00", "", []string{"late", "spaced"}},
		{"space upper bound", "", "2024-03-01 10:00", []string{"early"}},
		{"day upper bound", "", "2024-03-01", []string{"early", "late", "spaced"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(rows, Between(date, tt.from, tt.to))
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSchemaKeys(t *testing.T) {
	assert.Equal(t, []string{"date_from", "date_to", "name", "status"}, rowSchema.Keys())
}

func TestSortBySort(t *testing.T) {
	rows := []row{
		{ID: "a", Sort: 2},
		{ID: "b", Sort: 1},
		{ID: "c", Sort: 2},
		{ID: "d", Sort: 0},
	}
	SortBySort(rows, func(r row) int { return r.Sort })
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"d", "b", "a", "c"}, ids(rows))
}
