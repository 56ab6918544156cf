package console

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/backstage/internal/metrics"
	"github.com/mesh-intelligence/backstage/pkg/types"
)

// seededTable returns the named table of an attached, seeded memory console.
func seededTable(t *testing.T, name string) types.Table {
	t.Helper()
	c := New(WithMetrics(metrics.New()))
	require.NoError(t, c.Attach(types.Config{Backend: types.BackendMemory, Seed: true}))
	t.Cleanup(func() { c.Detach() })
	table, err := c.GetTable(name)
	require.NoError(t, err)
	return table
}

func allRows(t *testing.T, table types.Table, filters map[string]string) []any {
	t.Helper()
	page, err := table.Fetch(context.Background(), types.Query{Filters: filters, PerPage: 1000})
	require.NoError(t, err)
	return page.Data
}

func rowIDs(rows []any) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.(types.Record).Meta().ID
	}
	return ids
}

func TestFetchFilters(t *testing.T) {
	users := seededTable(t, types.TableUsers)

	tests := []struct {
		name    string
		filters map[string]string
		want    int
	}{
		{"no filters", nil, 10},
		{"placeholder status", map[string]string{"status": "All"}, 10},
		{"status", map[string]string{"status": types.StatusValid}, 6},
		{"nickname substring", map[string]string{"nickname": "A"}, 6},
		{"nickname and status", map[string]string{"nickname": "a", "status": types.StatusValid}, 3},
		{"anchors", map[string]string{"is_anchor": "true"}, 4},
		{"created range", map[string]string{"created_from": "2024-03-03", "created_to": "2024-03-05"}, 3},
		{"created from a time of day", map[string]string{"created_from": "2024-03-03 10:00", "created_to": "2024-03-05"}, 2},
		{"unknown and reserved keys ignored", map[string]string{"colour": "red", "page": "3", "where": "x"}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, allRows(t, users, tt.filters), tt.want)
		})
	}
}

func TestFetchIsSubsetAndIdempotent(t *testing.T) {
	users := seededTable(t, types.TableUsers)
	all := rowIDs(allRows(t, users, nil))
	filters := map[string]string{"status": types.StatusValid, "nickname": "a"}

	first := rowIDs(allRows(t, users, filters))
	second := rowIDs(allRows(t, users, filters))
	assert.Equal(t, first, second)
	assert.Subset(t, all, first)
}

func TestFetchPaginatesFilteredRows(t *testing.T) {
	ctx := context.Background()
	users := seededTable(t, types.TableUsers)
	q := types.Query{Filters: map[string]string{"status": types.StatusValid}, PerPage: 5}

	p0, err := users.Fetch(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 6, p0.Total)
	assert.Len(t, p0.Data, 5)

	q.Page = 1
	p1, err := users.Fetch(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 6, p1.Total)
	assert.Len(t, p1.Data, 1)
	assert.NotContains(t, rowIDs(p0.Data), rowIDs(p1.Data)[0])

	q.Page = 5
	past, err := users.Fetch(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, past.Data)
	assert.Equal(t, 6, past.Total)
}

func TestFetchDefaultsPerPage(t *testing.T) {
	page, err := seededTable(t, types.TableUsers).Fetch(context.Background(), types.Query{Page: -2})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, 10, page.PerPage)
}

func TestFetchSortedTable(t *testing.T) {
	gifts := seededTable(t, types.TableGifts)
	var names []string
	for _, r := range allRows(t, gifts, nil) {
		names = append(names, r.(*types.Gift).Name)
	}
	assert.Equal(t, []string{"Rocket", "Heart", "Rose", "Star", "Castle", "Crown"}, names)
}

func TestFetchWhere(t *testing.T) {
	ctx := context.Background()
	gifts := seededTable(t, types.TableGifts)

	page, err := gifts.Fetch(ctx, types.Query{Where: `price >= 500 && effect == "fullscreen"`})
	require.NoError(t, err)
	var names []string
	for _, r := range page.Data {
		names = append(names, r.(*types.Gift).Name)
	}
	assert.Equal(t, []string{"Rocket", "Castle", "Crown"}, names)

	_, err = gifts.Fetch(ctx, types.Query{Where: "price >="})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	users := seededTable(t, types.TableUsers)

	got, err := users.Create(ctx, map[string]any{
		"id":       "client-id",
		"number":   99,
		"nickname": "Xia",
		"level":    "3",
		"balance":  12.5,
		"phone":    13900000000,
	})
	require.NoError(t, err)

	u := got.(*types.User)
	_, perr := uuid.Parse(u.ID)
	assert.NoError(t, perr)
	assert.NotEqual(t, "client-id", u.ID)
	assert.Equal(t, 11, u.Number)
	assert.Equal(t, types.StatusValid, u.Status)
	assert.Equal(t, 3, u.Level)
	assert.Equal(t, "13900000000", u.Phone)
	assert.False(t, u.CreatedAt.IsZero())
	assert.Nil(t, u.RecycledAt)

	stored, err := users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Xia", stored.(*types.User).Nickname)
}

func TestCreateRejects(t *testing.T) {
	users := seededTable(t, types.TableUsers)

	tests := []struct {
		name    string
		payload map[string]any
		wantErr error
	}{
		{"missing required", map[string]any{"phone": "1"}, types.ErrInvalidData},
		{"unknown key", map[string]any{"nickname": "a", "colour": "red"}, types.ErrInvalidData},
		{"bad number", map[string]any{"nickname": "a", "level": "high"}, types.ErrInvalidData},
		{"negative balance", map[string]any{"nickname": "a", "balance": -1}, types.ErrInvalidData},
		{"bad status", map[string]any{"nickname": "a", "status": "Paid"}, types.ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := users.Create(context.Background(), tt.payload)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	n, err := users.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, n, "rejected creates store nothing")
}

func TestCreateThenDeleteRestoresLength(t *testing.T) {
	ctx := context.Background()
	banks := seededTable(t, types.TableBanks)
	before := rowIDs(allRows(t, banks, nil))

	row, err := banks.Create(ctx, map[string]any{"name": "Pocket Bank", "code": "PKT"})
	require.NoError(t, err)
	assert.Len(t, allRows(t, banks, nil), len(before)+1)

	require.NoError(t, banks.Delete(ctx, row.(*types.Bank).ID))
	assert.Equal(t, before, rowIDs(allRows(t, banks, nil)))
}

func TestUpdateChangesOnlySuppliedKeys(t *testing.T) {
	ctx := context.Background()
	users := seededTable(t, types.TableUsers)
	before := allRows(t, users, nil)
	target := before[2].(*types.User)

	err := users.Update(ctx, target.ID, map[string]any{
		"nickname": "Mika II",
		"id":       "other",
		"number":   500,
	})
	require.NoError(t, err)

	after := allRows(t, users, nil)
	require.Len(t, after, len(before))
	assert.Equal(t, rowIDs(before), rowIDs(after))

	got := after[2].(*types.User)
	assert.Equal(t, "Mika II", got.Nickname)
	assert.Equal(t, target.ID, got.ID)
	assert.Equal(t, target.Number, got.Number)
	assert.Equal(t, target.Phone, got.Phone)
	assert.Equal(t, target.Balance, got.Balance)
	assert.Equal(t, target.Status, got.Status)
	assert.True(t, target.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, got.UpdatedAt.After(target.UpdatedAt))
	for i := range before {
		if i != 2 {
			assert.Equal(t, before[i], after[i])
		}
	}
}

func TestUpdateErrors(t *testing.T) {
	ctx := context.Background()
	users := seededTable(t, types.TableUsers)
	id := rowIDs(allRows(t, users, nil))[0]

	assert.ErrorIs(t, users.Update(ctx, "missing", map[string]any{"nickname": "x"}), types.ErrNotFound)
	assert.ErrorIs(t, users.Update(ctx, "", nil), types.ErrInvalidID)
	assert.ErrorIs(t, users.Update(ctx, id, map[string]any{"nickname": ""}), types.ErrInvalidData)
	assert.ErrorIs(t, users.Update(ctx, id, map[string]any{"status": "Live"}), types.ErrInvalidStatus)

	got, err := users.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Luna", got.(*types.User).Nickname, "failed updates store nothing")
}

func TestDeleteMissing(t *testing.T) {
	users := seededTable(t, types.TableUsers)
	assert.ErrorIs(t, users.Delete(context.Background(), "missing"), types.ErrNotFound)
}

func TestBatchDelete(t *testing.T) {
	ctx := context.Background()
	users := seededTable(t, types.TableUsers)
	ids := rowIDs(allRows(t, users, nil))

	require.NoError(t, users.BatchDelete(ctx, []string{ids[0], ids[3], ids[0], "missing", ""}))
	left := rowIDs(allRows(t, users, nil))
	assert.Len(t, left, 8)
	assert.NotContains(t, left, ids[0])
	assert.NotContains(t, left, ids[3])

	require.NoError(t, users.BatchDelete(ctx, nil))
	assert.Len(t, allRows(t, users, nil), 8)
}

func TestRecycleBin(t *testing.T) {
	ctx := context.Background()
	agents := seededTable(t, types.TableAgents)
	ids := rowIDs(allRows(t, agents, nil))
	require.Len(t, ids, 4)

	require.NoError(t, agents.Recycle(ctx, []string{ids[1], ids[2], "missing"}))
	assert.Equal(t, []string{ids[0], ids[3]}, rowIDs(allRows(t, agents, nil)))

	bin, err := agents.FetchRecycled(ctx, types.Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[1], ids[2]}, rowIDs(bin.Data))
	assert.NotNil(t, bin.Data[0].(*types.Agent).RecycledAt)

	n, err := agents.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Purge ignores active rows.
	require.NoError(t, agents.Purge(ctx, []string{ids[0], ids[1]}))
	_, err = agents.Get(ctx, ids[1])
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = agents.Get(ctx, ids[0])
	assert.NoError(t, err)

	require.NoError(t, agents.Restore(ctx, []string{ids[2], ids[0]}))
	assert.Equal(t, []string{ids[0], ids[2], ids[3]}, rowIDs(allRows(t, agents, nil)))
	bin, err = agents.FetchRecycled(ctx, types.Query{})
	require.NoError(t, err)
	assert.Zero(t, bin.Total)
}

func TestNumberCountsRecycledRows(t *testing.T) {
	ctx := context.Background()
	banks := seededTable(t, types.TableBanks)
	rows := allRows(t, banks, nil)
	last := rows[len(rows)-1].(*types.Bank)
	for _, r := range rows {
		if n := r.(*types.Bank).Number; n > last.Number {
			last = r.(*types.Bank)
		}
	}
	require.NoError(t, banks.Recycle(ctx, []string{last.ID}))

	row, err := banks.Create(ctx, map[string]any{"name": "New", "code": "NEW"})
	require.NoError(t, err)
	assert.Equal(t, last.Number+1, row.(*types.Bank).Number)
}

func TestConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	ctx := context.Background()
	rooms := seededTable(t, types.TableRooms)

	const n = 20
	var wg sync.WaitGroup
	numbers := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			row, err := rooms.Create(ctx, map[string]any{
				"title":     fmt.Sprintf("room %d", i),
				"anchor_id": "a",
			})
			if assert.NoError(t, err) {
				numbers <- row.(*types.Room).Number
			}
		}(i)
	}
	wg.Wait()
	close(numbers)

	seen := map[int]bool{}
	for num := range numbers {
		assert.False(t, seen[num], "duplicate number %d", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
}
