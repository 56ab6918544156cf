package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentFromRecord(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	g := &Gift{
		Base: Base{ID: "g-1", Number: 7, Status: StatusValid, UpdatedAt: now},
		Name: "Rocket",
	}

	doc, err := DocumentFromRecord(TableGifts, g)
	require.NoError(t, err)
	assert.Equal(t, TableGifts, doc.Table)
	assert.Equal(t, "g-1", doc.ID)
	assert.Equal(t, 7, doc.Number)
	assert.False(t, doc.Recycled)
	assert.Equal(t, now, doc.UpdatedAt)

	var back Gift
	require.NoError(t, json.Unmarshal(doc.Data, &back))
	assert.Equal(t, "Rocket", back.Name)
	assert.Equal(t, "g-1", back.ID)
}

func TestDocumentFromRecordRecycled(t *testing.T) {
	at := time.Now().UTC()
	u := &User{Base: Base{ID: "u-1", Number: 1, RecycledAt: &at}, Nickname: "ann"}

	doc, err := DocumentFromRecord(TableUsers, u)
	require.NoError(t, err)
	assert.True(t, doc.Recycled)
	assert.True(t, u.Recycled())
}

func TestDocumentFromJSON(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantErr      error
		wantNumber   int
		wantRecycled bool
	}{
		{
			name:       "plain row",
			raw:        `{"id":"a","number":3,"name":"x"}`,
			wantNumber: 3,
		},
		{
			name:         "recycled row",
			raw:          `{"id":"b","number":4,"recycled_at":"2024-01-01T00:00:00Z"}`,
			wantNumber:   4,
			wantRecycled: true,
		},
		{
			name:    "missing id",
			raw:     `{"number":1}`,
			wantErr: ErrInvalidID,
		},
		{
			name:    "not an object",
			raw:     `[1,2]`,
			wantErr: ErrInvalidData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := DocumentFromJSON(TableBanks, json.RawMessage(tt.raw))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, TableBanks, doc.Table)
			assert.Equal(t, tt.wantNumber, doc.Number)
			assert.Equal(t, tt.wantRecycled, doc.Recycled)
			assert.JSONEq(t, tt.raw, string(doc.Data))
		})
	}
}
