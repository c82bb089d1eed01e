package client_test

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/dom/tickify/internal/client"
	"github.com/dom/tickify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalStore(t *testing.T) *client.LocalStore {
	t.Helper()
	store, err := client.OpenLocalStore(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLocalStore_Add(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   client.NewItem
		want    client.Item
		wantErr error
	}{
		{
			name:  "defaults",
			input: client.NewItem{Text: "  Buy milk "},
			want:  client.Item{Text: "Buy milk", Priority: domain.PriorityLow},
		},
		{
			name:  "explicit",
			input: client.NewItem{Text: "Ship", Completed: true, Priority: domain.PriorityHigh},
			want:  client.Item{Text: "Ship", Completed: true, Priority: domain.PriorityHigh},
		},
		{name: "blank text", input: client.NewItem{Text: " "}, wantErr: domain.ErrValidation},
		{name: "bad priority", input: client.NewItem{Text: "x", Priority: "urgent"}, wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := store.Add(ctx, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Text, item.Text)
			assert.Equal(t, tt.want.Completed, item.Completed)
			assert.Equal(t, tt.want.Priority, item.Priority)
			assert.Empty(t, item.CreatedBy)

			_, err = strconv.ParseInt(item.ID, 10, 64)
			assert.NoError(t, err, "guest ids are timestamps")
		})
	}
}

func TestLocalStore_IDsIncrease(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 20; i++ {
		item, err := store.Add(ctx, client.NewItem{Text: "item"})
		require.NoError(t, err)
		id, err := strconv.ParseInt(item.ID, 10, 64)
		require.NoError(t, err)
		assert.Greater(t, id, last)
		last = id
	}

	items, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 20)
	assert.Equal(t, strconv.FormatInt(last, 10), items[0].ID, "newest first")
}

func TestLocalStore_UpdateAndDelete(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	item, err := store.Add(ctx, client.NewItem{Text: "Write tests", Priority: domain.PriorityMedium})
	require.NoError(t, err)

	done := true
	updated, err := store.Update(ctx, item.ID, domain.ItemPatch{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "Write tests", updated.Text)
	assert.Equal(t, domain.PriorityMedium, updated.Priority)

	unchanged, err := store.Update(ctx, item.ID, domain.ItemPatch{})
	require.NoError(t, err)
	assert.Equal(t, updated.Text, unchanged.Text)

	blank := ""
	_, err = store.Update(ctx, item.ID, domain.ItemPatch{Text: &blank})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = store.Update(ctx, "42", domain.ItemPatch{Completed: &done})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	require.NoError(t, store.Delete(ctx, item.ID))
	assert.ErrorIs(t, store.Delete(ctx, item.ID), domain.ErrItemNotFound)
}

func TestLocalStore_PersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "guest.db")

	store, err := client.OpenLocalStore(ctx, path)
	require.NoError(t, err)
	first, err := store.Add(ctx, client.NewItem{Text: "survives"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = client.OpenLocalStore(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	items, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, first.ID, items[0].ID)

	second, err := store.Add(ctx, client.NewItem{Text: "after reopen"})
	require.NoError(t, err)
	firstID, _ := strconv.ParseInt(first.ID, 10, 64)
	secondID, _ := strconv.ParseInt(second.ID, 10, 64)
	assert.Greater(t, secondID, firstID)
}
