package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suar-net/suar-relay/internal/model"
)

func TestMemoryHistoryNewestFirstAndCapped(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	for i := 0; i < 30; i++ {
		require.NoError(t, repo.History().Create(ctx, &model.HistoryRecord{
			UserID: "alice",
			URL:    fmt.Sprintf("https://example.com/%d", i),
			Method: "GET",
			Status: 200,
		}))
	}
	require.NoError(t, repo.History().Create(ctx, &model.HistoryRecord{UserID: "bob", URL: "https://bob.example.com"}))

	records, err := repo.History().ListByUserID(ctx, "alice", 25)
	require.NoError(t, err)
	require.Len(t, records, 25)
	assert.Equal(t, "https://example.com/29", records[0].URL)
	assert.Equal(t, "https://example.com/5", records[24].URL)
	for _, r := range records {
		assert.Equal(t, "alice", r.UserID)
		assert.NotEmpty(t, r.ID)
	}
}

func TestMemoryOwnerScoping(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	rec := &model.HistoryRecord{UserID: "bob", URL: "https://example.com"}
	require.NoError(t, repo.History().Create(ctx, rec))
	col := &model.Collection{UserID: "bob", Name: "Bob's"}
	require.NoError(t, repo.Collection().Create(ctx, col))
	item := &model.CollectionItem{CollectionID: col.ID, UserID: "bob", Request: json.RawMessage(`{"url":"https://x"}`)}
	require.NoError(t, repo.Collection().CreateItem(ctx, item))
	env := &model.Environment{UserID: "bob", Name: "dev", Variables: json.RawMessage(`{"a":"b"}`)}
	require.NoError(t, repo.Environment().Create(ctx, env))

	// alice knows every id but owns none of them
	require.NoError(t, repo.History().Delete(ctx, "alice", rec.ID))
	require.NoError(t, repo.Collection().Delete(ctx, "alice", col.ID))
	require.NoError(t, repo.Collection().DeleteItem(ctx, "alice", item.ID))
	require.NoError(t, repo.Environment().Delete(ctx, "alice", env.ID))

	_, err := repo.Collection().GetByID(ctx, "alice", col.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	aliceItems, err := repo.Collection().ListItems(ctx, "alice", col.ID)
	require.NoError(t, err)
	assert.Empty(t, aliceItems)

	bobHistory, _ := repo.History().ListByUserID(ctx, "bob", 25)
	assert.Len(t, bobHistory, 1)
	bobItems, _ := repo.Collection().ListItems(ctx, "bob", col.ID)
	assert.Len(t, bobItems, 1)
	bobEnvs, _ := repo.Environment().ListByUserID(ctx, "bob")
	assert.Len(t, bobEnvs, 1)
}

func TestMemoryCollectionDeleteRemovesItems(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	col := &model.Collection{UserID: "alice", Name: "Smoke Tests"}
	require.NoError(t, repo.Collection().Create(ctx, col))
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Collection().CreateItem(ctx, &model.CollectionItem{
			CollectionID: col.ID,
			UserID:       "alice",
			Request:      json.RawMessage(`{}`),
		}))
	}

	require.NoError(t, repo.Collection().Delete(ctx, "alice", col.ID))

	items, err := repo.Collection().ListItems(ctx, "alice", col.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	cols, err := repo.Collection().ListByUserID(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMemoryCreateItemUnknownCollection(t *testing.T) {
	repo := NewMemoryRepository()
	err := repo.Collection().CreateItem(context.Background(), &model.CollectionItem{
		CollectionID: "missing",
		UserID:       "alice",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}
