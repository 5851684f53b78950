package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/suar-net/suar-relay/internal/model"
)

// MemoryRepository is an in-process IRepository. It applies the same owner
// scoping as the Postgres repositories and keeps insertion order, which
// stands in for created_at ordering.
type MemoryRepository struct {
	mu           sync.RWMutex
	history      []*model.HistoryRecord
	collections  []*model.Collection
	items        []*model.CollectionItem
	environments []*model.Environment
	now          func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

func (m *MemoryRepository) History() IHistoryRepository         { return memoryHistory{m} }
func (m *MemoryRepository) Collection() ICollectionRepository   { return memoryCollections{m} }
func (m *MemoryRepository) Environment() IEnvironmentRepository { return memoryEnvironments{m} }
func (m *MemoryRepository) Ping(ctx context.Context) error      { return nil }

type memoryHistory struct{ m *MemoryRepository }

func (h memoryHistory) Create(ctx context.Context, record *model.HistoryRecord) error {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	record.ID = uuid.NewString()
	record.CreatedAt = h.m.now().UTC()
	stored := *record
	h.m.history = append(h.m.history, &stored)
	return nil
}

func (h memoryHistory) ListByUserID(ctx context.Context, userID string, limit int) ([]*model.HistoryRecord, error) {
	h.m.mu.RLock()
	defer h.m.mu.RUnlock()
	out := []*model.HistoryRecord{}
	for i := len(h.m.history) - 1; i >= 0 && len(out) < limit; i-- {
		if rec := h.m.history[i]; rec.UserID == userID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (h memoryHistory) Delete(ctx context.Context, userID, id string) error {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	h.m.history = removeWhere(h.m.history, func(r *model.HistoryRecord) bool {
		return r.ID == id && r.UserID == userID
	})
	return nil
}

type memoryCollections struct{ m *MemoryRepository }

func (c memoryCollections) Create(ctx context.Context, collection *model.Collection) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	collection.ID = uuid.NewString()
	collection.CreatedAt = c.m.now().UTC()
	stored := *collection
	c.m.collections = append(c.m.collections, &stored)
	return nil
}

func (c memoryCollections) GetByID(ctx context.Context, userID, id string) (*model.Collection, error) {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	for _, col := range c.m.collections {
		if col.ID == id && col.UserID == userID {
			cp := *col
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (c memoryCollections) ListByUserID(ctx context.Context, userID string) ([]*model.Collection, error) {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	out := []*model.Collection{}
	for _, col := range c.m.collections {
		if col.UserID == userID {
			cp := *col
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (c memoryCollections) Delete(ctx context.Context, userID, id string) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	c.m.items = removeWhere(c.m.items, func(it *model.CollectionItem) bool {
		return it.CollectionID == id && it.UserID == userID
	})
	c.m.collections = removeWhere(c.m.collections, func(col *model.Collection) bool {
		return col.ID == id && col.UserID == userID
	})
	return nil
}

func (c memoryCollections) CreateItem(ctx context.Context, item *model.CollectionItem) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	found := false
	for _, col := range c.m.collections {
		if col.ID == item.CollectionID {
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}
	item.ID = uuid.NewString()
	item.CreatedAt = c.m.now().UTC()
	stored := *item
	c.m.items = append(c.m.items, &stored)
	return nil
}

func (c memoryCollections) ListItems(ctx context.Context, userID, collectionID string) ([]*model.CollectionItem, error) {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	out := []*model.CollectionItem{}
	for _, it := range c.m.items {
		if it.CollectionID == collectionID && it.UserID == userID {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (c memoryCollections) DeleteItem(ctx context.Context, userID, id string) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	c.m.items = removeWhere(c.m.items, func(it *model.CollectionItem) bool {
		return it.ID == id && it.UserID == userID
	})
	return nil
}

type memoryEnvironments struct{ m *MemoryRepository }

func (e memoryEnvironments) Create(ctx context.Context, env *model.Environment) error {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	env.ID = uuid.NewString()
	env.CreatedAt = e.m.now().UTC()
	stored := *env
	e.m.environments = append(e.m.environments, &stored)
	return nil
}

func (e memoryEnvironments) ListByUserID(ctx context.Context, userID string) ([]*model.Environment, error) {
	e.m.mu.RLock()
	defer e.m.mu.RUnlock()
	out := []*model.Environment{}
	for _, env := range e.m.environments {
		if env.UserID == userID {
			cp := *env
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (e memoryEnvironments) Delete(ctx context.Context, userID, id string) error {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	e.m.environments = removeWhere(e.m.environments, func(env *model.Environment) bool {
		return env.ID == id && env.UserID == userID
	})
	return nil
}

func removeWhere[T any](in []T, match func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if !match(v) {
			out = append(out, v)
		}
	}
	return out
}
