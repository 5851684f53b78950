package repository

import (
	"context"
	"database/sql"

	"github.com/suar-net/suar-relay/internal/model"
)

// Every method takes the caller's user ID and uses it as a mandatory filter,
// so a caller can never read or delete another user's records even when it
// knows their IDs.

type IHistoryRepository interface {
	Create(ctx context.Context, record *model.HistoryRecord) error
	ListByUserID(ctx context.Context, userID string, limit int) ([]*model.HistoryRecord, error)
	Delete(ctx context.Context, userID, id string) error
}

type ICollectionRepository interface {
	Create(ctx context.Context, collection *model.Collection) error
	GetByID(ctx context.Context, userID, id string) (*model.Collection, error)
	ListByUserID(ctx context.Context, userID string) ([]*model.Collection, error)
	// Delete removes the collection together with all of its items.
	Delete(ctx context.Context, userID, id string) error

	CreateItem(ctx context.Context, item *model.CollectionItem) error
	ListItems(ctx context.Context, userID, collectionID string) ([]*model.CollectionItem, error)
	DeleteItem(ctx context.Context, userID, id string) error
}

type IEnvironmentRepository interface {
	Create(ctx context.Context, env *model.Environment) error
	ListByUserID(ctx context.Context, userID string) ([]*model.Environment, error)
	Delete(ctx context.Context, userID, id string) error
}

type IRepository interface {
	History() IHistoryRepository
	Collection() ICollectionRepository
	Environment() IEnvironmentRepository
	Ping(ctx context.Context) error
}

type Repository struct {
	db          *sql.DB
	history     IHistoryRepository
	collection  ICollectionRepository
	environment IEnvironmentRepository
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		db:          db,
		history:     NewHistoryRepository(db),
		collection:  NewCollectionRepository(db),
		environment: NewEnvironmentRepository(db),
	}
}

func (r *Repository) History() IHistoryRepository {
	return r.history
}

func (r *Repository) Collection() ICollectionRepository {
	return r.collection
}

func (r *Repository) Environment() IEnvironmentRepository {
	return r.environment
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
