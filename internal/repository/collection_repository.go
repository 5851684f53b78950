package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/suar-net/suar-relay/internal/model"
)

type collectionRepository struct {
	db *sql.DB
}

func NewCollectionRepository(db *sql.DB) ICollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Create(ctx context.Context, collection *model.Collection) error {
	query := `
		INSERT INTO collections (user_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, collection.UserID, collection.Name).
		Scan(&collection.ID, &collection.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting collection: %w", err)
	}
	return nil
}

func (r *collectionRepository) GetByID(ctx context.Context, userID, id string) (*model.Collection, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM collections
		WHERE id = $1 AND user_id = $2`

	var c model.Collection
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

// ListByUserID returns the caller's collections, oldest first.
func (r *collectionRepository) ListByUserID(ctx context.Context, userID string) ([]*model.Collection, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM collections
		WHERE user_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	collections := []*model.Collection{}
	for rows.Next() {
		var c model.Collection
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning collection row: %w", err)
		}
		collections = append(collections, &c)
	}
	return collections, rows.Err()
}

// Delete removes the items and then the collection in one transaction, so a
// failure can no longer leave a collection behind without its items.
func (r *collectionRepository) Delete(ctx context.Context, userID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM collection_items WHERE collection_id = $1 AND user_id = $2`, id, userID)
	if err = mapError(err); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("deleting collection items: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM collections WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}

	return tx.Commit()
}

func (r *collectionRepository) CreateItem(ctx context.Context, item *model.CollectionItem) error {
	query := `
		INSERT INTO collection_items (collection_id, user_id, request)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, item.CollectionID, item.UserID, nullJSON(item.Request)).
		Scan(&item.ID, &item.CreatedAt)
	if err = mapError(err); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("inserting collection item: %w", err)
	}
	return nil
}

func (r *collectionRepository) ListItems(ctx context.Context, userID, collectionID string) ([]*model.CollectionItem, error) {
	query := `
		SELECT id, collection_id, user_id, request, created_at
		FROM collection_items
		WHERE collection_id = $1 AND user_id = $2
		ORDER BY created_at ASC`

	items := []*model.CollectionItem{}
	rows, err := r.db.QueryContext(ctx, query, collectionID, userID)
	if err = mapError(err); err != nil {
		if errors.Is(err, ErrNotFound) {
			return items, nil
		}
		return nil, fmt.Errorf("listing collection items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item    model.CollectionItem
			request []byte
		)
		if err := rows.Scan(&item.ID, &item.CollectionID, &item.UserID, &request, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning collection item row: %w", err)
		}
		item.Request = request
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (r *collectionRepository) DeleteItem(ctx context.Context, userID, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM collection_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err = mapError(err); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("deleting collection item: %w", err)
	}
	return nil
}
