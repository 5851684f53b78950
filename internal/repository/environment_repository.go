package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/suar-net/suar-relay/internal/model"
)

type environmentRepository struct {
	db *sql.DB
}

func NewEnvironmentRepository(db *sql.DB) IEnvironmentRepository {
	return &environmentRepository{db: db}
}

func (r *environmentRepository) Create(ctx context.Context, env *model.Environment) error {
	query := `
		INSERT INTO environments (user_id, name, variables)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, env.UserID, env.Name, nullJSON(env.Variables)).
		Scan(&env.ID, &env.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting environment: %w", err)
	}
	return nil
}

func (r *environmentRepository) ListByUserID(ctx context.Context, userID string) ([]*model.Environment, error) {
	query := `
		SELECT id, user_id, name, variables, created_at
		FROM environments
		WHERE user_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing environments: %w", err)
	}
	defer rows.Close()

	envs := []*model.Environment{}
	for rows.Next() {
		var (
			env       model.Environment
			variables []byte
		)
		if err := rows.Scan(&env.ID, &env.UserID, &env.Name, &variables, &env.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning environment row: %w", err)
		}
		env.Variables = variables
		envs = append(envs, &env)
	}
	return envs, rows.Err()
}

func (r *environmentRepository) Delete(ctx context.Context, userID, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM environments WHERE id = $1 AND user_id = $2`, id, userID)
	if err = mapError(err); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("deleting environment: %w", err)
	}
	return nil
}
