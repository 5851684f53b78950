package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/suar-net/suar-relay/internal/model"
)

// historyRepository is the Postgres implementation of IHistoryRepository.
type historyRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) IHistoryRepository {
	return &historyRepository{db: db}
}

// Create inserts a history record. ID and CreatedAt are assigned by the database.
func (r *historyRepository) Create(ctx context.Context, record *model.HistoryRecord) error {
	query := `
		INSERT INTO history (user_id, url, method, request_headers, request_body, request_params, status, status_text, response_headers, response_body, response_body_encoding, time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		record.UserID,
		record.URL,
		record.Method,
		nullJSON(record.RequestHeaders),
		nullJSON(record.RequestBody),
		nullJSON(record.RequestParams),
		record.Status,
		record.StatusText,
		nullJSON(record.ResponseHeaders),
		nullJSON(record.ResponseBody),
		record.ResponseBodyEncoding,
		record.TimeMs,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting history: %w", err)
	}
	return nil
}

// ListByUserID returns the newest records first, at most limit of them.
func (r *historyRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]*model.HistoryRecord, error) {
	query := `
		SELECT id, user_id, url, method, request_headers, request_body, request_params, status, status_text, response_headers, response_body, response_body_encoding, time_ms, created_at
		FROM history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	records := []*model.HistoryRecord{}
	for rows.Next() {
		var (
			rec                                         model.HistoryRecord
			reqHeaders, reqBody, reqParams, respHeaders []byte
			respBody                                    []byte
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.URL,
			&rec.Method,
			&reqHeaders,
			&reqBody,
			&reqParams,
			&rec.Status,
			&rec.StatusText,
			&respHeaders,
			&respBody,
			&rec.ResponseBodyEncoding,
			&rec.TimeMs,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		rec.RequestHeaders = reqHeaders
		rec.RequestBody = reqBody
		rec.RequestParams = reqParams
		rec.ResponseHeaders = respHeaders
		rec.ResponseBody = respBody
		records = append(records, &rec)
	}

	return records, rows.Err()
}

func (r *historyRepository) Delete(ctx context.Context, userID, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM history WHERE id = $1 AND user_id = $2`, id, userID)
	if err = mapError(err); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("deleting history: %w", err)
	}
	return nil
}

// nullJSON turns an empty payload into SQL NULL so jsonb columns stay valid.
func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
