package model

import (
	"encoding/json"
	"time"
)

// Identity is the caller resolved from a bearer token. ID is the tenancy
// key stamped on every stored record.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

type HistoryRecord struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	URL             string          `json:"url"`
	Method          string          `json:"method"`
	RequestHeaders  json.RawMessage `json:"request_headers"`
	RequestBody     json.RawMessage `json:"request_body"`
	RequestParams   json.RawMessage `json:"request_params"`
	Status          int             `json:"status"`
	StatusText      string          `json:"status_text"`
	ResponseHeaders json.RawMessage `json:"response_headers"`
	ResponseBody    json.RawMessage `json:"response_body"`

	// "base64" when ResponseBody is a base64 string of a binary payload.
	ResponseBodyEncoding string    `json:"response_body_encoding,omitempty"`
	TimeMs               int64     `json:"time_ms"`
	CreatedAt            time.Time `json:"created_at"`
}

type Collection struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type CollectionItem struct {
	ID           string          `json:"id"`
	CollectionID string          `json:"collection_id"`
	UserID       string          `json:"user_id"`
	Request      json.RawMessage `json:"request"`
	CreatedAt    time.Time       `json:"created_at"`
}

type Environment struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Variables json.RawMessage `json:"variables"`
	CreatedAt time.Time       `json:"created_at"`
}
