package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suar-net/suar-relay/internal/model"
)

func TestCollectionLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := tokenFor(t, "alice")

	rr := doRequest(t, env.router, http.MethodPost, "/collections", alice, `{"name":"First"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	first := decodeJSON[model.Collection](t, rr)
	assert.Equal(t, "alice", first.UserID)
	assert.Equal(t, "First", first.Name)
	assert.NotEmpty(t, first.ID)

	rr = doRequest(t, env.router, http.MethodPost, "/collections", alice, `{"name":"Second"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doRequest(t, env.router, http.MethodGet, "/collections", alice, "")
	require.Equal(t, http.StatusOK, rr.Code)
	collections := decodeJSON[[]model.Collection](t, rr)
	require.Len(t, collections, 2)
	assert.Equal(t, "First", collections[0].Name)
	assert.Equal(t, "Second", collections[1].Name)

	rr = doRequest(t, env.router, http.MethodPost, "/collections/"+first.ID+"/items", alice,
		`{"request":{"url":"https://example.com","method":"GET"}}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	item := decodeJSON[model.CollectionItem](t, rr)
	assert.Equal(t, first.ID, item.CollectionID)
	assert.JSONEq(t, `{"url":"https://example.com","method":"GET"}`, string(item.Request))

	rr = doRequest(t, env.router, http.MethodGet, "/collections/"+first.ID+"/items", alice, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeJSON[[]model.CollectionItem](t, rr), 1)

	rr = doRequest(t, env.router, http.MethodDelete, "/collections/items/"+item.ID, alice, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	rr = doRequest(t, env.router, http.MethodGet, "/collections/"+first.ID+"/items", alice, "")
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = doRequest(t, env.router, http.MethodDelete, "/collections/"+first.ID, alice, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, env.router, http.MethodGet, "/collections", alice, "")
	collections = decodeJSON[[]model.Collection](t, rr)
	require.Len(t, collections, 1)
	assert.Equal(t, "Second", collections[0].Name)
}

func TestCollectionDeleteRemovesItems(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := tokenFor(t, "alice")

	rr := doRequest(t, env.router, http.MethodPost, "/collections", alice, `{"name":"Doomed"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	col := decodeJSON[model.Collection](t, rr)

	for i := 0; i < 3; i++ {
		rr = doRequest(t, env.router, http.MethodPost, "/collections/"+col.ID+"/items", alice, `{"request":{}}`)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr = doRequest(t, env.router, http.MethodDelete, "/collections/"+col.ID, alice, "")
	require.Equal(t, http.StatusOK, rr.Code)

	items, err := env.repo.Collection().ListItems(t.Context(), "alice", col.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCollectionsAreOwnerScoped(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := tokenFor(t, "alice")
	bob := tokenFor(t, "bob")

	rr := doRequest(t, env.router, http.MethodPost, "/collections", alice, `{"name":"Private"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	col := decodeJSON[model.Collection](t, rr)

	rr = doRequest(t, env.router, http.MethodPost, "/collections/"+col.ID+"/items", alice, `{"request":{"url":"https://example.com"}}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	item := decodeJSON[model.CollectionItem](t, rr)

	rr = doRequest(t, env.router, http.MethodGet, "/collections", bob, "")
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = doRequest(t, env.router, http.MethodGet, "/collections/"+col.ID+"/items", bob, "")
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = doRequest(t, env.router, http.MethodPost, "/collections/"+col.ID+"/items", bob, `{"request":{}}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doRequest(t, env.router, http.MethodDelete, "/collections/items/"+item.ID, bob, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = doRequest(t, env.router, http.MethodDelete, "/collections/"+col.ID, bob, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	// Bob's deletes matched nothing.
	rr = doRequest(t, env.router, http.MethodGet, "/collections/"+col.ID+"/items", alice, "")
	assert.Len(t, decodeJSON[[]model.CollectionItem](t, rr), 1)
	rr = doRequest(t, env.router, http.MethodGet, "/collections", alice, "")
	assert.Len(t, decodeJSON[[]model.Collection](t, rr), 1)
}

func TestCollectionBadInput(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := tokenFor(t, "alice")

	testCases := []struct {
		name   string
		method string
		path   string
		body   string
		code   int
	}{
		{name: "missing_name", method: http.MethodPost, path: "/collections", body: `{}`, code: http.StatusBadRequest},
		{name: "malformed_json", method: http.MethodPost, path: "/collections", body: `{"name":`, code: http.StatusBadRequest},
		{name: "bad_collection_id", method: http.MethodGet, path: "/collections/42/items", code: http.StatusBadRequest},
		{name: "bad_item_id", method: http.MethodDelete, path: "/collections/items/42", code: http.StatusBadRequest},
		{name: "missing_request", method: http.MethodPost, path: "/collections/0b6c1b9e-8b0c-4e0f-9b47-6f3c7d2f5a10/items", body: `{}`, code: http.StatusBadRequest},
		{name: "unknown_collection", method: http.MethodPost, path: "/collections/0b6c1b9e-8b0c-4e0f-9b47-6f3c7d2f5a10/items", body: `{"request":{}}`, code: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doRequest(t, env.router, tc.method, tc.path, alice, tc.body)
			assert.Equal(t, tc.code, rr.Code, rr.Body.String())
		})
	}
}
