package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suar-net/suar-relay/internal/model"
)

func TestEnvironmentLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := tokenFor(t, "alice")

	rr := doRequest(t, env.router, http.MethodPost, "/env", alice, `{"name":"staging","variables":{"host":"staging.example.com"}}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decodeJSON[model.Environment](t, rr)
	assert.Equal(t, "alice", created.UserID)
	assert.JSONEq(t, `{"host":"staging.example.com"}`, string(created.Variables))

	rr = doRequest(t, env.router, http.MethodPost, "/env", alice, `{"name":"empty"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{}`, string(decodeJSON[model.Environment](t, rr).Variables))

	rr = doRequest(t, env.router, http.MethodGet, "/env", alice, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeJSON[[]model.Environment](t, rr), 2)

	rr = doRequest(t, env.router, http.MethodGet, "/env", tokenFor(t, "bob"), "")
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = doRequest(t, env.router, http.MethodDelete, "/env/"+created.ID, alice, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	rr = doRequest(t, env.router, http.MethodGet, "/env", alice, "")
	assert.Len(t, decodeJSON[[]model.Environment](t, rr), 1)
}

func TestEnvironmentRejectsNonObjectVariables(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := doRequest(t, env.router, http.MethodPost, "/env", tokenFor(t, "alice"), `{"name":"bad","variables":[1,2,3]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(t, env.router, http.MethodPost, "/env", tokenFor(t, "alice"), `{"variables":{}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Field 'Name' is required")
}
