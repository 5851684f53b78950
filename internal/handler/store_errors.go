package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/suar-net/suar-relay/internal/model"
	"github.com/suar-net/suar-relay/internal/repository"
	"github.com/suar-net/suar-relay/internal/service"
)

var successResponse = model.DTOSuccessResponse{Success: true}

// idParam reads a record id from the route. Record ids are UUIDs.
func idParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return "", false
	}
	return id.String(), true
}

// respondWithStoreError maps record store failures. Unexpected errors are
// passed through with their detail.
func respondWithStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
