package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/suar-net/suar-relay/internal/model"
	"github.com/suar-net/suar-relay/internal/service"
)

// HTTPProxyService adalah kontrak relay yang dipakai handler.
type HTTPProxyService interface {
	Relay(ctx context.Context, identity *model.Identity, dto *model.DTOProxyRequest) (*model.DTOProxyResponse, error)
}

type HTTPProxyHandler struct {
	service HTTPProxyService
	logger  *log.Logger
}

func NewHTTPProxyHandler(s HTTPProxyService, l *log.Logger) *HTTPProxyHandler {
	return &HTTPProxyHandler{
		service: s,
		logger:  l,
	}
}

func (h *HTTPProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Invalid request method")
		return
	}

	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var dto model.DTOProxyRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if err := validate.Struct(&dto); err != nil {
		respondWithError(w, http.StatusBadRequest, ValidationError(err))
		return
	}

	dtoResponse, err := h.service.Relay(r.Context(), identity, &dto)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTarget):
			respondWithError(w, http.StatusBadRequest, "Invalid or unsafe URL")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			// Transport detail stays in the log.
			h.logger.Printf("ERROR: relay for user %s to %q failed: %v", identity.ID, dto.URL, err)
			respondWithError(w, http.StatusInternalServerError, "Proxy request failed")
		}
		return
	}

	respondWithJson(w, http.StatusOK, dtoResponse)
}
