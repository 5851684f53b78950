package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/suar-net/suar-relay/internal/model"
	"github.com/suar-net/suar-relay/internal/service"
)

type EnvironmentHandler struct {
	environmentService service.IEnvironmentService
	logger             *log.Logger
}

func NewEnvironmentHandler(s service.IEnvironmentService, l *log.Logger) *EnvironmentHandler {
	return &EnvironmentHandler{
		environmentService: s,
		logger:             l,
	}
}

func (h *EnvironmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req model.DTOCreateEnvironmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, ValidationError(err))
		return
	}

	env, err := h.environmentService.Create(r.Context(), identity, &req)
	if err != nil {
		h.logger.Printf("Error creating environment: %v", err)
		respondWithStoreError(w, err)
		return
	}

	respondWithJson(w, http.StatusCreated, env)
}

func (h *EnvironmentHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	envs, err := h.environmentService.List(r.Context(), identity)
	if err != nil {
		h.logger.Printf("Error listing environments: %v", err)
		respondWithStoreError(w, err)
		return
	}

	respondWithJson(w, http.StatusOK, emptyIfNil(envs))
}

func (h *EnvironmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.environmentService.Delete(r.Context(), identity, id); err != nil {
		h.logger.Printf("Error deleting environment %s: %v", id, err)
		respondWithStoreError(w, err)
		return
	}

	respondWithJson(w, http.StatusOK, successResponse)
}
