package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/suar-net/suar-relay/internal/model"
	"github.com/suar-net/suar-relay/internal/service"
)

type CollectionHandler struct {
	collectionService service.ICollectionService
	logger            *log.Logger
}

func NewCollectionHandler(s service.ICollectionService, l *log.Logger) *CollectionHandler {
	return &CollectionHandler{
		collectionService: s,
		logger:            l,
	}
}

func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req model.DTOCreateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, ValidationError(err))
		return
	}

	collection, err := h.collectionService.Create(r.Context(), identity, &req)
	if err != nil {
		h.logger.Printf("Error creating collection: %v", err)
		respondWithStoreError(w, err)
		return
	}

	respondWithJson(w, http.StatusCreated, collection)
}

func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	collections, err := h.collectionService.List(r.Context(), identity)
	if err != nil {
		h.logger.Printf("Error listing collections: %v", err)
		respondWithStoreError(w, err)
		return
	}

	respondWithJson(w, http.StatusOK, emptyIfNil(collections))
}

// Delete removes the collection together with its items.
func (h *CollectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.collectionService.Delete(r.Context(), identity, id); err != nil {
		h.logger.Printf("Error deleting collection %s: %v", id, err)
		respondWithStoreError(w, err)
		return
	}

	respondWithJson(w, http.StatusOK, successResponse)
}

func (h *CollectionHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	collectionID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req model.DTOCreateCollectionItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, ValidationError(err))
		return
	}

	item, err := h.collectionService.AddItem(r.Context(), identity, collectionID, &req)
	if err != nil {
		h.logger.Printf("Error adding item to collection %s: %v", collectionID, err)
		respondWithStoreError(w, err)
		return
	}

	respondWithJson(w, http.StatusCreated, item)
}

func (h *CollectionHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	collectionID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	items, err := h.collectionService.ListItems(r.Context(), identity, collectionID)
	if err != nil {
		h.logger.Printf("Error listing items of collection %s: %v", collectionID, err)
		respondWithStoreError(w, err)
		return
	}

	respondWithJson(w, http.StatusOK, emptyIfNil(items))
}

func (h *CollectionHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.collectionService.DeleteItem(r.Context(), identity, id); err != nil {
		h.logger.Printf("Error deleting collection item %s: %v", id, err)
		respondWithStoreError(w, err)
		return
	}

	respondWithJson(w, http.StatusOK, successResponse)
}
