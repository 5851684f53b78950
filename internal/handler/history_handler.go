package handler

import (
	"log"
	"net/http"

	"github.com/suar-net/suar-relay/internal/service"
)

type HistoryHandler struct {
	historyService service.IHistoryService
	logger         *log.Logger
}

func NewHistoryHandler(s service.IHistoryService, l *log.Logger) *HistoryHandler {
	return &HistoryHandler{
		historyService: s,
		logger:         l,
	}
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	records, err := h.historyService.List(r.Context(), identity)
	if err != nil {
		h.logger.Printf("Error listing history for user %s: %v", identity.ID, err)
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJson(w, http.StatusOK, emptyIfNil(records))
}

func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.historyService.Delete(r.Context(), identity, id); err != nil {
		h.logger.Printf("Error deleting history %s: %v", id, err)
		respondWithStoreError(w, err)
		return
	}

	respondWithJson(w, http.StatusOK, successResponse)
}
