package handler

import (
	"context"
	"log"
	"net/http"
	"time"
)

// Pinger is satisfied by every record store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store  Pinger
	logger *log.Logger
}

func NewHealthHandler(store Pinger, logger *log.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		logger: logger,
	}
}

// Check always answers 200. The store state is reported in message.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	message := "Service is healthy and database connection is active"
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Printf("Health check: database connection error: %v", err)
		message = "Service is running but database connection failed"
	}

	respondWithJson(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": message,
	})
}
