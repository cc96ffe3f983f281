package health

import (
	"net/http"
	"time"

	"github.com/anchorsync/anchorsync/internal/infrastructure/json"
)

var startTime = time.Now()

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	json.Write(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: now.UnixMilli(),
		Time:      now.UTC().Format(time.RFC3339),
		Uptime:    time.Since(startTime).Round(time.Second).String(),
	})
}
