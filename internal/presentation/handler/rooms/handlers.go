package rooms

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/anchorsync/anchorsync/internal/domain"
	"github.com/anchorsync/anchorsync/internal/infrastructure/json"
	"github.com/anchorsync/anchorsync/internal/infrastructure/session"
	"github.com/go-chi/chi/v5"
)

// Handler exposes read-only room inspection over REST. The relay
// protocol is the write path; these endpoints exist for ops debugging.
type Handler struct {
	store *session.Store
}

func NewHandler(store *session.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		json.WriteValidationError(w, fmt.Errorf("%w: room ID is missing", domain.ErrInvalidInput))
		return
	}

	room := h.store.GetRoom(roomID)
	if room == nil {
		json.WriteError(w, http.StatusNotFound, domain.ErrRoomNotFound, "Room not found")
		return
	}

	json.Write(w, http.StatusOK, roomResponse{
		RoomID:           room.ID,
		HostID:           room.HostID,
		ParticipantCount: len(room.Participants),
		ObjectCount:      len(room.Objects),
		Participants:     room.ParticipantList(),
		CreatedAt:        room.CreatedAt,
	})
}

func (h *Handler) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	json.Write(w, http.StatusOK, statsResponse{
		Rooms:      h.store.RoomCount(),
		Goroutines: runtime.NumGoroutine(),
	})
}
