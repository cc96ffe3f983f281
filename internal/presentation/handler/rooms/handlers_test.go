package rooms

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anchorsync/anchorsync/internal/infrastructure/session"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(store *session.Store) http.Handler {
	h := NewHandler(store)
	r := chi.NewRouter()
	r.Get("/api/rooms/{roomId}", h.GetRoomHandler)
	r.Get("/api/stats", h.GetStatsHandler)
	return r
}

func TestGetRoom(t *testing.T) {
	store := session.NewStore()
	roomID := store.CreateRoom("c1", "u1", "Ann")
	store.JoinRoom("c2", roomID, "u2", "Ben")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/rooms/"+roomID, nil)
	newTestRouter(store).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp roomResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, roomID, resp.RoomID)
	assert.Equal(t, "u1", resp.HostID)
	assert.Equal(t, 2, resp.ParticipantCount)
	assert.Zero(t, resp.ObjectCount)
	assert.Len(t, resp.Participants, 2)
}

func TestGetRoomNotFound(t *testing.T) {
	store := session.NewStore()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/rooms/ZZZZZZ", nil)
	newTestRouter(store).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Room not found")
}

func TestGetStats(t *testing.T) {
	store := session.NewStore()
	store.CreateRoom("c1", "u1", "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	newTestRouter(store).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp statsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Rooms)
	assert.Positive(t, resp.Goroutines)
}
