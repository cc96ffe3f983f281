package session

import (
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/anchorsync/anchorsync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var roomIDPattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// requireHostInvariant asserts that a live room has exactly one host
// participant and that it matches HostID.
func requireHostInvariant(t *testing.T, room *domain.Room) {
	t.Helper()

	hosts := 0
	for _, p := range room.Participants {
		if p.IsHost {
			hosts++
			assert.Equal(t, room.HostID, p.UserID)
		}
	}
	require.Equal(t, 1, hosts, "expected exactly one host participant")
}

func TestCreateRoomSoleHost(t *testing.T) {
	store := NewStore()

	for i := 0; i < 10; i++ {
		conn := ConnID(fmt.Sprintf("conn-%d", i))
		userID := fmt.Sprintf("user-%d", i)

		roomID := store.CreateRoom(conn, userID, "")
		require.Regexp(t, roomIDPattern, roomID)

		room := store.GetRoom(roomID)
		require.NotNil(t, room)
		require.Len(t, room.Participants, 1)
		assert.Equal(t, userID, room.HostID)
		assert.True(t, room.Participants[userID].IsHost)
		requireHostInvariant(t, room)
	}
}

func TestGenerateUserIDUnique(t *testing.T) {
	store := NewStore()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := store.GenerateUserID()
		require.False(t, seen[id], "duplicate user id %s", id)
		seen[id] = true
	}
}

func TestJoinRoom(t *testing.T) {
	store := NewStore()
	roomID := store.CreateRoom("c1", "u1", "Ann")

	ok := store.JoinRoom("c2", roomID, "u2", "Ben")
	require.True(t, ok)

	room := store.GetRoom(roomID)
	require.NotNil(t, room)
	require.Len(t, room.Participants, 2)
	assert.False(t, room.Participants["u2"].IsHost)
	requireHostInvariant(t, room)
}

func TestJoinRoomNotFound(t *testing.T) {
	store := NewStore()

	ok := store.JoinRoom("c1", "ZZZZZZ", "u1", "")
	assert.False(t, ok)
	assert.Nil(t, store.GetRoomForClient("c1"))

	_, bound := store.GetUserIDForClient("c1")
	assert.False(t, bound)
}

func TestJoinRoomOverwritesCollidingUserID(t *testing.T) {
	store := NewStore()
	roomID := store.CreateRoom("c1", "u1", "Ann")

	require.True(t, store.JoinRoom("c2", roomID, "u2", "Ben"))
	require.True(t, store.JoinRoom("c3", roomID, "u2", "Bee"))

	room := store.GetRoom(roomID)
	require.Len(t, room.Participants, 2)
	assert.Equal(t, "Bee", room.Participants["u2"].UserName)
}

func TestLeaveRoomPromotesHost(t *testing.T) {
	store := NewStore()
	roomID := store.CreateRoom("c1", "u1", "")
	require.True(t, store.JoinRoom("c2", roomID, "u2", ""))
	require.True(t, store.JoinRoom("c3", roomID, "u3", ""))

	store.LeaveRoom("c1")

	room := store.GetRoom(roomID)
	require.NotNil(t, room)
	require.Len(t, room.Participants, 2)
	assert.NotEqual(t, "u1", room.HostID)
	assert.Contains(t, []string{"u2", "u3"}, room.HostID)
	requireHostInvariant(t, room)
}

func TestLeaveRoomNonHostKeepsHost(t *testing.T) {
	store := NewStore()
	roomID := store.CreateRoom("c1", "u1", "")
	require.True(t, store.JoinRoom("c2", roomID, "u2", ""))

	store.LeaveRoom("c2")

	room := store.GetRoom(roomID)
	require.NotNil(t, room)
	assert.Equal(t, "u1", room.HostID)
	requireHostInvariant(t, room)
}

func TestLastLeaveDestroysRoom(t *testing.T) {
	store := NewStore()
	roomID := store.CreateRoom("c1", "u1", "")
	require.True(t, store.JoinRoom("c2", roomID, "u2", ""))

	store.LeaveRoom("c1")
	store.LeaveRoom("c2")

	assert.Nil(t, store.GetRoom(roomID))
	assert.Zero(t, store.RoomCount())
	assert.False(t, store.JoinRoom("c3", roomID, "u3", ""))
}

func TestLeaveRoomUnboundIsNoop(t *testing.T) {
	store := NewStore()
	roomID := store.CreateRoom("c1", "u1", "")

	store.LeaveRoom("stranger")

	room := store.GetRoom(roomID)
	require.NotNil(t, room)
	assert.Len(t, room.Participants, 1)
}

func TestLeaveRoomClearsBinding(t *testing.T) {
	store := NewStore()
	roomID := store.CreateRoom("c1", "u1", "")

	store.LeaveRoom("c1")

	assert.Nil(t, store.GetRoomForClient("c1"))
	_, bound := store.GetUserIDForClient("c1")
	assert.False(t, bound)
	assert.Nil(t, store.GetRoom(roomID))

	// A second leave for the same connection is a no-op.
	store.LeaveRoom("c1")
}

func TestClientsInRoom(t *testing.T) {
	store := NewStore()
	roomID := store.CreateRoom("c1", "u1", "")
	require.True(t, store.JoinRoom("c2", roomID, "u2", ""))

	otherRoom := store.CreateRoom("c3", "u3", "")

	assert.ElementsMatch(t, []ConnID{"c1", "c2"}, store.ClientsInRoom(roomID))
	assert.ElementsMatch(t, []ConnID{"c3"}, store.ClientsInRoom(otherRoom))
	assert.Empty(t, store.ClientsInRoom("ZZZZZZ"))
}

func TestAddObject(t *testing.T) {
	store := NewStore()
	roomID := store.CreateRoom("c1", "u1", "")

	store.AddObject(roomID, domain.VirtualObject{
		ObjectID:   "o1",
		UserID:     "u1",
		Position:   domain.Vector3{1, 2, 3},
		Rotation:   domain.Quaternion{0, 0, 0, 1},
		ObjectType: "cube",
	})

	room := store.GetRoom(roomID)
	require.Len(t, room.Objects, 1)
	assert.Equal(t, domain.Vector3{1, 2, 3}, room.Objects["o1"].Position)

	// Unknown room is a silent no-op.
	store.AddObject("ZZZZZZ", domain.VirtualObject{ObjectID: "o2"})
	assert.Nil(t, store.GetRoom("ZZZZZZ"))
}

func TestUpdateObjectMergeSemantics(t *testing.T) {
	store := NewStore()
	roomID := store.CreateRoom("c1", "u1", "")

	store.AddObject(roomID, domain.VirtualObject{
		ObjectID:   "o1",
		UserID:     "u1",
		Position:   domain.Vector3{0, 0, 0},
		Rotation:   domain.Quaternion{0, 0, 0, 1},
		ObjectType: "cube",
	})

	pos := domain.Vector3{4, 5, 6}
	store.UpdateObject(roomID, "o1", &pos, nil)

	obj := store.GetRoom(roomID).Objects["o1"]
	require.NotNil(t, obj)
	assert.Equal(t, pos, obj.Position)
	assert.Equal(t, domain.Quaternion{0, 0, 0, 1}, obj.Rotation)
	assert.Equal(t, "u1", obj.UserID)
	assert.Equal(t, "cube", obj.ObjectType)

	rot := domain.Quaternion{0, 1, 0, 0}
	store.UpdateObject(roomID, "o1", nil, &rot)
	obj = store.GetRoom(roomID).Objects["o1"]
	assert.Equal(t, pos, obj.Position)
	assert.Equal(t, rot, obj.Rotation)
}

func TestUpdateObjectNeverCreates(t *testing.T) {
	store := NewStore()
	roomID := store.CreateRoom("c1", "u1", "")

	pos := domain.Vector3{1, 1, 1}
	store.UpdateObject(roomID, "ghost", &pos, nil)
	assert.Empty(t, store.GetRoom(roomID).Objects)

	store.UpdateObject("ZZZZZZ", "ghost", &pos, nil)
}

func TestGetRoomReturnsSnapshot(t *testing.T) {
	store := NewStore()
	roomID := store.CreateRoom("c1", "u1", "")

	snap := store.GetRoom(roomID)
	snap.Participants["intruder"] = domain.NewParticipant("intruder", "", false)
	snap.HostID = "intruder"

	room := store.GetRoom(roomID)
	require.Len(t, room.Participants, 1)
	assert.Equal(t, "u1", room.HostID)
}

func TestHostMigrationInvariantUnderChurn(t *testing.T) {
	store := NewStore()
	roomID := store.CreateRoom("c0", "u0", "")

	for i := 1; i < 8; i++ {
		conn := ConnID(fmt.Sprintf("c%d", i))
		require.True(t, store.JoinRoom(conn, roomID, fmt.Sprintf("u%d", i), ""))
	}

	// Peel participants off one at a time; the invariant must hold at
	// every step until the room disappears.
	for i := 0; i < 8; i++ {
		store.LeaveRoom(ConnID(fmt.Sprintf("c%d", i)))

		room := store.GetRoom(roomID)
		if i == 7 {
			assert.Nil(t, room)
			break
		}
		require.NotNil(t, room)
		requireHostInvariant(t, room)
	}
}

func TestConcurrentAccess(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				conn := ConnID(fmt.Sprintf("c%d-%d", w, i))
				userID := store.GenerateUserID()
				roomID := store.CreateRoom(conn, userID, "")

				peer := ConnID(fmt.Sprintf("p%d-%d", w, i))
				store.JoinRoom(peer, roomID, store.GenerateUserID(), "")

				store.AddObject(roomID, domain.VirtualObject{ObjectID: "o", UserID: userID})
				pos := domain.Vector3{float64(i), 0, 0}
				store.UpdateObject(roomID, "o", &pos, nil)

				store.ClientsInRoom(roomID)
				store.LeaveRoom(conn)
				store.LeaveRoom(peer)
			}
		}(w)
	}
	wg.Wait()

	assert.Zero(t, store.RoomCount())
}
