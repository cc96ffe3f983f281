package session

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anchorsync/anchorsync/internal/domain"
)

const (
	roomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomIDLength   = 6

	// maxRoomIDAttempts bounds collision re-rolls so a pathologically
	// full code space cannot spin the store forever.
	maxRoomIDAttempts = 16
)

// ConnID is the opaque handle that identifies one client connection.
// Issued at accept time; the store never sees transport types.
type ConnID string

// Store is the in-memory authority over rooms, participants, shared
// objects and connection bindings. One coarse mutex guards all state:
// no operation here is long-running, and the reference design has no
// per-room locking either.
type Store struct {
	mu           sync.Mutex
	rooms        map[string]*domain.Room
	clientToRoom map[ConnID]string
	clientToUser map[ConnID]string

	userIDCounter atomic.Uint64
}

func NewStore() *Store {
	return &Store{
		rooms:        make(map[string]*domain.Room),
		clientToRoom: make(map[ConnID]string),
		clientToUser: make(map[ConnID]string),
	}
}

// GenerateUserID returns an id unique within the process lifetime by
// combining the current time with a monotonically increasing counter.
func (s *Store) GenerateUserID() string {
	return fmt.Sprintf("user_%d_%d", time.Now().UnixMilli(), s.userIDCounter.Add(1))
}

func randomRoomID() string {
	code := make([]byte, roomIDLength)
	for i := range code {
		code[i] = roomIDAlphabet[rand.IntN(len(roomIDAlphabet))]
	}
	return string(code)
}

// newRoomID re-rolls on collision with a live room. The reference
// implementation skips this check and lets a colliding code overwrite
// an existing room; re-rolling is a deliberate deviation.
func (s *Store) newRoomID() string {
	id := randomRoomID()
	for i := 0; i < maxRoomIDAttempts; i++ {
		if _, taken := s.rooms[id]; !taken {
			break
		}
		id = randomRoomID()
	}
	return id
}

// CreateRoom allocates a new room with the caller as sole participant
// and host, binds the connection, and returns the room code.
func (s *Store) CreateRoom(conn ConnID, userID, userName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID := s.newRoomID()

	room := domain.NewRoom(roomID, userID)
	room.Participants[userID] = domain.NewParticipant(userID, userName, true)

	s.rooms[roomID] = room
	s.clientToRoom[conn] = roomID
	s.clientToUser[conn] = userID

	return roomID
}

// JoinRoom inserts the caller as a non-host participant and binds the
// connection. Returns false if the room does not exist; this path never
// creates a room. A colliding userID silently overwrites the existing
// participant entry.
func (s *Store) JoinRoom(conn ConnID, roomID, userID, userName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return false
	}

	room.Participants[userID] = domain.NewParticipant(userID, userName, false)
	s.clientToRoom[conn] = roomID
	s.clientToUser[conn] = userID

	return true
}

// LeaveRoom removes the bound participant from their room, promoting
// another participant to host if needed and destroying the room once
// empty. No-op for unbound connections. The binding is always cleared.
func (s *Store) LeaveRoom(conn ConnID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID, boundRoom := s.clientToRoom[conn]
	userID, boundUser := s.clientToUser[conn]
	if !boundRoom || !boundUser {
		return
	}

	delete(s.clientToRoom, conn)
	delete(s.clientToUser, conn)

	room, ok := s.rooms[roomID]
	if !ok {
		return
	}

	delete(room.Participants, userID)

	if room.HostID == userID && len(room.Participants) > 0 {
		// Promotion order is map enumeration order, not join order.
		for _, next := range room.Participants {
			next.IsHost = true
			room.HostID = next.UserID
			break
		}
	}

	if len(room.Participants) == 0 {
		delete(s.rooms, roomID)
	}
}

// GetRoom returns a snapshot of the room, or nil if it does not exist.
func (s *Store) GetRoom(roomID string) *domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil
	}
	return room.Clone()
}

// GetRoomForClient returns a snapshot of the room the connection is
// bound to, or nil if the connection is unbound.
func (s *Store) GetRoomForClient(conn ConnID) *domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID, ok := s.clientToRoom[conn]
	if !ok {
		return nil
	}
	room, ok := s.rooms[roomID]
	if !ok {
		return nil
	}
	return room.Clone()
}

func (s *Store) GetUserIDForClient(conn ConnID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.clientToUser[conn]
	return userID, ok
}

// ClientsInRoom returns every connection currently bound to the room.
// Used exclusively for broadcast fan-out.
func (s *Store) ClientsInRoom(roomID string) []ConnID {
	s.mu.Lock()
	defer s.mu.Unlock()

	var clients []ConnID
	for conn, rID := range s.clientToRoom {
		if rID == roomID {
			clients = append(clients, conn)
		}
	}
	return clients
}

// AddObject inserts or overwrites an object by id. No-op if the room
// does not exist.
func (s *Store) AddObject(roomID string, object domain.VirtualObject) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return
	}
	obj := object
	room.Objects[object.ObjectID] = &obj
}

// UpdateObject merges only the supplied fields into an existing object.
// No-op if the room or object does not exist; it never creates.
func (s *Store) UpdateObject(roomID, objectID string, position *domain.Vector3, rotation *domain.Quaternion) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return
	}
	obj, ok := room.Objects[objectID]
	if !ok {
		return
	}
	obj.Merge(position, rotation)
}

func (s *Store) RoomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.rooms)
}
