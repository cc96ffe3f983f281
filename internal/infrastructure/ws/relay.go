package ws

import (
	"errors"
	"fmt"
	"sync"

	"github.com/anchorsync/anchorsync/internal/domain"
	"github.com/anchorsync/anchorsync/internal/infrastructure/session"
	"go.uber.org/zap"
)

// Conn is what the relay needs from a connection: a best-effort sink
// with an open/closed state. Tests substitute fakes.
type Conn interface {
	Send(msg Message)
	Open() bool
}

// Relay dispatches inbound messages to the session store and fans the
// resulting events out to the connections bound to the affected room.
// It is the only component that touches transport state; the store
// sees nothing but ConnID handles.
type Relay struct {
	store  *session.Store
	logger *zap.SugaredLogger

	mu    sync.Mutex
	conns map[session.ConnID]Conn
}

func NewRelay(store *session.Store, logger *zap.SugaredLogger) *Relay {
	return &Relay{
		store:  store,
		logger: logger,
		conns:  make(map[session.ConnID]Conn),
	}
}

// Register binds a connection handle to its sink. New connections start
// with no room binding and are ignored by broadcasts.
func (r *Relay) Register(id session.ConnID, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = conn
}

func (r *Relay) unregister(id session.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

func (r *Relay) lookup(id session.ConnID) Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conns[id]
}

// HandleMessage decodes one inbound frame and dispatches by kind.
// Protocol errors answer the sender only; the connection stays open.
func (r *Relay) HandleMessage(id session.ConnID, data []byte) {
	msg, err := Decode(data)
	if err != nil {
		var unknown *UnknownTypeError
		if errors.As(err, &unknown) {
			r.sendTo(id, NewError(fmt.Sprintf("Unknown message type: %s", unknown.Type), ""))
			return
		}
		r.logger.Debugw("failed to parse message", "conn", id, "err", err)
		r.sendTo(id, NewError("Invalid message format", ""))
		return
	}

	switch m := msg.(type) {
	case *CreateRoomMessage:
		r.handleCreateRoom(id, m)
	case *JoinRoomMessage:
		r.handleJoinRoom(id, m)
	case *PlayerPoseMessage:
		r.handlePlayerPose(id, m)
	case *ObjectCreateMessage:
		r.handleObjectCreate(id, m)
	case *ObjectUpdateMessage:
		r.handleObjectUpdate(id, m)
	case *AnchorFoundMessage:
		r.handleAnchorFound(id, m)
	case *HighFiveMessage:
		r.handleHighFive(id, m)
	}
}

func (r *Relay) handleCreateRoom(id session.ConnID, m *CreateRoomMessage) {
	userID := m.UserID
	if userID == "" {
		userID = r.store.GenerateUserID()
	}

	roomID := r.store.CreateRoom(id, userID, m.UserName)

	r.sendTo(id, NewRoomCreated(roomID, userID))
	r.logger.Infow("room created", "room", roomID, "user", userID)
}

func (r *Relay) handleJoinRoom(id session.ConnID, m *JoinRoomMessage) {
	userID := m.UserID
	if userID == "" {
		userID = r.store.GenerateUserID()
	}

	// Snapshot before joining: the state sync describes the room as the
	// newcomer found it, without their own entry.
	room := r.store.GetRoom(m.RoomID)
	if room == nil {
		r.sendTo(id, NewError("Room not found", CodeRoomNotFound))
		return
	}

	if !r.store.JoinRoom(id, m.RoomID, userID, m.UserName) {
		r.sendTo(id, NewError("Failed to join room", CodeJoinFailed))
		return
	}

	r.sendTo(id, NewRoomJoined(m.RoomID, userID, false))
	r.sendTo(id, NewStateSync(room))

	r.broadcastExcept(m.RoomID, id, NewParticipantJoined(userID, m.UserName))
	r.logger.Infow("participant joined", "room", m.RoomID, "user", userID)
}

func (r *Relay) handlePlayerPose(id session.ConnID, m *PlayerPoseMessage) {
	room := r.store.GetRoomForClient(id)
	if room == nil {
		return
	}

	// Poses are relayed, never persisted.
	r.broadcastExcept(room.ID, id, m)
}

func (r *Relay) handleObjectCreate(id session.ConnID, m *ObjectCreateMessage) {
	room := r.store.GetRoomForClient(id)
	if room == nil {
		return
	}

	r.store.AddObject(room.ID, domain.VirtualObject{
		ObjectID:   m.ObjectID,
		UserID:     m.UserID,
		Position:   m.Position,
		Rotation:   m.Rotation,
		ObjectType: m.ObjectType,
	})

	// Echo to everyone including the sender; clients rely on the echo
	// to confirm the object id.
	r.broadcast(room.ID, m)
}

func (r *Relay) handleObjectUpdate(id session.ConnID, m *ObjectUpdateMessage) {
	room := r.store.GetRoomForClient(id)
	if room == nil {
		return
	}

	r.store.UpdateObject(room.ID, m.ObjectID, m.Position, m.Rotation)
	r.broadcast(room.ID, m)
}

func (r *Relay) handleAnchorFound(id session.ConnID, m *AnchorFoundMessage) {
	room := r.store.GetRoomForClient(id)
	if room == nil {
		return
	}

	r.broadcastExcept(room.ID, id, m)
}

func (r *Relay) handleHighFive(id session.ConnID, m *HighFiveMessage) {
	room := r.store.GetRoomForClient(id)
	if room == nil {
		return
	}

	// Whole-room fan-out despite the target id; clients filter.
	r.broadcast(room.ID, m)
	r.logger.Debugw("high five", "room", room.ID, "from", m.FromUserID, "to", m.ToUserID)
}

// HandleDisconnect runs the leave sequence for a closed connection.
// Callers must guarantee it runs at most once per connection; the
// binding is read before it is removed.
func (r *Relay) HandleDisconnect(id session.ConnID) {
	userID, bound := r.store.GetUserIDForClient(id)
	room := r.store.GetRoomForClient(id)

	r.store.LeaveRoom(id)
	r.unregister(id)

	if room == nil || !bound {
		return
	}

	if room.HostID == userID {
		if updated := r.store.GetRoom(room.ID); updated != nil && updated.HostID != userID {
			r.broadcast(room.ID, NewHostChanged(updated.HostID))
			r.logger.Infow("host migrated", "room", room.ID, "from", userID, "to", updated.HostID)
		}
	}

	// The departing connection is already unbound, so this reaches the
	// remaining participants only.
	r.broadcast(room.ID, NewParticipantLeft(userID))
	r.logger.Infow("participant left", "room", room.ID, "user", userID)
}

func (r *Relay) sendTo(id session.ConnID, msg Message) {
	conn := r.lookup(id)
	if conn == nil || !conn.Open() {
		return
	}
	conn.Send(msg)
}

// broadcast sends to every connection bound to the room at this
// moment. Connections found closed at send time are skipped.
func (r *Relay) broadcast(roomID string, msg Message) {
	for _, id := range r.store.ClientsInRoom(roomID) {
		r.sendTo(id, msg)
	}
}

// broadcastExcept excludes exactly one connection handle.
func (r *Relay) broadcastExcept(roomID string, except session.ConnID, msg Message) {
	for _, id := range r.store.ClientsInRoom(roomID) {
		if id == except {
			continue
		}
		r.sendTo(id, msg)
	}
}
