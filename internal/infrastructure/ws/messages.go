package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/anchorsync/anchorsync/internal/domain"
)

// Message is one wire envelope: a flat JSON object with a mandatory
// "type" discriminator. Inbound frames are decoded exactly once, at the
// boundary, into the concrete type for their kind.
type Message interface {
	MessageType() string
}

// UnknownTypeError reports a well-formed envelope whose type is not in
// the catalog.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown message type: %q", e.Type)
}

// --- client → server ---

type CreateRoomMessage struct {
	Type      string `json:"type"`
	UserID    string `json:"userId,omitempty"`
	UserName  string `json:"userName,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

func (m *CreateRoomMessage) MessageType() string { return TypeCreateRoom }

type JoinRoomMessage struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	UserID    string `json:"userId,omitempty"`
	UserName  string `json:"userName,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

func (m *JoinRoomMessage) MessageType() string { return TypeJoinRoom }

type PlayerPoseMessage struct {
	Type      string            `json:"type"`
	UserID    string            `json:"userId"`
	Position  domain.Vector3    `json:"position"`
	Rotation  domain.Quaternion `json:"rotation"`
	Timestamp int64             `json:"timestamp,omitempty"`
}

func (m *PlayerPoseMessage) MessageType() string { return TypePlayerPose }

type ObjectCreateMessage struct {
	Type       string            `json:"type"`
	ObjectID   string            `json:"objectId"`
	UserID     string            `json:"userId"`
	Position   domain.Vector3    `json:"position"`
	Rotation   domain.Quaternion `json:"rotation"`
	ObjectType string            `json:"objectType,omitempty"`
	Timestamp  int64             `json:"timestamp,omitempty"`
}

func (m *ObjectCreateMessage) MessageType() string { return TypeObjectCreate }

// ObjectUpdateMessage carries merge semantics: absent position or
// rotation leaves the stored field untouched.
type ObjectUpdateMessage struct {
	Type      string             `json:"type"`
	ObjectID  string             `json:"objectId"`
	UserID    string             `json:"userId"`
	Position  *domain.Vector3    `json:"position,omitempty"`
	Rotation  *domain.Quaternion `json:"rotation,omitempty"`
	Timestamp int64              `json:"timestamp,omitempty"`
}

func (m *ObjectUpdateMessage) MessageType() string { return TypeObjectUpdate }

type AnchorFoundMessage struct {
	Type           string            `json:"type"`
	UserID         string            `json:"userId"`
	AnchorPosition domain.Vector3    `json:"anchorPosition"`
	AnchorRotation domain.Quaternion `json:"anchorRotation"`
	Timestamp      int64             `json:"timestamp,omitempty"`
}

func (m *AnchorFoundMessage) MessageType() string { return TypeAnchorFound }

type HighFiveMessage struct {
	Type       string `json:"type"`
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
	Timestamp  int64  `json:"timestamp,omitempty"`
}

func (m *HighFiveMessage) MessageType() string { return TypeHighFive }

// --- server → client ---

type RoomCreatedMessage struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	UserID    string `json:"userId"`
	IsHost    bool   `json:"isHost"`
	Timestamp int64  `json:"timestamp"`
}

func (m *RoomCreatedMessage) MessageType() string { return TypeRoomCreated }

type RoomJoinedMessage struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	UserID    string `json:"userId"`
	IsHost    bool   `json:"isHost"`
	Timestamp int64  `json:"timestamp"`
}

func (m *RoomJoinedMessage) MessageType() string { return TypeRoomJoined }

type StateSyncMessage struct {
	Type         string                 `json:"type"`
	Objects      []domain.VirtualObject `json:"objects"`
	Participants []domain.Participant   `json:"participants"`
	Timestamp    int64                  `json:"timestamp"`
}

func (m *StateSyncMessage) MessageType() string { return TypeStateSync }

type ParticipantJoinedMessage struct {
	Type      string `json:"type"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func (m *ParticipantJoinedMessage) MessageType() string { return TypeParticipantJoined }

type ParticipantLeftMessage struct {
	Type      string `json:"type"`
	UserID    string `json:"userId"`
	Timestamp int64  `json:"timestamp"`
}

func (m *ParticipantLeftMessage) MessageType() string { return TypeParticipantLeft }

type HostChangedMessage struct {
	Type      string `json:"type"`
	NewHostID string `json:"newHostId"`
	Timestamp int64  `json:"timestamp"`
}

func (m *HostChangedMessage) MessageType() string { return TypeHostChanged }

type ErrorMessage struct {
	Type      string `json:"type"`
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func (m *ErrorMessage) MessageType() string { return TypeError }

// --- constructors ---

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func NewRoomCreated(roomID, userID string) *RoomCreatedMessage {
	return &RoomCreatedMessage{
		Type:      TypeRoomCreated,
		RoomID:    roomID,
		UserID:    userID,
		IsHost:    true,
		Timestamp: nowMillis(),
	}
}

func NewRoomJoined(roomID, userID string, isHost bool) *RoomJoinedMessage {
	return &RoomJoinedMessage{
		Type:      TypeRoomJoined,
		RoomID:    roomID,
		UserID:    userID,
		IsHost:    isHost,
		Timestamp: nowMillis(),
	}
}

func NewStateSync(room *domain.Room) *StateSyncMessage {
	return &StateSyncMessage{
		Type:         TypeStateSync,
		Objects:      room.ObjectList(),
		Participants: room.ParticipantList(),
		Timestamp:    nowMillis(),
	}
}

func NewParticipantJoined(userID, userName string) *ParticipantJoinedMessage {
	return &ParticipantJoinedMessage{
		Type:      TypeParticipantJoined,
		UserID:    userID,
		UserName:  userName,
		Timestamp: nowMillis(),
	}
}

func NewParticipantLeft(userID string) *ParticipantLeftMessage {
	return &ParticipantLeftMessage{
		Type:      TypeParticipantLeft,
		UserID:    userID,
		Timestamp: nowMillis(),
	}
}

func NewHostChanged(newHostID string) *HostChangedMessage {
	return &HostChangedMessage{
		Type:      TypeHostChanged,
		NewHostID: newHostID,
		Timestamp: nowMillis(),
	}
}

func NewError(msg, code string) *ErrorMessage {
	return &ErrorMessage{
		Type:      TypeError,
		Error:     msg,
		Code:      code,
		Timestamp: nowMillis(),
	}
}

// Decode parses one inbound frame. A JSON parse failure comes back as
// the raw error; a catalog miss comes back as *UnknownTypeError so the
// caller can name the offending type.
func Decode(data []byte) (Message, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	var (
		msg Message
		err error
	)
	switch probe.Type {
	case TypeCreateRoom:
		m := &CreateRoomMessage{}
		err = json.Unmarshal(data, m)
		msg = m
	case TypeJoinRoom:
		m := &JoinRoomMessage{}
		err = json.Unmarshal(data, m)
		msg = m
	case TypePlayerPose:
		m := &PlayerPoseMessage{}
		err = json.Unmarshal(data, m)
		msg = m
	case TypeObjectCreate:
		m := &ObjectCreateMessage{}
		err = json.Unmarshal(data, m)
		msg = m
	case TypeObjectUpdate:
		m := &ObjectUpdateMessage{}
		err = json.Unmarshal(data, m)
		msg = m
	case TypeAnchorFound:
		m := &AnchorFoundMessage{}
		err = json.Unmarshal(data, m)
		msg = m
	case TypeHighFive:
		m := &HighFiveMessage{}
		err = json.Unmarshal(data, m)
		msg = m
	default:
		return nil, &UnknownTypeError{Type: probe.Type}
	}

	if err != nil {
		return nil, err
	}
	return msg, nil
}
