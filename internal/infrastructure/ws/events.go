package ws

// Client → server message kinds. OBJECT_CREATE, OBJECT_UPDATE and
// HIGH_FIVE are echoed back to the whole room, sender included.
const (
	TypeCreateRoom   = "CREATE_ROOM"
	TypeJoinRoom     = "JOIN_ROOM"
	TypePlayerPose   = "PLAYER_POSE"
	TypeObjectCreate = "OBJECT_CREATE"
	TypeObjectUpdate = "OBJECT_UPDATE"
	TypeAnchorFound  = "ANCHOR_FOUND"
	TypeHighFive     = "HIGH_FIVE"
)

// Server → client message kinds.
const (
	TypeRoomCreated       = "ROOM_CREATED"
	TypeRoomJoined        = "ROOM_JOINED"
	TypeStateSync         = "STATE_SYNC"
	TypeParticipantJoined = "PARTICIPANT_JOINED"
	TypeParticipantLeft   = "PARTICIPANT_LEFT"
	TypeHostChanged       = "HOST_CHANGED"
	TypeError             = "ERROR"
)

// Machine-readable codes carried by ERROR envelopes.
const (
	CodeRoomNotFound = "ROOM_NOT_FOUND"
	CodeJoinFailed   = "JOIN_FAILED"
)
