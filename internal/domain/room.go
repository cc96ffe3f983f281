package domain

import "time"

// Room is a live multiplayer session anchored to a shared physical marker.
// Participants are keyed by user ID, objects by object ID. Exactly one
// participant carries the host flag and it always matches HostID; a room
// with zero participants is destroyed by the session store.
type Room struct {
	ID           string                    `json:"roomId"`
	Participants map[string]*Participant   `json:"participants"`
	Objects      map[string]*VirtualObject `json:"objects"`
	HostID       string                    `json:"hostId"`
	CreatedAt    time.Time                 `json:"createdAt"`
}

func NewRoom(id, hostID string) *Room {
	return &Room{
		ID:           id,
		Participants: make(map[string]*Participant),
		Objects:      make(map[string]*VirtualObject),
		HostID:       hostID,
		CreatedAt:    time.Now(),
	}
}

// ParticipantList returns the participants in map enumeration order.
func (r *Room) ParticipantList() []Participant {
	out := make([]Participant, 0, len(r.Participants))
	for _, p := range r.Participants {
		out = append(out, *p)
	}
	return out
}

// ObjectList returns the virtual objects in map enumeration order.
func (r *Room) ObjectList() []VirtualObject {
	out := make([]VirtualObject, 0, len(r.Objects))
	for _, o := range r.Objects {
		out = append(out, *o)
	}
	return out
}

// Clone returns a deep copy so callers can read room state without
// holding the store lock.
func (r *Room) Clone() *Room {
	cp := &Room{
		ID:           r.ID,
		Participants: make(map[string]*Participant, len(r.Participants)),
		Objects:      make(map[string]*VirtualObject, len(r.Objects)),
		HostID:       r.HostID,
		CreatedAt:    r.CreatedAt,
	}
	for id, p := range r.Participants {
		pc := *p
		cp.Participants[id] = &pc
	}
	for id, o := range r.Objects {
		oc := *o
		cp.Objects[id] = &oc
	}
	return cp
}
