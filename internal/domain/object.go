package domain

// Vector3 marshals as a 3-element JSON array.
type Vector3 [3]float64

// Quaternion marshals as [x, y, z, w].
type Quaternion [4]float64

// VirtualObject is a client-placed object shared by every participant in
// a room. Object IDs are chosen by the placing client and must be unique
// within the room. Objects are created and field-merged, never deleted.
type VirtualObject struct {
	ObjectID   string     `json:"objectId"`
	UserID     string     `json:"userId"`
	Position   Vector3    `json:"position"`
	Rotation   Quaternion `json:"rotation"`
	ObjectType string     `json:"objectType,omitempty"`
}

// Merge overwrites only the supplied fields, keeping identity and type
// from the existing object.
func (o *VirtualObject) Merge(position *Vector3, rotation *Quaternion) {
	if position != nil {
		o.Position = *position
	}
	if rotation != nil {
		o.Rotation = *rotation
	}
}
