package rooms

import (
	"time"

	"github.com/anchorsync/anchorsync/internal/domain"
)

type roomResponse struct {
	RoomID           string               `json:"roomId"`
	HostID           string               `json:"hostId"`
	ParticipantCount int                  `json:"participantCount"`
	ObjectCount      int                  `json:"objectCount"`
	Participants     []domain.Participant `json:"participants"`
	CreatedAt        time.Time            `json:"createdAt"`
}

type statsResponse struct {
	Rooms      int `json:"rooms"`
	Goroutines int `json:"goroutines"`
}
