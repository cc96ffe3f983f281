package domain

type Participant struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName,omitempty"`
	IsHost   bool   `json:"isHost"`
}

func NewParticipant(userID, userName string, isHost bool) *Participant {
	return &Participant{
		UserID:   userID,
		UserName: userName,
		IsHost:   isHost,
	}
}
