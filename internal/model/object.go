package model

type Party struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	EventDate        string   `json:"event_date"`
	EventTime        string   `json:"event_time"`
	Budget           *float64 `json:"budget"`
	Currency         string   `json:"currency"`
	OrganizerName    string   `json:"organizer_name"`
	Status           string   `json:"status"`
	ParticipantCount int64    `json:"participant_count"`
	LockedAt         string   `json:"locked_at,omitempty"`
	CreatedAt        string   `json:"created_at"`
}

type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AdminParticipant struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}
