package model

type GetParticipantsRequest struct {
	PartyID string `path:"party_id" json:"-"`
}

type GetParticipantsResponse struct {
	Participants []Participant `json:"participants"`
}

type GetParticipantsAdminRequest struct {
	PartyID  string `path:"party_id" json:"-"`
	Passcode string `json:"passcode"`
}

type GetParticipantsAdminResponse struct {
	Participants []AdminParticipant `json:"participants"`
}

type JoinPartyRequest struct {
	PartyID string `path:"party_id" json:"-"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

type JoinPartyResponse struct {
	Participant Participant `json:"participant"`
}

type UpdateParticipantRequest struct {
	PartyID       string `path:"party_id" json:"-"`
	ParticipantID string `path:"participant_id" json:"-"`
	Passcode      string `json:"passcode"`

	NewName  *string `json:"new_name"`
	NewEmail *string `json:"new_email"`
}

type UpdateParticipantResponse struct {
	Participant AdminParticipant `json:"participant"`
}

type RemoveParticipantRequest struct {
	PartyID       string `path:"party_id" json:"-"`
	ParticipantID string `path:"participant_id" json:"-"`
	Passcode      string `json:"passcode"`
}

type RemoveParticipantResponse struct{}

type ResendMyMatchRequest struct {
	PartyID string `path:"party_id" json:"-"`
	Email   string `json:"email"`
}

type ResendMyMatchResponse struct {
	Message string `json:"message"`
}
