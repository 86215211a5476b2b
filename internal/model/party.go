package model

type CreatePartyRequest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	EventDate      string   `json:"event_date"`
	EventTime      string   `json:"event_time"`
	Budget         *float64 `json:"budget"`
	Currency       string   `json:"currency"`
	OrganizerName  string   `json:"organizer_name"`
	OrganizerEmail string   `json:"organizer_email"`
}

type CreatePartyResponse struct {
	Party    Party  `json:"party"`
	Passcode string `json:"passcode"`
}

type GetPartyRequest struct {
	PartyID string `path:"party_id" json:"-"`
}

type GetPartyResponse struct {
	Party Party `json:"party"`
}

type UpdatePartyRequest struct {
	PartyID  string `path:"party_id" json:"-"`
	Passcode string `json:"passcode"`

	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	EventDate   *string  `json:"event_date"`
	EventTime   *string  `json:"event_time"`
	Budget      *float64 `json:"budget"`
	Currency    *string  `json:"currency"`
}

type UpdatePartyResponse struct {
	Party Party `json:"party"`
}

type DeletePartyRequest struct {
	PartyID  string `path:"party_id" json:"-"`
	Passcode string `json:"passcode"`
}

type DeletePartyResponse struct{}

type LockPartyRequest struct {
	PartyID  string `path:"party_id" json:"-"`
	Passcode string `json:"passcode"`
}

type LockPartyResponse struct {
	Party Party `json:"party"`

	// Notified and Failed count the match mails of the lock. Failed mails are
	// sent again by resending all mails.
	Notified int `json:"notified"`
	Failed   int `json:"failed"`
}

type ResendAllEmailsRequest struct {
	PartyID  string `path:"party_id" json:"-"`
	Passcode string `json:"passcode"`
}

type ResendAllEmailsResponse struct {
	Message  string `json:"message"`
	Notified int    `json:"notified"`
	Failed   int    `json:"failed"`
}

type ResendPasscodeRequest struct {
	PartyID string `path:"party_id" json:"-"`
}

type ResendPasscodeResponse struct {
	Message string `json:"message"`
}
