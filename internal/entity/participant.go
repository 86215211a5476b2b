package entity

import "time"

// Participant rows are hard deleted. Email is stored lower-cased so that the
// unique index is case-insensitive.
type Participant struct {
	ID        string `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	PartyID string `gorm:"not null;uniqueIndex:idx_participant_party_email"`
	Name    string `gorm:"not null"`
	Email   string `gorm:"not null;uniqueIndex:idx_participant_party_email"`
}
