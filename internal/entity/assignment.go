package entity

import "time"

// Assignment is one edge of the derangement committed when a party is locked:
// GiverID gives a gift to ReceiverID.
type Assignment struct {
	CreatedAt time.Time

	PartyID    string `gorm:"primaryKey;uniqueIndex:idx_assignment_party_receiver"`
	GiverID    string `gorm:"primaryKey"`
	ReceiverID string `gorm:"not null;uniqueIndex:idx_assignment_party_receiver"`
}
