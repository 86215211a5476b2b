package model

import (
	"time"

	"github.com/questx-lab/secretsanta/internal/entity"
)

const DefaultTimeLayout string = time.RFC3339Nano
const DefaultDateLayout string = "2006-01-02"
const DefaultClockLayout string = "15:04"

// ConvertParty never exposes the organizer email nor anything derived from
// the passcode.
func ConvertParty(party *entity.Party, participantCount int64) Party {
	if party == nil {
		return Party{}
	}

	var budget *float64
	if party.Budget.Valid {
		value := party.Budget.Float64
		budget = &value
	}

	lockedAt := ""
	if party.LockedAt.Valid {
		lockedAt = party.LockedAt.Time.Format(DefaultTimeLayout)
	}

	return Party{
		ID:               party.ID,
		Name:             party.Name,
		Description:      party.Description,
		EventDate:        party.EventDate,
		EventTime:        party.EventTime,
		Budget:           budget,
		Currency:         party.Currency,
		OrganizerName:    party.OrganizerName,
		Status:           string(party.Status),
		ParticipantCount: participantCount,
		LockedAt:         lockedAt,
		CreatedAt:        party.CreatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertParticipant(participant *entity.Participant) Participant {
	if participant == nil {
		return Participant{}
	}

	return Participant{ID: participant.ID, Name: participant.Name}
}

func ConvertAdminParticipant(participant *entity.Participant) AdminParticipant {
	if participant == nil {
		return AdminParticipant{}
	}

	return AdminParticipant{
		ID:        participant.ID,
		Name:      participant.Name,
		Email:     participant.Email,
		CreatedAt: participant.CreatedAt.Format(DefaultTimeLayout),
	}
}
