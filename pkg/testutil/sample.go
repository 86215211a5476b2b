package testutil

import (
	"context"
	"reflect"

	"github.com/google/uuid"
	"github.com/questx-lab/secretsanta/internal/entity"
	"github.com/questx-lab/secretsanta/internal/repository"
	"github.com/questx-lab/secretsanta/pkg/crypto"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
)

// SamplePasscode is the passcode of every sample party unless init sets
// another PasscodeHash.
const SamplePasscode = "SamplePasscode"

// SampleParty creates a new open party in database with many fields are
// randomized. The sample party can be overwritten by non-zero fields of init.
//
// This function returns the sample party.
func SampleParty(ctx context.Context, init *entity.Party) (entity.Party, error) {
	partyRepo := repository.NewPartyRepository()
	authCfg := xcontext.Configs(ctx).Auth

	passcodeHash, err := crypto.HashPasscode(SamplePasscode, authCfg.PasscodeCost)
	if err != nil {
		return entity.Party{}, err
	}

	sealedPasscode, err := crypto.NewSealer(authCfg.PasscodeSecret).Seal(SamplePasscode)
	if err != nil {
		return entity.Party{}, err
	}

	sample := &entity.Party{
		Base:           entity.Base{ID: crypto.GenerateRandomCode(8)},
		Name:           "Party " + uuid.NewString()[:8],
		Description:    "Bring something handmade",
		EventDate:      "2026-12-24",
		EventTime:      "19:30",
		Currency:       "USD",
		OrganizerName:  "Olivia",
		OrganizerEmail: "olivia@example.com",
		PasscodeHash:   passcodeHash,
		SealedPasscode: sealedPasscode,
		Status:         entity.PartyOpen,
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := partyRepo.Create(ctx, sample); err != nil {
		return *sample, err
	}
	return *sample, nil
}

// SampleParticipant creates a participant of partyID whose email is derived
// from name.
func SampleParticipant(ctx context.Context, partyID, name string) (entity.Participant, error) {
	participantRepo := repository.NewParticipantRepository()

	sample := &entity.Participant{
		ID:      uuid.NewString(),
		PartyID: partyID,
		Name:    name,
		Email:   name + "@example.com",
	}

	if err := participantRepo.Create(ctx, sample); err != nil {
		return *sample, err
	}
	return *sample, nil
}

// SampleParticipants creates one participant per name, in order.
func SampleParticipants(ctx context.Context, partyID string, names ...string) ([]entity.Participant, error) {
	result := []entity.Participant{}
	for _, name := range names {
		p, err := SampleParticipant(ctx, partyID, name)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}

	return result, nil
}

func overwriteFields[T any](origin *T, overwrite T) {
	originValue := reflect.ValueOf(origin).Elem()
	overwriteValue := reflect.ValueOf(overwrite)

	for i := 0; i < overwriteValue.NumField(); i++ {
		overwriteField := overwriteValue.Field(i)
		if !overwriteField.IsZero() {
			originValue.Field(i).Set(overwriteField)
		}
	}
}
