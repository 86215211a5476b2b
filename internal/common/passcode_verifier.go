package common

import (
	"context"
	"errors"

	"github.com/questx-lab/secretsanta/internal/entity"
	"github.com/questx-lab/secretsanta/internal/repository"
	"github.com/questx-lab/secretsanta/pkg/crypto"
	"github.com/questx-lab/secretsanta/pkg/errorx"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
	"gorm.io/gorm"
)

// ErrInvalidPasscode is the only failure a caller can observe from a failed
// verification, whether the party exists or not.
var ErrInvalidPasscode = errorx.New(errorx.Unauthorized, "Invalid passcode")

// Authorizer checks the passcode of a party on every privileged call. There
// is no session, so a lockout or rate limiter can wrap it without changing
// the contract.
type Authorizer interface {
	Verify(ctx context.Context, partyID, passcode string) (*entity.Party, error)
}

type PasscodeVerifier struct {
	partyRepo   repository.PartyRepository
	dummyDigest string
}

// NewPasscodeVerifier computes a throwaway digest with the configured cost.
// It is compared against when the party does not exist, so that unknown and
// known parties take the same time to reject.
func NewPasscodeVerifier(partyRepo repository.PartyRepository, cost int) *PasscodeVerifier {
	digest, err := crypto.HashPasscode(crypto.GenerateRandomCode(16), cost)
	if err != nil {
		panic(err)
	}

	return &PasscodeVerifier{partyRepo: partyRepo, dummyDigest: digest}
}

func (verifier *PasscodeVerifier) Verify(
	ctx context.Context,
	partyID, passcode string,
) (*entity.Party, error) {
	party, err := verifier.partyRepo.GetByID(ctx, partyID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get party: %v", err)
			return nil, errorx.Unknown
		}

		crypto.ComparePasscode(verifier.dummyDigest, passcode)
		return nil, ErrInvalidPasscode
	}

	if !crypto.ComparePasscode(party.PasscodeHash, passcode) {
		return nil, ErrInvalidPasscode
	}

	return party, nil
}
