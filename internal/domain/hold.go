package domain

import (
	"context"
	"errors"

	"github.com/questx-lab/secretsanta/internal/common"
	"github.com/questx-lab/secretsanta/internal/entity"
	"github.com/questx-lab/secretsanta/internal/repository"
	"github.com/questx-lab/secretsanta/pkg/errorx"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
	"gorm.io/gorm"
)

var errPartyBusy = errorx.New(errorx.Unavailable, "Party is busy, please retry")

// acquireHold takes the exclusive hold of a party, waiting at most the
// configured hold timeout.
func acquireHold(ctx context.Context, locker common.PartyLocker, partyID string) (func(), error) {
	waitCtx := ctx
	if timeout := xcontext.Configs(ctx).Party.HoldTimeout; timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	release, err := locker.Lock(waitCtx, partyID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, errPartyBusy
		}

		xcontext.Logger(ctx).Errorf("Cannot acquire hold of party %s: %v", partyID, err)
		return nil, errorx.Unknown
	}

	return release, nil
}

// verifyAndHold checks the passcode before waiting for the hold, so wrong
// passcodes never keep a party busy. The party is read again once held.
func verifyAndHold(
	ctx context.Context,
	authorizer common.Authorizer,
	locker common.PartyLocker,
	partyRepo repository.PartyRepository,
	partyID, passcode string,
) (*entity.Party, func(), error) {
	if _, err := authorizer.Verify(ctx, partyID, passcode); err != nil {
		return nil, nil, err
	}

	release, err := acquireHold(ctx, locker, partyID)
	if err != nil {
		return nil, nil, err
	}

	party, err := partyRepo.GetByID(ctx, partyID)
	if err != nil {
		release()

		// Deleted while we were waiting.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, common.ErrInvalidPasscode
		}

		xcontext.Logger(ctx).Errorf("Cannot get party: %v", err)
		return nil, nil, errorx.Unknown
	}

	return party, release, nil
}
