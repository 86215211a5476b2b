package domain

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/questx-lab/secretsanta/config"
	"github.com/questx-lab/secretsanta/internal/common"
	"github.com/questx-lab/secretsanta/internal/domain/matching"
	"github.com/questx-lab/secretsanta/internal/entity"
	"github.com/questx-lab/secretsanta/internal/repository"
	"github.com/questx-lab/secretsanta/pkg/crypto"
	"github.com/questx-lab/secretsanta/pkg/errorx"
	"github.com/questx-lab/secretsanta/pkg/testutil"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type testDomains struct {
	party       PartyDomain
	participant ParticipantDomain

	partyRepo       repository.PartyRepository
	participantRepo repository.ParticipantRepository
	assignmentRepo  repository.AssignmentRepository
	locker          common.PartyLocker
	mailCaller      *testutil.MockMailCaller
}

func newTestDomains(ctx context.Context, matcher matching.Matcher) *testDomains {
	return newTestDomainsWith(ctx, matcher, nil, nil)
}

// newTestDomainsWith builds the domains around the given party repository
// and locker. Nil ones are replaced by the real implementations.
func newTestDomainsWith(
	ctx context.Context,
	matcher matching.Matcher,
	partyRepo repository.PartyRepository,
	locker common.PartyLocker,
) *testDomains {
	if matcher == nil {
		matcher = matching.NewRandomMatcher()
	}

	if partyRepo == nil {
		partyRepo = repository.NewPartyRepository()
	}

	if locker == nil {
		locker = common.NewLocalPartyLocker()
	}

	cfg := xcontext.Configs(ctx)
	d := &testDomains{
		partyRepo:       partyRepo,
		participantRepo: repository.NewParticipantRepository(),
		assignmentRepo:  repository.NewAssignmentRepository(),
		locker:          locker,
		mailCaller:      &testutil.MockMailCaller{},
	}
	authorizer := common.NewPasscodeVerifier(d.partyRepo, cfg.Auth.PasscodeCost)

	d.party = NewPartyDomain(
		d.partyRepo,
		d.participantRepo,
		d.assignmentRepo,
		authorizer,
		d.locker,
		matcher,
		crypto.NewSealer(cfg.Auth.PasscodeSecret),
		d.mailCaller,
	)
	d.participant = NewParticipantDomain(
		d.partyRepo,
		d.participantRepo,
		d.assignmentRepo,
		authorizer,
		d.locker,
		d.mailCaller,
	)

	return d
}

func withConfigs(ctx context.Context, modify func(cfg *config.Configs)) context.Context {
	cfg := xcontext.Configs(ctx)
	modify(&cfg)
	return xcontext.WithConfigs(ctx, cfg)
}

func requireErrorCode(t *testing.T, err error, code errorx.Code) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errorx.Is(err, code), "got error %v, want code %d", err, code)
}

func requireStatus(t *testing.T, ctx context.Context, d *testDomains, partyID string, status entity.PartyStatus) {
	t.Helper()
	party, err := d.partyRepo.GetByID(ctx, partyID)
	require.NoError(t, err)
	require.Equal(t, status, party.Status)
}

// assignmentOf returns the stored assignment as a giver to receiver map.
func assignmentOf(t *testing.T, ctx context.Context, d *testDomains, partyID string) map[string]string {
	t.Helper()
	assignments, err := d.assignmentRepo.GetList(ctx, partyID)
	require.NoError(t, err)

	result := map[string]string{}
	for _, a := range assignments {
		result[a.GiverID] = a.ReceiverID
	}
	return result
}

func idsOf(participants []entity.Participant) []string {
	ids := []string{}
	for _, p := range participants {
		ids = append(ids, p.ID)
	}
	return ids
}

// failingLockPartyRepository fails the status update of the lock transition,
// after the assignment rows have been written in the same transaction.
type failingLockPartyRepository struct {
	repository.PartyRepository
	err error
}

func (r *failingLockPartyRepository) Lock(context.Context, string, time.Time) error {
	return r.err
}

// countingPartyLocker counts how many times a hold was asked for.
type countingPartyLocker struct {
	common.PartyLocker
	calls atomic.Int32
}

func (l *countingPartyLocker) Lock(ctx context.Context, partyID string) (func(), error) {
	l.calls.Add(1)
	return l.PartyLocker.Lock(ctx, partyID)
}
