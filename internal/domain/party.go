package domain

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/questx-lab/secretsanta/internal/client"
	"github.com/questx-lab/secretsanta/internal/common"
	"github.com/questx-lab/secretsanta/internal/domain/matching"
	"github.com/questx-lab/secretsanta/internal/entity"
	"github.com/questx-lab/secretsanta/internal/model"
	"github.com/questx-lab/secretsanta/internal/repository"
	"github.com/questx-lab/secretsanta/pkg/crypto"
	"github.com/questx-lab/secretsanta/pkg/errorx"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
	"gorm.io/gorm"
)

const (
	defaultPartyIDLength  = 8
	defaultPasscodeLength = 12
	maxPartyIDAttempts    = 10
)

const passcodeSentMessage = "If the party exists, its passcode has been sent to the organizer"

type PartyDomain interface {
	Create(context.Context, *model.CreatePartyRequest) (*model.CreatePartyResponse, error)
	Get(context.Context, *model.GetPartyRequest) (*model.GetPartyResponse, error)
	Update(context.Context, *model.UpdatePartyRequest) (*model.UpdatePartyResponse, error)
	Delete(context.Context, *model.DeletePartyRequest) (*model.DeletePartyResponse, error)
	Lock(context.Context, *model.LockPartyRequest) (*model.LockPartyResponse, error)
	ResendAllEmails(context.Context, *model.ResendAllEmailsRequest) (*model.ResendAllEmailsResponse, error)
	ResendPasscode(context.Context, *model.ResendPasscodeRequest) (*model.ResendPasscodeResponse, error)
}

type partyDomain struct {
	partyRepo       repository.PartyRepository
	participantRepo repository.ParticipantRepository
	assignmentRepo  repository.AssignmentRepository
	authorizer      common.Authorizer
	partyLocker     common.PartyLocker
	matcher         matching.Matcher
	sealer          *crypto.Sealer
	notifier        *notifier
}

func NewPartyDomain(
	partyRepo repository.PartyRepository,
	participantRepo repository.ParticipantRepository,
	assignmentRepo repository.AssignmentRepository,
	authorizer common.Authorizer,
	partyLocker common.PartyLocker,
	matcher matching.Matcher,
	sealer *crypto.Sealer,
	mailCaller client.MailCaller,
) PartyDomain {
	return &partyDomain{
		partyRepo:       partyRepo,
		participantRepo: participantRepo,
		assignmentRepo:  assignmentRepo,
		authorizer:      authorizer,
		partyLocker:     partyLocker,
		matcher:         matcher,
		sealer:          sealer,
		notifier:        newNotifier(mailCaller),
	}
}

func (d *partyDomain) Create(
	ctx context.Context, req *model.CreatePartyRequest,
) (*model.CreatePartyResponse, error) {
	name, err := checkName("party name", req.Name)
	if err != nil {
		return nil, err
	}

	description, err := checkDescription(req.Description)
	if err != nil {
		return nil, err
	}

	eventDate, err := checkEventDate(req.EventDate)
	if err != nil {
		return nil, err
	}

	eventTime, err := checkEventTime(req.EventTime)
	if err != nil {
		return nil, err
	}

	budget := sql.NullFloat64{}
	if req.Budget != nil {
		if err := checkBudget(*req.Budget); err != nil {
			return nil, err
		}
		budget = sql.NullFloat64{Valid: true, Float64: *req.Budget}
	}

	currency, err := checkCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	organizerName, err := checkName("organizer name", req.OrganizerName)
	if err != nil {
		return nil, err
	}

	organizerEmail, err := checkEmail(req.OrganizerEmail)
	if err != nil {
		return nil, err
	}

	partyCfg := xcontext.Configs(ctx).Party
	passcodeLength := partyCfg.PasscodeLength
	if passcodeLength <= 0 {
		passcodeLength = defaultPasscodeLength
	}

	passcode := crypto.GenerateRandomCode(uint(passcodeLength))
	passcodeHash, err := crypto.HashPasscode(passcode, xcontext.Configs(ctx).Auth.PasscodeCost)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot hash passcode: %v", err)
		return nil, errorx.Unknown
	}

	sealedPasscode, err := d.sealer.Seal(passcode)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot seal passcode: %v", err)
		return nil, errorx.Unknown
	}

	party := &entity.Party{
		Name:           name,
		Description:    description,
		EventDate:      eventDate,
		EventTime:      eventTime,
		Budget:         budget,
		Currency:       currency,
		OrganizerName:  organizerName,
		OrganizerEmail: organizerEmail,
		PasscodeHash:   passcodeHash,
		SealedPasscode: sealedPasscode,
		Status:         entity.PartyOpen,
	}

	// Two requests may draw the same free id, the loser fails on the primary
	// key and draws again.
	for attempt := 0; ; attempt++ {
		if attempt == maxPartyIDAttempts {
			xcontext.Logger(ctx).Errorf("Cannot find a free party id after %d attempts", attempt)
			return nil, errorx.Unknown
		}

		party.ID, err = d.newPartyID(ctx, partyCfg.IDLength)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot generate party id: %v", err)
			return nil, errorx.Unknown
		}

		if party.ID == "" {
			continue
		}

		if err := d.partyRepo.Create(ctx, party); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot create party %s: %v", party.ID, err)
			continue
		}

		break
	}

	if err := d.notifier.notifyPasscode(ctx, party, passcode); err != nil {
		xcontext.Logger(ctx).Warnf("Passcode of party %s is not delivered: %v", party.ID, err)
	}

	return &model.CreatePartyResponse{
		Party:    model.ConvertParty(party, 0),
		Passcode: passcode,
	}, nil
}

// newPartyID returns an empty id if the drawn one is already taken.
func (d *partyDomain) newPartyID(ctx context.Context, length int) (string, error) {
	if length <= 0 {
		length = defaultPartyIDLength
	}

	id := crypto.GenerateRandomCode(uint(length))
	taken, err := d.partyRepo.IsIDTaken(ctx, id)
	if err != nil {
		return "", err
	}

	if taken {
		return "", nil
	}

	return id, nil
}

func (d *partyDomain) Get(
	ctx context.Context, req *model.GetPartyRequest,
) (*model.GetPartyResponse, error) {
	party, err := d.partyRepo.GetByID(ctx, req.PartyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found party")
		}

		xcontext.Logger(ctx).Errorf("Cannot get party: %v", err)
		return nil, errorx.Unknown
	}

	count, err := d.participantRepo.Count(ctx, party.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count participants: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetPartyResponse{Party: model.ConvertParty(party, count)}, nil
}

func (d *partyDomain) Update(
	ctx context.Context, req *model.UpdatePartyRequest,
) (*model.UpdatePartyResponse, error) {
	party, release, err := verifyAndHold(
		ctx, d.authorizer, d.partyLocker, d.partyRepo, req.PartyID, req.Passcode)
	if err != nil {
		return nil, err
	}
	defer release()

	changes := map[string]any{}
	if req.Name != nil {
		name, err := checkName("party name", *req.Name)
		if err != nil {
			return nil, err
		}
		changes["name"] = name
	}

	if req.Description != nil {
		description, err := checkDescription(*req.Description)
		if err != nil {
			return nil, err
		}
		changes["description"] = description
	}

	if req.EventDate != nil {
		eventDate, err := checkEventDate(*req.EventDate)
		if err != nil {
			return nil, err
		}
		changes["event_date"] = eventDate
	}

	if req.EventTime != nil {
		eventTime, err := checkEventTime(*req.EventTime)
		if err != nil {
			return nil, err
		}
		changes["event_time"] = eventTime
	}

	if req.Budget != nil {
		if err := checkBudget(*req.Budget); err != nil {
			return nil, err
		}
		changes["budget"] = sql.NullFloat64{Valid: true, Float64: *req.Budget}
	}

	if req.Currency != nil {
		currency, err := checkCurrency(*req.Currency)
		if err != nil {
			return nil, err
		}
		changes["currency"] = currency
	}

	if len(changes) > 0 {
		if err := d.partyRepo.UpdateByID(ctx, party.ID, changes); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update party: %v", err)
			return nil, errorx.Unknown
		}

		party, err = d.partyRepo.GetByID(ctx, party.ID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get party: %v", err)
			return nil, errorx.Unknown
		}
	}

	count, err := d.participantRepo.Count(ctx, party.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count participants: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdatePartyResponse{Party: model.ConvertParty(party, count)}, nil
}

func (d *partyDomain) Delete(
	ctx context.Context, req *model.DeletePartyRequest,
) (*model.DeletePartyResponse, error) {
	party, release, err := verifyAndHold(
		ctx, d.authorizer, d.partyLocker, d.partyRepo, req.PartyID, req.Passcode)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.assignmentRepo.DeleteByPartyID(ctx, party.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete assignments: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.participantRepo.DeleteByPartyID(ctx, party.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete participants: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.partyRepo.DeleteByID(ctx, party.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete party: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit deletion of party: %v", err)
		return nil, errorx.Unknown
	}

	return &model.DeletePartyResponse{}, nil
}

// Lock freezes the roster, draws the assignment and commits both the
// assignment and the locked status at once. Mails are sent after the hold
// is released and their failures never undo the lock.
func (d *partyDomain) Lock(
	ctx context.Context, req *model.LockPartyRequest,
) (*model.LockPartyResponse, error) {
	party, release, err := verifyAndHold(
		ctx, d.authorizer, d.partyLocker, d.partyRepo, req.PartyID, req.Passcode)
	if err != nil {
		return nil, err
	}
	releaseOnce := sync.OnceFunc(release)
	defer releaseOnce()

	if party.Status != entity.PartyOpen {
		common.IncLockCounter("already_locked")
		return nil, errorx.New(errorx.AlreadyLocked, "Party is already locked")
	}

	participants, err := d.participantRepo.GetList(ctx, party.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get participants: %v", err)
		return nil, errorx.Unknown
	}

	if len(participants) < 2 {
		common.IncLockCounter("insufficient_participants")
		return nil, errorx.New(errorx.InsufficientParticipants,
			"At least 2 participants are needed, got %d", len(participants))
	}

	roster := make([]string, 0, len(participants))
	for _, p := range participants {
		roster = append(roster, p.ID)
	}

	matches, err := d.match(ctx, roster)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot match participants of party %s: %v", party.ID, err)
		common.IncLockCounter("matching_failed")
		return nil, errorx.New(errorx.MatchingFailed, "Cannot match participants, please retry")
	}

	if !matching.IsDerangement(roster, matches) {
		xcontext.Logger(ctx).Errorf("Matcher returned an invalid assignment for party %s", party.ID)
		common.IncLockCounter("matching_failed")
		return nil, errorx.New(errorx.MatchingFailed, "Cannot match participants, please retry")
	}

	assignments := make([]entity.Assignment, 0, len(roster))
	for _, giverID := range roster {
		assignments = append(assignments, entity.Assignment{
			PartyID:    party.ID,
			GiverID:    giverID,
			ReceiverID: matches[giverID],
		})
	}

	lockedAt := time.Now()
	if err := d.commitLock(ctx, party.ID, assignments, lockedAt); err != nil {
		common.IncLockCounter("matching_failed")
		return nil, err
	}

	common.IncLockCounter("success")
	party.Status = entity.PartyLocked
	party.LockedAt = sql.NullTime{Valid: true, Time: lockedAt}

	releaseOnce()

	notified, failed := d.notifier.notifyMatches(ctx, party, assignments, participants)
	if failed > 0 {
		xcontext.Logger(ctx).Warnf("Party %s is locked but %d of %d mails failed",
			party.ID, failed, len(assignments))
	}

	return &model.LockPartyResponse{
		Party:    model.ConvertParty(party, int64(len(participants))),
		Notified: notified,
		Failed:   failed,
	}, nil
}

// match runs the matcher bounded by the matching timeout, even if the
// matcher does not watch its context.
func (d *partyDomain) match(ctx context.Context, roster []string) (map[string]string, error) {
	if timeout := xcontext.Configs(ctx).Party.MatchingTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		matches map[string]string
		err     error
	}

	resultChan := make(chan result, 1)
	go func() {
		matches, err := d.matcher.Match(ctx, roster)
		resultChan <- result{matches: matches, err: err}
	}()

	select {
	case r := <-resultChan:
		return r.matches, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// commitLock writes the assignment and flips the status in one transaction.
// If the commit reports an error, the status is read again: the transition
// happened if and only if the party is locked now.
func (d *partyDomain) commitLock(
	ctx context.Context, partyID string, assignments []entity.Assignment, lockedAt time.Time,
) error {
	matchingFailed := errorx.New(errorx.MatchingFailed, "Cannot save the matching, please retry")

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	if err := d.assignmentRepo.CreateMany(txCtx, assignments); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create assignments of party %s: %v", partyID, err)
		return matchingFailed
	}

	if err := d.partyRepo.Lock(txCtx, partyID, lockedAt); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot lock party %s: %v", partyID, err)
		return matchingFailed
	}

	if err := xcontext.WithCommitDBTransaction(txCtx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit lock of party %s: %v", partyID, err)

		party, getErr := d.partyRepo.GetByID(ctx, partyID)
		if getErr != nil || party.Status != entity.PartyLocked {
			return matchingFailed
		}
	}

	return nil
}

func (d *partyDomain) ResendAllEmails(
	ctx context.Context, req *model.ResendAllEmailsRequest,
) (*model.ResendAllEmailsResponse, error) {
	party, err := d.authorizer.Verify(ctx, req.PartyID, req.Passcode)
	if err != nil {
		return nil, err
	}

	if party.Status != entity.PartyLocked {
		return nil, errorx.New(errorx.PartyNotLocked, "Party is not locked yet")
	}

	assignments, err := d.assignmentRepo.GetList(ctx, party.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get assignments: %v", err)
		return nil, errorx.Unknown
	}

	participants, err := d.participantRepo.GetList(ctx, party.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get participants: %v", err)
		return nil, errorx.Unknown
	}

	notified, failed := d.notifier.notifyMatches(ctx, party, assignments, participants)
	return &model.ResendAllEmailsResponse{
		Message:  "Emails have been sent again",
		Notified: notified,
		Failed:   failed,
	}, nil
}

// ResendPasscode mails the passcode to the organizer. The response is the
// same whether the party exists or not.
func (d *partyDomain) ResendPasscode(
	ctx context.Context, req *model.ResendPasscodeRequest,
) (*model.ResendPasscodeResponse, error) {
	resp := &model.ResendPasscodeResponse{Message: passcodeSentMessage}

	party, err := d.partyRepo.GetByID(ctx, req.PartyID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get party: %v", err)
		}
		return resp, nil
	}

	passcode, err := d.sealer.Open(party.SealedPasscode)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot open passcode of party %s: %v", party.ID, err)
		return resp, nil
	}

	if err := d.notifier.notifyPasscode(ctx, party, passcode); err != nil {
		xcontext.Logger(ctx).Warnf("Passcode of party %s is not delivered: %v", party.ID, err)
	}

	return resp, nil
}
