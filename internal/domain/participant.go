package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/questx-lab/secretsanta/internal/client"
	"github.com/questx-lab/secretsanta/internal/common"
	"github.com/questx-lab/secretsanta/internal/entity"
	"github.com/questx-lab/secretsanta/internal/model"
	"github.com/questx-lab/secretsanta/internal/repository"
	"github.com/questx-lab/secretsanta/pkg/errorx"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
	"gorm.io/gorm"
)

const matchSentMessage = "If this email is registered for the party, the assignment has been sent to it"

type ParticipantDomain interface {
	GetList(context.Context, *model.GetParticipantsRequest) (*model.GetParticipantsResponse, error)
	GetAdminList(context.Context, *model.GetParticipantsAdminRequest) (*model.GetParticipantsAdminResponse, error)
	Join(context.Context, *model.JoinPartyRequest) (*model.JoinPartyResponse, error)
	Update(context.Context, *model.UpdateParticipantRequest) (*model.UpdateParticipantResponse, error)
	Remove(context.Context, *model.RemoveParticipantRequest) (*model.RemoveParticipantResponse, error)
	ResendMyMatch(context.Context, *model.ResendMyMatchRequest) (*model.ResendMyMatchResponse, error)
}

type participantDomain struct {
	partyRepo       repository.PartyRepository
	participantRepo repository.ParticipantRepository
	assignmentRepo  repository.AssignmentRepository
	authorizer      common.Authorizer
	partyLocker     common.PartyLocker
	notifier        *notifier
}

func NewParticipantDomain(
	partyRepo repository.PartyRepository,
	participantRepo repository.ParticipantRepository,
	assignmentRepo repository.AssignmentRepository,
	authorizer common.Authorizer,
	partyLocker common.PartyLocker,
	mailCaller client.MailCaller,
) ParticipantDomain {
	return &participantDomain{
		partyRepo:       partyRepo,
		participantRepo: participantRepo,
		assignmentRepo:  assignmentRepo,
		authorizer:      authorizer,
		partyLocker:     partyLocker,
		notifier:        newNotifier(mailCaller),
	}
}

func (d *participantDomain) getParty(ctx context.Context, partyID string) (*entity.Party, error) {
	party, err := d.partyRepo.GetByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found party")
		}

		xcontext.Logger(ctx).Errorf("Cannot get party: %v", err)
		return nil, errorx.Unknown
	}

	return party, nil
}

func (d *participantDomain) GetList(
	ctx context.Context, req *model.GetParticipantsRequest,
) (*model.GetParticipantsResponse, error) {
	party, err := d.getParty(ctx, req.PartyID)
	if err != nil {
		return nil, err
	}

	participants, err := d.participantRepo.GetList(ctx, party.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get participants: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Participant{}
	for i := range participants {
		result = append(result, model.ConvertParticipant(&participants[i]))
	}

	return &model.GetParticipantsResponse{Participants: result}, nil
}

func (d *participantDomain) GetAdminList(
	ctx context.Context, req *model.GetParticipantsAdminRequest,
) (*model.GetParticipantsAdminResponse, error) {
	party, err := d.authorizer.Verify(ctx, req.PartyID, req.Passcode)
	if err != nil {
		return nil, err
	}

	participants, err := d.participantRepo.GetList(ctx, party.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get participants: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.AdminParticipant{}
	for i := range participants {
		result = append(result, model.ConvertAdminParticipant(&participants[i]))
	}

	return &model.GetParticipantsAdminResponse{Participants: result}, nil
}

// Join adds a participant under the hold of the party, so it either lands
// before the roster of a concurrent lock is frozen or sees the party locked.
func (d *participantDomain) Join(
	ctx context.Context, req *model.JoinPartyRequest,
) (*model.JoinPartyResponse, error) {
	name, err := checkName("name", req.Name)
	if err != nil {
		return nil, err
	}

	email, err := checkEmail(req.Email)
	if err != nil {
		return nil, err
	}

	release, err := acquireHold(ctx, d.partyLocker, req.PartyID)
	if err != nil {
		return nil, err
	}
	defer release()

	party, err := d.getParty(ctx, req.PartyID)
	if err != nil {
		return nil, err
	}

	if party.Status != entity.PartyOpen {
		return nil, errorx.New(errorx.PartyClosed, "Party is locked, cannot join anymore")
	}

	if err := d.checkEmailFree(ctx, party.ID, email); err != nil {
		return nil, err
	}

	participant := &entity.Participant{
		ID:      uuid.NewString(),
		PartyID: party.ID,
		Name:    name,
		Email:   email,
	}
	if err := d.participantRepo.Create(ctx, participant); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create participant: %v", err)
		return nil, errorx.Unknown
	}

	return &model.JoinPartyResponse{Participant: model.ConvertParticipant(participant)}, nil
}

func (d *participantDomain) checkEmailFree(ctx context.Context, partyID, email string) error {
	_, err := d.participantRepo.GetByEmail(ctx, partyID, email)
	if err == nil {
		return errorx.New(errorx.AlreadyExists, "This email is already registered for this party")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get participant by email: %v", err)
		return errorx.Unknown
	}

	return nil
}

// Update is allowed in both states. After the lock, the assignment is kept
// and the new name or address is used by the next resend.
func (d *participantDomain) Update(
	ctx context.Context, req *model.UpdateParticipantRequest,
) (*model.UpdateParticipantResponse, error) {
	party, release, err := verifyAndHold(
		ctx, d.authorizer, d.partyLocker, d.partyRepo, req.PartyID, req.Passcode)
	if err != nil {
		return nil, err
	}
	defer release()

	participant, err := d.participantRepo.GetByID(ctx, party.ID, req.ParticipantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found participant")
		}

		xcontext.Logger(ctx).Errorf("Cannot get participant: %v", err)
		return nil, errorx.Unknown
	}

	changes := map[string]any{}
	if req.NewName != nil {
		name, err := checkName("name", *req.NewName)
		if err != nil {
			return nil, err
		}
		changes["name"] = name
		participant.Name = name
	}

	if req.NewEmail != nil {
		email, err := checkEmail(*req.NewEmail)
		if err != nil {
			return nil, err
		}

		if email != participant.Email {
			if err := d.checkEmailFree(ctx, party.ID, email); err != nil {
				return nil, err
			}
			changes["email"] = email
			participant.Email = email
		}
	}

	if len(changes) > 0 {
		err := d.participantRepo.UpdateByID(ctx, party.ID, participant.ID, changes)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update participant: %v", err)
			return nil, errorx.Unknown
		}
	}

	return &model.UpdateParticipantResponse{
		Participant: model.ConvertAdminParticipant(participant),
	}, nil
}

func (d *participantDomain) Remove(
	ctx context.Context, req *model.RemoveParticipantRequest,
) (*model.RemoveParticipantResponse, error) {
	party, release, err := verifyAndHold(
		ctx, d.authorizer, d.partyLocker, d.partyRepo, req.PartyID, req.Passcode)
	if err != nil {
		return nil, err
	}
	defer release()

	if party.Status != entity.PartyOpen {
		return nil, errorx.New(errorx.PartyClosed, "Party is locked, cannot remove participants")
	}

	if err := d.participantRepo.DeleteByID(ctx, party.ID, req.ParticipantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found participant")
		}

		xcontext.Logger(ctx).Errorf("Cannot delete participant: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RemoveParticipantResponse{}, nil
}

// ResendMyMatch sends the stored assignment of one participant again. It
// answers the same whether the address is registered or not.
func (d *participantDomain) ResendMyMatch(
	ctx context.Context, req *model.ResendMyMatchRequest,
) (*model.ResendMyMatchResponse, error) {
	email, err := checkEmail(req.Email)
	if err != nil {
		return nil, err
	}

	party, err := d.getParty(ctx, req.PartyID)
	if err != nil {
		return nil, err
	}

	if party.Status != entity.PartyLocked {
		return nil, errorx.New(errorx.PartyNotLocked, "Party is not locked yet")
	}

	// The roster lookup and the mail run in the background, so the response
	// time does not tell whether the address is registered.
	go d.resendMatch(context.WithoutCancel(ctx), party, email)

	return &model.ResendMyMatchResponse{Message: matchSentMessage}, nil
}

func (d *participantDomain) resendMatch(ctx context.Context, party *entity.Party, email string) {
	giver, err := d.participantRepo.GetByEmail(ctx, party.ID, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get participant by email: %v", err)
		}
		return
	}

	assignment, err := d.assignmentRepo.GetByGiverID(ctx, party.ID, giver.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get assignment of %s: %v", giver.ID, err)
		return
	}

	receiver, err := d.participantRepo.GetByID(ctx, party.ID, assignment.ReceiverID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get receiver %s: %v", assignment.ReceiverID, err)
		return
	}

	if err := d.notifier.notifyMatch(ctx, party, giver, receiver); err != nil {
		xcontext.Logger(ctx).Warnf("Assignment of %s is not delivered: %v", giver.ID, err)
	}
}
