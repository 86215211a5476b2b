package domain

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/questx-lab/secretsanta/internal/client"
	"github.com/questx-lab/secretsanta/internal/common"
	"github.com/questx-lab/secretsanta/internal/entity"
	"github.com/questx-lab/secretsanta/pkg/mailer"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
	"golang.org/x/sync/errgroup"
)

const (
	mailKindMatch    = "match"
	mailKindPasscode = "passcode"
)

const defaultNotificationConcurrency = 4

// notifier renders and hands out the mails of a party. It never changes any
// state, a failed mail is only counted and logged.
type notifier struct {
	mailCaller client.MailCaller
}

func newNotifier(mailCaller client.MailCaller) *notifier {
	return &notifier{mailCaller: mailCaller}
}

// notifyMatches sends one mail per giver of the stored assignment. Names and
// addresses are read from participants, so later edits of a participant are
// honored by a resend.
func (n *notifier) notifyMatches(
	ctx context.Context,
	party *entity.Party,
	assignments []entity.Assignment,
	participants []entity.Participant,
) (int, int) {
	byID := make(map[string]*entity.Participant, len(participants))
	for i := range participants {
		byID[participants[i].ID] = &participants[i]
	}

	concurrency := xcontext.Configs(ctx).Notification.Concurrency
	if concurrency <= 0 {
		concurrency = defaultNotificationConcurrency
	}

	var notified, failed atomic.Int64
	g := errgroup.Group{}
	g.SetLimit(concurrency)
	for _, assignment := range assignments {
		giver, receiver := byID[assignment.GiverID], byID[assignment.ReceiverID]
		if giver == nil || receiver == nil {
			xcontext.Logger(ctx).Errorf("Assignment %s -> %s of party %s refers to an unknown participant",
				assignment.GiverID, assignment.ReceiverID, party.ID)
			failed.Add(1)
			continue
		}

		g.Go(func() error {
			if err := n.notifyMatch(ctx, party, giver, receiver); err != nil {
				failed.Add(1)
			} else {
				notified.Add(1)
			}
			return nil
		})
	}

	// Goroutines never return an error.
	_ = g.Wait()

	return int(notified.Load()), int(failed.Load())
}

// notifyMatch tells giver who they give a gift to. The mail never contains
// the email address of the receiver.
func (n *notifier) notifyMatch(
	ctx context.Context, party *entity.Party, giver, receiver *entity.Participant,
) error {
	data := common.MatchMailData{
		GiverName:    giver.Name,
		ReceiverName: receiver.Name,
		PartyName:    party.Name,
		EventDate:    party.EventDate,
		EventTime:    party.EventTime,
		Currency:     party.Currency,
		Description:  party.Description,
	}
	if party.Budget.Valid {
		data.Budget = fmt.Sprintf("%.2f", party.Budget.Float64)
	}

	html, err := common.ExecuteTemplate(common.MatchMailTemplate, data)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot render match mail: %v", err)
		return err
	}

	return n.send(ctx, mailKindMatch, mailer.Message{
		To:      giver.Email,
		Subject: fmt.Sprintf("Your Secret Santa assignment for %s", party.Name),
		HTML:    html,
	})
}

func (n *notifier) notifyPasscode(ctx context.Context, party *entity.Party, passcode string) error {
	html, err := common.ExecuteTemplate(common.PasscodeMailTemplate, common.PasscodeMailData{
		OrganizerName: party.OrganizerName,
		PartyName:     party.Name,
		PartyID:       party.ID,
		Passcode:      passcode,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot render passcode mail: %v", err)
		return err
	}

	return n.send(ctx, mailKindPasscode, mailer.Message{
		To:      party.OrganizerEmail,
		Subject: fmt.Sprintf("Your Secret Santa party %s", party.Name),
		HTML:    html,
	})
}

func (n *notifier) send(ctx context.Context, kind string, msg mailer.Message) error {
	if timeout := xcontext.Configs(ctx).Notification.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := n.mailCaller.Send(ctx, msg); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot send %s mail to %s: %v", kind, msg.To, err)
		common.IncMailCounter(kind, "failure")
		return err
	}

	common.IncMailCounter(kind, "success")
	return nil
}
