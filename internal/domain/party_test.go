package domain

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/questx-lab/secretsanta/config"
	"github.com/questx-lab/secretsanta/internal/common"
	"github.com/questx-lab/secretsanta/internal/domain/matching"
	"github.com/questx-lab/secretsanta/internal/entity"
	"github.com/questx-lab/secretsanta/internal/model"
	"github.com/questx-lab/secretsanta/internal/repository"
	"github.com/questx-lab/secretsanta/pkg/crypto"
	"github.com/questx-lab/secretsanta/pkg/errorx"
	"github.com/questx-lab/secretsanta/pkg/mailer"
	"github.com/questx-lab/secretsanta/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func Test_partyDomain_Create(t *testing.T) {
	validReq := func() *model.CreatePartyRequest {
		return &model.CreatePartyRequest{
			Name:           "  Office party ",
			Description:    "Gifts under the tree",
			EventDate:      "2026-12-20",
			EventTime:      "18:00",
			Budget:         ptr(25.5),
			OrganizerName:  "Olivia",
			OrganizerEmail: "Olivia@Example.com",
		}
	}

	tests := []struct {
		name    string
		modify  func(req *model.CreatePartyRequest)
		wantErr errorx.Code
	}{
		{name: "happy case"},
		{
			name:   "minimal party",
			modify: func(req *model.CreatePartyRequest) { req.Description, req.EventDate, req.EventTime, req.Budget = "", "", "", nil },
		},
		{
			name:    "empty name",
			modify:  func(req *model.CreatePartyRequest) { req.Name = "   " },
			wantErr: errorx.BadRequest,
		},
		{
			name:    "too long name",
			modify:  func(req *model.CreatePartyRequest) { req.Name = strings.Repeat("a", 101) },
			wantErr: errorx.BadRequest,
		},
		{
			name:    "too long description",
			modify:  func(req *model.CreatePartyRequest) { req.Description = strings.Repeat("a", 1001) },
			wantErr: errorx.BadRequest,
		},
		{
			name:    "invalid date",
			modify:  func(req *model.CreatePartyRequest) { req.EventDate = "20/12/2026" },
			wantErr: errorx.BadRequest,
		},
		{
			name:    "invalid time",
			modify:  func(req *model.CreatePartyRequest) { req.EventTime = "6pm" },
			wantErr: errorx.BadRequest,
		},
		{
			name:    "negative budget",
			modify:  func(req *model.CreatePartyRequest) { req.Budget = ptr(-1.0) },
			wantErr: errorx.BadRequest,
		},
		{
			name:    "invalid currency",
			modify:  func(req *model.CreatePartyRequest) { req.Currency = "EURO" },
			wantErr: errorx.BadRequest,
		},
		{
			name:    "empty organizer name",
			modify:  func(req *model.CreatePartyRequest) { req.OrganizerName = "" },
			wantErr: errorx.BadRequest,
		},
		{
			name:    "invalid organizer email",
			modify:  func(req *model.CreatePartyRequest) { req.OrganizerEmail = "olivia" },
			wantErr: errorx.BadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContext()
			d := newTestDomains(ctx, nil)

			req := validReq()
			if tt.modify != nil {
				tt.modify(req)
			}

			got, err := d.party.Create(ctx, req)
			if tt.wantErr != 0 {
				requireErrorCode(t, err, tt.wantErr)
				require.Empty(t, d.mailCaller.Sent())
				return
			}

			require.NoError(t, err)
			require.Len(t, got.Party.ID, 8)
			require.Len(t, got.Passcode, 12)
			require.Equal(t, "Office party", got.Party.Name)
			require.Equal(t, "USD", got.Party.Currency)
			require.Equal(t, string(entity.PartyOpen), got.Party.Status)
			require.Zero(t, got.Party.ParticipantCount)

			stored, err := d.partyRepo.GetByID(ctx, got.Party.ID)
			require.NoError(t, err)
			require.Equal(t, "olivia@example.com", stored.OrganizerEmail)
			require.NotContains(t, stored.PasscodeHash, got.Passcode)
			require.True(t, crypto.ComparePasscode(stored.PasscodeHash, got.Passcode))

			mails := d.mailCaller.SentTo("olivia@example.com")
			require.Len(t, mails, 1)
			require.Contains(t, mails[0].HTML, got.Passcode)
			require.Contains(t, mails[0].HTML, got.Party.ID)
		})
	}
}

func Test_partyDomain_Create_MailFailureKeepsParty(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(ctx, nil)
	d.mailCaller.SendFunc = func(context.Context, mailer.Message) error {
		return errors.New("smtp down")
	}

	got, err := d.party.Create(ctx, &model.CreatePartyRequest{
		Name:           "Party",
		OrganizerName:  "Olivia",
		OrganizerEmail: "olivia@example.com",
	})
	require.NoError(t, err)
	requireStatus(t, ctx, d, got.Party.ID, entity.PartyOpen)
}

func Test_partyDomain_Get(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(ctx, nil)

	party, err := testutil.SampleParty(ctx, &entity.Party{Name: "Family"})
	require.NoError(t, err)
	_, err = testutil.SampleParticipants(ctx, party.ID, "alice", "bob")
	require.NoError(t, err)

	got, err := d.party.Get(ctx, &model.GetPartyRequest{PartyID: party.ID})
	require.NoError(t, err)
	require.Equal(t, "Family", got.Party.Name)
	require.Equal(t, int64(2), got.Party.ParticipantCount)

	// Public reads never expose the organizer address or the passcode.
	b, err := json.Marshal(got)
	require.NoError(t, err)
	require.NotContains(t, string(b), party.OrganizerEmail)
	require.NotContains(t, string(b), testutil.SamplePasscode)
	require.NotContains(t, string(b), "passcode")

	_, err = d.party.Get(ctx, &model.GetPartyRequest{PartyID: "unknown"})
	requireErrorCode(t, err, errorx.NotFound)
}

func Test_partyDomain_Update(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(ctx, nil)

	party, err := testutil.SampleParty(ctx, &entity.Party{Name: "Before"})
	require.NoError(t, err)

	got, err := d.party.Update(ctx, &model.UpdatePartyRequest{
		PartyID:  party.ID,
		Passcode: testutil.SamplePasscode,
		Name:     ptr("After"),
		Budget:   ptr(10.0),
		Currency: ptr("eur"),
	})
	require.NoError(t, err)
	require.Equal(t, "After", got.Party.Name)
	require.Equal(t, 10.0, *got.Party.Budget)
	require.Equal(t, "EUR", got.Party.Currency)
	require.Equal(t, party.Description, got.Party.Description, "absent fields are kept")

	_, err = d.party.Update(ctx, &model.UpdatePartyRequest{
		PartyID:  party.ID,
		Passcode: testutil.SamplePasscode,
		Name:     ptr(""),
	})
	requireErrorCode(t, err, errorx.BadRequest)

	_, err = d.party.Update(ctx, &model.UpdatePartyRequest{
		PartyID:  party.ID,
		Passcode: "wrong",
		Name:     ptr("Hacked"),
	})
	requireErrorCode(t, err, errorx.Unauthorized)

	// Metadata stays editable after the lock.
	locked, err := testutil.SampleParty(ctx, &entity.Party{Status: entity.PartyLocked})
	require.NoError(t, err)
	got, err = d.party.Update(ctx, &model.UpdatePartyRequest{
		PartyID:   locked.ID,
		Passcode:  testutil.SamplePasscode,
		EventTime: ptr("20:00"),
	})
	require.NoError(t, err)
	require.Equal(t, "20:00", got.Party.EventTime)
	require.Equal(t, string(entity.PartyLocked), got.Party.Status)
}

func Test_partyDomain_Lock_Scenarios(t *testing.T) {
	tests := []struct {
		name         string
		participants []string
		wantErr      errorx.Code
	}{
		{name: "nobody", participants: nil, wantErr: errorx.InsufficientParticipants},
		{name: "alice alone", participants: []string{"alice"}, wantErr: errorx.InsufficientParticipants},
		{name: "alice and bob", participants: []string{"alice", "bob"}},
		{name: "three participants", participants: []string{"alice", "bob", "carol"}},
		{name: "ten participants", participants: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContext()
			d := newTestDomains(ctx, nil)

			party, err := testutil.SampleParty(ctx, nil)
			require.NoError(t, err)
			participants, err := testutil.SampleParticipants(ctx, party.ID, tt.participants...)
			require.NoError(t, err)

			got, err := d.party.Lock(ctx, &model.LockPartyRequest{
				PartyID:  party.ID,
				Passcode: testutil.SamplePasscode,
			})
			if tt.wantErr != 0 {
				requireErrorCode(t, err, tt.wantErr)
				requireStatus(t, ctx, d, party.ID, entity.PartyOpen)
				require.Empty(t, assignmentOf(t, ctx, d, party.ID))
				require.Empty(t, d.mailCaller.Sent())
				return
			}

			require.NoError(t, err)
			require.Equal(t, string(entity.PartyLocked), got.Party.Status)
			require.NotEmpty(t, got.Party.LockedAt)
			require.Equal(t, len(participants), got.Notified)
			require.Zero(t, got.Failed)
			requireStatus(t, ctx, d, party.ID, entity.PartyLocked)

			assignment := assignmentOf(t, ctx, d, party.ID)
			require.True(t, matching.IsDerangement(idsOf(participants), assignment))

			if len(participants) == 2 {
				require.Equal(t, participants[1].ID, assignment[participants[0].ID])
				require.Equal(t, participants[0].ID, assignment[participants[1].ID])
			}

			byID := map[string]entity.Participant{}
			for _, p := range participants {
				byID[p.ID] = p
			}

			for _, giver := range participants {
				receiver := byID[assignment[giver.ID]]
				mails := d.mailCaller.SentTo(giver.Email)
				require.Len(t, mails, 1)
				require.Contains(t, mails[0].HTML, receiver.Name)
				require.NotContains(t, mails[0].HTML, receiver.Email)
			}
		})
	}
}

func Test_partyDomain_Lock_Twice(t *testing.T) {
	ctx := testutil.MockContext()
	matcher := &testutil.MockMatcher{MatchFunc: matching.NewRandomMatcher().Match}
	d := newTestDomains(ctx, matcher)

	party, err := testutil.SampleParty(ctx, nil)
	require.NoError(t, err)
	_, err = testutil.SampleParticipants(ctx, party.ID, "alice", "bob", "carol")
	require.NoError(t, err)

	req := &model.LockPartyRequest{PartyID: party.ID, Passcode: testutil.SamplePasscode}
	_, err = d.party.Lock(ctx, req)
	require.NoError(t, err)
	first := assignmentOf(t, ctx, d, party.ID)

	_, err = d.party.Lock(ctx, req)
	requireErrorCode(t, err, errorx.AlreadyLocked)
	require.Equal(t, first, assignmentOf(t, ctx, d, party.ID))
	require.Equal(t, 1, matcher.Calls())
}

func Test_partyDomain_Lock_MatchingFailed(t *testing.T) {
	tests := []struct {
		name      string
		matchFunc func(ctx context.Context, ids []string) (map[string]string, error)
	}{
		{
			name: "matcher error",
			matchFunc: func(context.Context, []string) (map[string]string, error) {
				return nil, errors.New("matching service down")
			},
		},
		{
			name: "fixed point",
			matchFunc: func(_ context.Context, ids []string) (map[string]string, error) {
				result := map[string]string{}
				for _, id := range ids {
					result[id] = id
				}
				return result, nil
			},
		},
		{
			name: "receiver outside of roster",
			matchFunc: func(_ context.Context, ids []string) (map[string]string, error) {
				return map[string]string{ids[0]: ids[1], ids[1]: "stranger"}, nil
			},
		},
		{
			name: "matcher ignoring its deadline",
			matchFunc: func(context.Context, []string) (map[string]string, error) {
				time.Sleep(500 * time.Millisecond)
				return nil, errors.New("too late")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := withConfigs(testutil.MockContext(), func(cfg *config.Configs) {
				cfg.Party.MatchingTimeout = 50 * time.Millisecond
			})
			d := newTestDomains(ctx, &testutil.MockMatcher{MatchFunc: tt.matchFunc})

			party, err := testutil.SampleParty(ctx, nil)
			require.NoError(t, err)
			_, err = testutil.SampleParticipants(ctx, party.ID, "alice", "bob")
			require.NoError(t, err)

			_, err = d.party.Lock(ctx, &model.LockPartyRequest{
				PartyID:  party.ID,
				Passcode: testutil.SamplePasscode,
			})
			requireErrorCode(t, err, errorx.MatchingFailed)
			requireStatus(t, ctx, d, party.ID, entity.PartyOpen)
			require.Empty(t, assignmentOf(t, ctx, d, party.ID))
			require.Empty(t, d.mailCaller.Sent())

			// Joining is still possible after a failed lock.
			_, err = d.participant.Join(ctx, &model.JoinPartyRequest{
				PartyID: party.ID, Name: "Carol", Email: "carol@example.com",
			})
			require.NoError(t, err)
		})
	}
}

func Test_partyDomain_Lock_SaveFailureRollsBack(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomainsWith(ctx, nil, &failingLockPartyRepository{
		PartyRepository: repository.NewPartyRepository(),
		err:             errors.New("disk full"),
	}, nil)

	party, err := testutil.SampleParty(ctx, nil)
	require.NoError(t, err)
	_, err = testutil.SampleParticipants(ctx, party.ID, "alice", "bob", "carol")
	require.NoError(t, err)

	_, err = d.party.Lock(ctx, &model.LockPartyRequest{
		PartyID:  party.ID,
		Passcode: testutil.SamplePasscode,
	})
	requireErrorCode(t, err, errorx.MatchingFailed)
	requireStatus(t, ctx, d, party.ID, entity.PartyOpen)
	require.Empty(t, assignmentOf(t, ctx, d, party.ID))
	require.Empty(t, d.mailCaller.Sent())
}

func Test_partyDomain_Lock_NotificationFailure(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(ctx, nil)

	party, err := testutil.SampleParty(ctx, nil)
	require.NoError(t, err)
	participants, err := testutil.SampleParticipants(ctx, party.ID, "alice", "bob", "carol")
	require.NoError(t, err)

	d.mailCaller.SendFunc = func(_ context.Context, msg mailer.Message) error {
		if msg.To == participants[1].Email {
			return errors.New("mailbox full")
		}
		return nil
	}

	got, err := d.party.Lock(ctx, &model.LockPartyRequest{PartyID: party.ID, Passcode: testutil.SamplePasscode})
	require.NoError(t, err)
	require.Equal(t, 2, got.Notified)
	require.Equal(t, 1, got.Failed)
	requireStatus(t, ctx, d, party.ID, entity.PartyLocked)
	assignment := assignmentOf(t, ctx, d, party.ID)

	// Mails are retried from the stored assignment.
	d.mailCaller.SendFunc = nil
	resent, err := d.party.ResendAllEmails(ctx, &model.ResendAllEmailsRequest{
		PartyID: party.ID, Passcode: testutil.SamplePasscode,
	})
	require.NoError(t, err)
	require.Equal(t, 3, resent.Notified)
	require.Zero(t, resent.Failed)
	require.Len(t, d.mailCaller.SentTo(participants[1].Email), 1)
	require.Equal(t, assignment, assignmentOf(t, ctx, d, party.ID))
}

func Test_partyDomain_Lock_Concurrent(t *testing.T) {
	ctx := testutil.MockContext()
	matcher := &testutil.MockMatcher{MatchFunc: matching.NewRandomMatcher().Match}
	d := newTestDomains(ctx, matcher)

	party, err := testutil.SampleParty(ctx, nil)
	require.NoError(t, err)
	participants, err := testutil.SampleParticipants(ctx, party.ID, "alice", "bob", "carol", "dave")
	require.NoError(t, err)

	const n = 8
	errs := make([]error, n)
	wg := sync.WaitGroup{}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = d.party.Lock(ctx, &model.LockPartyRequest{
				PartyID:  party.ID,
				Passcode: testutil.SamplePasscode,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		requireErrorCode(t, err, errorx.AlreadyLocked)
	}

	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, matcher.Calls())
	require.True(t, matching.IsDerangement(idsOf(participants), assignmentOf(t, ctx, d, party.ID)))
	require.Len(t, d.mailCaller.Sent(), len(participants))
}

func Test_partyDomain_Lock_ConcurrentJoins(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(ctx, nil)

	party, err := testutil.SampleParty(ctx, nil)
	require.NoError(t, err)
	_, err = testutil.SampleParticipants(ctx, party.ID, "alice", "bob")
	require.NoError(t, err)

	const joiners = 10
	joinErrs := make([]error, joiners)
	wg := sync.WaitGroup{}
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, joinErrs[i] = d.participant.Join(ctx, &model.JoinPartyRequest{
				PartyID: party.ID,
				Name:    "Guest",
				Email:   "guest" + string(rune('a'+i)) + "@example.com",
			})
		}(i)
	}

	wg.Add(1)
	var lockErr error
	go func() {
		defer wg.Done()
		_, lockErr = d.party.Lock(ctx, &model.LockPartyRequest{
			PartyID:  party.ID,
			Passcode: testutil.SamplePasscode,
		})
	}()
	wg.Wait()

	require.NoError(t, lockErr)

	joined := 0
	for _, err := range joinErrs {
		if err == nil {
			joined++
			continue
		}
		requireErrorCode(t, err, errorx.PartyClosed)
	}

	// Every successful join is part of the frozen roster, nobody else is.
	roster, err := d.participantRepo.GetList(ctx, party.ID)
	require.NoError(t, err)
	require.Len(t, roster, 2+joined)
	require.True(t, matching.IsDerangement(idsOf(roster), assignmentOf(t, ctx, d, party.ID)))
}

func Test_partyDomain_ResendAllEmails(t *testing.T) {
	ctx := testutil.MockContext()
	matcher := &testutil.MockMatcher{MatchFunc: matching.NewRandomMatcher().Match}
	d := newTestDomains(ctx, matcher)

	party, err := testutil.SampleParty(ctx, nil)
	require.NoError(t, err)
	participants, err := testutil.SampleParticipants(ctx, party.ID, "alice", "bob", "carol")
	require.NoError(t, err)

	req := &model.ResendAllEmailsRequest{PartyID: party.ID, Passcode: testutil.SamplePasscode}
	_, err = d.party.ResendAllEmails(ctx, req)
	requireErrorCode(t, err, errorx.PartyNotLocked)

	_, err = d.party.Lock(ctx, &model.LockPartyRequest{PartyID: party.ID, Passcode: testutil.SamplePasscode})
	require.NoError(t, err)
	assignment := assignmentOf(t, ctx, d, party.ID)

	// Names are resolved when sending, an edit after the lock shows up in
	// the next resend.
	_, err = d.participant.Update(ctx, &model.UpdateParticipantRequest{
		PartyID:       party.ID,
		ParticipantID: participants[0].ID,
		Passcode:      testutil.SamplePasscode,
		NewName:       ptr("Alicia"),
	})
	require.NoError(t, err)

	var aliceGiver string
	for giver, receiver := range assignment {
		if receiver == participants[0].ID {
			aliceGiver = giver
		}
	}
	var aliceGiverEmail string
	for _, p := range participants {
		if p.ID == aliceGiver {
			aliceGiverEmail = p.Email
		}
	}

	for i := 0; i < 3; i++ {
		d.mailCaller.Reset()
		got, err := d.party.ResendAllEmails(ctx, req)
		require.NoError(t, err)
		require.Equal(t, 3, got.Notified)
		require.Equal(t, assignment, assignmentOf(t, ctx, d, party.ID))

		mails := d.mailCaller.SentTo(aliceGiverEmail)
		require.Len(t, mails, 1)
		require.Contains(t, mails[0].HTML, "Alicia")
	}

	require.Equal(t, 1, matcher.Calls())
}

func Test_partyDomain_ResendPasscode(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(ctx, nil)

	party, err := testutil.SampleParty(ctx, nil)
	require.NoError(t, err)

	known, err := d.party.ResendPasscode(ctx, &model.ResendPasscodeRequest{PartyID: party.ID})
	require.NoError(t, err)
	mails := d.mailCaller.SentTo(party.OrganizerEmail)
	require.Len(t, mails, 1)
	require.Contains(t, mails[0].HTML, testutil.SamplePasscode)

	unknown, err := d.party.ResendPasscode(ctx, &model.ResendPasscodeRequest{PartyID: "unknown"})
	require.NoError(t, err)
	require.Equal(t, known, unknown)
	require.Len(t, d.mailCaller.Sent(), 1)
}

func Test_partyDomain_Delete(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(ctx, nil)

	party, err := testutil.SampleParty(ctx, nil)
	require.NoError(t, err)
	_, err = testutil.SampleParticipants(ctx, party.ID, "alice", "bob")
	require.NoError(t, err)
	_, err = d.party.Lock(ctx, &model.LockPartyRequest{PartyID: party.ID, Passcode: testutil.SamplePasscode})
	require.NoError(t, err)

	_, err = d.party.Delete(ctx, &model.DeletePartyRequest{PartyID: party.ID, Passcode: "wrong"})
	requireErrorCode(t, err, errorx.Unauthorized)

	_, err = d.party.Delete(ctx, &model.DeletePartyRequest{PartyID: party.ID, Passcode: testutil.SamplePasscode})
	require.NoError(t, err)

	_, err = d.party.Get(ctx, &model.GetPartyRequest{PartyID: party.ID})
	requireErrorCode(t, err, errorx.NotFound)

	_, err = d.party.Delete(ctx, &model.DeletePartyRequest{PartyID: party.ID, Passcode: testutil.SamplePasscode})
	requireErrorCode(t, err, errorx.Unauthorized)

	_, err = d.participant.Join(ctx, &model.JoinPartyRequest{PartyID: party.ID, Name: "Eve", Email: "eve@example.com"})
	requireErrorCode(t, err, errorx.NotFound)

	count, err := d.participantRepo.Count(ctx, party.ID)
	require.NoError(t, err)
	require.Zero(t, count)
	require.Empty(t, assignmentOf(t, ctx, d, party.ID))
}

func Test_privilegedOperations_Unauthorized(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(ctx, nil)

	party, err := testutil.SampleParty(ctx, nil)
	require.NoError(t, err)
	participants, err := testutil.SampleParticipants(ctx, party.ID, "alice", "bob")
	require.NoError(t, err)

	operations := map[string]func(partyID, passcode string) error{
		"update party": func(partyID, passcode string) error {
			_, err := d.party.Update(ctx, &model.UpdatePartyRequest{PartyID: partyID, Passcode: passcode, Name: ptr("x")})
			return err
		},
		"delete party": func(partyID, passcode string) error {
			_, err := d.party.Delete(ctx, &model.DeletePartyRequest{PartyID: partyID, Passcode: passcode})
			return err
		},
		"lock party": func(partyID, passcode string) error {
			_, err := d.party.Lock(ctx, &model.LockPartyRequest{PartyID: partyID, Passcode: passcode})
			return err
		},
		"resend all emails": func(partyID, passcode string) error {
			_, err := d.party.ResendAllEmails(ctx, &model.ResendAllEmailsRequest{PartyID: partyID, Passcode: passcode})
			return err
		},
		"admin participants": func(partyID, passcode string) error {
			_, err := d.participant.GetAdminList(ctx, &model.GetParticipantsAdminRequest{PartyID: partyID, Passcode: passcode})
			return err
		},
		"update participant": func(partyID, passcode string) error {
			_, err := d.participant.Update(ctx, &model.UpdateParticipantRequest{
				PartyID: partyID, ParticipantID: participants[0].ID, Passcode: passcode, NewName: ptr("x"),
			})
			return err
		},
		"remove participant": func(partyID, passcode string) error {
			_, err := d.participant.Remove(ctx, &model.RemoveParticipantRequest{
				PartyID: partyID, ParticipantID: participants[0].ID, Passcode: passcode,
			})
			return err
		},
	}

	for name, operation := range operations {
		t.Run(name, func(t *testing.T) {
			requireErrorCode(t, operation(party.ID, "wrong-passcode"), errorx.Unauthorized)
			requireErrorCode(t, operation(party.ID, ""), errorx.Unauthorized)
			requireErrorCode(t, operation("unknown", testutil.SamplePasscode), errorx.Unauthorized)
		})
	}

	requireStatus(t, ctx, d, party.ID, entity.PartyOpen)
	roster, err := d.participantRepo.GetList(ctx, party.ID)
	require.NoError(t, err)
	require.Equal(t, idsOf(participants), idsOf(roster))
	require.Equal(t, "alice", roster[0].Name)
}

func Test_partyDomain_BusyHold(t *testing.T) {
	ctx := withConfigs(testutil.MockContext(), func(cfg *config.Configs) {
		cfg.Party.HoldTimeout = 30 * time.Millisecond
	})
	d := newTestDomains(ctx, nil)

	party, err := testutil.SampleParty(ctx, nil)
	require.NoError(t, err)
	_, err = testutil.SampleParticipants(ctx, party.ID, "alice", "bob")
	require.NoError(t, err)

	release, err := d.locker.Lock(ctx, party.ID)
	require.NoError(t, err)

	_, err = d.party.Lock(ctx, &model.LockPartyRequest{PartyID: party.ID, Passcode: testutil.SamplePasscode})
	requireErrorCode(t, err, errorx.Unavailable)
	_, err = d.participant.Join(ctx, &model.JoinPartyRequest{PartyID: party.ID, Name: "Carol", Email: "carol@example.com"})
	requireErrorCode(t, err, errorx.Unavailable)
	requireStatus(t, ctx, d, party.ID, entity.PartyOpen)

	release()
	_, err = d.party.Lock(ctx, &model.LockPartyRequest{PartyID: party.ID, Passcode: testutil.SamplePasscode})
	require.NoError(t, err)
}

func Test_privilegedOperations_WrongPasscodeNeverTakesHold(t *testing.T) {
	ctx := testutil.MockContext()
	locker := &countingPartyLocker{PartyLocker: common.NewLocalPartyLocker()}
	d := newTestDomainsWith(ctx, nil, nil, locker)

	party, err := testutil.SampleParty(ctx, nil)
	require.NoError(t, err)
	participants, err := testutil.SampleParticipants(ctx, party.ID, "alice", "bob")
	require.NoError(t, err)

	// Somebody else keeps the hold, a wrong passcode is still rejected at once.
	release, err := locker.Lock(ctx, party.ID)
	require.NoError(t, err)
	defer release()
	locker.calls.Store(0)

	const wrong = "wrong-passcode"
	_, err = d.party.Lock(ctx, &model.LockPartyRequest{PartyID: party.ID, Passcode: wrong})
	requireErrorCode(t, err, errorx.Unauthorized)
	_, err = d.party.Update(ctx, &model.UpdatePartyRequest{PartyID: party.ID, Passcode: wrong, Name: ptr("x")})
	requireErrorCode(t, err, errorx.Unauthorized)
	_, err = d.party.Delete(ctx, &model.DeletePartyRequest{PartyID: party.ID, Passcode: wrong})
	requireErrorCode(t, err, errorx.Unauthorized)
	_, err = d.participant.Update(ctx, &model.UpdateParticipantRequest{
		PartyID: party.ID, ParticipantID: participants[0].ID, Passcode: wrong, NewName: ptr("x"),
	})
	requireErrorCode(t, err, errorx.Unauthorized)
	_, err = d.participant.Remove(ctx, &model.RemoveParticipantRequest{
		PartyID: party.ID, ParticipantID: participants[0].ID, Passcode: wrong,
	})
	requireErrorCode(t, err, errorx.Unauthorized)

	require.Zero(t, locker.calls.Load())
}

func Test_partyDomain_Lock_PartyDeletedWhileWaiting(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(ctx, nil)

	party, err := testutil.SampleParty(ctx, nil)
	require.NoError(t, err)
	_, err = testutil.SampleParticipants(ctx, party.ID, "alice", "bob")
	require.NoError(t, err)

	release, err := d.locker.Lock(ctx, party.ID)
	require.NoError(t, err)

	errChan := make(chan error, 1)
	go func() {
		_, err := d.party.Lock(ctx, &model.LockPartyRequest{
			PartyID:  party.ID,
			Passcode: testutil.SamplePasscode,
		})
		errChan <- err
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, d.partyRepo.DeleteByID(ctx, party.ID))
	release()

	requireErrorCode(t, <-errChan, errorx.Unauthorized)
	require.Empty(t, assignmentOf(t, ctx, d, party.ID))
}
