package matching

import (
	"context"
	"errors"

	"github.com/questx-lab/secretsanta/pkg/crypto"
)

var ErrNotEnoughParticipants = errors.New("a derangement needs at least two participants")

// Matcher assigns to every giver a distinct receiver, nobody receives from
// themselves.
type Matcher interface {
	Match(ctx context.Context, participantIDs []string) (map[string]string, error)
}

type randomMatcher struct{}

// NewRandomMatcher returns a Matcher which draws uniformly among all
// derangements of the roster.
func NewRandomMatcher() *randomMatcher {
	return &randomMatcher{}
}

// Match shuffles the roster until no participant is left in place. About e
// shuffles are needed on average whatever the roster size.
func (m *randomMatcher) Match(ctx context.Context, participantIDs []string) (map[string]string, error) {
	if len(participantIDs) < 2 {
		return nil, ErrNotEnoughParticipants
	}

	receivers := make([]string, len(participantIDs))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		copy(receivers, participantIDs)
		shuffle(receivers)
		if !hasFixedPoint(participantIDs, receivers) {
			break
		}
	}

	result := make(map[string]string, len(participantIDs))
	for i, giver := range participantIDs {
		result[giver] = receivers[i]
	}

	return result, nil
}

func shuffle(a []string) {
	for i := len(a) - 1; i > 0; i-- {
		j := crypto.RandIntn(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}

func hasFixedPoint(givers, receivers []string) bool {
	for i := range givers {
		if givers[i] == receivers[i] {
			return true
		}
	}
	return false
}

// IsDerangement reports whether assignment is a bijection over
// participantIDs without fixed points.
func IsDerangement(participantIDs []string, assignment map[string]string) bool {
	if len(assignment) != len(participantIDs) {
		return false
	}

	roster := make(map[string]bool, len(participantIDs))
	for _, id := range participantIDs {
		roster[id] = true
	}

	received := make(map[string]bool, len(participantIDs))
	for giver, receiver := range assignment {
		if !roster[giver] || !roster[receiver] || giver == receiver || received[receiver] {
			return false
		}
		received[receiver] = true
	}

	return true
}
