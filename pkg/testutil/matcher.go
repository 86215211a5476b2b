package testutil

import (
	"context"
	"sync/atomic"

	"github.com/questx-lab/secretsanta/pkg/errorx"
)

type MockMatcher struct {
	MatchFunc func(ctx context.Context, participantIDs []string) (map[string]string, error)

	calls atomic.Int32
}

func (m *MockMatcher) Match(ctx context.Context, participantIDs []string) (map[string]string, error) {
	m.calls.Add(1)
	if m.MatchFunc != nil {
		return m.MatchFunc(ctx, participantIDs)
	}

	return nil, errorx.New(errorx.NotImplemented, "Not implemented")
}

// Calls returns how many times Match has been called.
func (m *MockMatcher) Calls() int {
	return int(m.calls.Load())
}
