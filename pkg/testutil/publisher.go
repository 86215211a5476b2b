package testutil

import (
	"context"
	"sync"

	"github.com/questx-lab/secretsanta/pkg/pubsub"
)

// MockPublisher records published packs. Without PublishFunc every publish
// is accepted.
type MockPublisher struct {
	PublishFunc func(ctx context.Context, topic string, pack *pubsub.Pack) error

	mutex     sync.Mutex
	published []*pubsub.Pack
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	if m.PublishFunc != nil {
		if err := m.PublishFunc(ctx, topic, pack); err != nil {
			return err
		}
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.published = append(m.published, pack)
	return nil
}

// Published returns the accepted packs in publish order.
func (m *MockPublisher) Published() []*pubsub.Pack {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	result := make([]*pubsub.Pack, len(m.published))
	copy(result, m.published)
	return result
}
