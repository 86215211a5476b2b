package testutil

import (
	"context"
	"sync"

	"github.com/questx-lab/secretsanta/pkg/mailer"
)

// MockMailCaller records every accepted mail. SendFunc can reject a mail by
// returning an error, rejected mails are not recorded.
type MockMailCaller struct {
	SendFunc func(ctx context.Context, msg mailer.Message) error

	mutex sync.Mutex
	sent  []mailer.Message
}

func (m *MockMailCaller) Send(ctx context.Context, msg mailer.Message) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(ctx, msg); err != nil {
			return err
		}
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *MockMailCaller) Sent() []mailer.Message {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	result := make([]mailer.Message, len(m.sent))
	copy(result, m.sent)
	return result
}

// SentTo returns the mails accepted for address, in sending order.
func (m *MockMailCaller) SentTo(address string) []mailer.Message {
	result := []mailer.Message{}
	for _, msg := range m.Sent() {
		if msg.To == address {
			result = append(result, msg)
		}
	}

	return result
}

func (m *MockMailCaller) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sent = nil
}
