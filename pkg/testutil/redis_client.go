package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient keeps keys in memory, without expiry. Eval only understands
// the compare-and-delete script of the party hold. The Func fields replace
// the in-memory behavior when set.
type MockRedisClient struct {
	SetNXFunc func(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	EvalFunc  func(ctx context.Context, script string, keys []string, args ...any) (any, error)

	mutex sync.Mutex
	data  map[string]string
}

func (m *MockRedisClient) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if m.SetNXFunc != nil {
		return redis.NewBoolResult(m.SetNXFunc(ctx, key, value, ttl))
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.data == nil {
		m.data = map[string]string{}
	}

	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}

	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *MockRedisClient) Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	if m.EvalFunc != nil {
		return redis.NewCmdResult(m.EvalFunc(ctx, script, keys, args...))
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(keys) != 1 || len(args) != 1 {
		return redis.NewCmdResult(nil, errors.New("unexpected script arguments"))
	}

	if value, ok := m.data[keys[0]]; ok && value == fmt.Sprint(args[0]) {
		delete(m.data, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}

	return redis.NewCmdResult(int64(0), nil)
}

func (m *MockRedisClient) Get(key string) (string, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	value, ok := m.data[key]
	return value, ok
}

// Set stores a key as if another instance held it.
func (m *MockRedisClient) Set(key, value string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.data == nil {
		m.data = map[string]string{}
	}
	m.data[key] = value
}
