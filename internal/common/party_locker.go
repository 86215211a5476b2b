package common

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
	"github.com/redis/go-redis/v9"
)

// PartyLocker grants the per-party exclusive hold. Holds on different parties
// never contend.
type PartyLocker interface {
	// Lock blocks until the hold on partyID is acquired or ctx is done. The
	// returned release function must be called exactly once.
	Lock(ctx context.Context, partyID string) (release func(), err error)
}

type partyHold struct {
	sem chan struct{}

	mu   sync.Mutex
	refs int
	// dead is set once the entry left the map. A caller which loaded it
	// before that must load again.
	dead bool
}

type localPartyLocker struct {
	holds *xsync.MapOf[string, *partyHold]
}

// NewLocalPartyLocker returns a PartyLocker for a single process. A hold
// entry lives only while somebody holds or waits for it.
func NewLocalPartyLocker() *localPartyLocker {
	return &localPartyLocker{holds: xsync.NewMapOf[*partyHold]()}
}

func (l *localPartyLocker) Lock(ctx context.Context, partyID string) (func(), error) {
	hold := l.ref(partyID)

	select {
	case hold.sem <- struct{}{}:
	case <-ctx.Done():
		l.unref(partyID, hold)
		return nil, ctx.Err()
	}

	return func() {
		<-hold.sem
		l.unref(partyID, hold)
	}, nil
}

func (l *localPartyLocker) ref(partyID string) *partyHold {
	for {
		hold, _ := l.holds.LoadOrCompute(partyID, func() *partyHold {
			return &partyHold{sem: make(chan struct{}, 1)}
		})

		hold.mu.Lock()
		if hold.dead {
			hold.mu.Unlock()
			continue
		}
		hold.refs++
		hold.mu.Unlock()

		return hold
	}
}

// unref drops the entry with its last reference. Deleting under the entry
// mutex guarantees nobody has referenced it in between.
func (l *localPartyLocker) unref(partyID string, hold *partyHold) {
	hold.mu.Lock()
	defer hold.mu.Unlock()

	hold.refs--
	if hold.refs == 0 {
		hold.dead = true
		l.holds.LoadAndDelete(partyID)
	}
}

// Size returns the number of parties with a live hold entry.
func (l *localPartyLocker) Size() int {
	return l.holds.Size()
}

// RedisLockClient is the subset of *redis.Client used by the redis locker.
type RedisLockClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

// releaseScript deletes the key only if it still carries our token, so an
// expired hold which was taken over by another instance is left alone.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

const redisHoldRetryInterval = 20 * time.Millisecond

type redisPartyLocker struct {
	client RedisLockClient
	ttl    time.Duration
	local  *localPartyLocker
}

// NewRedisPartyLocker returns a PartyLocker shared by every instance using
// the same redis. Waiters of one instance queue on a local hold first, so
// only one of them polls redis.
func NewRedisPartyLocker(client RedisLockClient, ttl time.Duration) *redisPartyLocker {
	return &redisPartyLocker{
		client: client,
		ttl:    ttl,
		local:  NewLocalPartyLocker(),
	}
}

func (l *redisPartyLocker) Lock(ctx context.Context, partyID string) (func(), error) {
	releaseLocal, err := l.local.Lock(ctx, partyID)
	if err != nil {
		return nil, err
	}

	key := RedisKeyPartyHold(partyID)
	token := uuid.NewString()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			releaseLocal()
			return nil, err
		}

		if ok {
			break
		}

		select {
		case <-time.After(redisHoldRetryInterval):
		case <-ctx.Done():
			releaseLocal()
			return nil, ctx.Err()
		}
	}

	logger := xcontext.Logger(ctx)
	return func() {
		defer releaseLocal()

		// The request context may already be cancelled here.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := l.client.Eval(releaseCtx, releaseScript, []string{key}, token).Err(); err != nil {
			logger.Errorf("Cannot release party hold %s: %v", partyID, err)
		}
	}, nil
}
