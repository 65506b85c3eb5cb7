package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/homelyeats/homelyeats_backend/logger"
)

// ListingLocker serializes capacity changes on a single listing. The
// returned unlock func must be called exactly once.
type ListingLocker interface {
	Lock(ctx context.Context, listingID primitive.ObjectID) (func(), error)
}

// KeyedLocker is a mutex per listing id, honoring context cancellation
// while waiting.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[primitive.ObjectID]*keyedLock
}

type keyedLock struct {
	sem  chan struct{}
	refs int
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[primitive.ObjectID]*keyedLock)}
}

func (l *KeyedLocker) Lock(ctx context.Context, listingID primitive.ObjectID) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[listingID]
	if !ok {
		kl = &keyedLock{sem: make(chan struct{}, 1)}
		l.locks[listingID] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(listingID, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.sem
			l.release(listingID, kl)
		})
	}, nil
}

func (l *KeyedLocker) release(listingID primitive.ObjectID, kl *keyedLock) {
	l.mu.Lock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, listingID)
	}
	l.mu.Unlock()
}

// held reports how many callers hold or wait on listingID
func (l *KeyedLocker) held(listingID primitive.ObjectID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if kl, ok := l.locks[listingID]; ok {
		return kl.refs
	}
	return 0
}

// releaseScript deletes the lock only if it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ErrLockTimeout is returned when the distributed lock could not be taken in time
var ErrLockTimeout = errors.New("listing lock timeout")

// RedisLocker takes the in-process lock first and then a Redis lock so
// several API instances serialize on the same listing.
type RedisLocker struct {
	client *redis.Client
	local  *KeyedLocker
	ttl    time.Duration
	retry  time.Duration
	wait   time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		local:  NewKeyedLocker(),
		ttl:    ttl,
		retry:  25 * time.Millisecond,
		wait:   5 * time.Second,
	}
}

func lockKey(listingID primitive.ObjectID) string {
	return fmt.Sprintf("listing-lock:%s", listingID.Hex())
}

func (l *RedisLocker) Lock(ctx context.Context, listingID primitive.ObjectID) (func(), error) {
	unlockLocal, err := l.local.Lock(ctx, listingID)
	if err != nil {
		return nil, err
	}

	key := lockKey(listingID)
	token := uuid.NewString()
	deadline := time.NewTimer(l.wait)
	defer deadline.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			unlockLocal()
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			unlockLocal()
			return nil, ctx.Err()
		case <-deadline.C:
			unlockLocal()
			return nil, ErrLockTimeout
		case <-time.After(l.retry):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := l.release(key, token); err != nil {
				// the key expires on its own after ttl
				logger.ErrorLogger.WithField("key", key).WithError(err).Error("failed to release listing lock")
			}
			unlockLocal()
		})
	}, nil
}

// release deletes key if it still carries token. It does not use the
// request context, which may already be done.
func (l *RedisLocker) release(key, token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}
