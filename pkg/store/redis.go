package store

import (
	"context"
	stderrors "errors"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/pinboard/pkg/errors"
)

// DefaultNamespace prefixes every redis key written by [RedisStore].
const DefaultNamespace = "pinboard:"

// RedisStore keeps fragments as redis strings under namespace+"board:"+name
// and tracks names in the set namespace+"boards". Every save publishes the
// board name on namespace+"updates".
type RedisStore struct {
	rdb *redis.Client
	ns  string
}

// NewRedisStore wraps an existing client. An empty namespace uses
// [DefaultNamespace].
func NewRedisStore(rdb *redis.Client, namespace string) *RedisStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &RedisStore{rdb: rdb, ns: namespace}
}

// OpenRedisStore connects to a redis URL such as redis://localhost:6379/0.
func OpenRedisStore(ctx context.Context, url, namespace string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "redis url")
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect redis")
	}
	return NewRedisStore(rdb, namespace), nil
}

func (s *RedisStore) key(name string) string { return s.ns + "board:" + name }
func (s *RedisStore) index() string          { return s.ns + "boards" }

// Channel is the pub/sub channel that receives saved board names.
func (s *RedisStore) Channel() string { return s.ns + "updates" }

// Save stores data and announces the update in one transaction.
func (s *RedisStore) Save(ctx context.Context, name string, data []byte) error {
	if err := errors.ValidateBoardName(name); err != nil {
		return err
	}
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.key(name), data, 0)
		p.SAdd(ctx, s.index(), name)
		p.Publish(ctx, s.Channel(), name)
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "save %s", name)
	}
	return nil
}

// Load returns the stored fragment.
func (s *RedisStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateBoardName(name); err != nil {
		return nil, err
	}
	data, err := s.rdb.Get(ctx, s.key(name)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "load %s", name)
	}
	return data, nil
}

// List returns the saved board names in sorted order.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	names, err := s.rdb.SMembers(ctx, s.index()).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list boards")
	}
	slices.Sort(names)
	return names, nil
}

// Delete removes a fragment and its index entry.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateBoardName(name); err != nil {
		return err
	}
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.key(name))
		p.SRem(ctx, s.index(), name)
		return nil
	})
	return err
}

// Watch delivers the names of boards saved by any process until ctx is
// done. The returned channel is closed when the subscription ends.
func (s *RedisStore) Watch(ctx context.Context) (<-chan string, error) {
	sub := s.rdb.Subscribe(ctx, s.Channel())
	// Wait for the subscription to be confirmed so no save is missed.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "subscribe")
	}
	out := make(chan string)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- m.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error { return s.rdb.Close() }

var _ Store = (*RedisStore)(nil)
