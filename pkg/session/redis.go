package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures [NewRedisStore].
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	Prefix      string // key prefix, default "sketchstack:session:"
	TTL         time.Duration
	MaxSessions int
}

// RedisStore keeps each session under its own key with a native TTL. A
// sorted set scored by expiry time indexes the live keys so the store can
// be capped and swept.
type RedisStore struct {
	client redis.UniversalClient
	owned  bool
	prefix string
	index  string
	ttl    time.Duration
	max    int
	now    func() time.Time
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	s := NewRedisStoreFromClient(client, cfg)
	s.owned = true
	return s, nil
}

// NewRedisStoreFromClient wraps an existing client. Close leaves the client
// open.
func NewRedisStoreFromClient(client redis.UniversalClient, cfg RedisConfig) *RedisStore {
	if cfg.Prefix == "" {
		cfg.Prefix = "sketchstack:session:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	return &RedisStore{
		client: client,
		prefix: cfg.Prefix,
		index:  cfg.Prefix + "index",
		ttl:    cfg.TTL,
		max:    cfg.MaxSessions,
		now:    time.Now,
	}
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	sess, err := decode(data)
	if err != nil {
		return nil, err
	}
	if sess.expiredAt(s.now()) {
		return nil, nil
	}
	return sess, nil
}

// Set stores sess with the store ttl, or less when sess expires sooner,
// then trims the index to the size cap by evicting the sessions that
// expire first.
func (s *RedisStore) Set(ctx context.Context, sess *Session) error {
	data, err := encode(sess)
	if err != nil {
		return err
	}
	now := s.now()
	ttl := s.ttl
	if !sess.ExpiresAt.IsZero() {
		if d := sess.ExpiresAt.Sub(now); d < ttl {
			ttl = d
		}
	}
	if ttl <= 0 {
		return s.Delete(ctx, sess.ID)
	}

	expires := now.Add(ttl)
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.key(sess.ID), data, ttl)
		p.ZAdd(ctx, s.index, redis.Z{Score: float64(expires.UnixMilli()), Member: sess.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return s.trim(ctx)
}

func (s *RedisStore) trim(ctx context.Context) error {
	n, err := s.client.ZCard(ctx, s.index).Result()
	if err != nil {
		return fmt.Errorf("redis session count: %w", err)
	}
	over := n - int64(s.max)
	if over <= 0 {
		return nil
	}
	evicted, err := s.client.ZPopMin(ctx, s.index, over).Result()
	if err != nil {
		return fmt.Errorf("redis evict sessions: %w", err)
	}
	keys := make([]string, 0, len(evicted))
	for _, z := range evicted {
		if id, ok := z.Member.(string); ok {
			keys = append(keys, s.key(id))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.key(id))
		p.ZRem(ctx, s.index, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// Cleanup drops index entries whose sessions Redis has already expired.
func (s *RedisStore) Cleanup(ctx context.Context) (int, error) {
	upTo := strconv.FormatInt(s.now().UnixMilli(), 10)
	ids, err := s.client.ZRangeByScore(ctx, s.index, &redis.ZRangeBy{Min: "-inf", Max: upTo}).Result()
	if err != nil {
		return 0, fmt.Errorf("redis scan sessions: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	keys := make([]string, len(ids))
	members := make([]any, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
		members[i] = id
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, keys...)
		p.ZRem(ctx, s.index, members...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis cleanup sessions: %w", err)
	}
	return len(ids), nil
}

// Close closes the connection if the store opened it.
func (s *RedisStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
