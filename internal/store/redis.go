package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/rs/zerolog"

	"github.com/devplan/devplan/internal/domain"
	devplanerrors "github.com/devplan/devplan/internal/errors"
)

// Key layout: <prefix>context:<owner/name> holds the JSON document,
// <prefix>hits:<owner/name> holds the access counter. The counter lives
// outside the document so Touch is a single INCR instead of a
// read-modify-write race.
const (
	contextKeyPrefix = "context:"
	hitsKeyPrefix    = "hits:"
)

// RedisConfig holds redis context store settings.
type RedisConfig struct {
	// Addr is the redis host:port.
	Addr string

	// Prefix namespaces all keys (e.g., "devplan:").
	Prefix string

	// MaxIdle is the idle connection pool size. Zero means a small default.
	MaxIdle int

	// IdleTimeout closes idle connections after this duration.
	// Zero means a default of 5 minutes.
	IdleTimeout time.Duration
}

// RedisContextStore implements ContextStore on a redigo connection pool.
// Contexts have no TTL; eviction is an external policy.
type RedisContextStore struct {
	cfg    RedisConfig
	pool   *redis.Pool
	logger zerolog.Logger
}

// Ensure RedisContextStore implements ContextStore.
var _ ContextStore = (*RedisContextStore)(nil)

// NewRedisContextStore creates a redis-backed context store. The logger
// may be nil, in which case a no-op logger is used.
func NewRedisContextStore(cfg RedisConfig, logger *zerolog.Logger) *RedisContextStore {
	if cfg.MaxIdle <= 0 {
		cfg.MaxIdle = 3
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 5 * time.Minute
	}

	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}

	pool := &redis.Pool{
		MaxIdle:     cfg.MaxIdle,
		IdleTimeout: cfg.IdleTimeout,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", cfg.Addr)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}

	return &RedisContextStore{cfg: cfg, pool: pool, logger: log}
}

// Close releases the connection pool.
func (s *RedisContextStore) Close() error {
	return s.pool.Close()
}

// Get returns the cached context for key, with the live access counter
// merged in. Returns ErrContextNotFound on a miss.
func (s *RedisContextStore) Get(ctx context.Context, key string) (*domain.RepositoryContext, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, devplanerrors.Wrap(devplanerrors.ErrStoreUnavailable, err.Error())
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // Pool connection

	data, err := redis.Bytes(conn.Do("GET", s.contextKey(key)))
	if errors.Is(err, redis.ErrNil) {
		return nil, devplanerrors.Wrapf(devplanerrors.ErrContextNotFound, "key %s", key)
	}
	if err != nil {
		return nil, devplanerrors.Wrap(devplanerrors.ErrStoreUnavailable, err.Error())
	}

	var rc domain.RepositoryContext
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, devplanerrors.Wrapf(err, "decoding cached context for %s", key)
	}

	hits, err := redis.Int64(conn.Do("GET", s.hitsKey(key)))
	if err != nil && !errors.Is(err, redis.ErrNil) {
		return nil, devplanerrors.Wrap(devplanerrors.ErrStoreUnavailable, err.Error())
	}
	rc.AccessCount = hits
	return &rc, nil
}

// Put writes a context unconditionally. The access counter key is left
// untouched so hits survive a recomputation overwrite.
func (s *RedisContextStore) Put(ctx context.Context, rc *domain.RepositoryContext) error {
	if rc == nil {
		return devplanerrors.Wrap(devplanerrors.ErrEmptyValue, "repository context")
	}

	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return devplanerrors.Wrap(devplanerrors.ErrStoreUnavailable, err.Error())
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // Pool connection

	data, err := json.Marshal(rc)
	if err != nil {
		return devplanerrors.Wrapf(err, "encoding context for %s", rc.Key())
	}

	if _, err := conn.Do("SET", s.contextKey(rc.Key()), data); err != nil {
		return devplanerrors.Wrap(devplanerrors.ErrStoreUnavailable, err.Error())
	}

	s.logger.Debug().Str("key", rc.Key()).Int("bytes", len(data)).Msg("cached repository context")
	return nil
}

// Touch increments the access counter for key.
func (s *RedisContextStore) Touch(ctx context.Context, key string) (int64, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return 0, devplanerrors.Wrap(devplanerrors.ErrStoreUnavailable, err.Error())
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // Pool connection

	n, err := redis.Int64(conn.Do("INCR", s.hitsKey(key)))
	if err != nil {
		return 0, devplanerrors.Wrap(devplanerrors.ErrStoreUnavailable, err.Error())
	}
	return n, nil
}

func (s *RedisContextStore) contextKey(key string) string {
	return s.cfg.Prefix + contextKeyPrefix + key
}

func (s *RedisContextStore) hitsKey(key string) string {
	return s.cfg.Prefix + hitsKeyPrefix + key
}
