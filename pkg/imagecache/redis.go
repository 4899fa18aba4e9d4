package imagecache

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces image keys.
const DefaultPrefix = "figma-happyx:image:"

// Redis is a Cache shared between processes, so repeated runs against the
// same file skip the Figma download.
type Redis struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a Redis cache.
type RedisOption func(*Redis)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// WithTTL sets the expiration of cached images. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		r.ttl = ttl
	}
}

// NewRedis connects to the server at addr.
func NewRedis(addr string, opts ...RedisOption) *Redis {
	return NewRedisFromClient(backend.NewClient(&backend.Options{Addr: addr}), opts...)
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *backend.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) key(hash string) string {
	return r.prefix + hash
}

func (r *Redis) Get(ctx context.Context, hash string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.key(hash)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "redis get %s", hash)
	}
	return data, true, nil
}

func (r *Redis) Set(ctx context.Context, hash string, data []byte) error {
	if err := r.client.Set(ctx, r.key(hash), data, r.ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", hash)
	}
	return nil
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	return errors.Wrap(r.client.Ping(ctx).Err(), "redis ping")
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
