package store

import (
	"context"
	"errors"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// RedisOptions configures OpenRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // defaults to "hierovision:"

	// DialAttempts bounds the initial ping; zero means 5.
	DialAttempts uint64
}

// Redis stores keys under a prefix in a shared Redis instance.
type Redis struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects and pings with exponential backoff so a client started
// alongside its Redis does not fail on the first refused connection.
func OpenRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis store: addr is required")
	}
	if opts.Prefix == "" {
		opts.Prefix = "hierovision:"
	}
	if opts.DialAttempts == 0 {
		opts.DialAttempts = 5
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 100 * time.Millisecond
	exp.MaxInterval = 2 * time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, opts.DialAttempts-1), ctx)

	ping := func() error {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return client.Ping(pctx).Err()
	}
	if err := backoff.Retry(ping, policy); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Redis{client: client, prefix: opts.Prefix}, nil
}

// NewRedis wraps an existing client without pinging.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "hierovision:"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *Redis) SetAll(ctx context.Context, kv map[string]string) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for k, v := range kv {
			p.Set(ctx, r.key(k), v, 0)
		}
		return nil
	})
	return err
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	return r.client.Del(ctx, full...).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
