// Package store persists the client's durable state: the serialized
// identity and the bearer credential. Both keys are written together and
// removed together.
package store

import (
	"context"
	"errors"
	"fmt"
)

const (
	KeyUser  = "hierovision_user"
	KeyToken = "hierovision_token"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store closed")

// Store is a small key/value persistence backend.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetAll writes every pair as one unit.
	SetAll(ctx context.Context, kv map[string]string) error
	// Delete removes keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Kind names a Store backend.
type Kind string

const (
	KindMemory Kind = "memory"
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
	KindRedis  Kind = "redis"
)

// Options selects and parameterizes a backend for Open.
type Options struct {
	Kind Kind
	Path string // file and sqlite; defaults under DataDir

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open constructs the backend named by opts.Kind.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Kind {
	case KindMemory:
		return NewMemory(), nil
	case KindFile, "":
		path := opts.Path
		if path == "" {
			p, err := DefaultPath("session.json")
			if err != nil {
				return nil, err
			}
			path = p
		}
		return OpenFile(path)
	case KindSQLite:
		path := opts.Path
		if path == "" {
			p, err := DefaultPath("session.db")
			if err != nil {
				return nil, err
			}
			path = p
		}
		return OpenSQLite(ctx, path)
	case KindRedis:
		return OpenRedis(ctx, RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			Prefix:   opts.RedisPrefix,
		})
	default:
		return nil, fmt.Errorf("unsupported store kind: %s", opts.Kind)
	}
}

// TokenSource adapts a Store to the pipeline's credential lookup.
type TokenSource struct{ Store Store }

// Token returns the persisted credential or "" when absent.
func (t TokenSource) Token(ctx context.Context) (string, error) {
	v, ok, err := t.Store.Get(ctx, KeyToken)
	if err != nil || !ok {
		return "", err
	}
	return v, nil
}
