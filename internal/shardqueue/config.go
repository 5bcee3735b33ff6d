package shardqueue

import (
	"time"

	"github.com/rs/zerolog"
)

// Config groups the executor tunables. The client populates it from the
// HIEROVISION_QUEUE_* environment variables.
type Config struct {
	Shards         int           `envconfig:"SHARDS"          default:"4"`
	QueueSize      int           `envconfig:"SIZE"            default:"64"`
	EnqueueTimeout time.Duration `envconfig:"ENQUEUE_TIMEOUT" default:"250ms"`

	// ErrorHandler is called synchronously after a Job returns a non-nil
	// error or is skipped because its context ended. Leave nil if you do
	// not care.
	ErrorHandler func(error) `envconfig:"-"`

	Logger zerolog.Logger `envconfig:"-"`
}
