package client

import (
	"context"

	"github.com/hierovision/hierovision/client/internal/shardqueue"
)

// executor serializes cache mutations per collection.
type executor interface {
	Do(ctx context.Context, key string, fn func(context.Context) error) error
	Barrier(ctx context.Context, key string) error
	Stop()
}

var _ executor = (*shardqueue.ShardExecutor)(nil)

func newExecutor(c *Client) *shardqueue.ShardExecutor {
	cfg := c.queueCfg
	cfg.Logger = c.log
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(err error) {
			mutationJobFailuresTotal.Inc()
			c.log.Debug().Err(err).Msg("queued mutation failed")
		}
	}
	return shardqueue.NewShardExecutor(cfg)
}
