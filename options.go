package client

// This file defines functional options that configure the Client during
// construction.

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hierovision/hierovision/client/internal/shardqueue"
	"github.com/hierovision/hierovision/client/internal/store"
)

// Option configures a Client during construction in New.
//
// Options run in order; the debug transport, when requested, is installed
// after all of them so it wraps whatever transport the options settled on.
type Option func(*Client) error

// WithHTTPTimeout sets the underlying http.Client Timeout.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse bound on a single HTTP exchange. The value must be greater than
// zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithHTTPClient replaces the http.Client. The client is used as is, so set
// its Timeout yourself.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		c.http = hc
		return nil
	}
}

// WithDebugLogging dumps each request and response at debug level when
// enabled is true. Dumps include the bearer token; do not enable this in
// production.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		c.debug = c.debug || enabled
		return nil
	}
}

// WithStore sets the credential store. The Client does not close a store
// passed this way.
func WithStore(st store.Store) Option {
	return func(c *Client) error {
		if st == nil {
			return fmt.Errorf("store must not be nil")
		}
		c.store = st
		c.ownsStore = false
		return nil
	}
}

// WithStoreOptions opens the credential store described by opts during New.
// The Client closes it on Close.
func WithStoreOptions(opts store.Options) Option {
	return func(c *Client) error {
		c.storeOpts = &opts
		return nil
	}
}

// WithLogger sets the logger used by every component.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = l
		return nil
	}
}

// WithRateLimit throttles outgoing requests to rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) error {
		if rps < 0 {
			return fmt.Errorf("rate limit must be >= 0")
		}
		c.rateLimit, c.rateBurst = rps, burst
		return nil
	}
}

// WithQueueConfig tunes the executor that serializes cache mutations.
func WithQueueConfig(cfg shardqueue.Config) Option {
	return func(c *Client) error {
		c.queueCfg = cfg
		return nil
	}
}
