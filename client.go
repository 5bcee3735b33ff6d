package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hierovision/hierovision/client/internal/api"
	"github.com/hierovision/hierovision/client/internal/cache"
	"github.com/hierovision/hierovision/client/internal/session"
	"github.com/hierovision/hierovision/client/internal/shardqueue"
	"github.com/hierovision/hierovision/client/internal/store"
	"github.com/hierovision/hierovision/client/internal/types"
)

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

// Client owns the credential store, the session and the collection caches.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
	debug   bool

	store     store.Store
	ownsStore bool
	storeOpts *store.Options

	rateLimit float64
	rateBurst int
	queueCfg  shardqueue.Config

	pipe      *api.Pipeline
	exec      executor
	session   *session.Manager
	landmarks *cache.Landmarks
	bookmarks *cache.Bookmarks
	reviews   *cache.Reviews

	unsubscribe func()
	baseCtx     context.Context
	cancel      context.CancelFunc

	closedOnce uint32 // ensures Close is idempotent
}

// New constructs a Client talking to baseURL (DefaultBaseURL when empty).
// The session is restored from the credential store before New returns;
// restoring never touches the network. Without WithStore or
// WithStoreOptions the credential lives in memory only.
func New(ctx context.Context, baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:   baseURL,
		http:      &http.Client{Timeout: 30 * time.Second},
		log:       log.Logger,
		rateBurst: 1,
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.store == nil {
		if c.storeOpts != nil {
			st, err := store.Open(ctx, *c.storeOpts)
			if err != nil {
				return nil, fmt.Errorf("open credential store: %w", err)
			}
			c.store, c.ownsStore = st, true
		} else {
			c.store, c.ownsStore = store.NewMemory(), true
		}
	}

	if c.debug {
		wrapDebug(c.http, c.log)
	}

	c.pipe = api.NewPipeline(c.http, c.baseURL, store.TokenSource{Store: c.store},
		api.WithRateLimit(c.rateLimit, c.rateBurst),
		api.WithLogger(c.log),
	)
	c.exec = newExecutor(c)
	c.session = session.New(ctx, c.pipe, c.store, c.log)

	deps := cache.Deps{
		API:      c.pipe,
		Session:  c.session,
		Executor: c.exec,
		Logger:   c.log,
	}
	c.landmarks = cache.NewLandmarks(deps)
	c.bookmarks = cache.NewBookmarks(deps)
	c.reviews = cache.NewReviews(deps)

	c.baseCtx, c.cancel = context.WithCancel(context.Background())
	c.unsubscribe = c.session.Subscribe(func(u *types.User) {
		// Load failures are sticky on the cache; nothing to return here.
		_ = c.bookmarks.OnSessionChange(c.baseCtx, u)
	})

	c.log.Debug().Str("base_url", c.baseURL).Str("state", c.session.State().String()).Msg("client ready")
	return c, nil
}

// NewFromConfig builds a Client from cfg. The store described by cfg is
// opened unless an option supplies one.
func NewFromConfig(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	base := []Option{
		WithHTTPTimeout(cfg.HTTPTimeout),
		WithStoreOptions(cfg.StoreOptions()),
		WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		WithQueueConfig(cfg.Queue),
		WithDebugLogging(cfg.Debug),
	}
	return New(ctx, cfg.APIBaseURL, append(base, opts...)...)
}

// BaseURL returns the API root the Client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Session returns the session manager.
func (c *Client) Session() *session.Manager { return c.session }

// Landmarks returns the landmark cache.
func (c *Client) Landmarks() *cache.Landmarks { return c.landmarks }

// Bookmarks returns the session user's bookmark cache. It reloads on its
// own whenever the session identity changes.
func (c *Client) Bookmarks() *cache.Bookmarks { return c.bookmarks }

// Reviews returns the review cache for the landmark last passed to Load.
func (c *Client) Reviews() *cache.Reviews { return c.reviews }

// Close stops the mutation executor and closes a store the Client opened.
// Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	if c.cancel != nil {
		c.cancel()
	}
	if c.exec != nil {
		c.exec.Stop()
	}
	if c.ownsStore && c.store != nil {
		return c.store.Close()
	}
	return nil
}

// AwaitConsistency blocks until every mutation already queued for the key
// ("bookmarks" or "reviews:<landmarkID>") has finished.
func (c *Client) AwaitConsistency(ctx context.Context, key string) error {
	return c.exec.Barrier(ctx, key)
}

func (c *Client) requireSession(action string) error {
	if c.session.User() == nil {
		return types.NotAuthenticated(action)
	}
	return nil
}

// --------------------------------------------------------------------
// Account operations - delegated to internal/api
// --------------------------------------------------------------------

// ChangePassword changes the session user's password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) (*StatusResponse, error) {
	if err := c.requireSession("change password"); err != nil {
		return nil, err
	}
	return api.ChangePassword(ctx, c.pipe, types.ChangePasswordRequest{CurrentPassword: current, NewPassword: next})
}

// ResetPassword asks the server to send a reset link. No session needed.
func (c *Client) ResetPassword(ctx context.Context, email string) (*StatusResponse, error) {
	return api.ResetPassword(ctx, c.pipe, types.ResetPasswordRequest{Email: email})
}

// GetProfile fetches the server's view of the session user without
// touching the session.
func (c *Client) GetProfile(ctx context.Context) (*User, error) {
	if err := c.requireSession("get profile"); err != nil {
		return nil, err
	}
	resp, err := api.GetProfile(ctx, c.pipe)
	if err != nil {
		return nil, err
	}
	if len(resp.User) == 0 {
		return nil, fmt.Errorf("get profile: %w", api.ErrMalformedResponse)
	}
	var u User
	if err := json.Unmarshal(resp.User, &u); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &u, nil
}

// UploadAvatar sends image as the session user's avatar. Non-2xx answers
// come back in the UploadResponse, not as errors.
func (c *Client) UploadAvatar(ctx context.Context, fileName string, image io.Reader) (*UploadResponse, error) {
	if err := c.requireSession("upload an avatar"); err != nil {
		return nil, err
	}
	return api.UploadAvatar(ctx, c.pipe, fileName, image)
}

// DeleteAvatar removes the session user's avatar.
func (c *Client) DeleteAvatar(ctx context.Context) (*StatusResponse, error) {
	if err := c.requireSession("delete the avatar"); err != nil {
		return nil, err
	}
	return api.DeleteAvatar(ctx, c.pipe)
}

// --------------------------------------------------------------------
// Scan history
// --------------------------------------------------------------------

// SaveScan stores a translation result in the user's history.
func (c *Client) SaveScan(ctx context.Context, req SaveScanRequest) (*Scan, error) {
	if err := c.requireSession("save a scan"); err != nil {
		return nil, err
	}
	return api.SaveScan(ctx, c.pipe, req)
}

// ListScans returns one page of the user's scan history.
func (c *Client) ListScans(ctx context.Context, page, perPage int) (*ListScansResponse, error) {
	if err := c.requireSession("list scans"); err != nil {
		return nil, err
	}
	return api.ListScans(ctx, c.pipe, page, perPage)
}

// RecentScans returns the user's latest scans, newest first.
func (c *Client) RecentScans(ctx context.Context, limit int) ([]Scan, error) {
	if err := c.requireSession("list recent scans"); err != nil {
		return nil, err
	}
	return api.RecentScans(ctx, c.pipe, limit)
}

// GetScan fetches one scan.
func (c *Client) GetScan(ctx context.Context, scanID string) (*Scan, error) {
	if err := c.requireSession("get a scan"); err != nil {
		return nil, err
	}
	return api.GetScan(ctx, c.pipe, scanID)
}

// DeleteScan removes one scan from the history.
func (c *Client) DeleteScan(ctx context.Context, scanID string) error {
	if err := c.requireSession("delete a scan"); err != nil {
		return err
	}
	return api.DeleteScan(ctx, c.pipe, scanID)
}

// --------------------------------------------------------------------
// Bookings
// --------------------------------------------------------------------

// ListBookings returns the user's bookings.
func (c *Client) ListBookings(ctx context.Context) ([]Booking, error) {
	if err := c.requireSession("list bookings"); err != nil {
		return nil, err
	}
	return api.ListBookings(ctx, c.pipe)
}

// CreateBooking reserves a tour.
func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) (*Booking, error) {
	if err := c.requireSession("book a tour"); err != nil {
		return nil, err
	}
	return api.CreateBooking(ctx, c.pipe, req)
}

// GetBooking fetches one booking.
func (c *Client) GetBooking(ctx context.Context, bookingID string) (*Booking, error) {
	if err := c.requireSession("get a booking"); err != nil {
		return nil, err
	}
	return api.GetBooking(ctx, c.pipe, bookingID)
}

// CancelBooking cancels a booking and returns its new state.
func (c *Client) CancelBooking(ctx context.Context, bookingID string) (*Booking, error) {
	if err := c.requireSession("cancel a booking"); err != nil {
		return nil, err
	}
	return api.CancelBooking(ctx, c.pipe, bookingID)
}

// --------------------------------------------------------------------
// Translation
// --------------------------------------------------------------------

// TranslateText converts English text to hieroglyphs.
func (c *Client) TranslateText(ctx context.Context, text string) (Document, error) {
	return api.TranslateText(ctx, c.pipe, text)
}

// Predict classifies a hieroglyph image.
func (c *Client) Predict(ctx context.Context, fileName string, image io.Reader) (*UploadResponse, error) {
	return api.Predict(ctx, c.pipe, fileName, image)
}

// PredictTranslate classifies a hieroglyph image and translates it.
func (c *Client) PredictTranslate(ctx context.Context, fileName string, image io.Reader) (*UploadResponse, error) {
	return api.PredictTranslate(ctx, c.pipe, fileName, image)
}
