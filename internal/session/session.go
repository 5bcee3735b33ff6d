// Package session owns the authenticated identity. It restores the identity
// from the credential store once at construction, moves it through
// login/signup/logout/profile updates, and tells subscribers about every
// transition.
package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hierovision/hierovision/client/internal/api"
	apierrors "github.com/hierovision/hierovision/client/internal/errors"
	"github.com/hierovision/hierovision/client/internal/store"
	"github.com/hierovision/hierovision/client/internal/types"
)

// State is the lifecycle position of a Manager.
type State int

const (
	StateUninitialized State = iota
	StateRestoring
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "uninitialized"
	}
}

// Listener observes identity transitions. It receives a copy of the new
// identity, nil when the session became anonymous.
type Listener func(user *types.User)

// Manager is the single writer of the credential store.
type Manager struct {
	api   api.Requester
	store store.Store
	log   zerolog.Logger

	mu    sync.RWMutex
	state State
	user  *types.User
	busy  int

	subMu   sync.Mutex
	subs    map[int]Listener
	nextSub int
}

// New builds a Manager and restores any persisted session. Restoration
// never touches the network and never fails: unreadable state is purged
// and the session starts anonymous.
func New(ctx context.Context, r api.Requester, st store.Store, log zerolog.Logger) *Manager {
	m := &Manager{
		api:   r,
		store: st,
		log:   log.With().Str("component", "session").Logger(),
		subs:  make(map[int]Listener),
	}
	m.restore(ctx)
	return m
}

func (m *Manager) restore(ctx context.Context) {
	m.mu.Lock()
	m.state = StateRestoring
	m.mu.Unlock()

	user, ok := m.readPersisted(ctx)
	if !ok {
		m.purge(ctx)
		m.transition(StateAnonymous, nil)
		return
	}
	m.transition(StateAuthenticated, user)
}

func (m *Manager) readPersisted(ctx context.Context) (*types.User, bool) {
	raw, hasUser, err := m.store.Get(ctx, store.KeyUser)
	if err != nil {
		m.log.Warn().Err(err).Msg("reading persisted identity")
		return nil, false
	}
	token, hasToken, err := m.store.Get(ctx, store.KeyToken)
	if err != nil {
		m.log.Warn().Err(err).Msg("reading persisted credential")
		return nil, false
	}
	if !hasUser || !hasToken || token == "" {
		return nil, false
	}
	var u types.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		m.log.Warn().Err(err).Msg("persisted identity is corrupt, discarding session")
		return nil, false
	}
	if u.ID == "" {
		m.log.Warn().Msg("persisted identity has no id, discarding session")
		return nil, false
	}
	return &u, true
}

// State reports the lifecycle position.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Loading is true while restoring and for the duration of login and signup.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateRestoring || m.busy > 0
}

// User returns a copy of the active identity, or nil when anonymous.
func (m *Manager) User() *types.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Token reads the persisted credential.
func (m *Manager) Token(ctx context.Context) (string, error) {
	return store.TokenSource{Store: m.store}.Token(ctx)
}

// Subscribe registers fn for identity transitions and returns a func that
// removes it.
func (m *Manager) Subscribe(fn Listener) (unsubscribe func()) {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
		})
	}
}

// Login authenticates with the server. On success the identity and
// credential are persisted together and adopted. On any failure the
// session is left as it was.
func (m *Manager) Login(ctx context.Context, email, password string) (*types.User, error) {
	defer m.enterBusy()()

	resp, err := api.Login(ctx, m.api, types.LoginRequest{Email: email, Password: password})
	if err != nil {
		m.log.Error().Err(err).Msg("login")
		return nil, err
	}
	if !resp.Success || resp.User == nil || resp.Token == "" {
		derr := &types.DomainError{Op: "login", Kind: types.ErrLoginFailed, Message: resp.Message}
		m.log.Error().Err(derr).Msg("login")
		return nil, derr
	}

	if err := m.persist(ctx, *resp.User, resp.Token); err != nil {
		return nil, err
	}
	m.transition(StateAuthenticated, resp.User)
	m.log.Info().Str("user_id", resp.User.ID).Msg("logged in")
	return m.User(), nil
}

// Signup registers an account. It never adopts a session; callers log in
// afterwards.
func (m *Manager) Signup(ctx context.Context, name, email, password string) (*types.StatusResponse, error) {
	defer m.enterBusy()()

	resp, err := api.Signup(ctx, m.api, types.SignupRequest{FullName: name, Email: email, Password: password})
	if err != nil {
		m.log.Error().Err(err).Msg("signup")
		return nil, err
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "Signup failed"
		}
		derr := &types.DomainError{Op: "signup", Kind: types.ErrSignupFailed, Message: msg}
		m.log.Error().Err(derr).Msg("signup")
		return nil, derr
	}
	return resp, nil
}

// Logout tells the server (best effort) and then always clears the
// persisted session.
func (m *Manager) Logout(ctx context.Context) {
	if err := api.Logout(ctx, m.api); err != nil {
		m.log.Error().Err(err).Msg("logout notification failed")
	}
	m.purge(ctx)
	m.transition(StateAnonymous, nil)
}

// UpdateProfile sends the changed fields and shallow-merges the server's
// answer onto the current identity. It does nothing when anonymous.
func (m *Manager) UpdateProfile(ctx context.Context, upd types.ProfileUpdate) (*types.User, error) {
	current := m.User()
	if current == nil {
		return nil, nil
	}

	resp, err := api.UpdateProfile(ctx, m.api, types.UpdateProfileRequest{
		FullName:        upd.Name,
		SelectedCountry: upd.Bio,
	})
	if err != nil {
		m.log.Error().Err(err).Msg("profile update")
		return nil, err
	}
	if !resp.Success {
		derr := &types.DomainError{Op: "update profile", Kind: types.ErrProfileUpdateFailed, Message: resp.Message}
		m.log.Error().Err(derr).Msg("profile update")
		return nil, derr
	}
	return m.adoptFragment(ctx, *current, resp.User)
}

// Verify asks the server whether the persisted credential is still valid
// and refreshes the identity from its answer. A rejected credential ends
// the session.
func (m *Manager) Verify(ctx context.Context) (*types.User, error) {
	current := m.User()
	if current == nil {
		return nil, types.NotAuthenticated("verify session")
	}

	resp, err := api.Verify(ctx, m.api)
	if apierrors.IsStatus(err, http.StatusUnauthorized) {
		m.log.Warn().Err(err).Msg("credential rejected, ending session")
		m.purge(ctx)
		m.transition(StateAnonymous, nil)
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		m.purge(ctx)
		m.transition(StateAnonymous, nil)
		return nil, types.NotAuthenticated("verify session")
	}
	return m.adoptFragment(ctx, *current, resp.User)
}

func (m *Manager) adoptFragment(ctx context.Context, base types.User, fragment json.RawMessage) (*types.User, error) {
	merged, err := types.MergeUser(base, fragment)
	if err != nil {
		return nil, errors.Wrap(err, "decode identity")
	}
	token, err := m.Token(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read credential")
	}
	if err := m.persist(ctx, merged, token); err != nil {
		return nil, err
	}
	m.transition(StateAuthenticated, &merged)
	return m.User(), nil
}

func (m *Manager) persist(ctx context.Context, u types.User, token string) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return errors.Wrap(err, "encode identity")
	}
	if err := m.store.SetAll(ctx, map[string]string{
		store.KeyUser:  string(raw),
		store.KeyToken: token,
	}); err != nil {
		m.log.Error().Err(err).Msg("persisting session")
		return errors.Wrap(err, "persist session")
	}
	return nil
}

// purge clears the persisted session even when ctx is already done.
func (m *Manager) purge(ctx context.Context) {
	if err := m.store.Delete(context.WithoutCancel(ctx), store.KeyUser, store.KeyToken); err != nil {
		m.log.Error().Err(err).Msg("clearing persisted session")
	}
}

func (m *Manager) enterBusy() (leave func()) {
	m.mu.Lock()
	m.busy++
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.busy--
		m.mu.Unlock()
	}
}

// transition adopts the new state and notifies subscribers outside the lock.
func (m *Manager) transition(to State, user *types.User) {
	m.mu.Lock()
	m.state = to
	if user == nil {
		m.user = nil
	} else {
		u := *user
		m.user = &u
	}
	m.mu.Unlock()

	transitionsTotal.WithLabelValues(to.String()).Inc()
	m.notify()
}

func (m *Manager) notify() {
	m.subMu.Lock()
	listeners := make([]Listener, 0, len(m.subs))
	for _, fn := range m.subs {
		listeners = append(listeners, fn)
	}
	m.subMu.Unlock()

	for _, fn := range listeners {
		fn(m.User())
	}
}
