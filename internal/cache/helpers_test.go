package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hierovision/hierovision/client/internal/api"
	"github.com/hierovision/hierovision/client/internal/fakeapi"
	"github.com/hierovision/hierovision/client/internal/shardqueue"
	"github.com/hierovision/hierovision/client/internal/store"
	"github.com/hierovision/hierovision/client/internal/types"
)

// identity is a settable types.Identity.
type identity struct {
	mu sync.Mutex
	u  *types.User
}

func (i *identity) User() *types.User {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.u == nil {
		return nil
	}
	c := *i.u
	return &c
}

func (i *identity) set(u *types.User) {
	i.mu.Lock()
	i.u = u
	i.mu.Unlock()
}

type env struct {
	srv  *fakeapi.Server
	id   *identity
	deps Deps
}

// newEnv starts a fake API with two landmarks and logs in "ada" unless
// anonymous is set.
func newEnv(t *testing.T, anonymous bool) *env {
	t.Helper()
	srv := fakeapi.New()
	t.Cleanup(srv.Close)
	srv.AddLandmark(types.Landmark{ID: "giza", Name: "Pyramids of Giza", Price: 20})
	srv.AddLandmark(types.Landmark{ID: "karnak", Name: "Karnak Temple", Price: 15})

	st := store.NewMemory()
	pipe := api.NewPipeline(srv.Client(), srv.URL(), store.TokenSource{Store: st})
	id := &identity{}

	if !anonymous {
		srv.AddUser("Ada", "ada@example.com", "pw")
		lr, err := api.Login(context.Background(), pipe, types.LoginRequest{Email: "ada@example.com", Password: "pw"})
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if err := st.SetAll(context.Background(), map[string]string{store.KeyToken: lr.Token}); err != nil {
			t.Fatalf("store token: %v", err)
		}
		id.set(lr.User)
	}

	ex := shardqueue.NewShardExecutor(shardqueue.Config{Shards: 2})
	t.Cleanup(ex.Stop)

	return &env{
		srv: srv,
		id:  id,
		deps: Deps{
			API:      pipe,
			Session:  id,
			Executor: ex,
			Logger:   zerolog.Nop(),
		},
	}
}

// as returns deps for a second account on the same fake server.
func (e *env) as(t *testing.T, name, email string) Deps {
	t.Helper()
	e.srv.AddUser(name, email, "pw")
	st := store.NewMemory()
	pipe := api.NewPipeline(e.srv.Client(), e.srv.URL(), store.TokenSource{Store: st})
	lr, err := api.Login(context.Background(), pipe, types.LoginRequest{Email: email, Password: "pw"})
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	if err := st.SetAll(context.Background(), map[string]string{store.KeyToken: lr.Token}); err != nil {
		t.Fatalf("store token: %v", err)
	}
	id := &identity{}
	id.set(lr.User)
	d := e.deps
	d.API = pipe
	d.Session = id
	return d
}

// gatedRequester holds responses for endpoints matching a fragment until
// released, so tests can deliver them out of order. A held request signals
// on fetched once the server has answered.
type gatedRequester struct {
	api.Requester

	mu      sync.Mutex
	gates   map[string]chan struct{}
	fetched chan string
	calls   atomic.Int32
}

func newGated(inner api.Requester) *gatedRequester {
	return &gatedRequester{
		Requester: inner,
		gates:     make(map[string]chan struct{}),
		fetched:   make(chan string, 8),
	}
}

// hold gates the next request whose endpoint contains fragment.
func (g *gatedRequester) hold(fragment string) (release func()) {
	ch := make(chan struct{})
	g.mu.Lock()
	g.gates[fragment] = ch
	g.mu.Unlock()
	return func() { close(ch) }
}

func (g *gatedRequester) Request(ctx context.Context, endpoint string, opts api.RequestOptions) ([]byte, error) {
	g.calls.Add(1)
	g.mu.Lock()
	var gate chan struct{}
	for frag, ch := range g.gates {
		if strings.Contains(endpoint, frag) {
			gate = ch
			delete(g.gates, frag)
		}
	}
	g.mu.Unlock()

	body, err := g.Requester.Request(ctx, endpoint, opts)
	if gate != nil {
		g.fetched <- endpoint
		<-gate
	}
	return body, err
}
