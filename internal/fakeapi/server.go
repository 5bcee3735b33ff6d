// Package fakeapi is an in-process stand-in for the HieroVision REST API,
// used by the client and CLI tests. It keeps its data in memory, counts the
// calls per route, and can be told to fail a route once.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/hierovision/hierovision/client/internal/types"
)

type account struct {
	ID       string
	Name     string
	Email    string
	Password string
	Country  string
	Avatar   string
}

type failure struct {
	status int
	body   string
}

// Server is the fake API. Its zero value is not usable; call New.
type Server struct {
	srv *httptest.Server

	mu        sync.Mutex
	accounts  map[string]*account // by email
	tokens    map[string]string   // token → user id
	landmarks []types.Landmark
	bookmarks map[string][]types.Bookmark // by user id
	reviews   map[string][]types.Review   // by landmark id
	scans     map[string][]types.Scan     // by user id
	bookings  map[string][]types.Booking  // by user id
	calls     map[string]int
	failNext  map[string]failure
}

// New starts a fake API server. Call Close when done.
func New() *Server {
	s := &Server{
		accounts:  make(map[string]*account),
		tokens:    make(map[string]string),
		bookmarks: make(map[string][]types.Bookmark),
		reviews:   make(map[string][]types.Review),
		scans:     make(map[string][]types.Scan),
		bookings:  make(map[string][]types.Booking),
		calls:     make(map[string]int),
		failNext:  make(map[string]failure),
	}
	s.srv = httptest.NewServer(s.router())
	return s
}

// URL is the API root, suitable as the client's base URL.
func (s *Server) URL() string { return s.srv.URL + "/api" }

// Client returns an HTTP client wired to the server.
func (s *Server) Client() *http.Client { return s.srv.Client() }

// Close shuts the server down.
func (s *Server) Close() { s.srv.Close() }

// AddUser registers an account directly and returns its id.
func (s *Server) AddUser(name, email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &account{ID: uuid.NewString(), Name: name, Email: email, Password: password}
	s.accounts[email] = a
	return a.ID
}

// AddLandmark seeds a landmark.
func (s *Server) AddLandmark(l types.Landmark) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.landmarks = append(s.landmarks, l)
}

// AddScan seeds a scan for a user.
func (s *Server) AddScan(userID string, sc types.Scan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc.UserUID = userID
	s.scans[userID] = append(s.scans[userID], sc)
}

// FailNext makes the next call to route answer with status and body.
// Routes are named "METHOD /path/{var}", e.g. "POST /auth/logout".
func (s *Server) FailNext(route string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[route] = failure{status: status, body: body}
}

// Calls reports how many requests hit route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TotalCalls reports the number of requests served.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.countAndInject)

	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", s.authed(s.handleLogout)).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify", s.authed(s.handleVerify)).Methods(http.MethodGet)
	api.HandleFunc("/user/profile", s.authed(s.handleGetProfile)).Methods(http.MethodGet)
	api.HandleFunc("/user/profile", s.authed(s.handleUpdateProfile)).Methods(http.MethodPut)
	api.HandleFunc("/auth/change-password", s.authed(s.handleChangePassword)).Methods(http.MethodPut)
	api.HandleFunc("/auth/reset-password", s.handleResetPassword).Methods(http.MethodPost)
	api.HandleFunc("/user/avatar", s.authed(s.handleUploadAvatar)).Methods(http.MethodPost)
	api.HandleFunc("/user/avatar", s.authed(s.handleDeleteAvatar)).Methods(http.MethodDelete)

	api.HandleFunc("/landmarks", s.handleListLandmarks).Methods(http.MethodGet)
	api.HandleFunc("/landmarks/{id}", s.handleGetLandmark).Methods(http.MethodGet)
	api.HandleFunc("/landmarks/{id}/reviews", s.handleListReviews).Methods(http.MethodGet)
	api.HandleFunc("/landmarks/{id}/reviews", s.authed(s.handleCreateReview)).Methods(http.MethodPost)
	api.HandleFunc("/reviews/{id}", s.authed(s.handleUpdateReview)).Methods(http.MethodPut)
	api.HandleFunc("/reviews/{id}", s.authed(s.handleDeleteReview)).Methods(http.MethodDelete)

	api.HandleFunc("/bookmarks", s.authed(s.handleListBookmarks)).Methods(http.MethodGet)
	api.HandleFunc("/bookmarks", s.authed(s.handleAddBookmark)).Methods(http.MethodPost)
	api.HandleFunc("/bookmarks/{id}", s.authed(s.handleRemoveBookmark)).Methods(http.MethodDelete)

	api.HandleFunc("/scans/save", s.authed(s.handleSaveScan)).Methods(http.MethodPost)
	api.HandleFunc("/scans/user", s.authed(s.handleListScans)).Methods(http.MethodGet)
	api.HandleFunc("/scans/recent", s.authed(s.handleRecentScans)).Methods(http.MethodGet)
	api.HandleFunc("/scans/{id}", s.authed(s.handleGetScan)).Methods(http.MethodGet)
	api.HandleFunc("/scans/{id}", s.authed(s.handleDeleteScan)).Methods(http.MethodDelete)

	api.HandleFunc("/bookings", s.authed(s.handleListBookings)).Methods(http.MethodGet)
	api.HandleFunc("/bookings", s.authed(s.handleCreateBooking)).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}", s.authed(s.handleGetBooking)).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}/cancel", s.authed(s.handleCancelBooking)).Methods(http.MethodPost)

	api.HandleFunc("/translate/english-to-hieroglyphs", s.handleTranslate).Methods(http.MethodPost)
	api.HandleFunc("/predict", s.handlePredict).Methods(http.MethodPost)
	api.HandleFunc("/predict/translate", s.handlePredict).Methods(http.MethodPost)
	return r
}

// countAndInject records the matched route and serves any injected failure.
func (s *Server) countAndInject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tpl, _ := mux.CurrentRoute(r).GetPathTemplate()
		route := r.Method + " " + strings.TrimPrefix(tpl, "/api")

		s.mu.Lock()
		s.calls[route]++
		f, fail := s.failNext[route]
		delete(s.failNext, route)
		s.mu.Unlock()

		if fail {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type authedHandler func(w http.ResponseWriter, r *http.Request, a *account)

// authed resolves the bearer token the way a JWT-protected route would.
func (s *Server) authed(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "Missing Authorization Header"})
			return
		}
		s.mu.Lock()
		a := s.accountByID(s.tokens[token])
		s.mu.Unlock()
		if a == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "Token has expired"})
			return
		}
		h(w, r, a)
	}
}

func (s *Server) accountByID(id string) *account {
	if id == "" {
		return nil
	}
	for _, a := range s.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (a *account) wire() map[string]any {
	return map[string]any{
		"uid":             a.ID,
		"fullName":        a.Name,
		"email":           a.Email,
		"selectedCountry": a.Country,
		"avatarURL":       a.Avatar,
	}
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func limitParam(r *http.Request, name string, def int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil && n > 0 {
		return n
	}
	return def
}

func sortedScans(in []types.Scan) []types.Scan {
	out := append([]types.Scan(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out
}
