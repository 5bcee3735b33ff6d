package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/hierovision/hierovision/client/internal/types"
)

// errRT is an http.RoundTripper that always returns an error (simulates network failure).
type errRT struct{}

func (e *errRT) RoundTrip(*http.Request) (*http.Response, error) { return nil, fmt.Errorf("boom") }

// countingRequester records how often the pipeline would have been hit.
type countingRequester struct {
	calls atomic.Int32
}

func (c *countingRequester) Request(context.Context, string, RequestOptions) ([]byte, error) {
	c.calls.Add(1)
	return []byte(`{}`), nil
}

func (c *countingRequester) Upload(context.Context, string, MultipartForm) (*types.UploadResponse, error) {
	c.calls.Add(1)
	return &types.UploadResponse{StatusCode: http.StatusOK}, nil
}

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

// newTestPipeline starts h under /api and returns a pipeline rooted there.
func newTestPipeline(t *testing.T, token string, h http.HandlerFunc) *Pipeline {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle("/api/", h)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewPipeline(srv.Client(), srv.URL+"/api", staticToken(token))
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
