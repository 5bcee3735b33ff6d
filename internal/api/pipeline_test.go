package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/hierovision/hierovision/client/internal/errors"
)

func TestRequest_HeadersAndBody(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, "tok-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/echo", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"a":1}`, string(b))
		writeJSON(w, http.StatusOK, `{"ok":true}`)
	})

	body, err := p.Request(context.Background(), "/echo", RequestOptions{Method: http.MethodPost, Body: map[string]int{"a": 1}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestRequest_NoTokenNoAuthorization(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{}`)
	})
	_, err := p.Request(context.Background(), "/landmarks", RequestOptions{})
	require.NoError(t, err)
}

func TestRequest_CallerHeadersOverride(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, "tok-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer other", r.Header.Get("Authorization"))
		assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))
		assert.Equal(t, "req-7", r.Header.Get("X-Request-ID"))
		writeJSON(w, http.StatusOK, `{}`)
	})
	_, err := p.Request(context.Background(), "/x", RequestOptions{Headers: map[string]string{
		"Authorization": "Bearer other",
		"Content-Type":  "text/plain",
		"X-Request-ID":  "req-7",
	}})
	require.NoError(t, err)
}

func TestRequest_HTTPErrorComposition(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"error":"not found"}`)
	})
	_, err := p.Request(context.Background(), "/landmarks/missing", RequestOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "not found")
	assert.True(t, apierrors.IsStatus(err, http.StatusNotFound))
}

func TestRequest_UnparseableErrorBody(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})
	_, err := p.Request(context.Background(), "/landmarks", RequestOptions{})
	require.Error(t, err)
	assert.Equal(t, "HTTP error! status: 502", err.Error())
}

func TestRequest_EmptySuccessBody(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	body, err := p.Request(context.Background(), "/bookmarks/l1", RequestOptions{Method: http.MethodDelete})
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestRequest_InvalidSuccessBody(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("not json"))
	})
	_, err := p.Request(context.Background(), "/landmarks", RequestOptions{})
	var reqErr *apierrors.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusOK, reqErr.StatusCode)
}

func TestRequest_TransportFailure(t *testing.T) {
	t.Parallel()
	p := NewPipeline(&http.Client{Transport: &errRT{}}, "http://example.invalid/api", nil)
	_, err := p.Request(context.Background(), "/landmarks", RequestOptions{})
	var reqErr *apierrors.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 0, reqErr.StatusCode)
	assert.Contains(t, err.Error(), "boom")
}

func TestRequest_CanceledContext(t *testing.T) {
	t.Parallel()
	p := NewPipeline(&http.Client{Transport: &errRT{}}, "http://example.invalid/api", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Request(ctx, "/landmarks", RequestOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRequest_RateLimitedCallStillSucceeds(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	mux := func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, `{}`)
	}
	p := newTestPipeline(t, "", mux)
	WithRateLimit(1000, 1)(p)
	for i := 0; i < 3; i++ {
		_, err := p.Request(context.Background(), "/landmarks", RequestOptions{})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), hits.Load())
}

func TestUpload_MultipartAndRawStatus(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, "tok-9", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-9", r.Header.Get("Authorization"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, "glyph.png", hdr.Filename)
		assert.Equal(t, "PNGDATA", string(b))
		writeJSON(w, http.StatusUnprocessableEntity, `{"error":"no glyph detected"}`)
	})

	resp, err := Predict(context.Background(), p, "glyph.png", strings.NewReader("PNGDATA"))
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "no glyph detected", resp.Body["error"])
}

func TestInto_DecodesTarget(t *testing.T) {
	t.Parallel()
	p := newTestPipeline(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"n":3}`)
	})
	var out struct {
		N int `json:"n"`
	}
	require.NoError(t, p.Into(context.Background(), "/count", RequestOptions{}, &out))
	assert.Equal(t, 3, out.N)

	var wrong struct {
		N string `json:"n"`
	}
	err := p.Into(context.Background(), "/count", RequestOptions{}, &wrong)
	var reqErr *apierrors.RequestError
	require.ErrorAs(t, err, &reqErr)
	var typeErr *json.UnmarshalTypeError
	assert.ErrorAs(t, err, &typeErr)
}
