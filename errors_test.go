package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hierovision/hierovision/client/internal/shardqueue"
)

func TestIsBackPressure(t *testing.T) {
	t.Parallel()
	qf := &shardqueue.QueueFullError{Shard: 1, Length: 4, Capacity: 4}
	assert.True(t, IsBackPressure(qf))
	assert.True(t, IsBackPressure(fmt.Errorf("wrapped: %w", qf)))
	assert.False(t, IsBackPressure(errors.New("other")))
}

func TestRequestErrorSurface(t *testing.T) {
	t.Parallel()
	srv := newFake(t)
	c := newTestClient(t, srv)
	login(t, c)

	_, err := c.Landmarks().Get(context.Background(), "atlantis")
	require.Error(t, err)

	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusNotFound, re.StatusCode)
	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.Equal(t, "HTTP error! status: 404 - Landmark not found", err.Error())
}

func TestDomainErrorSurface(t *testing.T) {
	t.Parallel()
	srv := newFake(t)
	c := newTestClient(t, srv)
	srv.FailNext("POST /auth/login", http.StatusOK, `{"success":false,"message":"Account locked"}`)

	_, err := c.Session().Login(context.Background(), "ada@example.com", "pw")
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.Equal(t, "Account locked", err.Error())
	assert.Equal(t, StateAnonymous, c.Session().State())
}
