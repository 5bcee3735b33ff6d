package client

import (
	"errors"

	apierrors "github.com/hierovision/hierovision/client/internal/errors"
	"github.com/hierovision/hierovision/client/internal/shardqueue"
	"github.com/hierovision/hierovision/client/internal/types"
)

// Re-exported so callers compare against a single symbol.
var (
	ErrNotAuthenticated    = types.ErrNotAuthenticated
	ErrMissingID           = types.ErrMissingID
	ErrMissingField        = types.ErrMissingField
	ErrLoginFailed         = types.ErrLoginFailed
	ErrSignupFailed        = types.ErrSignupFailed
	ErrProfileUpdateFailed = types.ErrProfileUpdateFailed
)

// ErrBackPressure matches a mutation rejected because its queue was full.
var ErrBackPressure = shardqueue.ErrQueueFull

// ErrClosed is returned by mutations after Close.
var ErrClosed = shardqueue.ErrExecutorClosed

// RequestError is the single shape of every transport, HTTP and decode
// failure.
type RequestError = apierrors.RequestError

// DomainError is an HTTP success whose body reported a business failure.
type DomainError = types.DomainError

// IsBackPressure reports whether err is a back-pressure error.
func IsBackPressure(err error) bool { return errors.Is(err, ErrBackPressure) }

// IsStatus reports whether err is an HTTP failure with the given status.
func IsStatus(err error, code int) bool { return apierrors.IsStatus(err, code) }

// StatusOf returns the HTTP status behind err, 0 when there is none.
func StatusOf(err error) int { return apierrors.StatusOf(err) }
