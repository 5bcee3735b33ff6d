package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	apierrors "github.com/hierovision/hierovision/client/internal/errors"
	"github.com/hierovision/hierovision/client/internal/types"
)

// Requester is the pipeline surface the endpoint functions depend on.
// Tests substitute call-counting stubs.
type Requester interface {
	Request(ctx context.Context, endpoint string, opts RequestOptions) ([]byte, error)
	Upload(ctx context.Context, endpoint string, form MultipartForm) (*types.UploadResponse, error)
}

// RequestOptions carries the optional parts of a JSON request. A zero
// Method means GET.
type RequestOptions struct {
	Method  string
	Body    any
	Headers map[string]string
}

// FilePart is one file field of a multipart upload.
type FilePart struct {
	Field    string
	FileName string
	Reader   io.Reader
}

// MultipartForm is the body of a binary upload.
type MultipartForm struct {
	Files  []FilePart
	Fields map[string]string
}

// call issues a JSON request and decodes a successful body into out.
func call(ctx context.Context, r Requester, endpoint string, opts RequestOptions, out any) error {
	body, err := r.Request(ctx, endpoint, opts)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apierrors.NewDecodeError(methodOr(opts.Method), endpoint, 200, body, err)
	}
	return nil
}

func methodOr(m string) string {
	if m == "" {
		return "GET"
	}
	return m
}

// ErrMalformedResponse is returned when a 2xx body lacks the record the
// endpoint promises.
var ErrMalformedResponse = errors.New("malformed response")

func errMissingField(name string) error {
	return fmt.Errorf("%w: missing %q", ErrMalformedResponse, name)
}
