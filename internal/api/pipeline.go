package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	apierrors "github.com/hierovision/hierovision/client/internal/errors"
	"github.com/hierovision/hierovision/client/internal/types"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerRequestID     = "X-Request-ID"
	contentTypeJSON     = "application/json"
)

// Pipeline issues every call to the remote API. It is stateless apart from
// reading the persisted credential through its TokenSource at call time.
type Pipeline struct {
	rc      *resty.Client
	tokens  types.TokenSource
	limiter *rate.Limiter
	log     zerolog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithRateLimit throttles outgoing requests to rps with the given burst.
func WithRateLimit(rps float64, burst int) PipelineOption {
	return func(p *Pipeline) {
		if rps <= 0 {
			return
		}
		if burst <= 0 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the pipeline's logger.
func WithLogger(l zerolog.Logger) PipelineOption {
	return func(p *Pipeline) { p.log = l }
}

// NewPipeline builds a pipeline over httpClient rooted at baseURL.
func NewPipeline(httpClient *http.Client, baseURL string, tokens types.TokenSource, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{tokens: tokens, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	p.rc = resty.NewWithClient(httpClient).
		SetBaseURL(baseURL).
		SetLogger(restyLogger{l: p.log})
	return p
}

// BaseURL returns the configured API root.
func (p *Pipeline) BaseURL() string { return p.rc.BaseURL }

// Request issues a JSON request. Content-Type is always JSON, the persisted
// credential (if any) is sent as a bearer token, and caller headers are
// applied last so they override both. A 2xx body is returned after checking
// it parses; every failure is a *errors.RequestError.
func (p *Pipeline) Request(ctx context.Context, endpoint string, opts RequestOptions) ([]byte, error) {
	method := methodOr(opts.Method)
	if err := ctx.Err(); err != nil {
		return nil, apierrors.NewNetworkError(method, endpoint, err)
	}

	req := p.rc.R().SetContext(ctx)
	req.SetHeader(headerContentType, contentTypeJSON)
	req.SetHeader(headerRequestID, uuid.NewString())
	if err := p.authorize(ctx, req); err != nil {
		return nil, apierrors.NewNetworkError(method, endpoint, err)
	}
	for k, v := range opts.Headers {
		req.SetHeader(k, v)
	}
	if opts.Body != nil {
		raw, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, apierrors.NewNetworkError(method, endpoint, err)
		}
		req.SetBody(raw)
	}

	resp, err := p.execute(ctx, req, method, endpoint)
	if err != nil {
		return nil, err
	}

	body := resp.Body()
	if !resp.IsSuccess() {
		herr := apierrors.NewHTTPError(method, endpoint, resp.StatusCode(), body)
		p.log.Error().
			Str("method", method).
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode()).
			Str("body", herr.Body).
			Msg("server error response")
		return nil, herr
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && !json.Valid(trimmed) {
		return nil, apierrors.NewDecodeError(method, endpoint, resp.StatusCode(), body, errInvalidJSON)
	}
	return trimmed, nil
}

// Upload sends a multipart form. Only the Authorization header is set here;
// the transport supplies the multipart Content-Type and boundary. The body
// is parsed as JSON whatever the status, and non-2xx answers are returned to
// the caller in the UploadResponse rather than as errors.
func (p *Pipeline) Upload(ctx context.Context, endpoint string, form MultipartForm) (*types.UploadResponse, error) {
	const method = http.MethodPost
	if err := ctx.Err(); err != nil {
		return nil, apierrors.NewNetworkError(method, endpoint, err)
	}

	req := p.rc.R().SetContext(ctx)
	if err := p.authorize(ctx, req); err != nil {
		return nil, apierrors.NewNetworkError(method, endpoint, err)
	}
	for _, f := range form.Files {
		req.SetFileReader(f.Field, f.FileName, f.Reader)
	}
	if len(form.Fields) > 0 {
		req.SetMultipartFormData(form.Fields)
	}

	resp, err := p.execute(ctx, req, method, endpoint)
	if err != nil {
		return nil, err
	}

	out := &types.UploadResponse{StatusCode: resp.StatusCode()}
	if err := json.Unmarshal(resp.Body(), &out.Body); err != nil {
		return nil, apierrors.NewDecodeError(method, endpoint, resp.StatusCode(), resp.Body(), err)
	}
	return out, nil
}

func (p *Pipeline) authorize(ctx context.Context, req *resty.Request) error {
	if p.tokens == nil {
		return nil
	}
	token, err := p.tokens.Token(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		req.SetHeader(headerAuthorization, "Bearer "+token)
	}
	return nil
}

func (p *Pipeline) execute(ctx context.Context, req *resty.Request, method, endpoint string) (*resty.Response, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, apierrors.NewNetworkError(method, endpoint, err)
		}
	}

	start := time.Now()
	resp, err := req.Execute(method, endpoint)
	requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(method, "0").Inc()
		p.log.Error().Err(err).Str("method", method).Str("endpoint", endpoint).Msg("API request failed")
		return nil, apierrors.NewNetworkError(method, endpoint, err)
	}
	requestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode())).Inc()
	return resp, nil
}

// restyLogger routes resty's internal messages into zerolog.
type restyLogger struct{ l zerolog.Logger }

func (r restyLogger) Errorf(format string, v ...interface{}) { r.l.Error().Msgf(format, v...) }
func (r restyLogger) Warnf(format string, v ...interface{})  { r.l.Warn().Msgf(format, v...) }
func (r restyLogger) Debugf(format string, v ...interface{}) { r.l.Debug().Msgf(format, v...) }

// Into issues a JSON request and decodes a successful body into out.
func (p *Pipeline) Into(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	return call(ctx, p, endpoint, opts, out)
}
