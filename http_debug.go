package client

import (
	"net/http"
	"net/http/httputil"
	"os"

	"github.com/rs/zerolog"
)

// debugTransport dumps every request and response at debug level.
//
// Enable it with HIEROVISION_DEBUG=true, DEBUG=true, or WithDebugLogging.
// Dumps carry full bodies and the Authorization header, so keep it to
// development and make sure the log sink is private.
//
//	export HIEROVISION_DEBUG=true
//	hierovision landmarks list   # every HTTP exchange is now logged
type debugTransport struct {
	base http.RoundTripper
	log  zerolog.Logger
}

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if reqDump, err := httputil.DumpRequestOut(req, true); err == nil {
		dt.log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", string(reqDump)).Msg("HTTP request")
	}

	resp, err := dt.base.RoundTrip(req)
	if err != nil {
		dt.log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, err
	}

	if respDump, err := httputil.DumpResponse(resp, true); err == nil {
		dt.log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Str("response_dump", string(respDump)).Msg("HTTP response")
	}
	return resp, nil
}

func wrapDebug(hc *http.Client, l zerolog.Logger) {
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if _, already := base.(*debugTransport); already {
		return
	}
	hc.Transport = &debugTransport{base: base, log: l}
}

// debugLoggingRequested reports whether HIEROVISION_DEBUG or DEBUG is "true".
func debugLoggingRequested() bool {
	return os.Getenv("HIEROVISION_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}
