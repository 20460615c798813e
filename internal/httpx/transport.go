// Package httpx decorates outgoing API requests and decodes API responses.
package httpx

import (
	"net/http"
	"time"

	"storefront/internal/logger"

	"go.uber.org/zap"
)

// TokenFunc returns the current bearer token, or "" when signed out.
type TokenFunc func() string

// AuthTransport attaches the bearer token read at send time and reports
// every 401 response to OnUnauthorized exactly once. It never retries and
// never touches the body, the method, or any other header.
type AuthTransport struct {
	Base           http.RoundTripper
	Token          TokenFunc
	OnUnauthorized func(req *http.Request)
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req
	if t.Token != nil {
		if token := t.Token(); token != "" {
			out = req.Clone(req.Context())
			out.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && t.OnUnauthorized != nil {
		t.OnUnauthorized(req)
	}
	return resp, nil
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// LoggingTransport traces each request at debug level.
type LoggingTransport struct {
	Base http.RoundTripper
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	log := logger.FromCtx(req.Context()).With(
		zap.String("layer", "transport"),
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
	)

	start := time.Now()
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		log.Debug("outgoing request failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, err
	}

	log.Debug("outgoing request",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}
