package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"storefront/internal/apierr"
	"storefront/internal/logger"
)

// Options configures a Client.
type Options struct {
	// Transport is the innermost round tripper. Defaults to http.DefaultTransport.
	Transport      http.RoundTripper
	Token          TokenFunc
	OnUnauthorized func(req *http.Request)
	Debug          bool
}

// Client speaks the JSON API. Every request passes through AuthTransport.
type Client struct {
	httpClient *http.Client
}

func NewClient(opts Options) *Client {
	var rt http.RoundTripper = opts.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	if opts.Debug {
		rt = &LoggingTransport{Base: rt}
	}
	rt = &AuthTransport{Base: rt, Token: opts.Token, OnUnauthorized: opts.OnUnauthorized}

	return &Client{httpClient: &http.Client{Transport: rt}}
}

// JSON sends in (when non-nil) as a JSON body and decodes the response into out (when non-nil).
func (c *Client) JSON(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.Do(req, out)
}

// Do executes req. Non-2xx responses become *apierr.Error; transport
// failures become apierr network errors unless the context was cancelled.
func (c *Client) Do(req *http.Request, out any) error {
	ctx := logger.EnsureRequestID(req.Context())
	req = req.WithContext(ctx)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return ctxErr
		}
		return apierr.Network(req.Method, req.URL.String(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierr.Network(req.Method, req.URL.String(), fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apierr.FromResponse(req.Method, req.URL.String(), resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
