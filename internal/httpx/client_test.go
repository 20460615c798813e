package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"storefront/internal/apierr"
	"storefront/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockRoundTripper allows us to mock the HTTP response
type MockRoundTripper func(req *http.Request) *http.Response

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

type MockRoundTripperWithError func(req *http.Request) (*http.Response, error)

func (f MockRoundTripperWithError) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func TestAuthTransport(t *testing.T) {
	t.Run("AttachesBearerToken", func(t *testing.T) {
		var seen string
		client := NewClient(Options{
			Token: func() string { return "tok-1" },
			Transport: MockRoundTripper(func(req *http.Request) *http.Response {
				seen = req.Header.Get("Authorization")
				return jsonResponse(http.StatusOK, `{}`)
			}),
		})

		err := client.JSON(context.Background(), http.MethodGet, "http://api/products", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok-1", seen)
	})

	t.Run("PassesThroughWithoutToken", func(t *testing.T) {
		var has bool
		client := NewClient(Options{
			Token: func() string { return "" },
			Transport: MockRoundTripper(func(req *http.Request) *http.Response {
				_, has = req.Header["Authorization"]
				return jsonResponse(http.StatusOK, `[]`)
			}),
		})

		require.NoError(t, client.JSON(context.Background(), http.MethodGet, "http://api/products", nil, nil))
		assert.False(t, has)
	})

	t.Run("LeavesRequestUntouched", func(t *testing.T) {
		var gotBody, gotMethod, gotCustom string
		client := NewClient(Options{
			Token: func() string { return "tok" },
			Transport: MockRoundTripper(func(req *http.Request) *http.Response {
				b, _ := io.ReadAll(req.Body)
				gotBody = string(b)
				gotMethod = req.Method
				gotCustom = req.Header.Get("X-Custom")
				return jsonResponse(http.StatusOK, `{}`)
			}),
		})

		req, err := http.NewRequest(http.MethodPut, "http://api/products/1", strings.NewReader(`{"name":"x"}`))
		require.NoError(t, err)
		req.Header.Set("X-Custom", "keep")

		require.NoError(t, client.Do(req, nil))
		assert.Equal(t, `{"name":"x"}`, gotBody)
		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "keep", gotCustom)
		assert.Empty(t, req.Header.Get("Authorization"), "caller's request must not be mutated")
	})

	t.Run("UnauthorizedHookFiresOncePerResponse", func(t *testing.T) {
		var calls, sends int32
		client := NewClient(Options{
			Token:          func() string { return "stale" },
			OnUnauthorized: func(*http.Request) { atomic.AddInt32(&calls, 1) },
			Transport: MockRoundTripper(func(req *http.Request) *http.Response {
				atomic.AddInt32(&sends, 1)
				return jsonResponse(http.StatusUnauthorized, `{"message":"token expired"}`)
			}),
		})

		err := client.JSON(context.Background(), http.MethodGet, "http://api/products/seller/me", nil, nil)

		assert.ErrorIs(t, err, apierr.ErrUnauthenticated)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		assert.Equal(t, int32(1), atomic.LoadInt32(&sends), "no retry")
	})

	t.Run("TokenReadAtSendTime", func(t *testing.T) {
		token := "first"
		var seen []string
		client := NewClient(Options{
			Token: func() string { return token },
			Transport: MockRoundTripper(func(req *http.Request) *http.Response {
				seen = append(seen, req.Header.Get("Authorization"))
				return jsonResponse(http.StatusOK, `{}`)
			}),
		})

		require.NoError(t, client.JSON(context.Background(), http.MethodGet, "http://api/a", nil, nil))
		token = "second"
		require.NoError(t, client.JSON(context.Background(), http.MethodGet, "http://api/b", nil, nil))

		assert.Equal(t, []string{"Bearer first", "Bearer second"}, seen)
	})
}

func TestClient_JSON(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var in payload
			assert.NoError(t, jsonDecode(r.Body, &in))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"name":"` + in.Name + `","count":2}`))
		}))
		defer srv.Close()

		client := NewClient(Options{})
		var out payload
		err := client.JSON(context.Background(), http.MethodPost, srv.URL, payload{Name: "tee"}, &out)

		require.NoError(t, err)
		assert.Equal(t, payload{Name: "tee", Count: 2}, out)
	})

	t.Run("NoContent", func(t *testing.T) {
		client := NewClient(Options{Transport: MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusNoContent, ``)
		})})

		var out payload
		assert.NoError(t, client.JSON(context.Background(), http.MethodDelete, "http://api/x", nil, &out))
	})

	t.Run("StatusMapping", func(t *testing.T) {
		client := NewClient(Options{Transport: MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusForbidden, `{"message":"You do not have permission to modify this product"}`)
		})})

		err := client.JSON(context.Background(), http.MethodPut, "http://api/products/1", payload{}, nil)
		assert.ErrorIs(t, err, apierr.ErrForbidden)
		assert.Equal(t, "You do not have permission to modify this product", apierr.MessageOf(err))
	})

	t.Run("NetworkError", func(t *testing.T) {
		client := NewClient(Options{Transport: MockRoundTripperWithError(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})})

		err := client.JSON(context.Background(), http.MethodGet, "http://api/x", nil, nil)
		assert.ErrorIs(t, err, apierr.ErrNetwork)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("CancelledContext", func(t *testing.T) {
		client := NewClient(Options{Transport: MockRoundTripperWithError(func(req *http.Request) (*http.Response, error) {
			return nil, req.Context().Err()
		})})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := client.JSON(ctx, http.MethodGet, "http://api/x", nil, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("InvalidJSONResponse", func(t *testing.T) {
		client := NewClient(Options{Transport: MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, `{invalid-json`)
		})})

		var out payload
		assert.Error(t, client.JSON(context.Background(), http.MethodGet, "http://api/x", nil, &out))
	})
}

func TestLoggingTransport(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	original := logger.L()
	logger.Set(zap.New(core))
	defer logger.Set(original)

	client := NewClient(Options{
		Debug: true,
		Token: func() string { return "secret-token" },
		Transport: MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, `{}`)
		}),
	})

	ctx := logger.WithRequestID(context.Background(), "req-1")
	require.NoError(t, client.JSON(ctx, http.MethodGet, "http://api/products", nil, nil))

	logs := observed.FilterMessage("outgoing request").All()
	require.Len(t, logs, 1)
	fields := logs[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	for _, v := range fields {
		assert.NotContains(t, fmt.Sprint(v), "secret-token")
	}
}
