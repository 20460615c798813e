package session

import (
	"context"
	"net/http"

	"storefront/internal/httpx"
	"storefront/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Login(ctx context.Context, creds Credentials) (*Session, error)
	Register(ctx context.Context, req RegisterRequest) (*User, error)
}

type repository struct {
	client  *httpx.Client
	baseURL string
}

// NewRepository talks to the auth endpoints under baseURL (e.g. http://host/api/auth).
func NewRepository(client *httpx.Client, baseURL string) Repository {
	return &repository{client: client, baseURL: baseURL}
}

func (r *repository) Login(ctx context.Context, creds Credentials) (*Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Login"),
	)

	var resp loginResponse
	if err := r.client.JSON(ctx, http.MethodPost, r.baseURL+"/login", creds, &resp); err != nil {
		log.Debug("login request failed", zap.Error(err))
		return nil, err
	}

	return &Session{User: resp.user(), Token: resp.Token}, nil
}

func (r *repository) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var u loginResponse
	if err := r.client.JSON(ctx, http.MethodPost, r.baseURL+"/register", req, &u); err != nil {
		logger.FromCtx(ctx).Debug("register request failed",
			zap.String("layer", "repository"),
			zap.String("email", req.Email),
			zap.Error(err),
		)
		return nil, err
	}
	user := u.user()
	return &user, nil
}
