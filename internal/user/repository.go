package user

import (
	"context"
	"net/http"

	"storefront/internal/httpx"
	"storefront/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetProfile(ctx context.Context) (*Profile, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*Profile, error)
}

type repository struct {
	client  *httpx.Client
	baseURL string
}

// NewRepository talks to the users endpoints under baseURL (e.g. http://host/api/users).
func NewRepository(client *httpx.Client, baseURL string) Repository {
	return &repository{client: client, baseURL: baseURL}
}

func (r *repository) GetProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := r.client.JSON(ctx, http.MethodGet, r.baseURL+"/me", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*Profile, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateProfile"),
	)

	var p Profile
	if err := r.client.JSON(ctx, http.MethodPut, r.baseURL+"/me", req, &p); err != nil {
		log.Debug("update profile request failed", zap.Error(err))
		return nil, err
	}
	return &p, nil
}
