package product

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/httpx"
	"storefront/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context) ([]Product, error)
	ListMine(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, req ProductRequest) (*Product, error)
	Update(ctx context.Context, id string, patch ProductPatch) (*Product, error)
	Delete(ctx context.Context, id string) error
	AssociateMedia(ctx context.Context, productID, mediaID string) error
	DissociateMedia(ctx context.Context, productID, mediaID string) error
}

type repository struct {
	client  *httpx.Client
	baseURL string
}

// NewRepository talks to the product endpoints under baseURL (e.g. http://host/api/products).
func NewRepository(client *httpx.Client, baseURL string) Repository {
	return &repository{client: client, baseURL: baseURL}
}

func (r *repository) itemURL(id string) string {
	return r.baseURL + "/" + url.PathEscape(id)
}

func (r *repository) mediaURL(productID, mediaID string) string {
	return r.itemURL(productID) + "/media/" + url.PathEscape(mediaID)
}

func (r *repository) list(ctx context.Context, u string) ([]Product, error) {
	var out []Product
	if err := r.client.JSON(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Product{}
	}
	return out, nil
}

func (r *repository) List(ctx context.Context) ([]Product, error) {
	return r.list(ctx, r.baseURL)
}

func (r *repository) ListMine(ctx context.Context) ([]Product, error) {
	return r.list(ctx, r.baseURL+"/seller/me")
}

func (r *repository) Get(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := r.client.JSON(ctx, http.MethodGet, r.itemURL(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, req ProductRequest) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateProduct"),
	)

	var p Product
	if err := r.client.JSON(ctx, http.MethodPost, r.baseURL, req, &p); err != nil {
		log.Debug("create request failed", zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *repository) Update(ctx context.Context, id string, patch ProductPatch) (*Product, error) {
	var p Product
	if err := r.client.JSON(ctx, http.MethodPut, r.itemURL(id), patch, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.client.JSON(ctx, http.MethodDelete, r.itemURL(id), nil, nil)
}

func (r *repository) AssociateMedia(ctx context.Context, productID, mediaID string) error {
	return r.client.JSON(ctx, http.MethodPost, r.mediaURL(productID, mediaID), nil, nil)
}

func (r *repository) DissociateMedia(ctx context.Context, productID, mediaID string) error {
	return r.client.JSON(ctx, http.MethodDelete, r.mediaURL(productID, mediaID), nil, nil)
}
