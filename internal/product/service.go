// Package product reads and mutates the catalog. Ownership is enforced by the
// server; the service surfaces its 401/403 answers unchanged.
package product

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"storefront/internal/apierr"
	"storefront/internal/logger"
	"storefront/internal/session"
	"storefront/internal/state"

	"go.uber.org/zap"
)

// Identity supplies the signed-in user.
type Identity interface {
	CurrentUser() *session.User
}

type Service interface {
	ListAll(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	ListMine(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, req ProductRequest) (*Product, error)
	Update(ctx context.Context, id string, patch ProductPatch) (*Product, error)
	Delete(ctx context.Context, id string) error
	AssociateMedia(ctx context.Context, productID, mediaID string) error
	DissociateMedia(ctx context.Context, productID, mediaID string) error

	Products() []Product
	MyProducts() []Product
	Subscribe(fn func([]Product)) (cancel func())
}

type service struct {
	repo     Repository
	identity Identity

	catalog *state.Cell[[]Product]
	mine    *state.Cell[[]Product]
}

func NewService(repo Repository, identity Identity) Service {
	return &service{
		repo:     repo,
		identity: identity,
		catalog:  state.NewCell([]Product{}),
		mine:     state.NewCell([]Product{}),
	}
}

func (s *service) ListAll(ctx context.Context) ([]Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListAll"),
	)

	start := time.Now()
	list, err := s.repo.List(ctx)
	if err != nil {
		log.Error("failed to list products", zap.Error(err))
		return nil, err
	}

	s.catalog.Set(slices.Clone(list))
	log.Debug("products listed", zap.Int("count", len(list)), zap.Duration("duration", time.Since(start)))
	return list, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListMine prefers the seller view and falls back to filtering the catalog
// when the server does not offer it.
func (s *service) ListMine(ctx context.Context) ([]Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListMine"),
	)

	me := s.currentUser()
	if me == nil {
		return nil, fmt.Errorf("%w: %w", apierr.ErrUnauthenticated, ErrNotAuthenticated)
	}

	list, err := s.repo.ListMine(ctx)
	if err != nil && isMissingRoute(err) {
		log.Debug("seller view unavailable, filtering catalog", zap.Error(err))
		all, allErr := s.repo.List(ctx)
		if allErr != nil {
			return nil, allErr
		}
		list = slices.DeleteFunc(all, func(p Product) bool { return p.SellerID != me.ID })
		err = nil
	}
	if err != nil {
		log.Error("failed to list seller products", zap.Error(err))
		return nil, err
	}

	s.mine.Set(slices.Clone(list))
	return list, nil
}

func isMissingRoute(err error) bool {
	switch apierr.StatusOf(err) {
	case http.StatusNotFound, http.StatusMethodNotAllowed, http.StatusNotImplemented:
		return true
	}
	return false
}

func (s *service) currentUser() *session.User {
	if s.identity == nil {
		return nil
	}
	return s.identity.CurrentUser()
}

func (s *service) Create(ctx context.Context, req ProductRequest) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	p, err := s.repo.Create(ctx, req)
	if err != nil {
		log.Error("failed to create product", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}

	s.catalog.Update(func(cur []Product) []Product { return append(slices.Clone(cur), *p) })
	s.mine.Update(func(cur []Product) []Product { return append(slices.Clone(cur), *p) })

	log.Info("product created", zap.String("product_id", p.ID))
	return p, nil
}

// Update sends only the patchable fields. On any failure the caches are untouched.
func (s *service) Update(ctx context.Context, id string, patch ProductPatch) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Update"),
		zap.String("product_id", id),
	)

	if patch.Empty() {
		return nil, ErrEmptyPatch
	}

	p, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, apierr.ErrForbidden) {
			log.Warn("update rejected: not owner")
		} else {
			log.Error("failed to update product", zap.Error(err))
		}
		return nil, err
	}

	s.replace(*p)
	log.Info("product updated")
	return p, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		logger.FromCtx(ctx).Error("failed to delete product",
			zap.String("layer", "service"),
			zap.String("product_id", id),
			zap.Error(err),
		)
		return err
	}

	s.catalog.Update(func(cur []Product) []Product { return removeByID(cur, id) })
	s.mine.Update(func(cur []Product) []Product { return removeByID(cur, id) })
	return nil
}

// AssociateMedia attaches mediaID, then re-reads the product so the cached
// media ids and image URLs stay paired by position.
func (s *service) AssociateMedia(ctx context.Context, productID, mediaID string) error {
	if err := s.repo.AssociateMedia(ctx, productID, mediaID); err != nil {
		return err
	}

	fresh, err := s.repo.Get(ctx, productID)
	if err != nil {
		logger.FromCtx(ctx).Warn("could not reload product after attaching media",
			zap.String("layer", "service"),
			zap.String("method", "AssociateMedia"),
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return nil
	}
	s.replace(*fresh)
	return nil
}

func (s *service) DissociateMedia(ctx context.Context, productID, mediaID string) error {
	if err := s.repo.DissociateMedia(ctx, productID, mediaID); err != nil {
		return err
	}
	s.mutate(productID, func(p Product) Product { return p.withoutMedia(mediaID) })
	return nil
}

func (s *service) replace(p Product) {
	update := func(cur []Product) []Product {
		next, _ := replaceByID(cur, p)
		return next
	}
	s.catalog.Update(update)
	s.mine.Update(update)
}

func (s *service) mutate(id string, fn func(Product) Product) {
	update := func(cur []Product) []Product {
		i := slices.IndexFunc(cur, func(p Product) bool { return p.ID == id })
		if i < 0 {
			return cur
		}
		next := slices.Clone(cur)
		next[i] = fn(cur[i])
		return next
	}
	s.catalog.Update(update)
	s.mine.Update(update)
}

func (s *service) Products() []Product   { return slices.Clone(s.catalog.Get()) }
func (s *service) MyProducts() []Product { return slices.Clone(s.mine.Get()) }

func (s *service) Subscribe(fn func([]Product)) (cancel func()) {
	return s.catalog.Subscribe(func(list []Product) { fn(slices.Clone(list)) })
}
