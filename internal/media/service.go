// Package media uploads, lists and deletes the signed-in user's images and
// keeps an observable cache of the last known remote state.
package media

import (
	"context"
	"errors"
	"slices"

	"storefront/internal/logger"
	"storefront/internal/state"
	"storefront/internal/upload"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Service interface {
	UploadFile(ctx context.Context, f upload.File) (*Media, error)
	UploadFiles(ctx context.Context, files []upload.File) ([]Media, error)
	UploadTracked(ctx context.Context, files []upload.File) []Outcome
	GetAllMedia(ctx context.Context) ([]Media, error)
	GetMedia(ctx context.Context, id string) (*Media, error)
	DeleteMedia(ctx context.Context, id string) error
	DeleteMediaFiles(ctx context.Context, ids []string) error

	Media() []Media
	Subscribe(fn func([]Media)) (cancel func())
	Tracker() *Tracker
	FileURL(id string) string
}

type service struct {
	repo    Repository
	preset  upload.Preset
	cache   *state.Cell[[]Media]
	tracker *Tracker
}

func NewService(repo Repository, tracker *Tracker) Service {
	if tracker == nil {
		tracker = NewTracker(DefaultRetention)
	}
	return &service{
		repo:    repo,
		preset:  upload.ProductImage,
		cache:   state.NewCell([]Media{}),
		tracker: tracker,
	}
}

func (s *service) validate(files []upload.File) error {
	var rejected []FileError
	for _, f := range files {
		if res := upload.Validate(f, s.preset); !res.Valid {
			rejected = append(rejected, FileError{Filename: f.Name, Reasons: res.Errors})
		}
	}
	if len(rejected) > 0 {
		return &InvalidFilesError{Files: rejected}
	}
	return nil
}

func (s *service) UploadFile(ctx context.Context, f upload.File) (*Media, error) {
	if err := s.validate([]upload.File{f}); err != nil {
		return nil, err
	}

	m, err := s.repo.Upload(ctx, f, nil)
	if err != nil {
		logger.FromCtx(ctx).Error("upload failed",
			zap.String("layer", "service"),
			zap.String("method", "UploadFile"),
			zap.String("filename", f.Name),
			zap.Error(err),
		)
		return nil, uploadFailed(f.Name, err)
	}

	s.appendToCache(*m)
	return m, nil
}

// UploadFiles rejects the whole batch if any file is invalid. Otherwise the
// files upload in parallel and the result follows input order.
func (s *service) UploadFiles(ctx context.Context, files []upload.File) ([]Media, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UploadFiles"),
	)

	if err := s.validate(files); err != nil {
		log.Info("batch rejected before upload", zap.Error(err))
		return nil, err
	}
	if len(files) == 0 {
		return []Media{}, nil
	}

	out := make([]Media, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			m, err := s.repo.Upload(gctx, f, nil)
			if err != nil {
				return uploadFailed(f.Name, err)
			}
			out[i] = *m
			s.appendToCache(*m)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("batch upload failed", zap.Int("files", len(files)), zap.Error(err))
		return nil, err
	}

	log.Info("batch uploaded", zap.Int("files", len(files)))
	return out, nil
}

// UploadTracked uploads every valid file in parallel, reporting each one
// through the tracker. Invalid files fail immediately without network contact.
// One file's failure does not cancel the others.
func (s *service) UploadTracked(ctx context.Context, files []upload.File) []Outcome {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	s.tracker.Begin(names...)

	out := make([]Outcome, len(files))
	var g errgroup.Group
	for i, f := range files {
		out[i].Filename = f.Name

		if res := upload.Validate(f, s.preset); !res.Valid {
			err := &InvalidFilesError{Files: []FileError{{Filename: f.Name, Reasons: res.Errors}}}
			out[i].Err = err
			s.tracker.Fail(f.Name, res.Errors[0])
			continue
		}

		g.Go(func() error {
			m, err := s.repo.Upload(ctx, f, func(pct int) { s.tracker.SetPercent(f.Name, pct) })
			if err != nil {
				out[i].Err = uploadFailed(f.Name, err)
				s.tracker.Fail(f.Name, err.Error())
				return nil
			}
			out[i].Media = m
			s.appendToCache(*m)
			s.tracker.Complete(f.Name, m.URL)
			return nil
		})
	}
	_ = g.Wait()

	logger.FromCtx(ctx).Debug("tracked batch finished",
		zap.String("layer", "service"),
		zap.Int("files", len(files)),
	)
	return out
}

func (s *service) GetAllMedia(ctx context.Context) ([]Media, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(slices.Clone(list))
	return list, nil
}

func (s *service) GetMedia(ctx context.Context, id string) (*Media, error) {
	return s.repo.Get(ctx, id)
}

// DeleteMedia removes id from the cache only after the server confirms.
func (s *service) DeleteMedia(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		logger.FromCtx(ctx).Error("delete media failed",
			zap.String("layer", "service"),
			zap.String("media_id", id),
			zap.Error(err),
		)
		return err
	}
	s.removeFromCache(id)
	return nil
}

// DeleteMediaFiles deletes in parallel. Every success updates the cache even
// when another id fails; the first failure in input order is returned.
func (s *service) DeleteMediaFiles(ctx context.Context, ids []string) error {
	errs := make([]error, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			errs[i] = s.DeleteMedia(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *service) appendToCache(m Media) {
	s.cache.Update(func(cur []Media) []Media {
		next := make([]Media, 0, len(cur)+1)
		for _, existing := range cur {
			if existing.ID != m.ID {
				next = append(next, existing)
			}
		}
		return append(next, m)
	})
}

func (s *service) removeFromCache(id string) {
	s.cache.Update(func(cur []Media) []Media {
		return slices.DeleteFunc(slices.Clone(cur), func(m Media) bool { return m.ID == id })
	})
}

func (s *service) Media() []Media { return slices.Clone(s.cache.Get()) }

func (s *service) Subscribe(fn func([]Media)) (cancel func()) {
	return s.cache.Subscribe(func(list []Media) { fn(slices.Clone(list)) })
}

func (s *service) Tracker() *Tracker { return s.tracker }

func (s *service) FileURL(id string) string { return s.repo.FileURL(id) }

// IsInvalidFiles reports whether err is a pre-upload rejection.
func IsInvalidFiles(err error) bool {
	var inv *InvalidFilesError
	return errors.As(err, &inv)
}
