// Package user manages the signed-in user's profile and avatar.
package user

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/apierr"
	"storefront/internal/logger"
	"storefront/internal/media"
	"storefront/internal/session"
	"storefront/internal/upload"
	"storefront/internal/validation"

	"go.uber.org/zap"
)

var ErrNothingToUpdate = errors.New("nothing to update")

// AvatarUploader stores an image and returns where it is served.
type AvatarUploader interface {
	Upload(ctx context.Context, f upload.File, onProgress media.ProgressFunc) (*media.Media, error)
}

// SessionUpdater merges profile changes into the local session.
type SessionUpdater interface {
	UpdateUser(ctx context.Context, p session.UserPatch) error
}

type Service interface {
	GetProfile(ctx context.Context) (*Profile, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*Profile, error)
	UpdateAvatar(ctx context.Context, f upload.File) (*Profile, error)
}

type service struct {
	repo     Repository
	uploader AvatarUploader
	session  SessionUpdater
}

func NewService(repo Repository, uploader AvatarUploader, session SessionUpdater) Service {
	return &service{repo: repo, uploader: uploader, session: session}
}

func (s *service) GetProfile(ctx context.Context) (*Profile, error) {
	return s.repo.GetProfile(ctx)
}

// UpdateProfile saves remotely and then merges the result into the session.
func (s *service) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*Profile, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateProfile"),
	)

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if req.empty() {
		return nil, ErrNothingToUpdate
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	p, err := s.repo.UpdateProfile(ctx, req)
	if err != nil {
		log.Error("failed to update profile", zap.Error(err))
		return nil, err
	}

	patch := session.UserPatch{Name: &p.Name, Email: &p.Email}
	if p.AvatarURL != nil {
		patch.AvatarURL = p.AvatarURL
	} else if req.Avatar != nil {
		patch.AvatarURL = req.Avatar
	}
	if err := s.session.UpdateUser(ctx, patch); err != nil {
		log.Warn("profile saved but local session not updated", zap.Error(err))
	}

	log.Info("profile updated", zap.String("user_id", p.ID))
	return p, nil
}

// UpdateAvatar checks f against the avatar limits before any network call.
func (s *service) UpdateAvatar(ctx context.Context, f upload.File) (*Profile, error) {
	if res := upload.Validate(f, upload.Avatar); !res.Valid {
		return nil, &apierr.ValidationError{Fields: map[string]string{"avatar": strings.Join(res.Errors, ", ")}}
	}

	m, err := s.uploader.Upload(ctx, f, nil)
	if err != nil {
		logger.FromCtx(ctx).Error("avatar upload failed",
			zap.String("layer", "service"),
			zap.String("filename", f.Name),
			zap.Error(err),
		)
		return nil, err
	}

	return s.UpdateProfile(ctx, UpdateProfileRequest{Avatar: &m.URL})
}
