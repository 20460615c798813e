package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"storefront/internal/apierr"
	"storefront/internal/logger"
	"storefront/internal/state"
	"storefront/internal/storage"
	"storefront/internal/validation"

	"go.uber.org/zap"
)

// Durable storage keys.
const (
	TokenKey = "auth_token"
	UserKey  = "current_user"
)

// Store is the single writer of the session. Reads are synchronous and safe
// from any goroutine; subscribers see exactly one notification per change.
type Store struct {
	repo    Repository
	durable storage.Store

	// writeMu serializes setAuth/clearAuth/UpdateUser so the durable replica
	// and the in-memory cell never interleave.
	writeMu sync.Mutex
	current *state.Cell[*Session]
}

// NewStore rehydrates from durable storage in a single read. Missing or
// corrupt entries leave the store signed out; that is never an error.
func NewStore(ctx context.Context, repo Repository, durable storage.Store) *Store {
	s := &Store{
		repo:    repo,
		durable: durable,
		current: state.NewCell[*Session](nil),
	}
	s.rehydrate(ctx)
	return s
}

func (s *Store) rehydrate(ctx context.Context) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "session"),
		zap.String("method", "rehydrate"),
	)

	values, err := s.durable.Load(ctx, TokenKey, UserKey)
	if err != nil {
		log.Warn("failed to read stored session", zap.Error(err))
		return
	}

	token, hasToken := values[TokenKey]
	raw, hasUser := values[UserKey]
	if !hasToken && !hasUser {
		return
	}

	var u User
	if !hasToken || !hasUser || token == "" {
		log.Warn("stored session incomplete, clearing")
		s.clearAuth(ctx)
		return
	}
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == "" {
		log.Warn("stored user is corrupt, clearing", zap.Error(err))
		s.clearAuth(ctx)
		return
	}

	s.current.Set(&Session{User: u, Token: token})
	log.Debug("session restored", zap.String("user_id", u.ID))
}

// Login exchanges credentials for a session. On failure the store is unchanged.
func (s *Store) Login(ctx context.Context, email, password string) (*Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "session"),
		zap.String("method", "Login"),
	)

	sess, err := s.repo.Login(ctx, Credentials{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		switch apierr.StatusOf(err) {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusBadRequest:
			log.Info("login rejected", zap.String("email", email))
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		log.Error("login failed", zap.Error(err))
		return nil, err
	}
	if sess.Token == "" || sess.User.ID == "" {
		return nil, &apierr.Error{Kind: apierr.ErrServer, Message: "login response missing token or user"}
	}

	if err := s.setAuth(ctx, sess.User, sess.Token); err != nil {
		log.Error("failed to persist session", zap.Error(err))
		return nil, err
	}

	log.Info("login succeeded", zap.String("user_id", sess.User.ID), zap.String("role", string(sess.User.Role)))
	out := *sess
	return &out, nil
}

// Register creates an account. It does not sign the user in.
func (s *Store) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "session"),
		zap.String("method", "Register"),
	)

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	u, err := s.repo.Register(ctx, req)
	if err != nil {
		if isEmailTaken(err) {
			log.Info("email already registered", zap.String("email", req.Email))
			return nil, fmt.Errorf("%w: %w", ErrEmailTaken, err)
		}
		log.Error("register failed", zap.Error(err))
		return nil, err
	}

	log.Info("user registered", zap.String("user_id", u.ID))
	return u, nil
}

// A duplicate email comes back as 409, or as a 400 whose message says so.
func isEmailTaken(err error) bool {
	if errors.Is(err, apierr.ErrConflict) {
		return true
	}
	if apierr.StatusOf(err) != http.StatusBadRequest {
		return false
	}
	msg := strings.ToLower(apierr.MessageOf(err))
	return strings.Contains(msg, "already") || strings.Contains(msg, "exist")
}

// Logout clears the session. Calling it when signed out does nothing.
func (s *Store) Logout(ctx context.Context) {
	if s.current.Get() == nil {
		return
	}
	s.clearAuth(ctx)
	logger.FromCtx(ctx).Info("logged out", zap.String("layer", "session"))
}

// UpdateUser merges p into the current user locally. It is a no-op when signed out.
func (s *Store) UpdateUser(ctx context.Context, p UserPatch) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.current.Get()
	if cur == nil {
		return nil
	}

	next := &Session{User: cur.User.apply(p), Token: cur.Token}
	data, err := json.Marshal(next.User)
	if err != nil {
		return err
	}
	if err := s.durable.Apply(ctx, storage.SetOp(UserKey, string(data))); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}

	s.current.Set(next)
	return nil
}

func (s *Store) setAuth(ctx context.Context, u User, token string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := s.durable.Apply(ctx,
		storage.SetOp(TokenKey, token),
		storage.SetOp(UserKey, string(data)),
	); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.current.Set(&Session{User: u, Token: token})
	return nil
}

func (s *Store) clearAuth(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.durable.Apply(ctx, storage.DeleteOp(TokenKey), storage.DeleteOp(UserKey)); err != nil {
		logger.FromCtx(ctx).Error("failed to clear stored session",
			zap.String("layer", "session"),
			zap.Error(err),
		)
	}
	if s.current.Get() != nil {
		s.current.Set(nil)
	}
}

// Current returns a copy of the session, or nil when signed out.
func (s *Store) Current() *Session {
	cur := s.current.Get()
	if cur == nil {
		return nil
	}
	out := *cur
	return &out
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *Store) CurrentUser() *User {
	cur := s.current.Get()
	if cur == nil {
		return nil
	}
	u := cur.User
	return &u
}

// Token returns the bearer token, or "" when signed out.
func (s *Store) Token() string {
	if cur := s.current.Get(); cur != nil {
		return cur.Token
	}
	return ""
}

func (s *Store) IsAuthenticated() bool { return s.current.Get() != nil }

func (s *Store) HasRole(r Role) bool {
	cur := s.current.Get()
	return cur != nil && cur.User.Role == r
}

func (s *Store) IsSeller() bool { return s.HasRole(RoleSeller) }
func (s *Store) IsClient() bool { return s.HasRole(RoleClient) }
func (s *Store) IsAdmin() bool  { return s.HasRole(RoleAdmin) }

// Capabilities are derived from the current user.
type Capabilities struct {
	Authenticated bool
	Seller        bool
	Client        bool
	Admin         bool
}

func capabilitiesOf(cur *Session) Capabilities {
	if cur == nil {
		return Capabilities{}
	}
	return Capabilities{
		Authenticated: true,
		Seller:        cur.User.Role == RoleSeller,
		Client:        cur.User.Role == RoleClient,
		Admin:         cur.User.Role == RoleAdmin,
	}
}

func (s *Store) Capabilities() Capabilities { return capabilitiesOf(s.current.Get()) }

// Subscribe calls fn with the new session (nil when signed out) after each change.
func (s *Store) Subscribe(fn func(*Session)) (cancel func()) {
	return s.current.Subscribe(func(cur *Session) {
		if cur == nil {
			fn(nil)
			return
		}
		out := *cur
		fn(&out)
	})
}

// SubscribeCapabilities calls fn with the recomputed flags after each change.
func (s *Store) SubscribeCapabilities(fn func(Capabilities)) (cancel func()) {
	return s.current.Subscribe(func(cur *Session) { fn(capabilitiesOf(cur)) })
}
