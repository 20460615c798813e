// Package app assembles the client: one HTTP client shared by every
// repository, the session store feeding it tokens, and the services and
// workflows built on top.
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/httpx"
	"storefront/internal/logger"
	"storefront/internal/media"
	"storefront/internal/mediamanager"
	"storefront/internal/product"
	"storefront/internal/productform"
	"storefront/internal/session"
	"storefront/internal/storage"
	"storefront/internal/ui"
	"storefront/internal/user"

	"go.uber.org/zap"
)

var ErrMissingEnvironment = errors.New("environment is required")

type Options struct {
	Env       *config.Environment
	Store     storage.Store
	Transport http.RoundTripper

	Notifier  ui.Notifier
	Dialog    ui.Dialog
	Navigator ui.Navigator

	SuccessDelay time.Duration
	Retention    time.Duration
}

type App struct {
	Env      *config.Environment
	Session  *session.Store
	Media    media.Service
	Products product.Service
	Users    user.Service
	Library  *mediamanager.Manager

	Notifier  ui.Notifier
	Dialog    ui.Dialog
	Navigator ui.Navigator

	successDelay time.Duration
}

// New wires the client and restores any stored session. Missing UI
// collaborators default to the terminal.
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Env == nil {
		return nil, ErrMissingEnvironment
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemoryStore()
	}
	if opts.Retention <= 0 {
		opts.Retention = media.DefaultRetention
	}
	if opts.Notifier == nil || opts.Dialog == nil {
		console := ui.NewConsole(os.Stdin, os.Stderr)
		if opts.Notifier == nil {
			opts.Notifier = console
		}
		if opts.Dialog == nil {
			opts.Dialog = console
		}
	}
	if opts.Navigator == nil {
		opts.Navigator = &ui.LogNavigator{}
	}

	a := &App{
		Env:          opts.Env,
		Notifier:     opts.Notifier,
		Dialog:       opts.Dialog,
		Navigator:    opts.Navigator,
		successDelay: opts.SuccessDelay,
	}

	client := httpx.NewClient(httpx.Options{
		Transport:      opts.Transport,
		Token:          a.token,
		OnUnauthorized: a.onUnauthorized,
		Debug:          opts.Env.EnableDebugLogging,
	})

	a.Session = session.NewStore(ctx, session.NewRepository(client, opts.Env.AuthURL), opts.Store)

	mediaRepo := media.NewRepository(client, opts.Env.MediaURL)
	a.Media = media.NewService(mediaRepo, media.NewTracker(opts.Retention))
	a.Products = product.NewService(product.NewRepository(client, opts.Env.ProductsURL), a.Session)
	a.Users = user.NewService(user.NewRepository(client, opts.Env.UsersURL), mediaRepo, a.Session)
	a.Library = mediamanager.New(mediamanager.Deps{
		Media:    a.Media,
		Products: a.Products,
		Notifier: a.Notifier,
		Dialog:   a.Dialog,
	})

	return a, nil
}

func (a *App) token() string {
	if a.Session == nil {
		return ""
	}
	return a.Session.Token()
}

// onUnauthorized signs out and routes to the login screen. It runs once per
// 401 response; Logout is a no-op when already signed out.
func (a *App) onUnauthorized(req *http.Request) {
	ctx := req.Context()
	logger.FromCtx(ctx).Warn("request unauthorized, signing out",
		zap.String("layer", "app"),
		zap.String("url", req.URL.Redacted()),
	)
	a.Session.Logout(ctx)
	a.Navigator.Navigate(ui.RouteLogin)
}

// NewProductEditor starts a fresh product form workflow.
func (a *App) NewProductEditor() *productform.Editor {
	return productform.NewEditor(productform.Deps{
		Media:        a.Media,
		Products:     a.Products,
		Notifier:     a.Notifier,
		Dialog:       a.Dialog,
		Navigator:    a.Navigator,
		SuccessDelay: a.successDelay,
	})
}
