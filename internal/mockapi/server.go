// Package mockapi is an in-memory implementation of the storefront backend,
// used for local development and end-to-end tests.
package mockapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/session"
)

// APIPrefix is where every route is mounted, matching the default API_URL.
const APIPrefix = "/api"

type Options struct {
	Secret     []byte
	TokenTTL   time.Duration
	RateLimits *RateLimits
	Now        func() time.Time
}

type Server struct {
	engine  *gin.Engine
	tokens  tokenIssuer
	limiter *limiter
	db      *db
	stats   *metrics.Requests
}

func New(opts Options) (*Server, error) {
	if len(opts.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	limits := DefaultRateLimits
	if opts.RateLimits != nil {
		limits = *opts.RateLimits
	}

	s := &Server{
		tokens:  tokenIssuer{secret: opts.Secret, ttl: opts.TokenTTL, now: opts.Now},
		limiter: newLimiter(limits, opts.Now),
		db:      newDB(opts.Now),
		stats:   metrics.NewRequests(opts.Now),
	}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(logger.Gin(), s.observe, gin.Recovery(), s.identify, s.limiter.middleware())
	r.NoRoute(func(c *gin.Context) { abortMessage(c, http.StatusNotFound, "Not found") })

	api := r.Group(APIPrefix)
	api.GET("/health", s.health)

	auth := api.Group("/auth")
	auth.POST("/login", s.login)
	auth.POST("/register", s.register)

	users := api.Group("/users", s.requireAuth)
	users.GET("/me", s.getMe)
	users.PUT("/me", s.updateMe)

	products := api.Group("/products")
	products.GET("", s.listProducts)
	products.GET("/:id", s.getProduct)

	owned := products.Group("", s.requireAuth)
	owned.GET("/seller/me", s.listMyProducts)
	owned.POST("", s.createProduct)
	owned.PUT("/:id", s.updateProduct)
	owned.DELETE("/:id", s.deleteProduct)
	owned.POST("/:id/media/:mediaId", s.associateMedia)
	owned.DELETE("/:id/media/:mediaId", s.dissociateMedia)

	mediaGroup := api.Group("/media")
	mediaGroup.GET("/images/:id/file", s.serveMediaFile)

	images := mediaGroup.Group("/images", s.requireAuth)
	images.POST("", s.uploadMedia)
	images.GET("", s.listMedia)
	images.GET("/:id", s.getMedia)
	images.DELETE("/:id", s.deleteMedia)

	return r
}

func (s *Server) observe(c *gin.Context) {
	c.Next()
	s.stats.Observe(c.Writer.Status())
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "stats": s.stats.Snapshot()})
}

// Stats reports request counters since the server was created.
func (s *Server) Stats() metrics.Snapshot {
	return s.stats.Snapshot()
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Seed creates an account directly, bypassing registration rules.
func (s *Server) Seed(email, password, name string, role session.Role) (session.User, error) {
	return s.db.createUser(session.User{Email: email, Name: name, Role: role}, password)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.limiter.run(ctx, time.Minute, 3*time.Minute)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	logger.L().Info("mock api listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		logger.L().Info("mock api stopped", zap.Any("stats", s.stats.Snapshot()))
		return err
	}
}
