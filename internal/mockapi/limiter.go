package mockapi

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Tier is one rate limit policy.
type Tier struct {
	Name  string
	Limit rate.Limit
	Burst int
}

// RateLimits maps requests to tiers. Auth endpoints use Strict.
type RateLimits struct {
	Strict  Tier
	General Tier
}

var DefaultRateLimits = RateLimits{
	Strict:  Tier{Name: "strict", Limit: rate.Limit(2), Burst: 5},
	General: Tier{Name: "general", Limit: rate.Limit(10), Burst: 20},
}

// Unlimited disables throttling while keeping the middleware in the chain.
var Unlimited = RateLimits{
	Strict:  Tier{Name: "strict", Limit: rate.Inf},
	General: Tier{Name: "general", Limit: rate.Inf},
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiter struct {
	limits RateLimits
	now    func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

func newLimiter(limits RateLimits, now func() time.Time) *limiter {
	return &limiter{limits: limits, now: now, visitors: make(map[string]*visitor)}
}

func (l *limiter) get(key string, t Tier) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(t.Limit, t.Burst)}
		l.visitors[key] = v
	}
	v.lastSeen = l.now()
	return v.limiter
}

// sweep drops visitors idle for longer than idle and reports how many went.
func (l *limiter) sweep(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for key, v := range l.visitors {
		if l.now().Sub(v.lastSeen) > idle {
			delete(l.visitors, key)
			n++
		}
	}
	return n
}

func (l *limiter) run(ctx context.Context, every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep(idle)
		}
	}
}

func (l *limiter) tierFor(r *http.Request) Tier {
	if strings.HasPrefix(r.URL.Path, APIPrefix+"/auth/") {
		return l.limits.Strict
	}
	return l.limits.General
}

// identity prefers the authenticated user, then a client supplied device id,
// then the remote address.
func identity(c *gin.Context) string {
	if claims, ok := claimsFrom(c); ok {
		return "user:" + claims.UserID
	}
	if device := c.GetHeader("X-Device-ID"); device != "" {
		return "device:" + device
	}
	return "ip:" + c.ClientIP()
}

func (l *limiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tier := l.tierFor(c.Request)
		key := identity(c) + ":" + tier.Name

		if !l.get(key, tier).Allow() {
			abortMessage(c, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
			return
		}
		c.Next()
	}
}
