package mockapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"storefront/internal/validation"
)

const claimsKey = "mockapi.claims"

type messageBody struct {
	Message string `json:"message"`
}

func abortMessage(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, messageBody{Message: msg})
}

// bearerToken prefers the access_token cookie, then the Authorization header.
func bearerToken(r *http.Request) string {
	if cookie, err := r.Cookie("access_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// identify attaches claims for a valid token. Invalid or missing tokens pass
// through anonymously; requireAuth decides whether that is acceptable.
func (s *Server) identify(c *gin.Context) {
	if tok := bearerToken(c.Request); tok != "" {
		if claims, err := s.tokens.Parse(tok); err == nil {
			c.Set(claimsKey, claims)
		}
	}
	c.Next()
}

func (s *Server) requireAuth(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		abortMessage(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	if _, exists := s.db.user(claims.UserID); !exists {
		abortMessage(c, http.StatusUnauthorized, "Account no longer exists")
		return
	}
	c.Next()
}

func claimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// mustClaims is only called behind requireAuth.
func mustClaims(c *gin.Context) *Claims {
	claims, _ := claimsFrom(c)
	return claims
}

// bindingMessage turns a bind failure into a single readable message.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return strings.ToLower(fe.Field()[:1]) + fe.Field()[1:] + " " + validation.Message(fe)
	}
	return "Malformed request body"
}

func writeDBError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, errNotFound):
		abortMessage(c, http.StatusNotFound, what+" not found")
	case errors.Is(err, errForbidden):
		abortMessage(c, http.StatusForbidden, "You do not own this "+strings.ToLower(what))
	default:
		abortMessage(c, http.StatusInternalServerError, "Internal server error")
	}
}
