package mockapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/logger"
	"storefront/internal/session"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
	session.User
}

type registerRequest struct {
	Email     string       `json:"email" binding:"required,email"`
	Password  string       `json:"password" binding:"required,min=8,max=100"`
	Name      string       `json:"name" binding:"required,min=2,max=50"`
	Role      session.Role `json:"role" binding:"required,oneof=SELLER CLIENT"`
	AvatarURL *string      `json:"avatarUrl" binding:"omitempty,url"`
}

func (s *Server) login(c *gin.Context) {
	log := logger.FromCtx(c.Request.Context()).With(
		zap.String("layer", "mockapi"),
		zap.String("method", "login"),
	)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortMessage(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	u, err := s.db.authenticate(req.Email, req.Password)
	if err != nil {
		log.Info("login rejected", zap.String("email", req.Email))
		abortMessage(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := s.tokens.Generate(u)
	if err != nil {
		log.Error("failed to sign token", zap.Error(err))
		abortMessage(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: token, User: u})
}

func (s *Server) register(c *gin.Context) {
	log := logger.FromCtx(c.Request.Context()).With(
		zap.String("layer", "mockapi"),
		zap.String("method", "register"),
	)

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortMessage(c, http.StatusBadRequest, bindingMessage(err))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		abortMessage(c, http.StatusBadRequest, "name is required")
		return
	}

	u, err := s.db.createUser(session.User{
		Email:     req.Email,
		Name:      strings.TrimSpace(req.Name),
		Role:      req.Role,
		AvatarURL: req.AvatarURL,
	}, req.Password)
	if errors.Is(err, errEmailTaken) {
		abortMessage(c, http.StatusBadRequest, "Email already exists")
		return
	}
	if err != nil {
		log.Error("failed to create user", zap.Error(err))
		abortMessage(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	c.JSON(http.StatusCreated, u)
}
