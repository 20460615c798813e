package mockapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type updateMeRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=50"`
	Avatar      *string `json:"avatar" binding:"omitempty,url"`
	Password    *string `json:"password"`
	NewPassword *string `json:"newPassword" binding:"omitempty,min=8,max=100"`
}

func (s *Server) getMe(c *gin.Context) {
	u, ok := s.db.user(mustClaims(c).UserID)
	if !ok {
		abortMessage(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) updateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortMessage(c, http.StatusBadRequest, bindingMessage(err))
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			abortMessage(c, http.StatusBadRequest, "name is required")
			return
		}
		req.Name = &name
	}

	u, err := s.db.updateUser(mustClaims(c).UserID, profileChange{
		name:        req.Name,
		avatar:      req.Avatar,
		password:    req.Password,
		newPassword: req.NewPassword,
	})
	switch {
	case errors.Is(err, errWrongPassword):
		abortMessage(c, http.StatusBadRequest, "Current password is incorrect")
	case err != nil:
		writeDBError(c, err, "User")
	default:
		c.JSON(http.StatusOK, u)
	}
}
