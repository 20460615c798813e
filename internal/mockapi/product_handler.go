package mockapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/logger"
	"storefront/internal/product"
	"storefront/internal/session"
)

var maxPrice = decimal.RequireFromString("999999.99")

type createProductRequest struct {
	Name        *string        `json:"name" binding:"required"`
	Description *string        `json:"description" binding:"required"`
	Price       *product.Price `json:"price" binding:"required"`
	Quantity    *int           `json:"quantity" binding:"required,gte=0"`
}

type updateProductRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Price       *product.Price `json:"price"`
	Quantity    *int           `json:"quantity" binding:"omitempty,gte=0"`
}

// checkProduct applies the server side field rules shared by create and update.
func checkProduct(name, description *string, price *product.Price) string {
	if name != nil && strings.TrimSpace(*name) == "" {
		return "name is required"
	}
	if description != nil && strings.TrimSpace(*description) == "" {
		return "description is required"
	}
	if price != nil && (!price.IsPositive() || price.GreaterThan(maxPrice)) {
		return "price must be between 0.01 and 999999.99"
	}
	return ""
}

func (s *Server) listProducts(c *gin.Context) {
	c.JSON(http.StatusOK, s.db.listProducts(""))
}

func (s *Server) listMyProducts(c *gin.Context) {
	c.JSON(http.StatusOK, s.db.listProducts(mustClaims(c).UserID))
}

func (s *Server) getProduct(c *gin.Context) {
	p, err := s.db.product(c.Param("id"))
	if err != nil {
		writeDBError(c, err, "Product")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) createProduct(c *gin.Context) {
	claims := mustClaims(c)
	if claims.Role != session.RoleSeller {
		abortMessage(c, http.StatusForbidden, "Only sellers can create products")
		return
	}

	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortMessage(c, http.StatusBadRequest, bindingMessage(err))
		return
	}
	if msg := checkProduct(req.Name, req.Description, req.Price); msg != "" {
		abortMessage(c, http.StatusBadRequest, msg)
		return
	}

	p := s.db.createProduct(claims.UserID, product.ProductRequest{
		Name:        strings.TrimSpace(*req.Name),
		Description: strings.TrimSpace(*req.Description),
		Price:       *req.Price,
		Quantity:    *req.Quantity,
	})

	logger.FromCtx(c.Request.Context()).Info("product created",
		zap.String("layer", "mockapi"),
		zap.String("product_id", p.ID),
		zap.String("seller_id", claims.UserID),
	)
	c.JSON(http.StatusCreated, p)
}

func (s *Server) updateProduct(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortMessage(c, http.StatusBadRequest, bindingMessage(err))
		return
	}
	if msg := checkProduct(req.Name, req.Description, req.Price); msg != "" {
		abortMessage(c, http.StatusBadRequest, msg)
		return
	}

	p, err := s.db.updateProduct(c.Param("id"), mustClaims(c), product.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeDBError(c, err, "Product")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.db.deleteProduct(c.Param("id"), mustClaims(c)); err != nil {
		writeDBError(c, err, "Product")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) associateMedia(c *gin.Context) {
	if err := s.db.associate(c.Param("id"), c.Param("mediaId"), mustClaims(c)); err != nil {
		writeDBError(c, err, "Product")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) dissociateMedia(c *gin.Context) {
	if err := s.db.dissociate(c.Param("id"), c.Param("mediaId"), mustClaims(c)); err != nil {
		writeDBError(c, err, "Product")
		return
	}
	c.Status(http.StatusNoContent)
}
