package mockapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/logger"
	"storefront/internal/upload"
)

func fileURL(c *gin.Context, id string) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s/media/images/%s/file", scheme, c.Request.Host, APIPrefix, id)
}

func (s *Server) uploadMedia(c *gin.Context) {
	log := logger.FromCtx(c.Request.Context()).With(
		zap.String("layer", "mockapi"),
		zap.String("method", "uploadMedia"),
	)

	fh, err := c.FormFile("file")
	if err != nil {
		abortMessage(c, http.StatusBadRequest, "file is required")
		return
	}
	if fh.Size > upload.ProductImage.MaxBytes {
		abortMessage(c, http.StatusBadRequest, "file size exceeds "+upload.FormatSize(upload.ProductImage.MaxBytes)+" limit")
		return
	}

	src, err := fh.Open()
	if err != nil {
		abortMessage(c, http.StatusBadRequest, "file is unreadable")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		abortMessage(c, http.StatusBadRequest, "file is unreadable")
		return
	}

	f := upload.FromBytes(fh.Filename, fh.Header.Get("Content-Type"), data)
	if res := upload.Validate(f, upload.ProductImage); !res.Valid {
		abortMessage(c, http.StatusBadRequest, strings.Join(res.Errors, "; "))
		return
	}

	claims := mustClaims(c)
	m := s.db.createMedia(claims.UserID, f.Name, f.ContentType, data, func(id string) string {
		return fileURL(c, id)
	})

	s.stats.Uploaded.Add(uint64(len(data)))
	log.Info("media stored", zap.String("media_id", m.ID), zap.Int64("size", m.Size))
	c.JSON(http.StatusCreated, m)
}

func (s *Server) listMedia(c *gin.Context) {
	c.JSON(http.StatusOK, s.db.listMedia(mustClaims(c).UserID))
}

func (s *Server) getMedia(c *gin.Context) {
	m, err := s.db.mediaMeta(c.Param("id"), mustClaims(c))
	if err != nil {
		writeDBError(c, err, "Media")
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) deleteMedia(c *gin.Context) {
	if err := s.db.deleteMedia(c.Param("id"), mustClaims(c)); err != nil {
		writeDBError(c, err, "Media")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) serveMediaFile(c *gin.Context) {
	contentType, data, err := s.db.mediaFile(c.Param("id"))
	if err != nil {
		writeDBError(c, err, "Media")
		return
	}
	c.Data(http.StatusOK, contentType, data)
}
