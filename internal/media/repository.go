package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sync"

	"storefront/internal/httpx"
	"storefront/internal/logger"
	"storefront/internal/upload"

	"go.uber.org/zap"
)

type Repository interface {
	Upload(ctx context.Context, f upload.File, onProgress ProgressFunc) (*Media, error)
	List(ctx context.Context) ([]Media, error)
	Get(ctx context.Context, id string) (*Media, error)
	Delete(ctx context.Context, id string) error
	FileURL(id string) string
}

type repository struct {
	client  *httpx.Client
	baseURL string
}

// NewRepository talks to the media endpoints under baseURL (e.g. http://host/api/media).
func NewRepository(client *httpx.Client, baseURL string) Repository {
	return &repository{client: client, baseURL: baseURL}
}

func (r *repository) imagesURL() string { return r.baseURL + "/images" }

func (r *repository) itemURL(id string) string {
	return r.imagesURL() + "/" + url.PathEscape(id)
}

func (r *repository) FileURL(id string) string { return r.itemURL(id) + "/file" }

func (r *repository) Upload(ctx context.Context, f upload.File, onProgress ProgressFunc) (*Media, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UploadMedia"),
		zap.String("filename", f.Name),
	)

	body, contentType, err := multipartBody(f)
	if err != nil {
		log.Error("failed to build multipart body", zap.Error(err))
		return nil, err
	}

	var reader io.Reader = bytes.NewReader(body)
	if onProgress != nil {
		reader = &progressReader{r: reader, total: int64(len(body)), report: onProgress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.imagesURL(), reader)
	if err != nil {
		return nil, err
	}
	req.ContentLength = int64(len(body))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	var m Media
	if err := r.client.Do(req, &m); err != nil {
		log.Debug("upload request failed", zap.Error(err))
		return nil, err
	}

	if onProgress != nil {
		onProgress(100)
	}
	log.Debug("media uploaded", zap.String("media_id", m.ID), zap.Int64("size", m.Size))
	return &m, nil
}

func multipartBody(f upload.File) ([]byte, string, error) {
	src, err := f.Open()
	if err != nil {
		return nil, "", err
	}
	defer src.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
	h.Set("Content-Type", f.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// progressReader reports how much of the body the transport has consumed.
// The final 100 is reported only after the server answers.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	last   int
	mu     sync.Mutex
	report ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 {
		p.mu.Lock()
		p.read += int64(n)
		pct := int(p.read * 100 / p.total)
		if pct >= 100 {
			pct = 99
		}
		changed := pct > p.last
		if changed {
			p.last = pct
		}
		p.mu.Unlock()
		if changed {
			p.report(pct)
		}
	}
	return n, err
}

func (r *repository) List(ctx context.Context) ([]Media, error) {
	var out []Media
	if err := r.client.JSON(ctx, http.MethodGet, r.imagesURL(), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Media{}
	}
	return out, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Media, error) {
	var m Media
	if err := r.client.JSON(ctx, http.MethodGet, r.itemURL(id), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.client.JSON(ctx, http.MethodDelete, r.itemURL(id), nil, nil)
}
