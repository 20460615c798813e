// Package mediamanager is the seller's image library workflow: batch upload
// with per-file progress, optional attachment to a product, filtering and
// single or bulk deletion.
package mediamanager

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"storefront/internal/logger"
	"storefront/internal/media"
	"storefront/internal/product"
	"storefront/internal/ui"
	"storefront/internal/upload"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrBusy = errors.New("an upload is already in progress")

// Filters besides a product id.
const (
	FilterAll        = "all"
	FilterUnassigned = "unassigned"
)

// MediaService is the part of media.Service the manager needs.
type MediaService interface {
	GetAllMedia(ctx context.Context) ([]media.Media, error)
	UploadTracked(ctx context.Context, files []upload.File) []media.Outcome
	DeleteMedia(ctx context.Context, id string) error
	DeleteMediaFiles(ctx context.Context, ids []string) error
	Media() []media.Media
}

// ProductService is the part of product.Service the manager needs.
type ProductService interface {
	ListMine(ctx context.Context) ([]product.Product, error)
	AssociateMedia(ctx context.Context, productID, mediaID string) error
}

type Deps struct {
	Media    MediaService
	Products ProductService
	Notifier ui.Notifier
	Dialog   ui.Dialog
}

// Summary of one upload batch.
type Summary struct {
	Uploaded     []media.Media
	Failed       []string
	AttachFailed []string
}

type Manager struct {
	deps Deps

	mu        sync.Mutex
	products  []product.Product
	selected  map[string]struct{}
	filter    string
	target    string
	uploading bool
}

func New(deps Deps) *Manager {
	return &Manager{
		deps:     deps,
		selected: make(map[string]struct{}),
		filter:   FilterAll,
	}
}

func (m *Manager) log(ctx context.Context, method string) *zap.Logger {
	return logger.FromCtx(ctx).With(
		zap.String("layer", "mediamanager"),
		zap.String("method", method),
	)
}

// Load fetches the media library and the seller's products. A product list
// failure only degrades product names.
func (m *Manager) Load(ctx context.Context) error {
	log := m.log(ctx, "Load")

	var g errgroup.Group
	var mediaErr error
	var products []product.Product
	g.Go(func() error {
		_, mediaErr = m.deps.Media.GetAllMedia(ctx)
		return nil
	})
	g.Go(func() error {
		list, err := m.deps.Products.ListMine(ctx)
		if err != nil {
			log.Warn("failed to load products", zap.Error(err))
			return nil
		}
		products = list
		return nil
	})
	_ = g.Wait()

	if products != nil {
		m.mu.Lock()
		m.products = products
		m.mu.Unlock()
	}
	if mediaErr != nil {
		log.Error("failed to load media", zap.Error(mediaErr))
		ui.Error(m.deps.Notifier, "Failed to load media")
		return mediaErr
	}
	return nil
}

// SetFilter takes FilterAll, FilterUnassigned or a product id.
func (m *Manager) SetFilter(f string) {
	if f == "" {
		f = FilterAll
	}
	m.mu.Lock()
	m.filter = f
	m.mu.Unlock()
}

// SetTargetProduct attaches future uploads to productID. Empty means none.
func (m *Manager) SetTargetProduct(productID string) {
	m.mu.Lock()
	m.target = productID
	m.mu.Unlock()
}

// Visible is the cached library narrowed by the current filter.
func (m *Manager) Visible() []media.Media {
	m.mu.Lock()
	filter := m.filter
	m.mu.Unlock()

	all := m.deps.Media.Media()
	switch filter {
	case FilterAll:
		return all
	case FilterUnassigned:
		return slices.DeleteFunc(all, func(x media.Media) bool { return x.ProductID != nil })
	default:
		return slices.DeleteFunc(all, func(x media.Media) bool {
			return x.ProductID == nil || *x.ProductID != filter
		})
	}
}

func (m *Manager) TotalSize() int64 {
	var n int64
	for _, x := range m.Visible() {
		n += x.Size
	}
	return n
}

// ProductName labels the product a media item belongs to.
func (m *Manager) ProductName(productID *string) string {
	if productID == nil || *productID == "" {
		return "Unassigned"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ID == *productID {
			return p.Name
		}
	}
	return "Product " + *productID
}

func (m *Manager) Products() []product.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.products)
}

func (m *Manager) Toggle(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.selected[id]; ok {
		delete(m.selected, id)
		return
	}
	m.selected[id] = struct{}{}
}

func (m *Manager) SelectAll() {
	visible := m.Visible()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range visible {
		m.selected[x.ID] = struct{}{}
	}
}

func (m *Manager) DeselectAll() {
	m.mu.Lock()
	clear(m.selected)
	m.mu.Unlock()
}

func (m *Manager) IsSelected(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.selected[id]
	return ok
}

// Selected lists the selection in library order.
func (m *Manager) Selected() []string {
	all := m.deps.Media.Media()
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.selected))
	for _, x := range all {
		if _, ok := m.selected[x.ID]; ok {
			out = append(out, x.ID)
		}
	}
	return out
}

// Upload sends every file, tolerating partial failure. Progress is reported
// through the media tracker, which clears itself once the batch settles.
func (m *Manager) Upload(ctx context.Context, files []upload.File) (Summary, error) {
	log := m.log(ctx, "Upload")

	m.mu.Lock()
	if m.uploading {
		m.mu.Unlock()
		return Summary{}, ErrBusy
	}
	m.uploading = true
	target := m.target
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.uploading = false
		m.mu.Unlock()
	}()

	var sum Summary
	for _, o := range m.deps.Media.UploadTracked(ctx, files) {
		if o.Err != nil {
			log.Warn("file failed", zap.String("file", o.Filename), zap.Error(o.Err))
			sum.Failed = append(sum.Failed, o.Filename)
			continue
		}
		sum.Uploaded = append(sum.Uploaded, *o.Media)
	}

	if target != "" && len(sum.Uploaded) > 0 {
		sum.AttachFailed = m.attach(ctx, target, sum.Uploaded)
	}

	if len(sum.Uploaded) == 0 {
		ui.Error(m.deps.Notifier, "All uploads failed")
		return sum, nil
	}

	msg := uploadMessage(len(sum.Uploaded), len(sum.Failed), len(sum.AttachFailed))
	if len(sum.AttachFailed) > 0 {
		ui.Warning(m.deps.Notifier, msg)
	} else {
		ui.Success(m.deps.Notifier, msg)
	}

	if _, err := m.deps.Media.GetAllMedia(ctx); err != nil {
		log.Warn("reload after upload failed", zap.Error(err))
	}
	return sum, nil
}

// attach associates uploads with productID and returns the ids that failed.
func (m *Manager) attach(ctx context.Context, productID string, uploaded []media.Media) []string {
	errs := make([]error, len(uploaded))
	var g errgroup.Group
	for i, x := range uploaded {
		g.Go(func() error {
			errs[i] = m.deps.Products.AssociateMedia(ctx, productID, x.ID)
			return nil
		})
	}
	_ = g.Wait()

	var failed []string
	for i, err := range errs {
		if err != nil {
			m.log(ctx, "attach").Error("associate failed",
				zap.String("product_id", productID),
				zap.String("media_id", uploaded[i].ID),
				zap.Error(err),
			)
			failed = append(failed, uploaded[i].ID)
		}
	}
	return failed
}

func uploadMessage(uploaded, failed, unattached int) string {
	var msg string
	switch {
	case failed > 0:
		msg = fmt.Sprintf("%d uploaded, %d failed", uploaded, failed)
	case uploaded == 1:
		msg = "1 image uploaded successfully"
	default:
		msg = fmt.Sprintf("%d images uploaded successfully", uploaded)
	}
	if unattached > 0 {
		msg += fmt.Sprintf(", %d not attached to the product", unattached)
	}
	return msg
}

// Delete asks for confirmation and removes one image. It reports whether
// the image was deleted.
func (m *Manager) Delete(ctx context.Context, id string) (bool, error) {
	if !m.deps.Dialog.Confirm(ctx, ui.ConfirmDelete("image")) {
		return false, nil
	}

	if err := m.deps.Media.DeleteMedia(ctx, id); err != nil {
		m.log(ctx, "Delete").Error("delete failed", zap.String("media_id", id), zap.Error(err))
		ui.Error(m.deps.Notifier, "Failed to delete image")
		return false, err
	}

	m.mu.Lock()
	delete(m.selected, id)
	m.mu.Unlock()

	ui.Success(m.deps.Notifier, "Image deleted successfully")
	return true, nil
}

// DeleteSelected removes every selected image after one confirmation.
func (m *Manager) DeleteSelected(ctx context.Context) (bool, error) {
	ids := m.Selected()
	if len(ids) == 0 {
		return false, nil
	}

	ok := m.deps.Dialog.Confirm(ctx, ui.Confirmation{
		Title:       "Delete Multiple Images",
		Message:     fmt.Sprintf("Are you sure you want to delete %d selected image(s)? This action cannot be undone.", len(ids)),
		ConfirmText: "Delete All",
		CancelText:  "Cancel",
		Danger:      true,
	})
	if !ok {
		return false, nil
	}

	err := m.deps.Media.DeleteMediaFiles(ctx, ids)
	m.pruneSelection()
	if err != nil {
		m.log(ctx, "DeleteSelected").Error("bulk delete failed", zap.Int("count", len(ids)), zap.Error(err))
		ui.Error(m.deps.Notifier, "Failed to delete images")
		return false, err
	}

	m.DeselectAll()
	ui.Success(m.deps.Notifier, fmt.Sprintf("%d image(s) deleted successfully", len(ids)))
	return true, nil
}

// pruneSelection drops selected ids that are no longer in the library.
func (m *Manager) pruneSelection() {
	present := make(map[string]struct{})
	for _, x := range m.deps.Media.Media() {
		present[x.ID] = struct{}{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.selected {
		if _, ok := present[id]; !ok {
			delete(m.selected, id)
		}
	}
}
