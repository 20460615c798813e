package productform

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"storefront/internal/apierr"
	"storefront/internal/logger"
	"storefront/internal/media"
	"storefront/internal/product"
	"storefront/internal/ui"
	"storefront/internal/upload"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultSuccessDelay is how long the success message stays before leaving the form.
const DefaultSuccessDelay = time.Second

var ErrBusy = errors.New("a save is already in progress")

// MediaService is the part of media.Service the editor needs.
type MediaService interface {
	UploadFiles(ctx context.Context, files []upload.File) ([]media.Media, error)
	DeleteMedia(ctx context.Context, id string) error
}

// ProductService is the part of product.Service the editor needs.
type ProductService interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
	Create(ctx context.Context, req product.ProductRequest) (*product.Product, error)
	Update(ctx context.Context, id string, patch product.ProductPatch) (*product.Product, error)
	AssociateMedia(ctx context.Context, productID, mediaID string) error
	DissociateMedia(ctx context.Context, productID, mediaID string) error
}

type Deps struct {
	Media        MediaService
	Products     ProductService
	Notifier     ui.Notifier
	Dialog       ui.Dialog
	Navigator    ui.Navigator
	SuccessDelay time.Duration
}

// State is a snapshot of the editor.
type State struct {
	ProductID         string
	Form              Form
	ExistingImages    []product.Image
	SelectedNewFiles  []upload.File
	DeletedMediaIDs   []string
	PendingDissociate []string
	PendingAssociate  []string
	FieldErrors       map[string]string
	Dirty             bool
	Saving            bool
}

// ExistingImageURLs lists the URLs of the images that will stay on the product.
func (s State) ExistingImageURLs() []string {
	out := make([]string, 0, len(s.ExistingImages))
	for _, img := range s.ExistingImages {
		out = append(out, img.URL)
	}
	return out
}

// Editor is safe for concurrent use. Network calls run without holding the lock.
type Editor struct {
	deps Deps

	mu                sync.Mutex
	productID         string
	form              Form
	loaded            Form
	existing          []product.Image
	newFiles          []upload.File
	deleted           []string
	pendingDissociate []string
	pendingAssociate  []media.Media
	fieldErrors       map[string]string
	dirty             bool
	saving            bool
	navTimer          *time.Timer
}

// NewEditor starts in create mode with an empty form. A zero SuccessDelay
// means DefaultSuccessDelay.
func NewEditor(deps Deps) *Editor {
	if deps.SuccessDelay <= 0 {
		deps.SuccessDelay = DefaultSuccessDelay
	}
	return &Editor{deps: deps}
}

func (e *Editor) log(ctx context.Context, method string) *zap.Logger {
	return logger.FromCtx(ctx).With(
		zap.String("layer", "productform"),
		zap.String("method", method),
	)
}

// Load switches to edit mode for id.
func (e *Editor) Load(ctx context.Context, id string) error {
	p, err := e.deps.Products.GetByID(ctx, id)
	if err != nil {
		ui.Error(e.deps.Notifier, "Failed to load product: "+apierr.MessageOf(err))
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.productID = p.ID
	e.form = FromProduct(*p)
	e.loaded = e.form
	e.existing = p.Images()
	e.newFiles = nil
	e.deleted = nil
	e.pendingDissociate = nil
	e.pendingAssociate = nil
	e.fieldErrors = nil
	e.dirty = false
	return nil
}

func (e *Editor) IsEditMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.productID != ""
}

// SetForm replaces the field values.
func (e *Editor) SetForm(f Form) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form = f
	if !f.Equal(e.loaded) {
		e.dirty = true
	}
}

// AddFiles keeps the valid files and reports each rejected one to the user.
// It returns the names that were rejected.
func (e *Editor) AddFiles(files ...upload.File) []string {
	var rejected []string
	var accepted []upload.File
	for _, f := range files {
		res := upload.Validate(f, upload.ProductImage)
		if !res.Valid {
			rejected = append(rejected, f.Name)
			ui.Error(e.deps.Notifier, fmt.Sprintf("%s: %s", f.Name, res.Errors[0]))
			continue
		}
		accepted = append(accepted, f)
	}

	if len(accepted) > 0 {
		e.mu.Lock()
		e.newFiles = append(e.newFiles, accepted...)
		e.dirty = true
		e.mu.Unlock()
	}
	return rejected
}

// RemoveNewFile drops a file that has not been uploaded yet.
func (e *Editor) RemoveNewFile(index int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.newFiles) {
		return
	}
	e.newFiles = slices.Delete(slices.Clone(e.newFiles), index, index+1)
	e.dirty = true
}

// RemoveExistingImage asks for confirmation, deletes the media, detaches it
// from the product and drops it from the list. Declining leaves everything
// as it was. A detach that fails with NotFound is treated as done.
func (e *Editor) RemoveExistingImage(ctx context.Context, index int) (bool, error) {
	log := e.log(ctx, "RemoveExistingImage")

	e.mu.Lock()
	if index < 0 || index >= len(e.existing) {
		e.mu.Unlock()
		return false, fmt.Errorf("no image at position %d", index)
	}
	img := e.existing[index]
	productID := e.productID
	e.mu.Unlock()

	if !e.deps.Dialog.Confirm(ctx, ui.ConfirmDelete("image")) {
		return false, nil
	}

	if img.MediaID != "" {
		if err := e.deps.Media.DeleteMedia(ctx, img.MediaID); err != nil && !errors.Is(err, apierr.ErrNotFound) {
			log.Error("failed to delete media", zap.String("media_id", img.MediaID), zap.Error(err))
			ui.Error(e.deps.Notifier, "Failed to delete image: "+apierr.MessageOf(err))
			return false, err
		}
	}

	pending := false
	if img.MediaID != "" && productID != "" {
		if err := e.deps.Products.DissociateMedia(ctx, productID, img.MediaID); err != nil && !errors.Is(err, apierr.ErrNotFound) {
			log.Warn("detach failed, will retry on save", zap.String("media_id", img.MediaID), zap.Error(err))
			pending = true
		}
	}

	e.mu.Lock()
	e.existing = slices.DeleteFunc(slices.Clone(e.existing), func(x product.Image) bool { return x == img })
	if img.MediaID != "" {
		e.deleted = append(e.deleted, img.MediaID)
	}
	if pending {
		e.pendingDissociate = append(e.pendingDissociate, img.MediaID)
	}
	e.dirty = true
	e.mu.Unlock()

	ui.Success(e.deps.Notifier, "Image removed")
	return true, nil
}

// Cancel leaves the form, asking first when there are unsaved edits.
func (e *Editor) Cancel(ctx context.Context) bool {
	e.mu.Lock()
	dirty := e.dirty
	e.mu.Unlock()

	if dirty && !e.deps.Dialog.Confirm(ctx, ui.ConfirmDiscard()) {
		return false
	}
	e.deps.Navigator.Navigate(ui.RouteDashboard)
	return true
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		ProductID:         e.productID,
		Form:              e.form,
		ExistingImages:    slices.Clone(e.existing),
		SelectedNewFiles:  slices.Clone(e.newFiles),
		DeletedMediaIDs:   slices.Clone(e.deleted),
		PendingDissociate: slices.Clone(e.pendingDissociate),
		PendingAssociate:  mediaIDs(e.pendingAssociate),
		FieldErrors:       e.fieldErrors,
		Dirty:             e.dirty,
		Saving:            e.saving,
	}
}

// Submit validates the form and runs the create or update path.
func (e *Editor) Submit(ctx context.Context) (*product.Product, error) {
	e.mu.Lock()
	if e.saving {
		e.mu.Unlock()
		return nil, ErrBusy
	}

	form := e.form
	if err := form.Validate(); err != nil {
		var ve *apierr.ValidationError
		if errors.As(err, &ve) {
			e.fieldErrors = ve.Fields
		}
		e.mu.Unlock()
		return nil, err
	}

	e.fieldErrors = nil
	e.saving = true
	productID := e.productID
	files := slices.Clone(e.newFiles)
	pending := slices.Clone(e.pendingDissociate)
	attach := slices.Clone(e.pendingAssociate)
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.saving = false
		e.mu.Unlock()
	}()

	if productID == "" {
		return e.create(ctx, form, files)
	}
	return e.update(ctx, productID, form, files, pending, attach)
}

func (e *Editor) create(ctx context.Context, form Form, files []upload.File) (*product.Product, error) {
	log := e.log(ctx, "create")

	var uploaded []media.Media
	if len(files) > 0 {
		var err error
		uploaded, err = e.deps.Media.UploadFiles(ctx, files)
		if err != nil {
			log.Error("image upload failed", zap.Error(err))
			ui.Error(e.deps.Notifier, "Failed to upload images. Please try again.")
			return nil, err
		}
	}

	created, err := e.deps.Products.Create(ctx, form.request())
	if err != nil {
		log.Error("create failed", zap.Error(err), zap.Int("orphaned_media", len(uploaded)))
		ui.Error(e.deps.Notifier, "Failed to create product: "+apierr.MessageOf(err))
		return nil, err
	}

	// The files are on the server now; from here on they are tracked by media id.
	e.mu.Lock()
	e.productID = created.ID
	e.newFiles = nil
	e.mu.Unlock()

	if err := e.attach(ctx, created.ID, uploaded); err != nil {
		log.Error("associate failed", zap.String("product_id", created.ID), zap.Error(err))
		ui.Error(e.deps.Notifier, "Product created but failed to associate images.")
		return created, err
	}

	final := e.refresh(ctx, created)
	e.finish(final, form)

	if len(uploaded) > 0 {
		ui.Success(e.deps.Notifier, "Product created successfully with images!")
	} else {
		ui.Success(e.deps.Notifier, "Product created successfully!")
	}
	log.Info("product created", zap.String("product_id", final.ID), zap.Int("images", len(uploaded)))

	e.navigateLater()
	return final, nil
}

func (e *Editor) update(ctx context.Context, id string, form Form, files []upload.File, pending []string, attach []media.Media) (*product.Product, error) {
	log := e.log(ctx, "update").With(zap.String("product_id", id))

	// Detaches that could not complete when the image was removed.
	for _, mediaID := range pending {
		if err := e.deps.Products.DissociateMedia(ctx, id, mediaID); err != nil && !errors.Is(err, apierr.ErrNotFound) {
			log.Error("detach failed", zap.String("media_id", mediaID), zap.Error(err))
			ui.Error(e.deps.Notifier, "Failed to remove images: "+apierr.MessageOf(err))
			return nil, err
		}
		e.mu.Lock()
		e.pendingDissociate = slices.DeleteFunc(e.pendingDissociate, func(x string) bool { return x == mediaID })
		e.mu.Unlock()
	}

	// Uploads that reached the server on an earlier attempt but were never attached.
	if err := e.attach(ctx, id, attach); err != nil {
		log.Error("associate failed", zap.Error(err))
		ui.Error(e.deps.Notifier, "Failed to attach images: "+apierr.MessageOf(err))
		return nil, err
	}

	if len(files) > 0 {
		uploaded, err := e.deps.Media.UploadFiles(ctx, files)
		if err != nil {
			log.Error("image upload failed", zap.Error(err))
			ui.Error(e.deps.Notifier, "Failed to upload images. Please try again.")
			return nil, err
		}

		e.mu.Lock()
		e.newFiles = slices.DeleteFunc(e.newFiles, func(f upload.File) bool {
			return slices.ContainsFunc(files, func(u upload.File) bool { return u.Name == f.Name })
		})
		e.mu.Unlock()

		if err := e.attach(ctx, id, uploaded); err != nil {
			log.Error("associate failed", zap.Error(err))
			ui.Error(e.deps.Notifier, "Failed to attach images: "+apierr.MessageOf(err))
			return nil, err
		}
	}

	updated, err := e.deps.Products.Update(ctx, id, form.patch())
	if err != nil {
		log.Error("update failed", zap.Error(err))
		ui.Error(e.deps.Notifier, "Failed to update product: "+apierr.MessageOf(err))
		return nil, err
	}

	e.finish(updated, form)
	ui.Success(e.deps.Notifier, "Product updated successfully!")
	log.Info("product updated")

	e.navigateLater()
	return updated, nil
}

// attach associates every uploaded media with the product. Attached media join
// the existing images; the rest stay pending and the form stays dirty so that
// the next Submit retries them.
func (e *Editor) attach(ctx context.Context, productID string, uploaded []media.Media) error {
	if len(uploaded) == 0 {
		return nil
	}

	errs := make([]error, len(uploaded))
	var g errgroup.Group
	for i, m := range uploaded {
		g.Go(func() error {
			errs[i] = e.deps.Products.AssociateMedia(ctx, productID, m.ID)
			return errs[i]
		})
	}
	err := g.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()
	for i, m := range uploaded {
		e.pendingAssociate = slices.DeleteFunc(e.pendingAssociate, func(x media.Media) bool { return x.ID == m.ID })
		if errs[i] != nil {
			e.pendingAssociate = append(e.pendingAssociate, m)
			continue
		}
		if !slices.ContainsFunc(e.existing, func(x product.Image) bool { return x.MediaID == m.ID }) {
			e.existing = append(e.existing, product.Image{MediaID: m.ID, URL: m.URL})
		}
	}
	if err != nil {
		e.dirty = true
	}
	return err
}

func mediaIDs(list []media.Media) []string {
	out := make([]string, 0, len(list))
	for _, m := range list {
		out = append(out, m.ID)
	}
	return out
}

// refresh re-reads the product so the returned value carries its images.
func (e *Editor) refresh(ctx context.Context, p *product.Product) *product.Product {
	fresh, err := e.deps.Products.GetByID(ctx, p.ID)
	if err != nil {
		e.log(ctx, "refresh").Warn("could not reload product", zap.String("product_id", p.ID), zap.Error(err))
		return p
	}
	return fresh
}

func (e *Editor) finish(p *product.Product, form Form) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.productID = p.ID
	e.loaded = form
	e.form = form
	e.existing = p.Images()
	e.newFiles = nil
	e.deleted = nil
	e.pendingAssociate = nil
	e.dirty = false
}

func (e *Editor) navigateLater() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.navTimer != nil {
		e.navTimer.Stop()
	}
	e.navTimer = time.AfterFunc(e.deps.SuccessDelay, func() {
		e.deps.Navigator.Navigate(ui.RouteDashboard)
	})
}

// Close stops a pending post-save navigation.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.navTimer != nil {
		e.navTimer.Stop()
		e.navTimer = nil
	}
}
