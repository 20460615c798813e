package productform

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"storefront/internal/apierr"
	"storefront/internal/media"
	"storefront/internal/product"
	"storefront/internal/ui"
	"storefront/internal/upload"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMedia struct {
	mock.Mock
}

func (m *MockMedia) UploadFiles(ctx context.Context, files []upload.File) ([]media.Media, error) {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]media.Media), args.Error(1)
}

func (m *MockMedia) DeleteMedia(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockProducts struct {
	mock.Mock
}

func (m *MockProducts) GetByID(ctx context.Context, id string) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProducts) Create(ctx context.Context, req product.ProductRequest) (*product.Product, error) {
	args := m.Called(ctx, req.Name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProducts) Update(ctx context.Context, id string, patch product.ProductPatch) (*product.Product, error) {
	args := m.Called(ctx, id, *patch.Name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProducts) AssociateMedia(ctx context.Context, productID, mediaID string) error {
	return m.Called(ctx, productID, mediaID).Error(0)
}

func (m *MockProducts) DissociateMedia(ctx context.Context, productID, mediaID string) error {
	return m.Called(ctx, productID, mediaID).Error(0)
}

type MockDialog struct {
	mock.Mock
}

func (m *MockDialog) Confirm(ctx context.Context, c ui.Confirmation) bool {
	return m.Called(c.Title).Bool(0)
}

type toast struct {
	Level   ui.Level
	Message string
}

type recorder struct {
	mu     sync.Mutex
	toasts []toast
	routes []string
}

func (r *recorder) Notify(level ui.Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, toast{level, msg})
}

func (r *recorder) Navigate(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

func (r *recorder) Toasts() []toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]toast(nil), r.toasts...)
}

func (r *recorder) Routes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.routes...)
}

type fixture struct {
	media    *MockMedia
	products *MockProducts
	dialog   *MockDialog
	rec      *recorder
	editor   *Editor
}

func newFixture() *fixture {
	f := &fixture{
		media:    new(MockMedia),
		products: new(MockProducts),
		dialog:   new(MockDialog),
		rec:      &recorder{},
	}
	f.editor = NewEditor(Deps{
		Media:        f.media,
		Products:     f.products,
		Notifier:     f.rec,
		Dialog:       f.dialog,
		Navigator:    f.rec,
		SuccessDelay: 5 * time.Millisecond,
	})
	return f
}

func img(name string, size int) upload.File {
	return upload.FromBytes(name, "image/jpeg", bytes.Repeat([]byte{1}, size))
}

func apiErr(status int) error {
	return apierr.FromResponse(http.MethodPost, "/x", status, []byte(`{"message":"server said no"}`))
}

func TestEditor_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("WithoutImages", func(t *testing.T) {
		f := newFixture()
		f.editor.SetForm(validForm())

		created := &product.Product{ID: "p1", Name: "T-shirt"}
		f.products.On("Create", ctx, "T-shirt").Return(created, nil)
		f.products.On("GetByID", ctx, "p1").Return(created, nil)

		got, err := f.editor.Submit(ctx)

		require.NoError(t, err)
		assert.Equal(t, "p1", got.ID)
		assert.Equal(t, []toast{{ui.LevelSuccess, "Product created successfully!"}}, f.rec.Toasts())
		assert.Empty(t, f.rec.Routes(), "navigation waits for the confirmation delay")
		assert.Eventually(t, func() bool { return len(f.rec.Routes()) == 1 }, time.Second, time.Millisecond)
		assert.Equal(t, ui.RouteDashboard, f.rec.Routes()[0])
		assert.False(t, f.editor.State().Dirty)
		f.media.AssertNotCalled(t, "UploadFiles", mock.Anything, mock.Anything)
	})

	t.Run("TwoImages", func(t *testing.T) {
		f := newFixture()
		f.editor.SetForm(validForm())
		assert.Empty(t, f.editor.AddFiles(img("x.jpg", upload.MiB), img("y.jpg", upload.MiB)))

		var order []string
		record := func(step string) func(mock.Arguments) {
			return func(mock.Arguments) { order = append(order, step) }
		}

		f.media.On("UploadFiles", ctx, []string{"x.jpg", "y.jpg"}).
			Run(record("upload")).
			Return([]media.Media{{ID: "m-x", URL: "/m-x"}, {ID: "m-y", URL: "/m-y"}}, nil)
		f.products.On("Create", ctx, "T-shirt").Run(record("create")).Return(&product.Product{ID: "p1"}, nil)
		f.products.On("AssociateMedia", mock.Anything, "p1", "m-x").Return(nil)
		f.products.On("AssociateMedia", mock.Anything, "p1", "m-y").Return(nil)
		f.products.On("GetByID", ctx, "p1").Return(&product.Product{
			ID:        "p1",
			MediaIDs:  []string{"m-x", "m-y"},
			ImageURLs: []string{"/m-x", "/m-y"},
		}, nil)

		got, err := f.editor.Submit(ctx)

		require.NoError(t, err)
		assert.Len(t, got.ImageURLs, 2)
		assert.Equal(t, []string{"upload", "create"}, order)
		f.products.AssertNumberOfCalls(t, "AssociateMedia", 2)
		assert.Equal(t, []toast{{ui.LevelSuccess, "Product created successfully with images!"}}, f.rec.Toasts())
		assert.Empty(t, f.editor.State().SelectedNewFiles)
		assert.Equal(t, []string{"/m-x", "/m-y"}, f.editor.State().ExistingImageURLs())
	})

	t.Run("UploadFailureAborts", func(t *testing.T) {
		f := newFixture()
		f.editor.SetForm(validForm())
		f.editor.AddFiles(img("x.jpg", 10))

		f.media.On("UploadFiles", ctx, []string{"x.jpg"}).Return(nil, apiErr(http.StatusInternalServerError))

		_, err := f.editor.Submit(ctx)

		assert.ErrorIs(t, err, apierr.ErrServer)
		f.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Equal(t, []toast{{ui.LevelError, "Failed to upload images. Please try again."}}, f.rec.Toasts())
		st := f.editor.State()
		assert.True(t, st.Dirty)
		assert.Len(t, st.SelectedNewFiles, 1)
		assert.False(t, st.Saving)
	})

	t.Run("CreateFailureAfterUpload", func(t *testing.T) {
		f := newFixture()
		f.editor.SetForm(validForm())
		f.editor.AddFiles(img("x.jpg", 10))

		f.media.On("UploadFiles", ctx, []string{"x.jpg"}).Return([]media.Media{{ID: "m-x"}}, nil)
		f.products.On("Create", ctx, "T-shirt").Return(nil, apiErr(http.StatusForbidden))

		_, err := f.editor.Submit(ctx)

		assert.ErrorIs(t, err, apierr.ErrForbidden)
		f.products.AssertNotCalled(t, "AssociateMedia", mock.Anything, mock.Anything, mock.Anything)
		require.Len(t, f.rec.Toasts(), 1)
		assert.Equal(t, ui.LevelError, f.rec.Toasts()[0].Level)
		assert.True(t, f.editor.State().Dirty)
		assert.False(t, f.editor.IsEditMode())
	})

	t.Run("AssociateFailure", func(t *testing.T) {
		f := newFixture()
		f.editor.SetForm(validForm())
		f.editor.AddFiles(img("x.jpg", 10))

		f.media.On("UploadFiles", ctx, []string{"x.jpg"}).Return([]media.Media{{ID: "m-x", URL: "https://cdn/x.jpg"}}, nil).Once()
		f.products.On("Create", ctx, "T-shirt").Return(&product.Product{ID: "p1"}, nil).Once()
		f.products.On("AssociateMedia", mock.Anything, "p1", "m-x").Return(apiErr(http.StatusInternalServerError)).Once()

		_, err := f.editor.Submit(ctx)

		assert.Error(t, err)
		assert.Equal(t, []toast{{ui.LevelError, "Product created but failed to associate images."}}, f.rec.Toasts())
		assert.True(t, f.editor.IsEditMode(), "a retry updates the created product")

		st := f.editor.State()
		assert.Equal(t, []string{"m-x"}, st.PendingAssociate)
		assert.Empty(t, st.SelectedNewFiles, "uploaded files are not sent twice")
		assert.Empty(t, st.ExistingImages)
		assert.True(t, st.Dirty)

		t.Run("RetryAttachesUploadedMedia", func(t *testing.T) {
			f.products.On("AssociateMedia", mock.Anything, "p1", "m-x").Return(nil).Once()
			f.products.On("Update", ctx, "p1", "T-shirt").Return(&product.Product{
				ID:        "p1",
				Name:      "T-shirt",
				MediaIDs:  []string{"m-x"},
				ImageURLs: []string{"https://cdn/x.jpg"},
			}, nil).Once()

			p, err := f.editor.Submit(ctx)

			require.NoError(t, err)
			assert.Equal(t, []string{"m-x"}, p.MediaIDs)
			f.products.AssertNumberOfCalls(t, "AssociateMedia", 2)
			f.media.AssertNumberOfCalls(t, "UploadFiles", 1)

			st := f.editor.State()
			assert.Empty(t, st.PendingAssociate)
			assert.False(t, st.Dirty)
			assert.Equal(t, []string{"https://cdn/x.jpg"}, st.ExistingImageURLs())
		})
	})

	t.Run("PartialAssociateKeepsOnlyFailures", func(t *testing.T) {
		f := newFixture()
		f.editor.SetForm(validForm())
		f.editor.AddFiles(img("a.jpg", 10), img("b.jpg", 10))

		f.media.On("UploadFiles", ctx, []string{"a.jpg", "b.jpg"}).Return([]media.Media{
			{ID: "m-a", URL: "https://cdn/a.jpg"},
			{ID: "m-b", URL: "https://cdn/b.jpg"},
		}, nil)
		f.products.On("Create", ctx, "T-shirt").Return(&product.Product{ID: "p1"}, nil)
		f.products.On("AssociateMedia", mock.Anything, "p1", "m-a").Return(nil)
		f.products.On("AssociateMedia", mock.Anything, "p1", "m-b").Return(apiErr(http.StatusInternalServerError))

		_, err := f.editor.Submit(ctx)

		assert.Error(t, err)
		st := f.editor.State()
		assert.Equal(t, []string{"m-b"}, st.PendingAssociate)
		assert.Equal(t, []string{"https://cdn/a.jpg"}, st.ExistingImageURLs())
	})

	t.Run("InvalidFormMakesNoCalls", func(t *testing.T) {
		f := newFixture()
		form := validForm()
		form.Price = decimal.RequireFromString("1.234")
		f.editor.SetForm(form)

		_, err := f.editor.Submit(ctx)

		assert.ErrorIs(t, err, apierr.ErrInvalidInput)
		assert.Contains(t, f.editor.State().FieldErrors, "price")
		assert.Empty(t, f.rec.Toasts(), "field errors are shown inline")
		f.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func loadedFixture(t *testing.T, ctx context.Context) *fixture {
	t.Helper()
	f := newFixture()
	f.products.On("GetByID", ctx, "p1").Return(&product.Product{
		ID:          "p1",
		Name:        "T-shirt",
		Description: "Soft cotton tee",
		Price:       product.MustPrice("19.99"),
		Quantity:    10,
		SellerID:    "s1",
		MediaIDs:    []string{"m0", "m1", "m2"},
		ImageURLs:   []string{"/m0", "/m1", "/m2"},
	}, nil).Once()
	require.NoError(t, f.editor.Load(ctx, "p1"))
	return f
}

func TestEditor_Load(t *testing.T) {
	ctx := context.Background()
	f := loadedFixture(t, ctx)

	st := f.editor.State()
	assert.True(t, f.editor.IsEditMode())
	assert.False(t, st.Dirty)
	assert.True(t, st.Form.Equal(validForm()))
	assert.Equal(t, []string{"/m0", "/m1", "/m2"}, st.ExistingImageURLs())

	t.Run("SameValuesStayClean", func(t *testing.T) {
		f.editor.SetForm(validForm())
		assert.False(t, f.editor.State().Dirty)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newFixture()
		f.products.On("GetByID", ctx, "nope").Return(nil, apiErr(http.StatusNotFound))

		err := f.editor.Load(ctx, "nope")
		assert.ErrorIs(t, err, apierr.ErrNotFound)
		assert.Len(t, f.rec.Toasts(), 1)
	})
}

func TestEditor_RemoveExistingImage(t *testing.T) {
	ctx := context.Background()

	t.Run("Confirmed", func(t *testing.T) {
		f := loadedFixture(t, ctx)

		var order []string
		f.dialog.On("Confirm", "Delete image").Return(true)
		f.media.On("DeleteMedia", ctx, "m1").Run(func(mock.Arguments) { order = append(order, "delete") }).Return(nil)
		f.products.On("DissociateMedia", ctx, "p1", "m1").Run(func(mock.Arguments) { order = append(order, "dissociate") }).Return(nil)

		removed, err := f.editor.RemoveExistingImage(ctx, 1)

		require.NoError(t, err)
		assert.True(t, removed)
		assert.Equal(t, []string{"delete", "dissociate"}, order)
		st := f.editor.State()
		assert.Equal(t, []string{"/m0", "/m2"}, st.ExistingImageURLs())
		assert.NotContains(t, st.ExistingImageURLs(), "/m1")
		assert.Equal(t, []string{"m1"}, st.DeletedMediaIDs)
		assert.True(t, st.Dirty)
		assert.Equal(t, []toast{{ui.LevelSuccess, "Image removed"}}, f.rec.Toasts())
	})

	t.Run("Declined", func(t *testing.T) {
		f := loadedFixture(t, ctx)
		f.dialog.On("Confirm", "Delete image").Return(false)

		removed, err := f.editor.RemoveExistingImage(ctx, 1)

		require.NoError(t, err)
		assert.False(t, removed)
		assert.Len(t, f.editor.State().ExistingImages, 3)
		assert.False(t, f.editor.State().Dirty)
		f.media.AssertNotCalled(t, "DeleteMedia", mock.Anything, mock.Anything)
		assert.Empty(t, f.rec.Toasts())
	})

	t.Run("DissociateNotFoundIsSilent", func(t *testing.T) {
		f := loadedFixture(t, ctx)
		f.dialog.On("Confirm", "Delete image").Return(true)
		f.media.On("DeleteMedia", ctx, "m1").Return(nil)
		f.products.On("DissociateMedia", ctx, "p1", "m1").Return(apiErr(http.StatusNotFound))

		removed, err := f.editor.RemoveExistingImage(ctx, 1)

		require.NoError(t, err)
		assert.True(t, removed)
		assert.Equal(t, []toast{{ui.LevelSuccess, "Image removed"}}, f.rec.Toasts())
		assert.Empty(t, f.editor.State().PendingDissociate)
	})

	t.Run("DeleteFailureKeepsImage", func(t *testing.T) {
		f := loadedFixture(t, ctx)
		f.dialog.On("Confirm", "Delete image").Return(true)
		f.media.On("DeleteMedia", ctx, "m1").Return(apiErr(http.StatusForbidden))

		removed, err := f.editor.RemoveExistingImage(ctx, 1)

		assert.ErrorIs(t, err, apierr.ErrForbidden)
		assert.False(t, removed)
		assert.Len(t, f.editor.State().ExistingImages, 3)
		f.products.AssertNotCalled(t, "DissociateMedia", mock.Anything, mock.Anything, mock.Anything)
		require.Len(t, f.rec.Toasts(), 1)
		assert.Equal(t, ui.LevelError, f.rec.Toasts()[0].Level)
	})

	t.Run("DissociateRetriedOnSave", func(t *testing.T) {
		f := loadedFixture(t, ctx)
		f.dialog.On("Confirm", "Delete image").Return(true)
		f.media.On("DeleteMedia", ctx, "m1").Return(nil)
		f.products.On("DissociateMedia", ctx, "p1", "m1").Return(apiErr(http.StatusInternalServerError)).Once()

		_, err := f.editor.RemoveExistingImage(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"m1"}, f.editor.State().PendingDissociate)

		f.products.On("DissociateMedia", ctx, "p1", "m1").Return(nil).Once()
		f.products.On("Update", ctx, "p1", "T-shirt").Return(&product.Product{
			ID: "p1", MediaIDs: []string{"m0", "m2"}, ImageURLs: []string{"/m0", "/m2"},
		}, nil)

		_, err = f.editor.Submit(ctx)

		require.NoError(t, err)
		assert.Empty(t, f.editor.State().PendingDissociate)
		f.products.AssertNumberOfCalls(t, "DissociateMedia", 2)
	})

	t.Run("OutOfRange", func(t *testing.T) {
		f := loadedFixture(t, ctx)
		_, err := f.editor.RemoveExistingImage(ctx, 7)
		assert.Error(t, err)
		f.dialog.AssertNotCalled(t, "Confirm", mock.Anything)
	})
}

func TestEditor_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("UploadsAssociatesThenPatches", func(t *testing.T) {
		f := loadedFixture(t, ctx)
		form := validForm()
		form.Name = "Better tee"
		f.editor.SetForm(form)
		f.editor.AddFiles(img("new.jpg", 10))

		var order []string
		step := func(s string) func(mock.Arguments) {
			return func(mock.Arguments) { order = append(order, s) }
		}
		f.media.On("UploadFiles", ctx, []string{"new.jpg"}).Run(step("upload")).Return([]media.Media{{ID: "m3", URL: "/m3"}}, nil)
		f.products.On("AssociateMedia", mock.Anything, "p1", "m3").Run(step("associate")).Return(nil)
		f.products.On("Update", ctx, "p1", "Better tee").Run(step("patch")).Return(&product.Product{
			ID: "p1", Name: "Better tee",
			MediaIDs:  []string{"m0", "m1", "m2", "m3"},
			ImageURLs: []string{"/m0", "/m1", "/m2", "/m3"},
		}, nil)

		got, err := f.editor.Submit(ctx)

		require.NoError(t, err)
		assert.Equal(t, "Better tee", got.Name)
		assert.Equal(t, []string{"upload", "associate", "patch"}, order)
		assert.Equal(t, []toast{{ui.LevelSuccess, "Product updated successfully!"}}, f.rec.Toasts())
		assert.False(t, f.editor.State().Dirty)
		assert.Eventually(t, func() bool { return len(f.rec.Routes()) == 1 }, time.Second, time.Millisecond)
	})

	t.Run("ForbiddenKeepsEdits", func(t *testing.T) {
		f := loadedFixture(t, ctx)
		form := validForm()
		form.Name = "Hijacked"
		f.editor.SetForm(form)

		f.products.On("Update", ctx, "p1", "Hijacked").Return(nil, apiErr(http.StatusForbidden)).Once()

		_, err := f.editor.Submit(ctx)

		assert.ErrorIs(t, err, apierr.ErrForbidden)
		st := f.editor.State()
		assert.True(t, st.Dirty)
		assert.Equal(t, "Hijacked", st.Form.Name)
		require.Len(t, f.rec.Toasts(), 1)
		assert.Equal(t, ui.LevelError, f.rec.Toasts()[0].Level)
		f.products.AssertNumberOfCalls(t, "Update", 1)
		time.Sleep(20 * time.Millisecond)
		assert.Empty(t, f.rec.Routes())
	})

	t.Run("PatchFailureAfterUploadKeepsImages", func(t *testing.T) {
		f := loadedFixture(t, ctx)
		f.editor.AddFiles(img("new.jpg", 10))

		f.media.On("UploadFiles", ctx, []string{"new.jpg"}).Return([]media.Media{{ID: "m3", URL: "/m3"}}, nil).Once()
		f.products.On("AssociateMedia", mock.Anything, "p1", "m3").Return(nil)
		f.products.On("Update", ctx, "p1", "T-shirt").Return(nil, apiErr(http.StatusInternalServerError)).Once()

		_, err := f.editor.Submit(ctx)

		assert.ErrorIs(t, err, apierr.ErrServer)
		st := f.editor.State()
		assert.Empty(t, st.SelectedNewFiles, "uploaded files are not uploaded again")
		assert.Equal(t, []string{"/m0", "/m1", "/m2", "/m3"}, st.ExistingImageURLs())
	})

	t.Run("AssociateFailureRetriesBeforePatch", func(t *testing.T) {
		f := loadedFixture(t, ctx)
		f.editor.AddFiles(img("new.jpg", 10))

		f.media.On("UploadFiles", ctx, []string{"new.jpg"}).Return([]media.Media{{ID: "m3", URL: "/m3"}}, nil).Once()
		f.products.On("AssociateMedia", mock.Anything, "p1", "m3").Return(apiErr(http.StatusInternalServerError)).Once()

		_, err := f.editor.Submit(ctx)

		assert.ErrorIs(t, err, apierr.ErrServer)
		st := f.editor.State()
		assert.Equal(t, []string{"m3"}, st.PendingAssociate)
		assert.Empty(t, st.SelectedNewFiles)
		assert.True(t, st.Dirty)
		f.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)

		f.products.On("AssociateMedia", mock.Anything, "p1", "m3").Return(nil).Once()
		f.products.On("Update", ctx, "p1", "T-shirt").Return(&product.Product{ID: "p1", Name: "T-shirt"}, nil).Once()

		_, err = f.editor.Submit(ctx)

		require.NoError(t, err)
		f.products.AssertNumberOfCalls(t, "AssociateMedia", 2)
		f.media.AssertNumberOfCalls(t, "UploadFiles", 1)
		assert.Empty(t, f.editor.State().PendingAssociate)
	})
}

func TestEditor_AddFiles(t *testing.T) {
	f := newFixture()

	rejected := f.editor.AddFiles(
		img("ok.jpg", 10),
		upload.FromBytes("anim.gif", "image/gif", []byte("GIF89a")),
		img("huge.jpg", 2*upload.MiB+1),
	)

	assert.Equal(t, []string{"anim.gif", "huge.jpg"}, rejected)
	assert.Len(t, f.editor.State().SelectedNewFiles, 1)
	assert.Len(t, f.rec.Toasts(), 2)

	f.editor.RemoveNewFile(0)
	assert.Empty(t, f.editor.State().SelectedNewFiles)
}

func TestEditor_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("CleanLeavesImmediately", func(t *testing.T) {
		f := newFixture()
		assert.True(t, f.editor.Cancel(ctx))
		assert.Equal(t, []string{ui.RouteDashboard}, f.rec.Routes())
		f.dialog.AssertNotCalled(t, "Confirm", mock.Anything)
	})

	t.Run("DirtyDeclined", func(t *testing.T) {
		f := newFixture()
		f.editor.SetForm(validForm())
		f.dialog.On("Confirm", "Discard changes").Return(false)

		assert.False(t, f.editor.Cancel(ctx))
		assert.Empty(t, f.rec.Routes())
	})

	t.Run("DirtyConfirmed", func(t *testing.T) {
		f := newFixture()
		f.editor.SetForm(validForm())
		f.dialog.On("Confirm", "Discard changes").Return(true)

		assert.True(t, f.editor.Cancel(ctx))
		assert.Equal(t, []string{ui.RouteDashboard}, f.rec.Routes())
	})
}

func TestEditor_RejectsConcurrentSubmit(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.editor.SetForm(validForm())

	release := make(chan struct{})
	f.products.On("Create", ctx, "T-shirt").Run(func(mock.Arguments) { <-release }).Return(&product.Product{ID: "p1"}, nil)
	f.products.On("GetByID", ctx, "p1").Return(nil, errors.New("offline"))

	done := make(chan error, 1)
	go func() {
		_, err := f.editor.Submit(ctx)
		done <- err
	}()

	assert.Eventually(t, func() bool { return f.editor.State().Saving }, time.Second, time.Millisecond)
	_, err := f.editor.Submit(ctx)
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	assert.NoError(t, <-done)
	f.editor.Close()
}
