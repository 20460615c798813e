package mockapi

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/media"
	"storefront/internal/product"
	"storefront/internal/session"
)

var (
	errEmailTaken      = errors.New("email already exists")
	errNotFound        = errors.New("not found")
	errForbidden       = errors.New("forbidden")
	errWrongPassword   = errors.New("current password is incorrect")
	errInvalidPassword = errors.New("invalid email or password")
)

type account struct {
	user session.User
	hash []byte
}

type storedMedia struct {
	meta media.Media
	data []byte
}

// db is the in-memory backing store. Every read hands out copies.
type db struct {
	now func() time.Time

	mu        sync.RWMutex
	users     map[string]*account
	byEmail   map[string]string
	products  map[string]*product.Product
	prodOrder []string
	media     map[string]*storedMedia
	mediaOrd  []string
}

func newDB(now func() time.Time) *db {
	return &db{
		now:      now,
		users:    make(map[string]*account),
		byEmail:  make(map[string]string),
		products: make(map[string]*product.Product),
		media:    make(map[string]*storedMedia),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (d *db) createUser(u session.User, password string) (session.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return session.User{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	email := normalizeEmail(u.Email)
	if _, taken := d.byEmail[email]; taken {
		return session.User{}, errEmailTaken
	}
	u.ID = uuid.NewString()
	u.Email = email
	d.users[u.ID] = &account{user: u, hash: hash}
	d.byEmail[email] = u.ID
	return u, nil
}

func (d *db) authenticate(email, password string) (session.User, error) {
	d.mu.RLock()
	acc, ok := d.users[d.byEmail[normalizeEmail(email)]]
	d.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword(acc.hash, []byte(password)) != nil {
		return session.User{}, errInvalidPassword
	}
	return acc.user, nil
}

func (d *db) user(id string) (session.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	acc, ok := d.users[id]
	if !ok {
		return session.User{}, false
	}
	return acc.user, true
}

type profileChange struct {
	name        *string
	avatar      *string
	password    *string
	newPassword *string
}

func (d *db) updateUser(id string, ch profileChange) (session.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	acc, ok := d.users[id]
	if !ok {
		return session.User{}, errNotFound
	}

	var newHash []byte
	if ch.newPassword != nil {
		if ch.password == nil || bcrypt.CompareHashAndPassword(acc.hash, []byte(*ch.password)) != nil {
			return session.User{}, errWrongPassword
		}
		h, err := bcrypt.GenerateFromPassword([]byte(*ch.newPassword), bcrypt.DefaultCost)
		if err != nil {
			return session.User{}, err
		}
		newHash = h
	}

	if ch.name != nil {
		acc.user.Name = *ch.name
	}
	if ch.avatar != nil {
		if *ch.avatar == "" {
			acc.user.AvatarURL = nil
		} else {
			v := *ch.avatar
			acc.user.AvatarURL = &v
		}
	}
	if newHash != nil {
		acc.hash = newHash
	}
	return acc.user, nil
}

func cloneProduct(p *product.Product) product.Product {
	out := *p
	out.MediaIDs = slices.Clone(p.MediaIDs)
	out.ImageURLs = slices.Clone(p.ImageURLs)
	if out.MediaIDs == nil {
		out.MediaIDs = []string{}
	}
	if out.ImageURLs == nil {
		out.ImageURLs = []string{}
	}
	return out
}

func (d *db) listProducts(sellerID string) []product.Product {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]product.Product, 0, len(d.prodOrder))
	for _, id := range d.prodOrder {
		p := d.products[id]
		if sellerID != "" && p.SellerID != sellerID {
			continue
		}
		out = append(out, cloneProduct(p))
	}
	return out
}

func (d *db) product(id string) (product.Product, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.products[id]
	if !ok {
		return product.Product{}, errNotFound
	}
	return cloneProduct(p), nil
}

func (d *db) createProduct(sellerID string, req product.ProductRequest) product.Product {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	p := &product.Product{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		SellerID:    sellerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	d.products[p.ID] = p
	d.prodOrder = append(d.prodOrder, p.ID)
	return cloneProduct(p)
}

// owned resolves a product the caller may modify. Admins may modify any.
func (d *db) owned(id string, caller *Claims) (*product.Product, error) {
	p, ok := d.products[id]
	if !ok {
		return nil, errNotFound
	}
	if p.SellerID != caller.UserID && caller.Role != session.RoleAdmin {
		return nil, errForbidden
	}
	return p, nil
}

func (d *db) updateProduct(id string, caller *Claims, patch product.ProductPatch) (product.Product, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.owned(id, caller)
	if err != nil {
		return product.Product{}, err
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Quantity != nil {
		p.Quantity = *patch.Quantity
	}
	p.UpdatedAt = d.now()
	return cloneProduct(p), nil
}

func (d *db) deleteProduct(id string, caller *Claims) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.owned(id, caller)
	if err != nil {
		return err
	}
	for _, mid := range p.MediaIDs {
		if m, ok := d.media[mid]; ok {
			m.meta.ProductID = nil
		}
	}
	delete(d.products, id)
	d.prodOrder = slices.DeleteFunc(d.prodOrder, func(s string) bool { return s == id })
	return nil
}

func (d *db) associate(productID, mediaID string, caller *Claims) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.owned(productID, caller)
	if err != nil {
		return err
	}
	m, ok := d.media[mediaID]
	if !ok || m.meta.UserID == nil || *m.meta.UserID != caller.UserID {
		return errNotFound
	}
	if slices.Contains(p.MediaIDs, mediaID) {
		return nil
	}
	p.MediaIDs = append(p.MediaIDs, mediaID)
	p.ImageURLs = append(p.ImageURLs, m.meta.URL)
	p.UpdatedAt = d.now()
	pid := p.ID
	m.meta.ProductID = &pid
	return nil
}

func (d *db) dissociate(productID, mediaID string, caller *Claims) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.owned(productID, caller)
	if err != nil {
		return err
	}
	// Detaching media that is not attached is a no-op.
	if !detach(p, mediaID) {
		return nil
	}
	p.UpdatedAt = d.now()
	if m, ok := d.media[mediaID]; ok {
		m.meta.ProductID = nil
	}
	return nil
}

// detach removes mediaID and the image URL at the same position.
func detach(p *product.Product, mediaID string) bool {
	i := slices.Index(p.MediaIDs, mediaID)
	if i < 0 {
		return false
	}
	p.MediaIDs = slices.Delete(p.MediaIDs, i, i+1)
	if i < len(p.ImageURLs) {
		p.ImageURLs = slices.Delete(p.ImageURLs, i, i+1)
	}
	return true
}

func (d *db) createMedia(ownerID, filename, contentType string, data []byte, urlFor func(id string) string) media.Media {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	id := uuid.NewString()
	owner := ownerID
	m := &storedMedia{
		meta: media.Media{
			ID:               id,
			URL:              urlFor(id),
			OriginalFilename: filename,
			Size:             int64(len(data)),
			ContentType:      contentType,
			UserID:           &owner,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		data: data,
	}
	d.media[id] = m
	d.mediaOrd = append(d.mediaOrd, id)
	return m.meta
}

func (d *db) listMedia(ownerID string) []media.Media {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]media.Media, 0, len(d.mediaOrd))
	for _, id := range d.mediaOrd {
		m := d.media[id]
		if m.meta.UserID != nil && *m.meta.UserID == ownerID {
			out = append(out, m.meta)
		}
	}
	return out
}

func (d *db) ownedMedia(id string, caller *Claims) (*storedMedia, error) {
	m, ok := d.media[id]
	if !ok {
		return nil, errNotFound
	}
	if (m.meta.UserID == nil || *m.meta.UserID != caller.UserID) && caller.Role != session.RoleAdmin {
		return nil, errForbidden
	}
	return m, nil
}

func (d *db) mediaMeta(id string, caller *Claims) (media.Media, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	m, err := d.ownedMedia(id, caller)
	if err != nil {
		return media.Media{}, err
	}
	return m.meta, nil
}

func (d *db) mediaFile(id string) (string, []byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	m, ok := d.media[id]
	if !ok {
		return "", nil, errNotFound
	}
	return m.meta.ContentType, m.data, nil
}

// deleteMedia also detaches the media from whichever product carries it.
func (d *db) deleteMedia(id string, caller *Claims) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.ownedMedia(id, caller); err != nil {
		return err
	}
	for _, p := range d.products {
		if detach(p, id) {
			p.UpdatedAt = d.now()
		}
	}
	delete(d.media, id)
	d.mediaOrd = slices.DeleteFunc(d.mediaOrd, func(s string) bool { return s == id })
	return nil
}
