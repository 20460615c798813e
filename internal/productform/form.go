// Package productform runs the seller's create/edit product workflow:
// validating fields, uploading new images, attaching and detaching media, and
// saving the product, with user feedback at every step.
package productform

import (
	"strings"

	"storefront/internal/product"
	"storefront/internal/validation"

	"github.com/shopspring/decimal"
)

// Form holds the editable product fields.
type Form struct {
	Name        string          `json:"name" validate:"required,notblank,min=3,max=100"`
	Description string          `json:"description" validate:"required,notblank,min=10,max=2000"`
	Price       decimal.Decimal `json:"price" validate:"dmin=0.01,dmax=999999.99,dscale=2"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
}

// Validate returns nil or an *apierr.ValidationError keyed by field.
func (f Form) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	return validation.Struct(f)
}

func (f Form) Equal(o Form) bool {
	return f.Name == o.Name &&
		f.Description == o.Description &&
		f.Price.Equal(o.Price) &&
		f.Quantity == o.Quantity
}

func (f Form) request() product.ProductRequest {
	return product.ProductRequest{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Price:       product.NewPrice(f.Price),
		Quantity:    f.Quantity,
	}
}

func (f Form) patch() product.ProductPatch {
	req := f.request()
	return product.ProductPatch{
		Name:        &req.Name,
		Description: &req.Description,
		Price:       &req.Price,
		Quantity:    &req.Quantity,
	}
}

// FromProduct fills a form from a loaded product.
func FromProduct(p product.Product) Form {
	return Form{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.Decimal,
		Quantity:    p.Quantity,
	}
}
