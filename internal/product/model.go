package product

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Price is a decimal amount that travels as a JSON number.
type Price struct {
	decimal.Decimal
}

func NewPrice(d decimal.Decimal) Price { return Price{Decimal: d} }

// ParsePrice parses a decimal string such as "19.99".
func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return Price{Decimal: d}, nil
}

func MustPrice(s string) Price {
	p, err := ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

func (p *Price) UnmarshalJSON(b []byte) error {
	return p.Decimal.UnmarshalJSON(b)
}

func (p Price) String() string { return p.StringFixed(2) }

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       Price     `json:"price"`
	Quantity    int       `json:"quantity"`
	SellerID    string    `json:"sellerId"`
	MediaIDs    []string  `json:"mediaIds"`
	ImageURLs   []string  `json:"imageUrls"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UnmarshalJSON also accepts "stock", which some backends send instead of "quantity".
func (p *Product) UnmarshalJSON(b []byte) error {
	type plain Product
	var aux struct {
		plain
		Stock *int `json:"stock"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = Product(aux.plain)
	if aux.Stock != nil && !hasKey(b, "quantity") {
		p.Quantity = *aux.Stock
	}
	return nil
}

func hasKey(b []byte, key string) bool {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return false
	}
	_, ok := m[key]
	return ok
}

// ProductRequest is the body of a create.
type ProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       Price  `json:"price"`
	Quantity    int    `json:"quantity"`
}

// ProductPatch is the body of an update. Only these fields are patchable.
type ProductPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *Price  `json:"price,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
}

func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.Quantity == nil
}

// Image pairs an attached media id with its URL.
type Image struct {
	MediaID string
	URL     string
}
