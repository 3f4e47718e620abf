package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus represents the inventory availability of a product or variant
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
	StockStatusBackorder  StockStatus = "backorder"
)

// IsValid checks if the stock status is valid
func (s StockStatus) IsValid() bool {
	switch s {
	case StockStatusInStock, StockStatusOutOfStock, StockStatusBackorder:
		return true
	}
	return false
}

// ProductKind distinguishes simple products from variable products
type ProductKind string

const (
	ProductKindSimple   ProductKind = "simple"
	ProductKindVariable ProductKind = "variable"
)

// Attribute is one named attribute of a variant. Value is the raw token from
// the source system; Label is the resolved human-readable term name, which may
// be empty when the source has no term for the value.
type Attribute struct {
	Name  string
	Value string
	Label string
}

// DisplayValue returns the label when resolved, falling back to the raw value
func (a Attribute) DisplayValue() string {
	if a.Label != "" {
		return a.Label
	}
	return a.Value
}

// Variant is a purchasable sub-entity of a variable product, differentiated
// by one or more named attributes. It carries a back-reference to the parent
// by ID only and never owns the parent.
type Variant struct {
	ID            int64
	ParentID      int64
	SKU           string
	Name          string
	Price         decimal.Decimal
	RegularPrice  *decimal.Decimal
	SalePrice     *decimal.Decimal
	StockStatus   StockStatus
	StockQuantity *int
	Weight        string
	Attributes    []Attribute
	ImageURL      string
}

// Product is one entry of a catalog snapshot. It is a read-only value for the
// lifetime of a run.
type Product struct {
	ID               int64
	SKU              string
	Name             string
	Description      string
	ShortDescription string
	Permalink        string
	Slug             string
	Status           string
	Price            decimal.Decimal
	RegularPrice     *decimal.Decimal
	SalePrice        *decimal.Decimal
	StockStatus      StockStatus
	StockQuantity    *int
	Weight           string
	Categories       []string
	Tags             []string
	ImageURL         string
	GalleryImageURLs []string
	Kind             ProductKind
	Variants         []Variant

	// DeliveryTimeTerm is the delivery-time taxonomy term assigned to the
	// product, empty when none is set.
	DeliveryTimeTerm string
	// ReleaseDate is the scheduled release date from product metadata
	ReleaseDate *time.Time
}

// IsVariable returns true if the product has purchasable variants
func (p *Product) IsVariable() bool {
	return p.Kind == ProductKindVariable
}

// Images returns the primary image followed by gallery images, with gallery
// entries equal to the primary dropped and duplicates removed, order preserved.
func (p *Product) Images() []string {
	images := make([]string, 0, len(p.GalleryImageURLs)+1)
	seen := make(map[string]struct{}, len(p.GalleryImageURLs)+1)
	if p.ImageURL != "" {
		images = append(images, p.ImageURL)
		seen[p.ImageURL] = struct{}{}
	}
	for _, url := range p.GalleryImageURLs {
		if url == "" {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		images = append(images, url)
	}
	return images
}

// Image returns the variant's own image when present, else the parent's
// primary image.
func (v *Variant) Image(parent *Product) string {
	if v.ImageURL != "" {
		return v.ImageURL
	}
	return parent.ImageURL
}

// Quantity returns the stock quantity, treating absent as zero
func quantity(q *int) int {
	if q == nil {
		return 0
	}
	return *q
}

// AvailableQuantity returns the exportable quantity: the actual quantity when
// the product is in stock with positive stock, zero otherwise.
func (p *Product) AvailableQuantity() int {
	if p.StockStatus == StockStatusInStock && quantity(p.StockQuantity) > 0 {
		return quantity(p.StockQuantity)
	}
	return 0
}

// AvailableQuantity returns the exportable quantity for a variant
func (v *Variant) AvailableQuantity() int {
	if v.StockStatus == StockStatusInStock && quantity(v.StockQuantity) > 0 {
		return quantity(v.StockQuantity)
	}
	return 0
}

// IsExhausted reports whether stock is exhausted: explicit out-of-stock or a
// known quantity of zero or less. Backorder with unknown quantity is not
// exhausted.
func (p *Product) IsExhausted() bool {
	if p.StockStatus == StockStatusOutOfStock {
		return true
	}
	return p.StockQuantity != nil && *p.StockQuantity <= 0
}

// IsExhausted reports whether the variant's stock is exhausted
func (v *Variant) IsExhausted() bool {
	if v.StockStatus == StockStatusOutOfStock {
		return true
	}
	return v.StockQuantity != nil && *v.StockQuantity <= 0
}
