package catalogsource

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/feedbridge/backend/internal/domain/catalog"
)

// Wire representations of the source system's REST resources. Prices arrive
// as strings; empty means unset.

type wcCategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type wcCategory struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Parent int64  `json:"parent"`
}

type wcTag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type wcImage struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}

type wcAttribute struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

type wcVariationAttribute struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Option string `json:"option"`
}

type wcMetaData struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type wcProduct struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	Permalink        string          `json:"permalink"`
	Type             string          `json:"type"`
	Status           string          `json:"status"`
	SKU              string          `json:"sku"`
	Price            string          `json:"price"`
	RegularPrice     string          `json:"regular_price"`
	SalePrice        string          `json:"sale_price"`
	Description      string          `json:"description"`
	ShortDescription string          `json:"short_description"`
	StockStatus      string          `json:"stock_status"`
	StockQuantity    *int            `json:"stock_quantity"`
	Weight           string          `json:"weight"`
	Categories       []wcCategoryRef `json:"categories"`
	Tags             []wcTag         `json:"tags"`
	Images           []wcImage       `json:"images"`
	Attributes       []wcAttribute   `json:"attributes"`
	Variations       []int64         `json:"variations"`
	MetaData         []wcMetaData    `json:"meta_data"`
}

type wcVariation struct {
	ID            int64                  `json:"id"`
	SKU           string                 `json:"sku"`
	Price         string                 `json:"price"`
	RegularPrice  string                 `json:"regular_price"`
	SalePrice     string                 `json:"sale_price"`
	StockStatus   string                 `json:"stock_status"`
	StockQuantity *int                   `json:"stock_quantity"`
	Weight        string                 `json:"weight"`
	Image         *wcImage               `json:"image"`
	Attributes    []wcVariationAttribute `json:"attributes"`
}

// metaString returns the string value of a meta entry, empty for non-string
// values.
func metaString(meta []wcMetaData, key string) string {
	for _, m := range meta {
		if m.Key != key {
			continue
		}
		var s string
		if err := json.Unmarshal(m.Value, &s); err == nil {
			return s
		}
	}
	return ""
}

// toStockStatus maps the source system's stock status tokens
func toStockStatus(s string) catalog.StockStatus {
	switch s {
	case "outofstock":
		return catalog.StockStatusOutOfStock
	case "onbackorder":
		return catalog.StockStatusBackorder
	default:
		return catalog.StockStatusInStock
	}
}

// toKind maps the source system's product type tokens
func toKind(t string) catalog.ProductKind {
	if t == "variable" {
		return catalog.ProductKindVariable
	}
	return catalog.ProductKindSimple
}

// parseAmount parses a source price string, treating empty as absent
func parseAmount(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// amountOrZero parses a source price string, treating empty or invalid as zero
func amountOrZero(s string) decimal.Decimal {
	if d := parseAmount(s); d != nil {
		return *d
	}
	return decimal.Zero
}

// releaseDateFormats are the date layouts accepted from product metadata
var releaseDateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02.01.2006",
}

// parseReleaseDate parses a release date meta value, nil when absent or
// unparseable.
func parseReleaseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range releaseDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
