package feed

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbridge/backend/internal/domain/catalog"
)

func testRules() *Rules {
	return &Rules{
		Brand:                 "Example Records",
		CurrencyCode:          "EUR",
		GoogleProductCategory: "Apparel & Accessories > Clothing",
		Tracking: TrackingParams{
			Source:   "facebook",
			Campaign: "product_feed",
			Medium:   "cpc",
		},
		PreorderTerm:        "Vorbestellung / Preorder",
		PreorderLabel:       "Vorbestellung",
		DefaultDeliveryTime: "3 - 5 Werktage",
		Mapping: MappingTable{
			Version: "test",
			Categories: map[string]string{
				"vinyl": "Media > Music & Sound Recordings > Records & LPs",
				"shirt": "Apparel & Accessories > Clothing > Shirts & Tops",
			},
			DefaultCategory: "Arts & Entertainment > Hobbies & Creative Arts > Collectibles",
			WeightGramsByType: map[string]int{
				"vinyl": 1000,
			},
			DefaultWeightGrams: 100,
		},
	}
}

func quantityOf(v int) *int { return &v }

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func simpleProduct() catalog.Product {
	return catalog.Product{
		ID:            101,
		SKU:           "LP-001",
		Name:          "Midnight Sessions",
		Description:   "<p>Limited pressing on &quot;black&quot; vinyl</p>",
		Permalink:     "https://shop.example.com/product/midnight-sessions",
		Slug:          "midnight-sessions",
		Status:        "publish",
		Price:         decimal.RequireFromString("19.90"),
		StockStatus:   catalog.StockStatusInStock,
		StockQuantity: quantityOf(12),
		Categories:    []string{"Vinyl", "New Releases"},
		ImageURL:      "https://cdn.example.com/midnight.jpg",
		Kind:          catalog.ProductKindSimple,
	}
}

func variableProduct() catalog.Product {
	return catalog.Product{
		ID:          202,
		SKU:         "SET-001",
		Name:        "Midnight Sessions",
		Description: "<p>Available on several formats</p>",
		Permalink:   "https://shop.example.com/product/midnight-sessions-set",
		Slug:        "midnight-sessions-set",
		Status:      "publish",
		StockStatus: catalog.StockStatusInStock,
		Categories:  []string{"Music"},
		ImageURL:    "https://cdn.example.com/set.jpg",
		Kind:        catalog.ProductKindVariable,
		Variants: []catalog.Variant{
			{
				ID:            2021,
				ParentID:      202,
				SKU:           "SET-001-LP",
				Name:          "Midnight Sessions",
				Price:         decimal.RequireFromString("24.00"),
				StockStatus:   catalog.StockStatusInStock,
				StockQuantity: quantityOf(5),
				Attributes: []catalog.Attribute{
					{Name: "sound-carrier", Value: "vinyl", Label: "Vinyl"},
				},
				ImageURL: "https://cdn.example.com/set-lp.jpg",
			},
			{
				ID:          2022,
				ParentID:    202,
				SKU:         "SET-001-CD",
				Name:        "Midnight Sessions",
				Price:       decimal.RequireFromString("12.50"),
				StockStatus: catalog.StockStatusOutOfStock,
				Attributes: []catalog.Attribute{
					{Name: "sound-carrier", Value: "cd", Label: "CD"},
				},
			},
		},
	}
}

func TestNewAdCatalogTransformer_ValidatesRules(t *testing.T) {
	_, err := NewAdCatalogTransformer(&Rules{CurrencyCode: "EUR"})
	assert.ErrorIs(t, err, ErrRulesMissingBrand)

	_, err = NewAdCatalogTransformer(&Rules{Brand: "Example Records"})
	assert.ErrorIs(t, err, ErrRulesMissingCurrency)
}

func TestAdCatalogTransformer_SimpleProduct(t *testing.T) {
	tr, err := NewAdCatalogTransformer(testRules())
	require.NoError(t, err)

	snap := &catalog.Snapshot{Products: []catalog.Product{simpleProduct()}, TakenAt: time.Now()}
	records, err := tr.Transform(snap)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	get := func(field string) string {
		fv, ok := rec.Get(field)
		require.True(t, ok)
		return fv.String()
	}

	assert.Equal(t, "101", get(AdFieldID))
	assert.Equal(t, "Midnight Sessions", get(AdFieldTitle))
	assert.Equal(t, `Limited pressing on "black" vinyl`, get(AdFieldDescription))
	assert.Equal(t, "in stock", get(AdFieldAvailability))
	assert.Equal(t, "new", get(AdFieldCondition))
	assert.Equal(t, "EUR 19.90", get(AdFieldPrice))
	assert.Equal(t, "https://cdn.example.com/midnight.jpg", get(AdFieldImageLink))
	assert.Equal(t, "Example Records", get(AdFieldBrand))
	assert.Equal(t, "FALSE", get(AdFieldIdentifierExists))
	assert.Equal(t, "Apparel & Accessories > Clothing", get(AdFieldGoogleProductCategory))
	assert.Equal(t, "Vinyl > New Releases", get(AdFieldProductType))

	link := get(AdFieldLink)
	assert.Contains(t, link, "https://shop.example.com/product/midnight-sessions?")
	assert.Contains(t, link, "utm_source=facebook")
	assert.Contains(t, link, "utm_campaign=product_feed")
	assert.Contains(t, link, "utm_medium=cpc")
	assert.Contains(t, link, "utm_term=101")
	assert.NotContains(t, link, "variation_id")
}

func TestAdCatalogTransformer_VariableProductFlattened(t *testing.T) {
	tr, err := NewAdCatalogTransformer(testRules())
	require.NoError(t, err)

	snap := &catalog.Snapshot{Products: []catalog.Product{variableProduct()}}
	records, err := tr.Transform(snap)
	require.NoError(t, err)
	require.Len(t, records, 2)

	get := func(rec Record, field string) string {
		fv, ok := rec.Get(field)
		require.True(t, ok)
		return fv.String()
	}

	first := records[0]
	assert.Equal(t, "2021", get(first, AdFieldID))
	assert.Equal(t, "Midnight Sessions Vinyl", get(first, AdFieldTitle))
	assert.Equal(t, "EUR 24.00", get(first, AdFieldPrice))
	assert.Equal(t, "in stock", get(first, AdFieldAvailability))
	assert.Equal(t, "https://cdn.example.com/set-lp.jpg", get(first, AdFieldImageLink))

	link := get(first, AdFieldLink)
	assert.Contains(t, link, "variation_id=2021")
	assert.Contains(t, link, "utm_term=2021")

	second := records[1]
	assert.Equal(t, "2022", get(second, AdFieldID))
	assert.Equal(t, "Midnight Sessions CD", get(second, AdFieldTitle))
	assert.Equal(t, "out of stock", get(second, AdFieldAvailability))
	// Variant without own image inherits the parent image
	assert.Equal(t, "https://cdn.example.com/set.jpg", get(second, AdFieldImageLink))
}

func TestAdCatalogTransformer_RecordCountMatchesSnapshot(t *testing.T) {
	tr, err := NewAdCatalogTransformer(testRules())
	require.NoError(t, err)

	snap := &catalog.Snapshot{Products: []catalog.Product{simpleProduct(), variableProduct()}}
	records, err := tr.Transform(snap)
	require.NoError(t, err)
	assert.Len(t, records, snap.RecordCount())
}

func TestAdCatalogTransformer_EmptySnapshot(t *testing.T) {
	tr, err := NewAdCatalogTransformer(testRules())
	require.NoError(t, err)

	records, err := tr.Transform(&catalog.Snapshot{})
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = tr.Transform(nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAdCatalogTransformer_PriceFormat(t *testing.T) {
	tr, err := NewAdCatalogTransformer(testRules())
	require.NoError(t, err)

	priceFormat := regexp.MustCompile(`^EUR \d+\.\d{2}$`)
	prices := []string{"5", "9.9", "19.99", "120.5"}
	for _, p := range prices {
		product := simpleProduct()
		product.Price = decimal.RequireFromString(p)
		records, err := tr.Transform(&catalog.Snapshot{Products: []catalog.Product{product}})
		require.NoError(t, err)
		fv, _ := records[0].Get(AdFieldPrice)
		assert.Regexp(t, priceFormat, fv.String())
	}
}

func TestAdCatalogTransformer_BackorderAvailability(t *testing.T) {
	tr, err := NewAdCatalogTransformer(testRules())
	require.NoError(t, err)

	product := simpleProduct()
	product.StockStatus = catalog.StockStatusBackorder
	records, err := tr.Transform(&catalog.Snapshot{Products: []catalog.Product{product}})
	require.NoError(t, err)

	fv, _ := records[0].Get(AdFieldAvailability)
	assert.Equal(t, "available for order", fv.String())
}

func TestAdCatalogTransformer_NoCategoriesLeavesTypeUnset(t *testing.T) {
	tr, err := NewAdCatalogTransformer(testRules())
	require.NoError(t, err)

	product := simpleProduct()
	product.Categories = nil
	records, err := tr.Transform(&catalog.Snapshot{Products: []catalog.Product{product}})
	require.NoError(t, err)

	fv, ok := records[0].Get(AdFieldProductType)
	require.True(t, ok)
	assert.False(t, fv.IsApplicable())
	assert.Equal(t, "", fv.String())
}

func TestAdCatalogTransformer_EntityDecodedTitles(t *testing.T) {
	tr, err := NewAdCatalogTransformer(testRules())
	require.NoError(t, err)

	product := simpleProduct()
	product.Name = "Rock &amp; Roll"
	variable := variableProduct()
	variable.Name = "Rhythm &amp; Blues"

	records, err := tr.Transform(&catalog.Snapshot{Products: []catalog.Product{product, variable}})
	require.NoError(t, err)
	require.Len(t, records, 3)

	fv, _ := records[0].Get(AdFieldTitle)
	assert.Equal(t, "Rock & Roll", fv.String())
	fv, _ = records[1].Get(AdFieldTitle)
	assert.Equal(t, "Rhythm & Blues Vinyl", fv.String())
}

func TestAdCatalogTransformer_Deterministic(t *testing.T) {
	tr, err := NewAdCatalogTransformer(testRules())
	require.NoError(t, err)

	snap := &catalog.Snapshot{Products: []catalog.Product{simpleProduct(), variableProduct()}}
	first, err := tr.Transform(snap)
	require.NoError(t, err)
	second, err := tr.Transform(snap)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Values(), second[i].Values())
	}
}
