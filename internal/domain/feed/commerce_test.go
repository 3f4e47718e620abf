package feed

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbridge/backend/internal/domain/catalog"
)

func fieldOf(t *testing.T, rec Record, field string) string {
	t.Helper()
	fv, ok := rec.Get(field)
	require.True(t, ok, "field %s not declared", field)
	return fv.String()
}

func transformOne(t *testing.T, p catalog.Product) Record {
	t.Helper()
	tr, err := NewCommerceTransformer(testRules())
	require.NoError(t, err)
	records, err := tr.Transform(&catalog.Snapshot{Products: []catalog.Product{p}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	return records[0]
}

func TestCommerceTransformer_SimpleProduct(t *testing.T) {
	rec := transformOne(t, simpleProduct())

	assert.Equal(t, "midnight-sessions", fieldOf(t, rec, ComFieldHandle))
	assert.Equal(t, "Midnight Sessions", fieldOf(t, rec, ComFieldTitle))
	assert.Equal(t, "Example Records", fieldOf(t, rec, ComFieldVendor))
	assert.Equal(t, "Title", fieldOf(t, rec, ComFieldOption1Name))
	assert.Equal(t, "Default Title", fieldOf(t, rec, ComFieldOption1Value))
	assert.Equal(t, "", fieldOf(t, rec, ComFieldOption2Name))
	assert.Equal(t, "LP-001", fieldOf(t, rec, ComFieldVariantSKU))
	assert.Equal(t, "19.90", fieldOf(t, rec, ComFieldVariantPrice))
	assert.Equal(t, "12", fieldOf(t, rec, ComFieldInventoryQty))
	assert.Equal(t, "shopify", fieldOf(t, rec, ComFieldInventoryTracker))
	assert.Equal(t, "deny", fieldOf(t, rec, ComFieldInventoryPolicy))
	assert.Equal(t, "manual", fieldOf(t, rec, ComFieldFulfillmentService))
	assert.Equal(t, "true", fieldOf(t, rec, ComFieldPublished))
	assert.Equal(t, "active", fieldOf(t, rec, ComFieldStatus))
	assert.Equal(t, "https://cdn.example.com/midnight.jpg", fieldOf(t, rec, ComFieldImageSrc))
	assert.Equal(t, "1", fieldOf(t, rec, ComFieldImagePosition))
	assert.Equal(t, "new", fieldOf(t, rec, ComFieldGoogleCondition))
	assert.Equal(t, "g", fieldOf(t, rec, ComFieldWeightUnit))
	assert.Equal(t, "3 - 5 Werktage", fieldOf(t, rec, ComFieldDeliveryTime))
	assert.Equal(t, "", fieldOf(t, rec, ComFieldReleaseDate))
}

func TestCommerceTransformer_TypeAndMapping(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(p *catalog.Product)
		wantType     string
		wantCategory string
		wantGrams    string
	}{
		{
			name:         "first category as type",
			mutate:       func(p *catalog.Product) {},
			wantType:     "Vinyl",
			wantCategory: "Media > Music & Sound Recordings > Records & LPs",
			wantGrams:    "1000",
		},
		{
			name: "apparel keyword wins",
			mutate: func(p *catalog.Product) {
				p.Name = "Logo T-Shirt Black"
			},
			wantType:     "Shirt",
			wantCategory: "Apparel & Accessories > Clothing > Shirts & Tops",
			wantGrams:    "100",
		},
		{
			name: "unmapped type falls back to default bucket",
			mutate: func(p *catalog.Product) {
				p.Categories = []string{"Posters"}
			},
			wantType:     "Posters",
			wantCategory: "Arts & Entertainment > Hobbies & Creative Arts > Collectibles",
			wantGrams:    "100",
		},
		{
			name: "no categories leaves type unset",
			mutate: func(p *catalog.Product) {
				p.Categories = nil
			},
			wantType:     "",
			wantCategory: "Arts & Entertainment > Hobbies & Creative Arts > Collectibles",
			wantGrams:    "100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := simpleProduct()
			tt.mutate(&product)
			rec := transformOne(t, product)
			assert.Equal(t, tt.wantType, fieldOf(t, rec, ComFieldType))
			assert.Equal(t, tt.wantCategory, fieldOf(t, rec, ComFieldProductCategory))
			assert.Equal(t, tt.wantGrams, fieldOf(t, rec, ComFieldVariantGrams))
		})
	}
}

func TestCommerceTransformer_SoundCarrierAttributeType(t *testing.T) {
	tr, err := NewCommerceTransformer(testRules())
	require.NoError(t, err)

	records, err := tr.Transform(&catalog.Snapshot{Products: []catalog.Product{variableProduct()}})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Vinyl", fieldOf(t, records[0], ComFieldType))
	assert.Equal(t, "1000", fieldOf(t, records[0], ComFieldVariantGrams))
	assert.Equal(t, "CD", fieldOf(t, records[1], ComFieldType))
	// CD has no weight entry in the test mapping
	assert.Equal(t, "100", fieldOf(t, records[1], ComFieldVariantGrams))
}

func TestCommerceTransformer_VariantHandles(t *testing.T) {
	tr, err := NewCommerceTransformer(testRules())
	require.NoError(t, err)

	records, err := tr.Transform(&catalog.Snapshot{Products: []catalog.Product{variableProduct()}})
	require.NoError(t, err)

	assert.Equal(t, "midnight-sessions-set-set-001-lp", fieldOf(t, records[0], ComFieldHandle))
	assert.Equal(t, "midnight-sessions-set-set-001-cd", fieldOf(t, records[1], ComFieldHandle))
	assert.Equal(t, "sound-carrier", fieldOf(t, records[0], ComFieldOption1Name))
	assert.Equal(t, "Vinyl", fieldOf(t, records[0], ComFieldOption1Value))
}

func TestCommerceTransformer_ExhaustedStockDowngradesToDraft(t *testing.T) {
	product := simpleProduct()
	product.StockStatus = catalog.StockStatusOutOfStock

	rec := transformOne(t, product)
	assert.Equal(t, "draft", fieldOf(t, rec, ComFieldStatus))
	assert.Equal(t, "false", fieldOf(t, rec, ComFieldPublished))
	assert.Equal(t, "0", fieldOf(t, rec, ComFieldInventoryQty))
}

func TestCommerceTransformer_CompareAtPrice(t *testing.T) {
	tests := []struct {
		name    string
		regular *decimal.Decimal
		sale    *decimal.Decimal
		want    string
	}{
		{"regular above sale", decimalPtr("24.90"), decimalPtr("19.90"), "24.90"},
		{"regular equals sale", decimalPtr("19.90"), decimalPtr("19.90"), ""},
		{"regular below sale", decimalPtr("15.00"), decimalPtr("19.90"), ""},
		{"no sale price", decimalPtr("24.90"), nil, ""},
		{"no regular price", nil, decimalPtr("19.90"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := simpleProduct()
			product.RegularPrice = tt.regular
			product.SalePrice = tt.sale
			rec := transformOne(t, product)
			assert.Equal(t, tt.want, fieldOf(t, rec, ComFieldCompareAtPrice))
		})
	}
}

func TestCommerceTransformer_Preorder(t *testing.T) {
	release := time.Date(2026, 10, 30, 0, 0, 0, 0, time.UTC)
	product := simpleProduct()
	product.DeliveryTimeTerm = "Vorbestellung / Preorder"
	product.ReleaseDate = &release
	product.Tags = []string{"limited"}

	rec := transformOne(t, product)
	assert.Equal(t, "PREORDER Midnight Sessions", fieldOf(t, rec, ComFieldTitle))
	assert.Equal(t, "limited, preorder", fieldOf(t, rec, ComFieldTags))
	assert.Equal(t, "Vorbestellung", fieldOf(t, rec, ComFieldDeliveryTime))
	assert.Equal(t, "2026-10-30", fieldOf(t, rec, ComFieldReleaseDate))
}

func TestCommerceTransformer_TransformInputs(t *testing.T) {
	tr, err := NewCommerceTransformer(testRules())
	require.NoError(t, err)

	inputs, err := tr.TransformInputs(&catalog.Snapshot{Products: []catalog.Product{simpleProduct()}})
	require.NoError(t, err)
	require.Len(t, inputs, 1)

	assert.Equal(t, int64(101), inputs[0].SourceID)
	input := inputs[0].Input
	assert.Equal(t, "midnight-sessions", input.Handle)
	assert.Equal(t, "Midnight Sessions", input.Title)
	assert.Equal(t, "Example Records", input.Vendor)
	assert.Equal(t, "Vinyl", input.ProductType)
	assert.Equal(t, "ACTIVE", input.Status)
	assert.Equal(t, []string{"Title"}, input.Options)
	require.NotNil(t, input.SEO)
	assert.Equal(t, "Midnight Sessions", input.SEO.Title)
	require.Len(t, input.Images, 1)
	assert.Equal(t, "https://cdn.example.com/midnight.jpg", input.Images[0].Src)

	require.Len(t, input.Variants, 1)
	variant := input.Variants[0]
	assert.Equal(t, "LP-001", variant.SKU)
	assert.Equal(t, "19.90", variant.Price)
	assert.Equal(t, []string{"Default Title"}, variant.Options)
	assert.Equal(t, 1000, variant.Weight)
	assert.Equal(t, "GRAMS", variant.WeightUnit)
	assert.Equal(t, "SHOPIFY", variant.InventoryManagement)
	assert.Equal(t, "DENY", variant.InventoryPolicy)
	require.NotNil(t, variant.InventoryQuantities)
	assert.Equal(t, 12, *variant.InventoryQuantities)
	assert.True(t, variant.InventoryItem.Tracked)
	assert.True(t, variant.RequiresShipping)
	assert.True(t, variant.Taxable)

	require.Len(t, input.Metafields, 1)
	assert.Equal(t, "custom", input.Metafields[0].Namespace)
	assert.Equal(t, "delivery_time", input.Metafields[0].Key)
	assert.Equal(t, "single_line_text_field", input.Metafields[0].Type)
	assert.Equal(t, "3 - 5 Werktage", input.Metafields[0].Value)
}

func TestCommerceTransformer_InputMetafieldsForPreorder(t *testing.T) {
	tr, err := NewCommerceTransformer(testRules())
	require.NoError(t, err)

	release := time.Date(2026, 12, 4, 0, 0, 0, 0, time.UTC)
	product := simpleProduct()
	product.DeliveryTimeTerm = "Vorbestellung / Preorder"
	product.ReleaseDate = &release

	inputs, err := tr.TransformInputs(&catalog.Snapshot{Products: []catalog.Product{product}})
	require.NoError(t, err)
	require.Len(t, inputs, 1)

	metafields := inputs[0].Input.Metafields
	require.Len(t, metafields, 2)
	assert.Equal(t, "delivery_time", metafields[0].Key)
	assert.Equal(t, "Vorbestellung", metafields[0].Value)
	assert.Equal(t, "release_date", metafields[1].Key)
	assert.Equal(t, "date", metafields[1].Type)
	assert.Equal(t, "2026-12-04", metafields[1].Value)
}

func TestCommerceTransformer_MaxThreeOptions(t *testing.T) {
	product := variableProduct()
	product.Variants = product.Variants[:1]
	product.Variants[0].Attributes = []catalog.Attribute{
		{Name: "sound-carrier", Value: "vinyl", Label: "Vinyl"},
		{Name: "Color", Value: "black", Label: "Black"},
		{Name: "Edition", Value: "deluxe", Label: "Deluxe"},
		{Name: "Region", Value: "eu", Label: "EU"},
	}

	tr, err := NewCommerceTransformer(testRules())
	require.NoError(t, err)
	inputs, err := tr.TransformInputs(&catalog.Snapshot{Products: []catalog.Product{product}})
	require.NoError(t, err)
	require.Len(t, inputs, 1)

	assert.Equal(t, []string{"sound-carrier", "Color", "Edition"}, inputs[0].Input.Options)
	assert.Equal(t, []string{"Vinyl", "Black", "Deluxe"}, inputs[0].Input.Variants[0].Options)
}

func TestCommerceTransformer_VariantImageResolution(t *testing.T) {
	tr, err := NewCommerceTransformer(testRules())
	require.NoError(t, err)

	product := variableProduct()
	product.GalleryImageURLs = []string{
		"https://cdn.example.com/set-lp.jpg",
		"https://cdn.example.com/set-back.jpg",
	}

	inputs, err := tr.TransformInputs(&catalog.Snapshot{Products: []catalog.Product{product}})
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	// A variant with its own image leads the list with it, the gallery follows
	// with the resolved entry deduplicated
	withOwn := inputs[0].Input.Images
	require.Len(t, withOwn, 3)
	assert.Equal(t, "https://cdn.example.com/set-lp.jpg", withOwn[0].Src)
	assert.Equal(t, "https://cdn.example.com/set.jpg", withOwn[1].Src)
	assert.Equal(t, "https://cdn.example.com/set-back.jpg", withOwn[2].Src)

	// A variant without its own image leads with the parent primary
	withoutOwn := inputs[1].Input.Images
	require.Len(t, withoutOwn, 3)
	assert.Equal(t, "https://cdn.example.com/set.jpg", withoutOwn[0].Src)

	records, err := tr.Transform(&catalog.Snapshot{Products: []catalog.Product{product}})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "https://cdn.example.com/set-lp.jpg", fieldOf(t, records[0], ComFieldImageSrc))
	assert.Equal(t, "https://cdn.example.com/set.jpg", fieldOf(t, records[1], ComFieldImageSrc))
}

func TestCommerceTransformer_EntityDecodedTitle(t *testing.T) {
	product := simpleProduct()
	product.Name = "Rock &amp; Roll"

	rec := transformOne(t, product)
	assert.Equal(t, "Rock & Roll", fieldOf(t, rec, ComFieldTitle))
	assert.Equal(t, "Rock & Roll", fieldOf(t, rec, ComFieldSEOTitle))

	tr, err := NewCommerceTransformer(testRules())
	require.NoError(t, err)
	inputs, err := tr.TransformInputs(&catalog.Snapshot{Products: []catalog.Product{product}})
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, "Rock & Roll", inputs[0].Input.Title)
	require.NotNil(t, inputs[0].Input.SEO)
	assert.Equal(t, "Rock & Roll", inputs[0].Input.SEO.Title)
}

func TestCommerceTransformer_EntityDecodedOptionValues(t *testing.T) {
	product := variableProduct()
	product.Name = "Rhythm &amp; Blues"
	product.Variants = product.Variants[:1]
	product.Variants[0].Attributes = []catalog.Attribute{
		{Name: "edition", Value: "black-gold", Label: "Black &amp; Gold"},
	}

	tr, err := NewCommerceTransformer(testRules())
	require.NoError(t, err)
	inputs, err := tr.TransformInputs(&catalog.Snapshot{Products: []catalog.Product{product}})
	require.NoError(t, err)
	require.Len(t, inputs, 1)

	assert.Equal(t, "Rhythm & Blues Black & Gold", inputs[0].Input.Title)
	assert.Equal(t, []string{"Black & Gold"}, inputs[0].Input.Variants[0].Options)
}

func TestCommerceTransformer_EmptySnapshot(t *testing.T) {
	tr, err := NewCommerceTransformer(testRules())
	require.NoError(t, err)

	records, err := tr.Transform(&catalog.Snapshot{})
	require.NoError(t, err)
	assert.Empty(t, records)

	inputs, err := tr.TransformInputs(&catalog.Snapshot{})
	require.NoError(t, err)
	assert.Empty(t, inputs)
}

func TestMappingTable_CaseInsensitiveLookup(t *testing.T) {
	mapping := MappingTable{
		Categories:      map[string]string{"vinyl": "Media > Records"},
		DefaultCategory: "Default",
		WeightGramsByType: map[string]int{
			"vinyl": 1000,
		},
	}
	require.NoError(t, mapping.Validate())

	assert.Equal(t, "Media > Records", mapping.Category("Vinyl"))
	assert.Equal(t, "Media > Records", mapping.Category("VINYL"))
	assert.Equal(t, "Default", mapping.Category("Tape"))
	assert.Equal(t, 1000, mapping.WeightGrams("Vinyl"))
	assert.Equal(t, 100, mapping.WeightGrams("Tape"))
}
