package feed

import (
	"html"
	"strconv"
	"strings"

	"github.com/feedbridge/backend/internal/domain/catalog"
)

// Commerce platform constants fixed by the destination import contract
const (
	statusActive  = "ACTIVE"
	statusDraft   = "DRAFT"
	weightUnit    = "GRAMS"
	invManagement = "SHOPIFY"
	invPolicyDeny = "DENY"
	fulfillment   = "manual"
	preorderTag   = "preorder"
	preorderTitle = "PREORDER "
	releaseFormat = "2006-01-02"
)

// SEOInput is the search metadata block of a product input
type SEOInput struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// ImageInput references one product image by source URL
type ImageInput struct {
	Src string `json:"src"`
}

// InventoryItemInput controls inventory tracking for a variant
type InventoryItemInput struct {
	Tracked bool `json:"tracked"`
}

// MetafieldInput is one namespaced metadata value on a product
type MetafieldInput struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

// VariantInput is the single purchasable entry of a product input
type VariantInput struct {
	SKU                 string             `json:"sku,omitempty"`
	Price               string             `json:"price,omitempty"`
	CompareAtPrice      string             `json:"compareAtPrice,omitempty"`
	Options             []string           `json:"options,omitempty"`
	Weight              int                `json:"weight"`
	WeightUnit          string             `json:"weightUnit"`
	InventoryManagement string             `json:"inventoryManagement"`
	InventoryPolicy     string             `json:"inventoryPolicy"`
	InventoryQuantities *int               `json:"inventoryQuantity,omitempty"`
	InventoryItem       InventoryItemInput `json:"inventoryItem"`
	RequiresShipping    bool               `json:"requiresShipping"`
	Taxable             bool               `json:"taxable"`
	FulfillmentService  string             `json:"fulfillmentService"`
}

// ProductInput is the mutation input object of one import line. Empty scalar
// fields are omitted from the encoded object; the destination rejects empty
// strings for typed fields.
type ProductInput struct {
	Handle          string           `json:"handle,omitempty"`
	Title           string           `json:"title,omitempty"`
	DescriptionHTML string           `json:"descriptionHtml,omitempty"`
	Vendor          string           `json:"vendor,omitempty"`
	ProductType     string           `json:"productType,omitempty"`
	Tags            string           `json:"tags,omitempty"`
	Status          string           `json:"status,omitempty"`
	SEO             *SEOInput        `json:"seo,omitempty"`
	Images          []ImageInput     `json:"images,omitempty"`
	Options         []string         `json:"options,omitempty"`
	Variants        []VariantInput   `json:"variants,omitempty"`
	Metafields      []MetafieldInput `json:"metafields,omitempty"`
}

// ImportInput pairs a mutation input with the source entity it came from, so
// serialization failures can name the failing record.
type ImportInput struct {
	SourceID int64
	Input    ProductInput
}

// CommerceTransformer produces commerce-platform import records: a typed
// mutation input per purchasable entity, plus a tabular projection of the
// same derivations for the backup feed file.
//
// Out-of-stock policy: a record whose stock is exhausted (explicit
// out-of-stock or quantity <= 0) is exported with the draft status and a zero
// quantity; it is never dropped.
type CommerceTransformer struct {
	rules *Rules
}

// NewCommerceTransformer creates a transformer for the commerce schema
func NewCommerceTransformer(rules *Rules) (*CommerceTransformer, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &CommerceTransformer{rules: rules}, nil
}

// Schema returns the commerce platform schema
func (t *CommerceTransformer) Schema() Schema {
	return CommerceSchema
}

// Transform maps the snapshot into tabular commerce records
func (t *CommerceTransformer) Transform(snap *catalog.Snapshot) ([]Record, error) {
	rows := t.rows(snap)
	records := make([]Record, 0, len(rows))
	for i := range rows {
		records = append(records, *rows[i].record())
	}
	return records, nil
}

// TransformInputs maps the snapshot into typed mutation inputs for the
// line-delimited import payload.
func (t *CommerceTransformer) TransformInputs(snap *catalog.Snapshot) ([]ImportInput, error) {
	rows := t.rows(snap)
	inputs := make([]ImportInput, 0, len(rows))
	for i := range rows {
		inputs = append(inputs, ImportInput{SourceID: rows[i].sourceID, Input: rows[i].input()})
	}
	return inputs, nil
}

// commerceRow holds the derived values one record projects from; both the
// tabular record and the mutation input are built from the same row.
type commerceRow struct {
	sourceID       int64
	handle         string
	title          string
	bodyHTML       string
	vendor         string
	category       string
	resolvedType   string
	tags           []string
	status         string
	sku            string
	grams          int
	quantity       int
	price          string
	compareAt      string
	optionNames    []string
	optionValues   []string
	images         []string
	variantImage   string
	seoTitle       string
	seoDescription string
	deliveryTime   string
	releaseDate    string
}

func (t *CommerceTransformer) rows(snap *catalog.Snapshot) []commerceRow {
	if snap.IsEmpty() {
		return nil
	}
	rows := make([]commerceRow, 0, snap.RecordCount())
	for i := range snap.Products {
		p := &snap.Products[i]
		if p.IsVariable() {
			for j := range p.Variants {
				rows = append(rows, t.buildRow(p, &p.Variants[j]))
			}
			continue
		}
		rows = append(rows, t.buildRow(p, nil))
	}
	return rows
}

// buildRow applies the shared derivations for one purchasable entity; variant
// is nil for a simple product.
func (t *CommerceTransformer) buildRow(p *catalog.Product, v *catalog.Variant) commerceRow {
	row := commerceRow{
		vendor:   t.rules.Brand,
		bodyHTML: descriptionHTML(p.Description),
		tags:     append([]string(nil), p.Tags...),
	}

	if v != nil {
		row.sourceID = v.ID
		row.title = synthesizeTitle(p, v)
		row.sku = v.SKU
		row.handle = sanitizeHandle(p.Slug)
		if v.SKU != "" {
			row.handle += "-" + sanitizeHandle(v.SKU)
		}
		row.price = formatAmount(v.Price)
		if ca := compareAtPrice(v.RegularPrice, v.SalePrice); ca != nil {
			row.compareAt = formatAmount(*ca)
		}
		row.quantity = v.AvailableQuantity()
		row.status = exportStatus(v.IsExhausted())
		row.variantImage = v.Image(p)
		for _, attr := range v.Attributes {
			if len(row.optionNames) == 3 {
				break
			}
			row.optionNames = append(row.optionNames, attr.Name)
			row.optionValues = append(row.optionValues, html.UnescapeString(attr.DisplayValue()))
		}
	} else {
		row.sourceID = p.ID
		row.title = html.UnescapeString(p.Name)
		row.sku = p.SKU
		row.handle = sanitizeHandle(p.Slug)
		row.price = formatAmount(p.Price)
		if ca := compareAtPrice(p.RegularPrice, p.SalePrice); ca != nil {
			row.compareAt = formatAmount(*ca)
		}
		row.quantity = p.AvailableQuantity()
		row.status = exportStatus(p.IsExhausted())
		row.variantImage = p.ImageURL
		row.optionNames = []string{"Title"}
		row.optionValues = []string{"Default Title"}
	}
	row.images = leadImages(row.variantImage, p.Images())

	row.resolvedType = resolveType(t.rules, row.title, p, v)
	row.category = t.rules.Mapping.Category(row.resolvedType)
	row.grams = t.rules.Mapping.WeightGrams(row.resolvedType)

	if isPreorder(t.rules, p) {
		row.title = preorderTitle + row.title
		row.tags = append(row.tags, preorderTag)
		row.deliveryTime = t.rules.PreorderLabel
	} else {
		row.deliveryTime = t.rules.DefaultDeliveryTime
	}
	if p.ReleaseDate != nil {
		row.releaseDate = p.ReleaseDate.Format(releaseFormat)
	}

	row.seoTitle = row.title
	if p.ShortDescription != "" {
		row.seoDescription = truncateSEO(plainText(p.ShortDescription))
	} else {
		row.seoDescription = truncateSEO(plainText(p.Description))
	}
	return row
}

// leadImages orders the record's image list: the resolved image (the
// variant's own, else the parent primary) first, the remaining gallery after
// it with the resolved entry deduplicated.
func leadImages(resolved string, gallery []string) []string {
	if resolved == "" {
		return gallery
	}
	out := make([]string, 0, len(gallery)+1)
	out = append(out, resolved)
	for _, src := range gallery {
		if src != resolved {
			out = append(out, src)
		}
	}
	return out
}

// exportStatus applies the out-of-stock downgrade policy
func exportStatus(exhausted bool) string {
	if exhausted {
		return statusDraft
	}
	return statusActive
}

// record projects the row onto the tabular commerce schema
func (r *commerceRow) record() *Record {
	rec := NewRecord(CommerceSchema)
	rec.Set(ComFieldHandle, Value(r.handle))
	rec.Set(ComFieldTitle, Value(r.title))
	rec.Set(ComFieldBodyHTML, Value(r.bodyHTML))
	rec.Set(ComFieldVendor, Value(r.vendor))
	rec.Set(ComFieldProductCategory, Value(r.category))
	if r.resolvedType == "" {
		rec.Set(ComFieldType, NotApplicable())
	} else {
		rec.Set(ComFieldType, Value(r.resolvedType))
	}
	rec.Set(ComFieldTags, Value(strings.Join(r.tags, ", ")))
	rec.Set(ComFieldPublished, Value(strconv.FormatBool(r.status == statusActive)))
	setOption(rec, ComFieldOption1Name, ComFieldOption1Value, r, 0)
	setOption(rec, ComFieldOption2Name, ComFieldOption2Value, r, 1)
	setOption(rec, ComFieldOption3Name, ComFieldOption3Value, r, 2)
	rec.Set(ComFieldVariantSKU, Value(r.sku))
	rec.Set(ComFieldVariantGrams, Value(strconv.Itoa(r.grams)))
	rec.Set(ComFieldInventoryTracker, Value("shopify"))
	rec.Set(ComFieldInventoryQty, Value(strconv.Itoa(r.quantity)))
	rec.Set(ComFieldInventoryPolicy, Value("deny"))
	rec.Set(ComFieldFulfillmentService, Value(fulfillment))
	rec.Set(ComFieldVariantPrice, Value(r.price))
	if r.compareAt == "" {
		rec.Set(ComFieldCompareAtPrice, NotApplicable())
	} else {
		rec.Set(ComFieldCompareAtPrice, Value(r.compareAt))
	}
	rec.Set(ComFieldRequiresShipping, Value("true"))
	rec.Set(ComFieldTaxable, Value("true"))
	rec.Set(ComFieldBarcode, NotApplicable())
	if len(r.images) > 0 {
		rec.Set(ComFieldImageSrc, Value(r.images[0]))
		rec.Set(ComFieldImagePosition, Value("1"))
	}
	rec.Set(ComFieldImageAltText, NotApplicable())
	rec.Set(ComFieldGiftCard, Value("false"))
	rec.Set(ComFieldSEOTitle, Value(r.seoTitle))
	rec.Set(ComFieldSEODescription, Value(r.seoDescription))
	rec.Set(ComFieldGoogleCategory, Value(r.category))
	rec.Set(ComFieldGoogleCondition, Value("new"))
	rec.Set(ComFieldVariantImage, Value(r.variantImage))
	rec.Set(ComFieldWeightUnit, Value("g"))
	rec.Set(ComFieldCostPerItem, NotApplicable())
	rec.Set(ComFieldStatus, Value(strings.ToLower(r.status)))
	rec.Set(ComFieldDeliveryTime, Value(r.deliveryTime))
	if r.releaseDate == "" {
		rec.Set(ComFieldReleaseDate, NotApplicable())
	} else {
		rec.Set(ComFieldReleaseDate, Value(r.releaseDate))
	}
	return rec
}

func setOption(rec *Record, nameField, valueField string, r *commerceRow, idx int) {
	if idx >= len(r.optionNames) {
		rec.Set(nameField, NotApplicable())
		rec.Set(valueField, NotApplicable())
		return
	}
	rec.Set(nameField, Value(r.optionNames[idx]))
	rec.Set(valueField, Value(r.optionValues[idx]))
}

// input projects the row onto the typed mutation input
func (r *commerceRow) input() ProductInput {
	qty := r.quantity
	variant := VariantInput{
		SKU:                 r.sku,
		Price:               r.price,
		CompareAtPrice:      r.compareAt,
		Options:             r.optionValues,
		Weight:              r.grams,
		WeightUnit:          weightUnit,
		InventoryManagement: invManagement,
		InventoryPolicy:     invPolicyDeny,
		InventoryQuantities: &qty,
		InventoryItem:       InventoryItemInput{Tracked: true},
		RequiresShipping:    true,
		Taxable:             true,
		FulfillmentService:  fulfillment,
	}

	images := make([]ImageInput, 0, len(r.images))
	for _, src := range r.images {
		images = append(images, ImageInput{Src: src})
	}

	input := ProductInput{
		Handle:          r.handle,
		Title:           r.title,
		DescriptionHTML: r.bodyHTML,
		Vendor:          r.vendor,
		ProductType:     r.resolvedType,
		Tags:            strings.Join(r.tags, ", "),
		Status:          r.status,
		SEO:             &SEOInput{Title: r.seoTitle, Description: r.seoDescription},
		Images:          images,
		Options:         r.optionNames,
		Variants:        []VariantInput{variant},
	}
	if r.deliveryTime != "" {
		input.Metafields = append(input.Metafields, MetafieldInput{
			Namespace: "custom", Key: "delivery_time",
			Type: "single_line_text_field", Value: r.deliveryTime,
		})
	}
	if r.releaseDate != "" {
		input.Metafields = append(input.Metafields, MetafieldInput{
			Namespace: "custom", Key: "release_date",
			Type: "date", Value: r.releaseDate,
		})
	}
	return input
}

var _ Transformer = (*CommerceTransformer)(nil)
