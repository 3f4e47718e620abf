package feed

import (
	"html"
	"strconv"

	"github.com/feedbridge/backend/internal/domain/catalog"
)

// AdCatalogTransformer produces advertising catalog feed records. A variable
// product is flattened into one record per variant; a simple product becomes
// exactly one record.
type AdCatalogTransformer struct {
	rules *Rules
}

// NewAdCatalogTransformer creates a transformer for the advertising schema
func NewAdCatalogTransformer(rules *Rules) (*AdCatalogTransformer, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &AdCatalogTransformer{rules: rules}, nil
}

// Schema returns the advertising catalog schema
func (t *AdCatalogTransformer) Schema() Schema {
	return AdCatalogSchema
}

// Transform maps the snapshot into advertising feed records. An empty
// snapshot yields an empty sequence, not an error.
func (t *AdCatalogTransformer) Transform(snap *catalog.Snapshot) ([]Record, error) {
	if snap.IsEmpty() {
		return []Record{}, nil
	}

	records := make([]Record, 0, snap.RecordCount())
	for i := range snap.Products {
		p := &snap.Products[i]
		if p.IsVariable() {
			for j := range p.Variants {
				records = append(records, t.variantRecord(p, &p.Variants[j]))
			}
			continue
		}
		records = append(records, t.productRecord(p))
	}
	return records, nil
}

func (t *AdCatalogTransformer) productRecord(p *catalog.Product) Record {
	rec := NewRecord(AdCatalogSchema)
	t.fillShared(rec, p)
	rec.Set(AdFieldID, Value(strconv.FormatInt(p.ID, 10)))
	rec.Set(AdFieldTitle, Value(html.UnescapeString(p.Name)))
	rec.Set(AdFieldAvailability, Value(availability(p.StockStatus)))
	rec.Set(AdFieldPrice, Value(t.rules.CurrencyCode+" "+formatAmount(p.Price)))
	rec.Set(AdFieldLink, Value(trackingLink(t.rules, p.Permalink, p.ID, 0)))
	rec.Set(AdFieldImageLink, Value(p.ImageURL))
	return *rec
}

func (t *AdCatalogTransformer) variantRecord(p *catalog.Product, v *catalog.Variant) Record {
	rec := NewRecord(AdCatalogSchema)
	t.fillShared(rec, p)
	rec.Set(AdFieldID, Value(strconv.FormatInt(v.ID, 10)))
	rec.Set(AdFieldTitle, Value(synthesizeTitle(p, v)))
	rec.Set(AdFieldAvailability, Value(availability(v.StockStatus)))
	rec.Set(AdFieldPrice, Value(t.rules.CurrencyCode+" "+formatAmount(v.Price)))
	rec.Set(AdFieldLink, Value(trackingLink(t.rules, p.Permalink, v.ID, v.ID)))
	rec.Set(AdFieldImageLink, Value(v.Image(p)))
	return *rec
}

// fillShared sets the fields every record inherits from the parent product
func (t *AdCatalogTransformer) fillShared(rec *Record, p *catalog.Product) {
	rec.Set(AdFieldDescription, Value(plainText(p.Description)))
	rec.Set(AdFieldCondition, Value("new"))
	rec.Set(AdFieldBrand, Value(t.rules.Brand))
	rec.Set(AdFieldIdentifierExists, Value("FALSE"))
	rec.Set(AdFieldGoogleProductCategory, Value(t.rules.GoogleProductCategory))
	if len(p.Categories) == 0 {
		rec.Set(AdFieldProductType, NotApplicable())
	} else {
		rec.Set(AdFieldProductType, Value(productTypePath(p.Categories)))
	}
}

var _ Transformer = (*AdCatalogTransformer)(nil)
