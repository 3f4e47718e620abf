package catalogsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/feedbridge/backend/internal/domain/catalog"
)

// maxSourceResponseSize limits the response body size to prevent memory
// exhaustion
const maxSourceResponseSize = 10 * 1024 * 1024 // 10MB max response

// deliveryTimeMetaKey is the product metadata key carrying the delivery-time
// term when the source shop stores it as a meta field instead of a taxonomy.
const deliveryTimeMetaKey = "product_delivery_time"

// releaseDateMetaKey is the product metadata key carrying the scheduled
// release date.
const releaseDateMetaKey = "release_date"

// WooCommerceAdapter materializes catalog snapshots from a WooCommerce
// store's REST API. Only published products are fetched; the snapshot is
// complete before any transformer sees it.
type WooCommerceAdapter struct {
	config *WooCommerceConfig
	client *http.Client
}

// NewWooCommerceAdapter creates a new source adapter with the given
// configuration.
func NewWooCommerceAdapter(config *WooCommerceConfig) (*WooCommerceAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &WooCommerceAdapter{
		config: config,
		client: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// FetchSnapshot fetches all published products in scope, including the
// variants of variable products, and returns them as one immutable snapshot.
func (a *WooCommerceAdapter) FetchSnapshot(ctx context.Context, scope catalog.Scope) (*catalog.Snapshot, error) {
	categoryIDs, err := a.resolveScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	var raw []wcProduct
	if len(categoryIDs) == 0 {
		raw, err = a.fetchProducts(ctx, 0)
		if err != nil {
			return nil, err
		}
	} else {
		// One query per category; a product assigned to several in-scope
		// categories appears once.
		seen := make(map[int64]struct{})
		for _, id := range categoryIDs {
			page, err := a.fetchProducts(ctx, id)
			if err != nil {
				return nil, err
			}
			for _, p := range page {
				if _, ok := seen[p.ID]; ok {
					continue
				}
				seen[p.ID] = struct{}{}
				raw = append(raw, p)
			}
		}
	}

	products := make([]catalog.Product, 0, len(raw))
	for i := range raw {
		p, err := a.toDomainProduct(ctx, &raw[i])
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}

	return &catalog.Snapshot{
		Products: products,
		TakenAt:  time.Now(),
	}, nil
}

// resolveScope returns the category IDs to query, empty for the whole catalog
func (a *WooCommerceAdapter) resolveScope(ctx context.Context, scope catalog.Scope) ([]int64, error) {
	if scope.CategoryID == 0 {
		return nil, nil
	}
	if !scope.IncludeChildren {
		return []int64{scope.CategoryID}, nil
	}

	categories, err := a.fetchCategories(ctx)
	if err != nil {
		return nil, err
	}

	children := make(map[int64][]int64, len(categories))
	for _, c := range categories {
		children[c.Parent] = append(children[c.Parent], c.ID)
	}

	ids := []int64{scope.CategoryID}
	for queue := []int64{scope.CategoryID}; len(queue) > 0; {
		id := queue[0]
		queue = queue[1:]
		for _, child := range children[id] {
			ids = append(ids, child)
			queue = append(queue, child)
		}
	}
	return ids, nil
}

// fetchProducts fetches all published products, optionally filtered by
// category, following pagination to the end.
func (a *WooCommerceAdapter) fetchProducts(ctx context.Context, categoryID int64) ([]wcProduct, error) {
	var all []wcProduct
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("status", "publish")
		params.Set("per_page", strconv.Itoa(a.config.PageSize))
		params.Set("page", strconv.Itoa(page))
		if categoryID != 0 {
			params.Set("category", strconv.FormatInt(categoryID, 10))
		}

		var batch []wcProduct
		if err := a.doRequest(ctx, "/products", params, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < a.config.PageSize {
			return all, nil
		}
	}
}

// fetchVariations fetches all variations of one variable product
func (a *WooCommerceAdapter) fetchVariations(ctx context.Context, productID int64) ([]wcVariation, error) {
	var all []wcVariation
	path := fmt.Sprintf("/products/%d/variations", productID)
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("per_page", strconv.Itoa(a.config.PageSize))
		params.Set("page", strconv.Itoa(page))

		var batch []wcVariation
		if err := a.doRequest(ctx, path, params, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < a.config.PageSize {
			return all, nil
		}
	}
}

// fetchCategories fetches the full category tree
func (a *WooCommerceAdapter) fetchCategories(ctx context.Context) ([]wcCategory, error) {
	var all []wcCategory
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("per_page", strconv.Itoa(a.config.PageSize))
		params.Set("page", strconv.Itoa(page))

		var batch []wcCategory
		if err := a.doRequest(ctx, "/products/categories", params, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < a.config.PageSize {
			return all, nil
		}
	}
}

// toDomainProduct converts a wire product, fetching its variations when it is
// variable.
func (a *WooCommerceAdapter) toDomainProduct(ctx context.Context, p *wcProduct) (*catalog.Product, error) {
	product := &catalog.Product{
		ID:               p.ID,
		SKU:              p.SKU,
		Name:             p.Name,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Permalink:        p.Permalink,
		Slug:             p.Slug,
		Status:           p.Status,
		Price:            amountOrZero(p.Price),
		RegularPrice:     parseAmount(p.RegularPrice),
		SalePrice:        parseAmount(p.SalePrice),
		StockStatus:      toStockStatus(p.StockStatus),
		StockQuantity:    p.StockQuantity,
		Weight:           p.Weight,
		Kind:             toKind(p.Type),
		DeliveryTimeTerm: deliveryTimeTerm(p),
		ReleaseDate:      parseReleaseDate(metaString(p.MetaData, releaseDateMetaKey)),
	}

	for _, c := range p.Categories {
		product.Categories = append(product.Categories, c.Name)
	}
	for _, t := range p.Tags {
		product.Tags = append(product.Tags, t.Name)
	}
	for i, img := range p.Images {
		if i == 0 {
			product.ImageURL = img.Src
			continue
		}
		product.GalleryImageURLs = append(product.GalleryImageURLs, img.Src)
	}

	if product.Kind == catalog.ProductKindVariable {
		variations, err := a.fetchVariations(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		product.Variants = make([]catalog.Variant, 0, len(variations))
		for i := range variations {
			product.Variants = append(product.Variants, toDomainVariant(p, &variations[i]))
		}
	}
	return product, nil
}

// toDomainVariant converts a wire variation, resolving attribute labels
// against the parent's attribute options.
func toDomainVariant(parent *wcProduct, v *wcVariation) catalog.Variant {
	variant := catalog.Variant{
		ID:            v.ID,
		ParentID:      parent.ID,
		SKU:           v.SKU,
		Name:          parent.Name,
		Price:         amountOrZero(v.Price),
		RegularPrice:  parseAmount(v.RegularPrice),
		SalePrice:     parseAmount(v.SalePrice),
		StockStatus:   toStockStatus(v.StockStatus),
		StockQuantity: v.StockQuantity,
		Weight:        v.Weight,
	}
	if v.Image != nil {
		variant.ImageURL = v.Image.Src
	}
	for _, attr := range v.Attributes {
		variant.Attributes = append(variant.Attributes, catalog.Attribute{
			Name:  attr.Name,
			Value: attr.Option,
			Label: resolveAttributeLabel(parent, attr),
		})
	}
	return variant
}

// resolveAttributeLabel finds the parent's display term matching a variation's
// raw attribute token. The source sends the token as a slug when the attribute
// is a global taxonomy; the parent's option list carries the term names.
func resolveAttributeLabel(parent *wcProduct, attr wcVariationAttribute) string {
	for _, pa := range parent.Attributes {
		if !strings.EqualFold(pa.Name, attr.Name) {
			continue
		}
		for _, option := range pa.Options {
			if strings.EqualFold(option, attr.Option) || strings.EqualFold(slugify(option), attr.Option) {
				return option
			}
		}
	}
	return ""
}

// slugify approximates the source system's term slug derivation
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "-")
}

// deliveryTimeTerm extracts the delivery-time term from the product's
// attributes, falling back to the meta field of the same name.
func deliveryTimeTerm(p *wcProduct) string {
	for _, attr := range p.Attributes {
		if !strings.EqualFold(attr.Name, "Lieferzeit") && !strings.EqualFold(attr.Name, deliveryTimeMetaKey) {
			continue
		}
		if len(attr.Options) > 0 {
			return strings.TrimSpace(attr.Options[0])
		}
	}
	return strings.TrimSpace(metaString(p.MetaData, deliveryTimeMetaKey))
}

// doRequest performs one authenticated GET against the source API and decodes
// the JSON response into out.
func (a *WooCommerceAdapter) doRequest(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := a.config.APIBase() + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("woocommerce: cannot build request: %w", err)
	}
	req.SetBasicAuth(a.config.ConsumerKey, a.config.ConsumerSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("woocommerce: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceResponseSize))
	if err != nil {
		return fmt.Errorf("woocommerce: cannot read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("woocommerce: %s returned status %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("woocommerce: cannot decode response: %w", err)
	}
	return nil
}

// Compile-time interface compliance check
var _ catalog.Source = (*WooCommerceAdapter)(nil)
