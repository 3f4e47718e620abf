package feed

import (
	"html"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/feedbridge/backend/internal/domain/catalog"
)

// Shared derivations consumed by both transformers. Each helper is a pure
// function over snapshot values.

// synthesizeTitle builds a variant title: parent title followed by the
// variant's attribute display values in declared order, space-joined. Source
// names arrive entity-encoded and are decoded to UTF-8 here.
func synthesizeTitle(parent *catalog.Product, variant *catalog.Variant) string {
	parts := make([]string, 0, len(variant.Attributes)+1)
	parts = append(parts, html.UnescapeString(parent.Name))
	for _, attr := range variant.Attributes {
		if dv := attr.DisplayValue(); dv != "" {
			parts = append(parts, html.UnescapeString(dv))
		}
	}
	return strings.Join(parts, " ")
}

// availability maps a stock status to the advertising feed vocabulary
func availability(status catalog.StockStatus) string {
	switch status {
	case catalog.StockStatusInStock:
		return "in stock"
	case catalog.StockStatusBackorder:
		return "available for order"
	default:
		return "out of stock"
	}
}

// formatAmount renders a monetary amount with exactly two decimals and a dot
// separator, independent of locale.
func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// compareAtPrice returns the strike-through price: populated only when both a
// regular and a sale price are present and regular > sale.
func compareAtPrice(regular, sale *decimal.Decimal) *decimal.Decimal {
	if regular == nil || sale == nil {
		return nil
	}
	if regular.GreaterThan(*sale) {
		return regular
	}
	return nil
}

// resolveType determines a record's destination type by priority: an apparel
// keyword in the synthesized title, else the variant's sound-carrier
// attribute, else the parent's first taxonomy term, else empty.
func resolveType(rules *Rules, title string, parent *catalog.Product, variant *catalog.Variant) string {
	if rules.ApparelKeyword != "" &&
		strings.Contains(strings.ToLower(title), strings.ToLower(rules.ApparelKeyword)) {
		return titleCase(rules.ApparelKeyword)
	}
	if variant != nil {
		for _, attr := range variant.Attributes {
			if strings.EqualFold(attr.Name, rules.SoundCarrierAttribute) {
				if dv := attr.DisplayValue(); dv != "" {
					return titleCase(dv)
				}
			}
		}
	}
	if len(parent.Categories) > 0 {
		return parent.Categories[0]
	}
	return ""
}

// titleCase upper-cases the first rune of a value
func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// productTypePath joins the parent's category names into one path
func productTypePath(categories []string) string {
	return strings.Join(categories, " > ")
}

// isPreorder reports whether the delivery-time term marks a preorder
func isPreorder(rules *Rules, p *catalog.Product) bool {
	return rules.PreorderTerm != "" && p.DeliveryTimeTerm == rules.PreorderTerm
}

// trackingLink augments a permalink with the fixed tracking parameters and
// the record id; variant links additionally carry the variant id.
func trackingLink(rules *Rules, permalink string, recordID int64, variantID int64) string {
	u, err := url.Parse(permalink)
	if err != nil {
		return permalink
	}
	q := u.Query()
	if variantID != 0 {
		q.Set("variation_id", strconv.FormatInt(variantID, 10))
	}
	q.Set("utm_source", rules.Tracking.Source)
	q.Set("utm_campaign", rules.Tracking.Campaign)
	q.Set("utm_medium", rules.Tracking.Medium)
	q.Set("utm_term", strconv.FormatInt(recordID, 10))
	u.RawQuery = q.Encode()
	return u.String()
}
