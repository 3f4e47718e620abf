package feed

import (
	"errors"
	"strings"

	"github.com/feedbridge/backend/internal/domain/catalog"
)

// Transformer maps a catalog snapshot into the record sequence of one
// destination schema. Implementations are pure over the snapshot: they never
// mutate it and are deterministic given identical input and mapping rules.
type Transformer interface {
	Schema() Schema
	Transform(snap *catalog.Snapshot) ([]Record, error)
}

// Errors for transformer configuration
var (
	ErrRulesMissingBrand    = errors.New("feed: brand name is required")
	ErrRulesMissingCurrency = errors.New("feed: currency code is required")
	ErrMappingEmptyDefault  = errors.New("feed: mapping table default category is required")
)

// MappingTable derives a standardized destination category and a weight class
// from a resolved product type. The table is external, versioned
// configuration; unrecognized types fall back to the default bucket.
type MappingTable struct {
	// Version identifies the mapping revision in use, recorded in run logs
	Version string
	// Categories maps a resolved type to a standardized category path
	Categories map[string]string
	// DefaultCategory is the fallback bucket for unrecognized types
	DefaultCategory string
	// WeightGramsByType maps a resolved type to its coarse default weight
	WeightGramsByType map[string]int
	// DefaultWeightGrams applies when the type has no weight entry
	DefaultWeightGrams int
}

// Validate checks the mapping table, normalizes its keys and fills weight
// defaults. Type matching is case-insensitive.
func (m *MappingTable) Validate() error {
	if m.DefaultCategory == "" {
		return ErrMappingEmptyDefault
	}
	if m.DefaultWeightGrams <= 0 {
		m.DefaultWeightGrams = 100
	}
	m.Categories = lowerKeys(m.Categories)
	m.WeightGramsByType = lowerKeys(m.WeightGramsByType)
	return nil
}

func lowerKeys[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = v
	}
	return out
}

// Category resolves the standardized category for a type
func (m *MappingTable) Category(resolvedType string) string {
	if c, ok := m.Categories[strings.ToLower(resolvedType)]; ok {
		return c
	}
	return m.DefaultCategory
}

// WeightGrams resolves the coarse weight class for a type
func (m *MappingTable) WeightGrams(resolvedType string) int {
	if g, ok := m.WeightGramsByType[strings.ToLower(resolvedType)]; ok {
		return g
	}
	return m.DefaultWeightGrams
}

// TrackingParams are the fixed query parameters appended to advertising feed
// links. The record id is appended separately as the term parameter.
type TrackingParams struct {
	Source   string
	Campaign string
	Medium   string
}

// Rules carries the externally configured business constants both
// transformers consume.
type Rules struct {
	// Brand is the shop name used as vendor/brand on every record
	Brand string
	// CurrencyCode prefixes advertising feed prices (e.g. "EUR")
	CurrencyCode string
	// GoogleProductCategory is the fixed advertising feed category
	GoogleProductCategory string
	// Tracking holds the advertising link query parameters
	Tracking TrackingParams
	// ApparelKeyword forces the apparel type when found in a title
	ApparelKeyword string
	// SoundCarrierAttribute names the variant attribute that carries the
	// media format (e.g. "sound-carrier")
	SoundCarrierAttribute string
	// PreorderTerm is the delivery-time term marking preorder products
	PreorderTerm string
	// PreorderLabel is the delivery-time metafield value for preorders
	PreorderLabel string
	// DefaultDeliveryTime is the delivery-time metafield fallback
	DefaultDeliveryTime string
	// Mapping is the versioned category mapping table
	Mapping MappingTable
}

// Validate checks required rule fields and fills defaults
func (r *Rules) Validate() error {
	if r.Brand == "" {
		return ErrRulesMissingBrand
	}
	if r.CurrencyCode == "" {
		return ErrRulesMissingCurrency
	}
	if r.ApparelKeyword == "" {
		r.ApparelKeyword = "shirt"
	}
	if r.SoundCarrierAttribute == "" {
		r.SoundCarrierAttribute = "sound-carrier"
	}
	return r.Mapping.Validate()
}
