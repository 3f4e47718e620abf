// Package feed contains the transformation engine that maps catalog
// snapshots into destination-schema records, one transformer per target
// schema with the shared business rules factored into common helpers.
package feed

// Schema declares the ordered field list of one destination feed. The field
// set and order are fixed per schema; every record of a run carries exactly
// these fields.
type Schema struct {
	Name   string
	Fields []string
}

// FieldIndex returns the position of a field in the schema, or -1
func (s Schema) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

// Ad catalog feed column names
const (
	AdFieldID                    = "id"
	AdFieldTitle                 = "title"
	AdFieldDescription           = "description"
	AdFieldAvailability          = "availability"
	AdFieldCondition             = "condition"
	AdFieldPrice                 = "price"
	AdFieldLink                  = "link"
	AdFieldImageLink             = "image_link"
	AdFieldBrand                 = "brand"
	AdFieldIdentifierExists      = "identifier_exists"
	AdFieldGoogleProductCategory = "google_product_category"
	AdFieldProductType           = "product_type"
)

// AdCatalogSchema is the advertising catalog feed schema
var AdCatalogSchema = Schema{
	Name: "ad_catalog",
	Fields: []string{
		AdFieldID,
		AdFieldTitle,
		AdFieldDescription,
		AdFieldAvailability,
		AdFieldCondition,
		AdFieldPrice,
		AdFieldLink,
		AdFieldImageLink,
		AdFieldBrand,
		AdFieldIdentifierExists,
		AdFieldGoogleProductCategory,
		AdFieldProductType,
	},
}

// Commerce platform import columns (tabular backup of the import payload)
const (
	ComFieldHandle             = "Handle"
	ComFieldTitle              = "Title"
	ComFieldBodyHTML           = "Body (HTML)"
	ComFieldVendor             = "Vendor"
	ComFieldProductCategory    = "Product Category"
	ComFieldType               = "Type"
	ComFieldTags               = "Tags"
	ComFieldPublished          = "Published"
	ComFieldOption1Name        = "Option1 Name"
	ComFieldOption1Value       = "Option1 Value"
	ComFieldOption2Name        = "Option2 Name"
	ComFieldOption2Value       = "Option2 Value"
	ComFieldOption3Name        = "Option3 Name"
	ComFieldOption3Value       = "Option3 Value"
	ComFieldVariantSKU         = "Variant SKU"
	ComFieldVariantGrams       = "Variant Grams"
	ComFieldInventoryTracker   = "Variant Inventory Tracker"
	ComFieldInventoryQty       = "Variant Inventory Qty"
	ComFieldInventoryPolicy    = "Variant Inventory Policy"
	ComFieldFulfillmentService = "Variant Fulfillment Service"
	ComFieldVariantPrice       = "Variant Price"
	ComFieldCompareAtPrice     = "Variant Compare At Price"
	ComFieldRequiresShipping   = "Variant Requires Shipping"
	ComFieldTaxable            = "Variant Taxable"
	ComFieldBarcode            = "Variant Barcode"
	ComFieldImageSrc           = "Image Src"
	ComFieldImagePosition      = "Image Position"
	ComFieldImageAltText       = "Image Alt Text"
	ComFieldGiftCard           = "Gift Card"
	ComFieldSEOTitle           = "SEO Title"
	ComFieldSEODescription     = "SEO Description"
	ComFieldGoogleCategory     = "Google Shopping / Google Product Category"
	ComFieldGoogleCondition    = "Google Shopping / Condition"
	ComFieldVariantImage       = "Variant Image"
	ComFieldWeightUnit         = "Variant Weight Unit"
	ComFieldCostPerItem        = "Cost per item"
	ComFieldStatus             = "Status"
	ComFieldDeliveryTime       = "Metafield: custom.delivery_time"
	ComFieldReleaseDate        = "Metafield: custom.release_date"
)

// CommerceSchema is the commerce-platform import schema
var CommerceSchema = Schema{
	Name: "commerce_platform",
	Fields: []string{
		ComFieldHandle,
		ComFieldTitle,
		ComFieldBodyHTML,
		ComFieldVendor,
		ComFieldProductCategory,
		ComFieldType,
		ComFieldTags,
		ComFieldPublished,
		ComFieldOption1Name,
		ComFieldOption1Value,
		ComFieldOption2Name,
		ComFieldOption2Value,
		ComFieldOption3Name,
		ComFieldOption3Value,
		ComFieldVariantSKU,
		ComFieldVariantGrams,
		ComFieldInventoryTracker,
		ComFieldInventoryQty,
		ComFieldInventoryPolicy,
		ComFieldFulfillmentService,
		ComFieldVariantPrice,
		ComFieldCompareAtPrice,
		ComFieldRequiresShipping,
		ComFieldTaxable,
		ComFieldBarcode,
		ComFieldImageSrc,
		ComFieldImagePosition,
		ComFieldImageAltText,
		ComFieldGiftCard,
		ComFieldSEOTitle,
		ComFieldSEODescription,
		ComFieldGoogleCategory,
		ComFieldGoogleCondition,
		ComFieldVariantImage,
		ComFieldWeightUnit,
		ComFieldCostPerItem,
		ComFieldStatus,
		ComFieldDeliveryTime,
		ComFieldReleaseDate,
	},
}
