package parsers

import (
	"fmt"
	"strings"

	"github.com/username/cafeledger/backend/src/logger"
	"github.com/username/cafeledger/backend/src/models"
)

// Detected format labels. The closed set the detector can report.
const (
	FormatSquare     = "square"
	FormatLightspeed = "lightspeed"
	FormatToast      = "toast"
	FormatClover     = "clover"
	FormatShopify    = "shopify"
	FormatGeneric    = "generic"
)

// vendorSignature describes one known POS export shape: the normalized header
// tokens that must all be present for the signature to match, and the mapping
// from canonical field to the vendor's header token.
type vendorSignature struct {
	format   string
	required []string
	fields   map[string]string
}

// vendorSignatures are tested in fixed priority order; the first signature
// whose required tokens are all present wins.
var vendorSignatures = []vendorSignature{
	{
		format:   FormatSquare,
		required: []string{"date", "item", "category", "qty", "gross_sales"},
		fields: map[string]string{
			models.FieldDate:     "date",
			models.FieldItem:     "item",
			models.FieldCategory: "category",
			models.FieldQuantity: "qty",
			models.FieldPrice:    "gross_sales",
			models.FieldCost:     "unit_cost",
		},
	},
	{
		format:   FormatLightspeed,
		required: []string{"sale_date", "item", "unit_price", "quantity"},
		fields: map[string]string{
			models.FieldDate:     "sale_date",
			models.FieldItem:     "item",
			models.FieldCategory: "category",
			models.FieldQuantity: "quantity",
			models.FieldPrice:    "unit_price",
			models.FieldCost:     "unit_cost",
		},
	},
	{
		format:   FormatToast,
		required: []string{"order_date", "menu_item", "menu_group", "price", "qty"},
		fields: map[string]string{
			models.FieldDate:     "order_date",
			models.FieldItem:     "menu_item",
			models.FieldCategory: "menu_group",
			models.FieldQuantity: "qty",
			models.FieldPrice:    "price",
			models.FieldCost:     "cost",
		},
	},
	{
		format:   FormatClover,
		required: []string{"order_date", "name", "price", "quantity"},
		fields: map[string]string{
			models.FieldDate:     "order_date",
			models.FieldItem:     "name",
			models.FieldCategory: "category",
			models.FieldQuantity: "quantity",
			models.FieldPrice:    "price",
			models.FieldCost:     "cost",
		},
	},
	{
		format:   FormatShopify,
		required: []string{"day", "product_title", "product_price", "net_quantity"},
		fields: map[string]string{
			models.FieldDate:     "day",
			models.FieldItem:     "product_title",
			models.FieldCategory: "product_type",
			models.FieldQuantity: "net_quantity",
			models.FieldPrice:    "product_price",
			models.FieldCost:     "cost_per_item",
		},
	},
}

// genericSynonyms are the ranked synonym lists used by the generic fallback.
// For each canonical field the first synonym found in the header wins.
var genericSynonyms = map[string][]string{
	models.FieldDate:     {"date", "order_date", "transaction_date", "day"},
	models.FieldItem:     {"item", "product", "item_name", "product_name", "menu_item", "name", "description"},
	models.FieldCategory: {"category", "type", "group"},
	models.FieldPrice:    {"price", "unit_price", "sale_price", "selling_price", "revenue", "amount"},
	models.FieldCost:     {"cost", "unit_cost", "cogs", "cost_price"},
	models.FieldQuantity: {"quantity", "qty", "units_sold", "count"},
}

// genericRequired are the canonical fields without which the generic fallback
// cannot produce usable metrics. Cost and category are optional; their
// absence only degrades margin and category analysis.
var genericRequired = []string{models.FieldDate, models.FieldItem, models.FieldPrice, models.FieldQuantity}

type SchemaDetector struct{}

func NewSchemaDetector() *SchemaDetector {
	return &SchemaDetector{}
}

// Detect inspects the header row and returns the column mapping plus the
// detected format label. Known vendor signatures are tried first; otherwise
// the generic synonym fallback is used.
func (d *SchemaDetector) Detect(header []string) (models.ColumnMapping, string, error) {
	index := headerIndex(header)
	if len(index) == 0 {
		return models.NewColumnMapping(), "", fmt.Errorf("%w: header row is empty", ErrSchemaDetection)
	}

	for _, sig := range vendorSignatures {
		if !sig.matches(index) {
			continue
		}
		mapping := models.NewColumnMapping()
		for field, token := range sig.fields {
			if col, ok := index[token]; ok {
				mapping.Set(field, col)
			}
		}
		logger.L.Debug("Vendor signature matched", "format", sig.format)
		return mapping, sig.format, nil
	}

	return detectGeneric(index)
}

func (sig vendorSignature) matches(index map[string]int) bool {
	for _, token := range sig.required {
		if _, ok := index[token]; !ok {
			return false
		}
	}
	return true
}

func detectGeneric(index map[string]int) (models.ColumnMapping, string, error) {
	mapping := models.NewColumnMapping()
	for field, synonyms := range genericSynonyms {
		for _, synonym := range synonyms {
			if col, ok := index[synonym]; ok {
				mapping.Set(field, col)
				break
			}
		}
	}

	var missing []string
	for _, field := range genericRequired {
		if mapping.Get(field) < 0 {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return mapping, "", fmt.Errorf("%w: could not map required fields: %s", ErrSchemaDetection, strings.Join(missing, ", "))
	}
	return mapping, FormatGeneric, nil
}

// headerIndex maps each normalized header token to its column index.
// Duplicate header names resolve to the last occurrence.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		token := NormalizeHeaderToken(name)
		if token == "" {
			continue
		}
		index[token] = i
	}
	return index
}

// NormalizeHeaderToken lowercases a header name and collapses spaces, dashes
// and repeated underscores so that "Unit Price", "unit-price" and
// "unit_price" all compare equal.
func NormalizeHeaderToken(name string) string {
	token := strings.ToLower(strings.TrimSpace(name))
	token = strings.Trim(token, `"`)
	token = strings.ReplaceAll(token, "-", "_")
	token = strings.ReplaceAll(token, " ", "_")
	for strings.Contains(token, "__") {
		token = strings.ReplaceAll(token, "__", "_")
	}
	return strings.Trim(token, "_")
}
