package models

import "time"

// Canonical field names. Every supported POS export is mapped onto this set
// before any metric is computed.
const (
	FieldDate     = "date"
	FieldItem     = "item"
	FieldCategory = "category"
	FieldPrice    = "price"
	FieldCost     = "cost"
	FieldQuantity = "quantity"
)

// RawRow is one unparsed CSV data line, keyed by normalized header name.
// Column names are vendor-dependent until a ColumnMapping is applied.
type RawRow map[string]string

// ColumnMapping assigns each canonical field to a source column index.
// It is selected once per upload by the schema detector and is immutable
// afterwards. An index of -1 means the field is not present in the source.
type ColumnMapping struct {
	Date     int
	Item     int
	Category int
	Price    int
	Cost     int
	Quantity int
}

// NewColumnMapping returns a mapping with every field unmapped.
func NewColumnMapping() ColumnMapping {
	return ColumnMapping{Date: -1, Item: -1, Category: -1, Price: -1, Cost: -1, Quantity: -1}
}

// Set assigns the column index for a canonical field name. Unknown field
// names are ignored.
func (m *ColumnMapping) Set(field string, col int) {
	switch field {
	case FieldDate:
		m.Date = col
	case FieldItem:
		m.Item = col
	case FieldCategory:
		m.Category = col
	case FieldPrice:
		m.Price = col
	case FieldCost:
		m.Cost = col
	case FieldQuantity:
		m.Quantity = col
	}
}

// Get returns the column index for a canonical field name, or -1 when the
// field is unmapped or unknown.
func (m ColumnMapping) Get(field string) int {
	switch field {
	case FieldDate:
		return m.Date
	case FieldItem:
		return m.Item
	case FieldCategory:
		return m.Category
	case FieldPrice:
		return m.Price
	case FieldCost:
		return m.Cost
	case FieldQuantity:
		return m.Quantity
	}
	return -1
}

// HasCost reports whether the source export carries a unit cost column.
// Without it COGS and margin figures degrade to zero.
func (m ColumnMapping) HasCost() bool { return m.Cost >= 0 }

// HasCategory reports whether the source export carries a category column.
func (m ColumnMapping) HasCategory() bool { return m.Category >= 0 }

// Transaction is a normalized sales line: one item sold N times on one date.
// Price, cost and quantity are non-negative after coercion.
type Transaction struct {
	Date      time.Time `json:"date"`
	Item      string    `json:"item"`
	Category  string    `json:"category"`
	UnitPrice float64   `json:"unit_price"`
	UnitCost  float64   `json:"unit_cost"`
	Quantity  int64     `json:"quantity"`
}

// Revenue is the gross line total for the transaction.
func (t Transaction) Revenue() float64 { return t.UnitPrice * float64(t.Quantity) }

// COGS is the direct cost of the units sold on this line.
func (t Transaction) COGS() float64 { return t.UnitCost * float64(t.Quantity) }

// Rollup accumulates revenue, cost, profit and quantity per grouping key
// (item name or category name).
type Rollup struct {
	Name     string  `json:"name"`
	Quantity int64   `json:"quantity"`
	Revenue  float64 `json:"revenue"`
	Cost     float64 `json:"cost"`
	Profit   float64 `json:"profit"`
}

// DailyRollup accumulates per-date revenue, cost and transaction counts.
// Only dates actually present in the upload appear; missing calendar days
// are not synthesized as zero.
type DailyRollup struct {
	Revenue      float64 `json:"revenue"`
	Cost         float64 `json:"cost"`
	Transactions int64   `json:"transactions"`
}
