package parsers

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/username/cafeledger/backend/src/logger"
	"github.com/username/cafeledger/backend/src/models"
)

// UncategorizedLabel is assigned when the export carries no category column
// or the category cell is blank.
const UncategorizedLabel = "Uncategorized"

var dateLayouts = []string{
	"2006-01-02", // ISO
	"01/02/2006", // common US
}

// RowNormalizer applies a ColumnMapping to raw CSV records and coerces the
// cell values into typed Transactions. A row that fails coercion is counted
// and skipped; it never fails the batch.
type RowNormalizer struct {
	mapping models.ColumnMapping
}

func NewRowNormalizer(mapping models.ColumnMapping) *RowNormalizer {
	return &RowNormalizer{mapping: mapping}
}

// NormalizeAll converts every record, returning the accepted transactions
// along with processed and discarded counters. processed+discarded always
// equals len(records).
func (n *RowNormalizer) NormalizeAll(records [][]string) (txs []models.Transaction, processed, discarded int) {
	for _, record := range records {
		tx, ok := n.Normalize(record)
		if !ok {
			discarded++
			continue
		}
		processed++
		txs = append(txs, tx)
	}
	return txs, processed, discarded
}

// Normalize coerces one record. The bool result is false when the row must be
// discarded: unparseable date, non-numeric quantity, blank item, or a record
// too short to hold a required column.
func (n *RowNormalizer) Normalize(record []string) (models.Transaction, bool) {
	item := strings.TrimSpace(n.cell(record, n.mapping.Item))
	if item == "" {
		logger.L.Debug("Discarding row: blank item name")
		return models.Transaction{}, false
	}

	date, ok := parseDate(n.cell(record, n.mapping.Date))
	if !ok {
		logger.L.Debug("Discarding row: unparseable date", "item", item)
		return models.Transaction{}, false
	}

	quantity, ok := parseQuantity(n.cell(record, n.mapping.Quantity))
	if !ok {
		logger.L.Debug("Discarding row: non-numeric quantity", "item", item)
		return models.Transaction{}, false
	}

	category := strings.TrimSpace(n.cell(record, n.mapping.Category))
	if category == "" {
		category = UncategorizedLabel
	}

	return models.Transaction{
		Date:      date,
		Item:      item,
		Category:  category,
		UnitPrice: parseMoney(n.cell(record, n.mapping.Price)),
		UnitCost:  parseMoney(n.cell(record, n.mapping.Cost)),
		Quantity:  quantity,
	}, true
}

func (n *RowNormalizer) cell(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return record[col]
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	// Tolerate a trailing time component ("2026-01-01 09:30" etc).
	if cut, _, found := strings.Cut(value, " "); found {
		value = cut
	} else if cut, _, found := strings.Cut(value, "T"); found {
		value = cut
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseMoney strips currency symbols and thousands separators. Values that
// still fail to parse count as 0 rather than discarding the row; negative
// unit figures are a cleaning artifact, not a legitimate loss, and clamp
// to 0.
func parseMoney(value string) float64 {
	cleaned := strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "").Replace(strings.TrimSpace(value))
	if cleaned == "" {
		return 0
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || amount < 0 {
		return 0
	}
	return amount
}

// parseQuantity accepts integers and rounds non-integer numeric values.
// Non-numeric input discards the row; negatives clamp to 0.
func parseQuantity(value string) (int64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" {
		return 0, false
	}
	if qty, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		return max(qty, 0), true
	}
	if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return max(int64(math.Round(f)), 0), true
	}
	return 0, false
}
