package parsers

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// ParseDelimited splits a POS export blob into a header row and data records.
// Comma-separated is the norm; tab-separated exports are tolerated by picking
// whichever delimiter dominates the first line.
func ParseDelimited(text string) (header []string, records [][]string, err error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(text, "\uFEFF"))
	if trimmed == "" {
		return nil, nil, fmt.Errorf("%w: input has no header row", ErrSchemaDetection)
	}

	reader := csv.NewReader(strings.NewReader(trimmed))
	reader.Comma = detectDelimiter(trimmed)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err = reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read header row: %v", ErrSchemaDetection, err)
	}

	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV records: %w", err)
	}

	// Skip fully blank lines; they are formatting noise, not data rows.
	for _, record := range all {
		if isBlankRecord(record) {
			continue
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, nil, ErrEmptyInput
	}
	return header, records, nil
}

func detectDelimiter(text string) rune {
	firstLine, _, _ := strings.Cut(text, "\n")
	if strings.Count(firstLine, "\t") > strings.Count(firstLine, ",") {
		return '\t'
	}
	return ','
}

func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
