package parsers

import "errors"

// Request-fatal parsing errors. Handlers dispatch on these with errors.Is;
// anything row-level is absorbed into the discard counter instead.
var (
	// ErrEmptyInput means no data rows were found after removing the header.
	ErrEmptyInput = errors.New("empty input: no data rows after header")

	// ErrSchemaDetection means the header row was missing, or required
	// canonical fields could not be mapped to any source column.
	ErrSchemaDetection = errors.New("schema detection failed")
)
