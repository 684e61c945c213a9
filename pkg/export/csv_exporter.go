package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Dataset is a table keyed by header name.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter renders datasets as CSV downloads.
type CSVExporter struct {
	delimiter rune
	bom       bool
}

// Option customises a CSVExporter.
type Option func(*CSVExporter)

// WithDelimiter switches the field separator. Spreadsheets configured for
// comma decimals expect ';'.
func WithDelimiter(delimiter rune) Option {
	return func(e *CSVExporter) {
		if delimiter != 0 {
			e.delimiter = delimiter
		}
	}
}

// WithBOM prefixes the output with a UTF-8 byte order mark.
func WithBOM(enabled bool) Option {
	return func(e *CSVExporter) { e.bom = enabled }
}

// NewCSVExporter builds a comma separated exporter.
func NewCSVExporter(opts ...Option) *CSVExporter {
	e := &CSVExporter{delimiter: ','}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render writes the header line followed by one line per row. Row keys that
// are not headers are rejected so columns cannot silently go missing.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	known := make(map[string]struct{}, len(data.Headers))
	for _, header := range data.Headers {
		known[header] = struct{}{}
	}

	buf := &bytes.Buffer{}
	if e.bom {
		buf.Write(utf8BOM)
	}
	writer := csv.NewWriter(buf)
	writer.Comma = e.delimiter
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for i, row := range data.Rows {
		for key := range row {
			if _, ok := known[key]; !ok {
				return nil, fmt.Errorf("csv row %d has unknown column %q", i, key)
			}
		}
		record := make([]string, len(data.Headers))
		for j, header := range data.Headers {
			record[j] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
