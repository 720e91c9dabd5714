package convert

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gnkm/mdstruct/internal/document"
)

// CSVConverter handles CSV files. The first row is treated as headers; data
// rows are grouped into batches, each a heading with one content block of
// "header: value" lines.
type CSVConverter struct{}

const csvBatchSize = 20

func (c *CSVConverter) Convert(r io.Reader, filename string) (*document.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	b := newTreeBuilder()
	if len(records) == 0 {
		return b.Document(), nil
	}

	headers := records[0]
	dataRows := records[1:]

	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := i + csvBatchSize
		if end > len(dataRows) {
			end = len(dataRows)
		}

		// 1-indexed source line numbers, skipping the header row.
		b.AddHeading(1, fmt.Sprintf("Rows %d-%d", i+2, end+1))
		for _, row := range dataRows[i:end] {
			b.AddContent(formatRow(headers, row))
		}
	}

	return b.Document(), nil
}

func formatRow(headers, row []string) string {
	parts := make([]string, 0, len(row))
	for j, cell := range row {
		if j < len(headers) {
			parts = append(parts, headers[j]+": "+cell)
		} else {
			parts = append(parts, cell)
		}
	}
	return strings.Join(parts, ", ")
}
