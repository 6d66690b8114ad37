package parser

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"PBNPublisher/internal/domain"
	"PBNPublisher/internal/scanner"
)

// CSVScanner reads comma-separated exports of the same sheet layout.
type CSVScanner struct{}

// NewCSVScanner returns the csv strategy.
func NewCSVScanner() *CSVScanner {
	return &CSVScanner{}
}

// Name identifies the strategy inside the registry.
func (c *CSVScanner) Name() string {
	return "csv"
}

// Scan parses all records; the first is the header.
func (c *CSVScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.SheetRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(req.Data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %v: %w", req.FileName, err, domain.ErrInvalidInput)
	}
	return scanner.RowsFromRecords(records)
}
