package parser

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"PBNPublisher/internal/domain"
	"PBNPublisher/internal/scanner"
)

// XLSXScanner reads the first worksheet of an Excel workbook.
type XLSXScanner struct{}

// NewXLSXScanner returns the xlsx strategy.
func NewXLSXScanner() *XLSXScanner {
	return &XLSXScanner{}
}

// Name identifies the strategy inside the registry.
func (x *XLSXScanner) Name() string {
	return "xlsx"
}

// Scan parses the first sheet; its first row is the header.
func (x *XLSXScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.SheetRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	book, err := excelize.OpenReader(bytes.NewReader(req.Data))
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %v: %w", req.FileName, err, domain.ErrInvalidInput)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return []domain.SheetRow{}, nil
	}

	records, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return scanner.RowsFromRecords(records)
}
