package scanner

import (
	"fmt"
	"strings"

	"PBNPublisher/internal/domain"
)

const (
	columnTitle    = "title"
	columnContent  = "content"
	columnKeywords = "keywords"
	columnWebsite  = "website"
)

// RowsFromRecords maps a header row plus data rows onto sheet rows. Header
// names are matched case-insensitively; unknown columns are ignored and rows
// whose cells are all blank are skipped.
func RowsFromRecords(records [][]string) ([]domain.SheetRow, error) {
	if len(records) == 0 {
		return []domain.SheetRow{}, nil
	}

	index := map[string]int{}
	for i, name := range records[0] {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	known := 0
	for _, col := range []string{columnTitle, columnContent, columnKeywords, columnWebsite} {
		if _, ok := index[col]; ok {
			known++
		}
	}
	if known == 0 {
		return nil, fmt.Errorf("header row has none of Title, Content, Keywords, Website: %w", domain.ErrInvalidInput)
	}

	cell := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	rows := make([]domain.SheetRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if blank(record) {
			continue
		}
		rows = append(rows, domain.SheetRow{
			Title:    cell(record, columnTitle),
			Content:  cell(record, columnContent),
			Keywords: cell(record, columnKeywords),
			Website:  cell(record, columnWebsite),
		})
	}
	return rows, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
