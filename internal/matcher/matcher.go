// Package matcher assigns spreadsheet rows to the caller's registered websites.
package matcher

import (
	"strings"

	"golang.org/x/text/cases"

	"PBNPublisher/internal/domain"
)

// Match returns the first site whose name equals field or whose URL contains
// it, compared case-insensitively. The field is not trimmed; a blank field
// never matches.
func Match(field string, sites []domain.Website) (domain.Website, bool) {
	if strings.TrimSpace(field) == "" {
		return domain.Website{}, false
	}
	needle := fold(field)

	for _, site := range sites {
		if fold(site.Name) == needle || strings.Contains(fold(site.URL), needle) {
			return site, true
		}
	}
	return domain.Website{}, false
}

// fold builds a fresh caser per call; cases.Caser is not safe for concurrent use.
func fold(s string) string {
	return cases.Fold().String(s)
}
