package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"PBNPublisher/internal/domain"
)

// Request carries an uploaded workbook.
type Request struct {
	FileName string
	Data     []byte
}

// Scanner reads the rows of one workbook format (xlsx, csv, etc.).
type Scanner interface {
	// Name is the lower-case file extension the scanner handles, without the dot.
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.SheetRow, error)
}

// Registry keeps a mapping from formats to their scanners.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[strings.ToLower(scanner.Name())] = scanner
}

// Resolve returns a scanner by format or an error if it is absent.
func (r *Registry) Resolve(format string) (Scanner, error) {
	if scanner, ok := r.scanners[strings.ToLower(format)]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("unsupported file format %q: %w", format, domain.ErrInvalidInput)
}

// ResolveFile picks a scanner by the file name's extension.
func (r *Registry) ResolveFile(fileName string) (Scanner, error) {
	ext := strings.TrimPrefix(filepath.Ext(fileName), ".")
	if ext == "" {
		return nil, fmt.Errorf("file %q has no extension: %w", fileName, domain.ErrInvalidInput)
	}
	return r.Resolve(ext)
}

// Formats lists the registered formats in sorted order.
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		formats = append(formats, name)
	}
	slices.Sort(formats)
	return formats
}
