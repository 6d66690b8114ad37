package parser

import (
	"context"
	"fmt"
	"log/slog"

	"PBNPublisher/internal/domain"
	"PBNPublisher/internal/ports"
	"PBNPublisher/internal/scanner"
)

// StrategySource implements SheetParser via registered format strategies.
type StrategySource struct {
	registry *scanner.Registry
	logger   *slog.Logger
}

var _ ports.SheetParser = (*StrategySource)(nil)

// NewStrategySource wires a scanner registry.
func NewStrategySource(reg *scanner.Registry, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		logger:   log,
	}
}

// NewDefaultSource registers the xlsx and csv strategies.
func NewDefaultSource(log *slog.Logger) *StrategySource {
	reg := scanner.NewRegistry()
	reg.Register(NewXLSXScanner())
	reg.Register(NewCSVScanner())
	return NewStrategySource(reg, log)
}

// Parse picks the strategy by file extension and returns the sheet rows.
func (s *StrategySource) Parse(ctx context.Context, fileName string, data []byte) ([]domain.SheetRow, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	strategy, err := s.registry.ResolveFile(fileName)
	if err != nil {
		return nil, err
	}
	s.debug("parse workbook", "file", fileName, "format", strategy.Name(), "bytes", len(data))

	rows, err := strategy.Scan(ctx, scanner.Request{FileName: fileName, Data: data})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", fileName, err)
	}

	s.debug("workbook parsed", "file", fileName, "rows", len(rows))
	return rows, nil
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
