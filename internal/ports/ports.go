package ports

import (
	"context"

	"geotrace/internal/domain"
)

// Resolver maps a normalized hostname to an IPv4 literal.
type Resolver interface {
	Resolve(ctx context.Context, host string) (string, error)
}

// GeoLocator enriches an IPv4 literal with location and network attributes.
type GeoLocator interface {
	Lookup(ctx context.Context, ip string) (domain.GeoAttributes, error)
}

// Analyzer runs the full analysis pipeline for one raw domain input.
type Analyzer interface {
	Analyze(ctx context.Context, rawDomain string) (domain.AnalysisResult, error)
	History(ctx context.Context, limit int) ([]domain.HistoryRecord, error)
	ClearHistory(ctx context.Context) error
}
