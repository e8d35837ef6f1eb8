package ports

import (
	"context"

	"geotrace/internal/domain"
)

// HistoryRepository is the append-only log of past analyses.
type HistoryRepository interface {
	// Save appends a result and returns its store-assigned id.
	Save(ctx context.Context, res domain.AnalysisResult) (int64, error)
	// ListRecent returns at most limit records, most recent first.
	ListRecent(ctx context.Context, limit int) ([]domain.HistoryRecord, error)
	// Clear deletes all records.
	Clear(ctx context.Context) error
}
