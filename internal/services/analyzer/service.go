// Package analyzer sequences the analysis pipeline:
// normalize -> resolve -> geolocate -> score -> persist.
package analyzer

import (
	"context"
	"log"
	"time"

	"geotrace/internal/domain"
	"geotrace/internal/metrics"
	"geotrace/internal/normalize"
	"geotrace/internal/ports"
	"geotrace/internal/scoring"
)

const defaultHistoryLimit = 50

type Service struct {
	resolver ports.Resolver
	geo      ports.GeoLocator
	engine   *scoring.Engine
	history  ports.HistoryRepository
}

func New(resolver ports.Resolver, geo ports.GeoLocator, engine *scoring.Engine, history ports.HistoryRepository) *Service {
	return &Service{resolver: resolver, geo: geo, engine: engine, history: history}
}

// Analyze runs the full pipeline for one raw domain input. The first failing
// stage short-circuits with its typed error; later stages never run. The one
// asymmetry: a history write failure is logged and counted but never masks a
// valid analysis, so the caller still gets the result.
func (s *Service) Analyze(ctx context.Context, raw string) (domain.AnalysisResult, error) {
	dom, err := normalize.Domain(raw)
	if err != nil {
		metrics.FailuresTotal.WithLabelValues("normalize").Inc()
		return domain.AnalysisResult{}, err
	}

	ip, err := s.resolver.Resolve(ctx, dom)
	if err != nil {
		metrics.FailuresTotal.WithLabelValues("resolve").Inc()
		return domain.AnalysisResult{}, err
	}

	geo, err := s.geo.Lookup(ctx, ip)
	if err != nil {
		metrics.FailuresTotal.WithLabelValues("geolocate").Inc()
		return domain.AnalysisResult{}, err
	}

	threat := s.engine.Score(dom, ip, geo)

	res := domain.AnalysisResult{
		Domain:    dom,
		IP:        ip,
		Geo:       geo,
		Threat:    threat,
		CreatedAt: time.Now().UTC(),
	}
	metrics.AnalysesTotal.WithLabelValues(string(threat.Level)).Inc()

	if _, err := s.history.Save(ctx, res); err != nil {
		metrics.HistoryWriteFailures.Inc()
		log.Printf("history save failed for %s: %v", dom, err)
	}

	return res, nil
}

// History returns the most recent analyses, newest first. A non-positive
// limit falls back to the default page size.
func (s *Service) History(ctx context.Context, limit int) ([]domain.HistoryRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.history.ListRecent(ctx, limit)
}

// ClearHistory deletes the entire log.
func (s *Service) ClearHistory(ctx context.Context) error {
	return s.history.Clear(ctx)
}
