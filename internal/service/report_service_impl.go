package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tremor/internal/analysis"
	"github.com/alexanderramin/tremor/internal/app"
	"github.com/alexanderramin/tremor/internal/domain"
	"github.com/alexanderramin/tremor/internal/repository"
	"github.com/alexanderramin/tremor/internal/stats"
)

type reportService struct {
	store       SessionStore
	chartPoints int
	now         func() time.Time
	observer    UseCaseObserver
}

// NewReportService assembles report bundles from the session store. Chart
// series are decimated to chartPoints readings; chartPoints <= 0 uses
// analysis.DefaultTransferReadings.
func NewReportService(store SessionStore, chartPoints int, observers ...UseCaseObserver) ReportService {
	if chartPoints <= 0 {
		chartPoints = analysis.DefaultTransferReadings
	}
	return &reportService{
		store:       store,
		chartPoints: chartPoints,
		now:         time.Now,
		observer:    useCaseObserverOrNoop(observers),
	}
}

func (s *reportService) Build(ctx context.Context, req app.ReportRequest) (bundle *app.ReportBundle, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"requested_ids": len(req.SessionIDs),
		"raw":           req.IncludeRawData,
		"charts":        req.IncludeCharts,
	}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "build-report",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	sessions, err := s.selectSessions(ctx, req)
	if err != nil {
		return nil, err
	}
	SortNewestFirst(sessions)
	fields["sessions"] = len(sessions)

	bundle = &app.ReportBundle{
		GeneratedAt: s.now().UnixMilli(),
		PatientName: req.PatientName,
		DoctorName:  req.DoctorName,
		Sessions:    make([]app.ReportSession, 0, len(sessions)),
	}
	if req.IncludeStatistics {
		st := stats.Compute(sessions)
		bundle.Statistics = &st
	}

	for _, session := range sessions {
		rs := app.ReportSession{Session: session}
		if req.IncludeCharts {
			rs.Chart = analysis.Decimate(session.Readings, s.chartPoints)
		}
		if !req.IncludeRawData {
			rs.Readings = nil
		}
		bundle.Sessions = append(bundle.Sessions, rs)
	}
	return bundle, nil
}

// selectSessions resolves explicit ids when given, otherwise applies the filters.
func (s *reportService) selectSessions(ctx context.Context, req app.ReportRequest) ([]domain.Session, error) {
	if len(req.SessionIDs) == 0 {
		return s.store.GetFiltered(ctx, req.Filters), nil
	}

	byID := make(map[string]domain.Session)
	for _, session := range s.store.GetAll(ctx) {
		byID[session.ID] = session
	}
	out := make([]domain.Session, 0, len(req.SessionIDs))
	seen := make(map[string]bool, len(req.SessionIDs))
	for _, id := range req.SessionIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		session, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("report session %s: %w", id, repository.ErrNotFound)
		}
		out = append(out, session)
	}
	return out, nil
}
