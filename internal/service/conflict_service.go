package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

type snapshotLoader interface {
	LoadSnapshot(ctx context.Context) (models.Snapshot, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// ConflictService audits the stored collections and caches the resulting report.
type ConflictService struct {
	loader  snapshotLoader
	cache   reportCache
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewConflictService constructs the service. cache and metrics may be nil.
func NewConflictService(loader snapshotLoader, cache reportCache, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{loader: loader, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

// Report returns the conflict report of the stored collections and whether it came from cache.
func (s *ConflictService) Report(ctx context.Context) (models.ConflictReport, bool, error) {
	var cached models.ConflictReport
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, conflictReportCacheKey, &cached)
		if err == nil && hit {
			return cached, true, nil
		}
	}

	snap, err := s.loader.LoadSnapshot(ctx)
	if err != nil {
		return models.ConflictReport{}, false, err
	}
	report := DetectConflicts(snap.Exams, snap.Courses, snap.Instructors, snap.Rooms, snap.Students)
	s.metrics.SetConflictCounts(report)
	s.logger.Sugar().Infow("conflict audit completed",
		"exams", len(snap.Exams),
		"room", len(report.Room),
		"instructor", len(report.Instructor),
		"student", len(report.Student),
	)

	if s.cache != nil {
		_ = s.cache.Set(ctx, conflictReportCacheKey, report, s.ttl)
	}
	return report, false, nil
}

// Invalidate drops any cached report.
func (s *ConflictService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, conflictCachePattern); err != nil {
		s.logger.Warn("failed to invalidate conflict cache", zap.Error(err))
	}
}
