package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-scheduler-api/internal/dto"
	"github.com/noah-isme/exam-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
)

// Scheduling run modes, used as metric labels.
const (
	scheduleModeSync    = "sync"
	scheduleModePreview = "preview"
	scheduleModeJob     = "job"
)

// SchedulingConfig carries the tunable window and capacity parameters.
type SchedulingConfig struct {
	MidtermStartWeek int
	FinalStartWeek   int
	MidtermWeeks     int
	FinalWeeks       int
	DefaultMaxLoad   int
	SnugMargin       int
}

type conflictInvalidator interface {
	Invalidate(ctx context.Context)
}

// SchedulingService loads the collections, runs the scheduler and persists the outcome.
// Persisting runs are serialised by a run lock and hold the stores' write gate from load
// to persistence.
type SchedulingService struct {
	stores    Stores
	scheduler *ExamScheduler
	conflicts conflictInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SchedulingConfig
	runMu     sync.Mutex
}

// NewSchedulingService wires the scheduling pipeline.
func NewSchedulingService(stores Stores, conflicts conflictInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg SchedulingConfig) *SchedulingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulingService{
		stores:    stores,
		scheduler: NewExamScheduler(WithSnugMargin(cfg.SnugMargin), WithDefaultMaxLoad(cfg.DefaultMaxLoad)),
		conflicts: conflicts,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Validate checks a run request and resolves it into an engine configuration.
func (s *SchedulingService) Validate(req dto.AutoScheduleRequest) (models.ScheduleConfig, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.ScheduleConfig{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scheduling payload")
	}
	start, err := time.Parse(models.ExamDateLayout, req.SemesterStart)
	if err != nil {
		return models.ScheduleConfig{}, appErrors.Clone(appErrors.ErrValidation, "semesterStart must be YYYY-MM-DD")
	}
	cfg := models.ScheduleConfig{
		SemesterStart:    start,
		ExamType:         models.ExamType(req.ExamType),
		ExamDuration:     req.ExamDuration,
		MidtermStartWeek: s.cfg.MidtermStartWeek,
		FinalStartWeek:   s.cfg.FinalStartWeek,
		Weeks:            req.Weeks,
	}
	if cfg.ExamDuration == 0 {
		cfg.ExamDuration = 2
	}
	if cfg.Weeks == 0 {
		if cfg.ExamType == models.ExamTypeFinal {
			cfg.Weeks = s.cfg.FinalWeeks
		} else {
			cfg.Weeks = s.cfg.MidtermWeeks
		}
	}
	return cfg, nil
}

// Run schedules and persists, failing fast when another run holds the lock.
func (s *SchedulingService) Run(ctx context.Context, req dto.AutoScheduleRequest) (*dto.ScheduleRunResponse, error) {
	cfg, err := s.Validate(req)
	if err != nil {
		return nil, err
	}
	if !s.runMu.TryLock() {
		return nil, appErrors.ErrSchedulerBusy
	}
	defer s.runMu.Unlock()
	return s.execute(ctx, cfg, scheduleModeSync, true, nil)
}

// RunWithProgress schedules and persists, waiting for any running run to finish first.
func (s *SchedulingService) RunWithProgress(ctx context.Context, req dto.AutoScheduleRequest, progress ProgressFunc) (*dto.ScheduleRunResponse, error) {
	cfg, err := s.Validate(req)
	if err != nil {
		return nil, err
	}
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.execute(ctx, cfg, scheduleModeJob, true, progress)
}

// Preview schedules against the stored collections without writing anything.
func (s *SchedulingService) Preview(ctx context.Context, req dto.AutoScheduleRequest) (*dto.ScheduleRunResponse, error) {
	cfg, err := s.Validate(req)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, cfg, scheduleModePreview, false, nil)
}

func (s *SchedulingService) execute(ctx context.Context, cfg models.ScheduleConfig, mode string, persist bool, progress ProgressFunc) (*dto.ScheduleRunResponse, error) {
	if persist {
		s.stores.Gate.Lock()
		defer s.stores.Gate.Unlock()
	}

	snap, err := s.stores.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result := s.scheduler.Schedule(cfg, snap, progress)
	elapsed := time.Since(started)
	s.metrics.ObserveScheduleRun(mode, cfg.ExamType, result, elapsed)

	for _, warning := range result.Warnings {
		s.logger.Warn("scheduling warning", zap.String("warning", warning))
	}
	s.logger.Sugar().Infow("scheduling run finished",
		"mode", mode,
		"exam_type", cfg.ExamType,
		"scheduled", len(result.NewExams),
		"unscheduled", len(result.UnscheduledCourses),
		"duration_ms", elapsed.Milliseconds(),
	)

	resp := &dto.ScheduleRunResponse{
		ScheduleResult:   result,
		ScheduledCount:   len(result.NewExams),
		UnscheduledCount: len(result.UnscheduledCourses),
	}
	if !persist || len(result.NewExams) == 0 {
		return resp, nil
	}

	if err := ctx.Err(); err != nil {
		s.logger.Warn("discarding scheduling run cancelled before persistence", zap.Error(err))
		return nil, fmt.Errorf("scheduling run cancelled: %w", err)
	}

	allExams := make([]models.Exam, 0, len(snap.Exams)+len(result.NewExams))
	allExams = append(allExams, snap.Exams...)
	allExams = append(allExams, result.NewExams...)
	if err := persistExamsAndLoads(ctx, s.stores, snap.Instructors, allExams, s.logger); err != nil {
		return nil, err
	}
	if s.conflicts != nil {
		s.conflicts.Invalidate(ctx)
	}
	resp.Persisted = true
	return resp, nil
}

// Summary aggregates the stored exam set for dashboards.
func (s *SchedulingService) Summary(ctx context.Context) (*dto.ScheduleSummary, error) {
	snap, err := s.stores.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	summary := &dto.ScheduleSummary{
		TotalExams: len(snap.Exams),
		ExamsByType: map[models.ExamType]int{
			models.ExamTypeMidterm: 0,
			models.ExamTypeFinal:   0,
		},
		InstructorLoads:    make([]dto.InstructorLoad, 0, len(snap.Instructors)),
		UnscheduledCourses: pendingCourses(snap.Courses, snap.Exams),
	}

	enrolled := 0
	for _, exam := range snap.Exams {
		summary.ExamsByType[exam.ExamType]++
		if exam.AutoScheduled {
			summary.AutoScheduled++
		}
		enrolled += exam.EnrolledStudents
	}
	if len(snap.Exams) > 0 {
		summary.AverageEnrollment = float64(enrolled) / float64(len(snap.Exams))
	}

	for _, instructor := range snap.Instructors {
		assigned := countProctored(instructor, snap.Exams)
		maxLoad := instructor.MaxLoad
		if maxLoad <= 0 {
			maxLoad = s.scheduler.defaultMaxLoad
		}
		summary.InstructorLoads = append(summary.InstructorLoads, dto.InstructorLoad{
			InstructorID: instructor.ID,
			FullName:     instructor.FullName,
			Department:   instructor.Department,
			Assigned:     assigned,
			MaxLoad:      maxLoad,
			Display:      fmt.Sprintf("%d/%d", assigned, maxLoad),
			Percentage:   assigned * 100 / maxLoad,
		})
	}

	summary.ConflictCount = DetectConflicts(snap.Exams, snap.Courses, snap.Instructors, snap.Rooms, snap.Students).Total()
	return summary, nil
}
