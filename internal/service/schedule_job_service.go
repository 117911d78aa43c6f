package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-scheduler-api/internal/dto"
	"github.com/noah-isme/exam-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
	"github.com/noah-isme/exam-scheduler-api/pkg/jobs"
)

const scheduleJobType = "exam_schedule"

type scheduleRunner interface {
	Validate(req dto.AutoScheduleRequest) (models.ScheduleConfig, error)
	RunWithProgress(ctx context.Context, req dto.AutoScheduleRequest, progress ProgressFunc) (*dto.ScheduleRunResponse, error)
}

// ScheduleJobConfig tunes the asynchronous runner.
type ScheduleJobConfig struct {
	Buffer    int
	Retention time.Duration
}

type scheduleJob struct {
	view   dto.ScheduleJobResponse
	cancel context.CancelFunc
}

// ScheduleJobService runs scheduling requests one at a time on a background worker and
// keeps their status for polling.
type ScheduleJobService struct {
	runner    scheduleRunner
	queue     *jobs.Queue
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu   sync.RWMutex
	jobs map[string]*scheduleJob
}

// NewScheduleJobService constructs the service. Start must be called before Submit.
func NewScheduleJobService(runner scheduleRunner, cfg ScheduleJobConfig, logger *zap.Logger) *ScheduleJobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = time.Hour
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 8
	}
	s := &ScheduleJobService{
		runner:    runner,
		retention: cfg.Retention,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		jobs:      make(map[string]*scheduleJob),
	}
	s.queue = jobs.NewQueue("exam-schedule", s.handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: cfg.Buffer,
		Logger:     logger,
	})
	return s
}

// Start launches the worker.
func (s *ScheduleJobService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop halts the worker and waits for the running job to return.
func (s *ScheduleJobService) Stop() {
	s.queue.Stop()
}

// Submit validates and queues a scheduling run.
func (s *ScheduleJobService) Submit(ctx context.Context, req dto.AutoScheduleRequest) (*dto.ScheduleJobResponse, error) {
	if _, err := s.runner.Validate(req); err != nil {
		return nil, err
	}
	s.prune()

	jobCtx, cancel := context.WithCancel(context.Background())
	entry := &scheduleJob{
		view: dto.ScheduleJobResponse{
			ID:        uuid.NewString(),
			Status:    dto.ScheduleJobQueued,
			Request:   req,
			CreatedAt: s.now(),
		},
		cancel: cancel,
	}

	s.mu.Lock()
	s.jobs[entry.view.ID] = entry
	s.mu.Unlock()

	err := s.queue.TryEnqueue(jobs.Job{ID: entry.view.ID, Type: scheduleJobType, Payload: req, Ctx: jobCtx})
	if err != nil {
		cancel()
		s.mu.Lock()
		delete(s.jobs, entry.view.ID)
		s.mu.Unlock()
		if errors.Is(err, jobs.ErrQueueFull) {
			return nil, appErrors.Clone(appErrors.ErrSchedulerBusy, "scheduling queue is full")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue scheduling run")
	}

	s.logger.Sugar().Infow("scheduling job queued", "job_id", entry.view.ID, "exam_type", req.ExamType)
	view := entry.view
	return &view, nil
}

// Get returns the current view of a job.
func (s *ScheduleJobService) Get(ctx context.Context, id string) (*dto.ScheduleJobResponse, error) {
	s.prune()
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.jobs[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "scheduling job not found")
	}
	view := entry.view
	return &view, nil
}

// Cancel aborts a queued or running job. A running job stops before it persists anything.
func (s *ScheduleJobService) Cancel(ctx context.Context, id string) (*dto.ScheduleJobResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.jobs[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "scheduling job not found")
	}
	switch entry.view.Status {
	case dto.ScheduleJobQueued:
		entry.cancel()
		s.finish(entry, dto.ScheduleJobCancelled)
	case dto.ScheduleJobRunning:
		entry.cancel()
	default:
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("scheduling job already %s", entry.view.Status))
	}
	view := entry.view
	return &view, nil
}

func (s *ScheduleJobService) handle(queueCtx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(dto.AutoScheduleRequest)
	if !ok {
		return jobs.Permanent(fmt.Errorf("unexpected payload %T", job.Payload))
	}

	ctx, cancel := context.WithCancel(job.Context())
	defer cancel()
	stop := context.AfterFunc(queueCtx, cancel)
	defer stop()

	if !s.transition(job.ID, func(entry *scheduleJob) bool {
		if entry.view.Status != dto.ScheduleJobQueued {
			return false
		}
		entry.view.Status = dto.ScheduleJobRunning
		entry.view.CurrentStep = "Loading collections"
		return true
	}) {
		return nil
	}

	result, err := s.runner.RunWithProgress(ctx, req, func(done, total int, courseCode string) {
		s.transition(job.ID, func(entry *scheduleJob) bool {
			if total > 0 {
				entry.view.Progress = done * 100 / total
			}
			entry.view.CurrentStep = "Scheduling " + courseCode
			return true
		})
	})

	if err == nil && ctx.Err() != nil && !result.Persisted {
		err = ctx.Err()
	}

	switch {
	case err != nil && errors.Is(err, context.Canceled):
		s.transition(job.ID, func(entry *scheduleJob) bool {
			s.finish(entry, dto.ScheduleJobCancelled)
			return true
		})
		s.logger.Sugar().Infow("scheduling job cancelled", "job_id", job.ID)
		return nil
	case err != nil:
		s.transition(job.ID, func(entry *scheduleJob) bool {
			entry.view.Error = err.Error()
			s.finish(entry, dto.ScheduleJobFailed)
			return true
		})
		return jobs.Permanent(err)
	}

	s.transition(job.ID, func(entry *scheduleJob) bool {
		entry.view.Result = result
		entry.view.Progress = 100
		s.finish(entry, dto.ScheduleJobSucceeded)
		return true
	})
	s.logger.Sugar().Infow("scheduling job finished", "job_id", job.ID, "scheduled", result.ScheduledCount, "unscheduled", result.UnscheduledCount)
	return nil
}

// transition applies fn to the job under the write lock and reports whether it did.
func (s *ScheduleJobService) transition(id string, fn func(entry *scheduleJob) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.jobs[id]
	if !ok {
		return false
	}
	return fn(entry)
}

func (s *ScheduleJobService) finish(entry *scheduleJob, status dto.ScheduleJobStatus) {
	finished := s.now()
	entry.view.Status = status
	entry.view.CurrentStep = ""
	entry.view.FinishedAt = &finished
}

func (s *ScheduleJobService) prune() {
	cutoff := s.now().Add(-s.retention)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.jobs {
		if entry.view.FinishedAt != nil && entry.view.FinishedAt.Before(cutoff) {
			entry.cancel()
			delete(s.jobs, id)
		}
	}
}
