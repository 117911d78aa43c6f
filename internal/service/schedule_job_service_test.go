package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-scheduler-api/internal/dto"
	"github.com/noah-isme/exam-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
)

type blockingRunner struct {
	started chan struct{}
}

func (b *blockingRunner) Validate(req dto.AutoScheduleRequest) (models.ScheduleConfig, error) {
	return models.ScheduleConfig{}, nil
}

func (b *blockingRunner) RunWithProgress(ctx context.Context, req dto.AutoScheduleRequest, progress ProgressFunc) (*dto.ScheduleRunResponse, error) {
	progress(1, 4, "CSCI401")
	select {
	case b.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

type failingRunner struct{}

func (failingRunner) Validate(req dto.AutoScheduleRequest) (models.ScheduleConfig, error) {
	return models.ScheduleConfig{}, nil
}

func (failingRunner) RunWithProgress(ctx context.Context, req dto.AutoScheduleRequest, progress ProgressFunc) (*dto.ScheduleRunResponse, error) {
	return nil, errStoreDown
}

func startJobService(t *testing.T, runner scheduleRunner, buffer int) *ScheduleJobService {
	t.Helper()
	svc := NewScheduleJobService(runner, ScheduleJobConfig{Buffer: buffer, Retention: time.Hour}, nil)
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return svc
}

func waitForStatus(t *testing.T, svc *ScheduleJobService, id string, status dto.ScheduleJobStatus) *dto.ScheduleJobResponse {
	t.Helper()
	var view *dto.ScheduleJobResponse
	require.Eventually(t, func() bool {
		current, err := svc.Get(context.Background(), id)
		if err != nil {
			return false
		}
		view = current
		return current.Status == status
	}, 2*time.Second, 10*time.Millisecond)
	return view
}

func TestScheduleJobServiceRunsToCompletion(t *testing.T) {
	mem := newMemoryStores(schedulingFixture())
	svc := startJobService(t, newSchedulingService(mem, nil), 4)

	queued, err := svc.Submit(context.Background(), midtermRequest())
	require.NoError(t, err)
	assert.Equal(t, dto.ScheduleJobQueued, queued.Status)

	done := waitForStatus(t, svc, queued.ID, dto.ScheduleJobSucceeded)
	assert.Equal(t, 100, done.Progress)
	require.NotNil(t, done.Result)
	assert.Equal(t, 3, done.Result.ScheduledCount)
	assert.True(t, done.Result.Persisted)
	assert.NotNil(t, done.FinishedAt)
	assert.Len(t, mem.exams.snapshot(), 3)
}

func TestScheduleJobServiceRejectsInvalidRequest(t *testing.T) {
	svc := startJobService(t, newSchedulingService(newMemoryStores(models.Snapshot{}), nil), 4)

	_, err := svc.Submit(context.Background(), dto.AutoScheduleRequest{ExamType: "midterm"})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestScheduleJobServiceCancelRunningJob(t *testing.T) {
	runner := &blockingRunner{started: make(chan struct{}, 1)}
	svc := startJobService(t, runner, 4)

	job, err := svc.Submit(context.Background(), midtermRequest())
	require.NoError(t, err)
	<-runner.started

	running := waitForStatus(t, svc, job.ID, dto.ScheduleJobRunning)
	assert.Equal(t, 25, running.Progress)
	assert.Equal(t, "Scheduling CSCI401", running.CurrentStep)

	_, err = svc.Cancel(context.Background(), job.ID)
	require.NoError(t, err)
	waitForStatus(t, svc, job.ID, dto.ScheduleJobCancelled)

	_, err = svc.Cancel(context.Background(), job.ID)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestScheduleJobServiceCancelQueuedJobAndQueueFull(t *testing.T) {
	runner := &blockingRunner{started: make(chan struct{}, 1)}
	svc := startJobService(t, runner, 1)

	first, err := svc.Submit(context.Background(), midtermRequest())
	require.NoError(t, err)
	<-runner.started

	second, err := svc.Submit(context.Background(), midtermRequest())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), midtermRequest())
	assert.ErrorIs(t, err, appErrors.ErrSchedulerBusy)

	cancelled, err := svc.Cancel(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.ScheduleJobCancelled, cancelled.Status)

	_, err = svc.Cancel(context.Background(), first.ID)
	require.NoError(t, err)
	waitForStatus(t, svc, first.ID, dto.ScheduleJobCancelled)
}

func TestScheduleJobServiceRecordsFailure(t *testing.T) {
	svc := startJobService(t, failingRunner{}, 4)

	job, err := svc.Submit(context.Background(), midtermRequest())
	require.NoError(t, err)

	failed := waitForStatus(t, svc, job.ID, dto.ScheduleJobFailed)
	assert.Equal(t, errStoreDown.Error(), failed.Error)
}

func TestScheduleJobServiceUnknownJob(t *testing.T) {
	svc := startJobService(t, failingRunner{}, 4)

	_, err := svc.Get(context.Background(), "missing")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestScheduleJobServicePrunesExpiredJobs(t *testing.T) {
	svc := startJobService(t, failingRunner{}, 4)
	job, err := svc.Submit(context.Background(), midtermRequest())
	require.NoError(t, err)
	waitForStatus(t, svc, job.ID, dto.ScheduleJobFailed)

	svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	_, err = svc.Get(context.Background(), job.ID)
	assert.Error(t, err)
}
