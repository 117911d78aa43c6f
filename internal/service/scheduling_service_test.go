package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/exam-scheduler-api/internal/dto"
	"github.com/noah-isme/exam-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
)

type recordingConflictInvalidator struct {
	calls int
}

func (r *recordingConflictInvalidator) Invalidate(ctx context.Context) {
	r.calls++
}

func newSchedulingService(mem *memoryStores, conflicts conflictInvalidator) *SchedulingService {
	return NewSchedulingService(mem.Stores(), conflicts, NewMetricsService(), nil, nil, SchedulingConfig{
		MidtermStartWeek: 7,
		FinalStartWeek:   16,
		MidtermWeeks:     4,
		FinalWeeks:       6,
		DefaultMaxLoad:   8,
		SnugMargin:       10,
	})
}

func midtermRequest() dto.AutoScheduleRequest {
	return dto.AutoScheduleRequest{SemesterStart: "2024-09-02", ExamType: "midterm"}
}

func TestSchedulingServiceValidateResolvesDefaults(t *testing.T) {
	svc := newSchedulingService(newMemoryStores(models.Snapshot{}), nil)

	cfg, err := svc.Validate(dto.AutoScheduleRequest{SemesterStart: "2024-09-02", ExamType: "final"})
	require.NoError(t, err)
	assert.Equal(t, models.ExamTypeFinal, cfg.ExamType)
	assert.Equal(t, 6, cfg.Weeks)
	assert.Equal(t, 2.0, cfg.ExamDuration)
	assert.Equal(t, 16, cfg.StartWeek())
}

func TestSchedulingServiceValidateRejectsBadPayload(t *testing.T) {
	svc := newSchedulingService(newMemoryStores(models.Snapshot{}), nil)

	for name, req := range map[string]dto.AutoScheduleRequest{
		"missing date": {ExamType: "midterm"},
		"bad date":     {SemesterStart: "02/09/2024", ExamType: "midterm"},
		"bad type":     {SemesterStart: "2024-09-02", ExamType: "quiz"},
		"long exam":    {SemesterStart: "2024-09-02", ExamType: "midterm", ExamDuration: 12},
	} {
		_, err := svc.Validate(req)
		require.Error(t, err, name)
		var appErr *appErrors.Error
		require.True(t, errors.As(err, &appErr), name)
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code, name)
	}
}

func TestSchedulingServiceRunPersistsExamsAndLoads(t *testing.T) {
	mem := newMemoryStores(schedulingFixture())
	conflicts := &recordingConflictInvalidator{}
	svc := newSchedulingService(mem, conflicts)

	resp, err := svc.Run(context.Background(), midtermRequest())
	require.NoError(t, err)
	assert.True(t, resp.Persisted)
	assert.Equal(t, 3, resp.ScheduledCount)
	assert.Zero(t, resp.UnscheduledCount)

	stored := mem.exams.snapshot()
	require.Len(t, stored, 3)
	loads := 0
	for _, instructor := range mem.instructors.snapshot() {
		loads += instructor.CurrentLoad
	}
	assert.Equal(t, 3, loads)
	assert.Equal(t, 1, conflicts.calls)

	report := DetectConflicts(stored, mem.courses.snapshot(), mem.instructors.snapshot(), mem.rooms.snapshot(), mem.students.snapshot())
	assert.Zero(t, report.Total())
}

func TestSchedulingServiceRunKeepsExistingExams(t *testing.T) {
	fixture := schedulingFixture()
	fixture.Exams = []models.Exam{{
		ID: "e0", CourseCode: "CSCI101", Room: "C3", SeatColor: "Red", Date: "2024-10-19", Time: "08:00 - 10:00",
		Instructor: "Dr. Sarah Johnson", InstructorID: "i1", ExamType: models.ExamTypeMidterm,
	}}
	mem := newMemoryStores(fixture)
	svc := newSchedulingService(mem, nil)

	resp, err := svc.Run(context.Background(), midtermRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.ScheduledCount)
	assert.Len(t, mem.exams.snapshot(), 3)
	assert.Equal(t, "e0", mem.exams.snapshot()[0].ID)
}

func TestSchedulingServicePreviewDoesNotPersist(t *testing.T) {
	mem := newMemoryStores(schedulingFixture())
	svc := newSchedulingService(mem, nil)

	resp, err := svc.Preview(context.Background(), midtermRequest())
	require.NoError(t, err)
	assert.False(t, resp.Persisted)
	assert.Len(t, resp.NewExams, 3)
	assert.Empty(t, mem.exams.snapshot())
	assert.Zero(t, mem.exams.replaces)
}

func TestSchedulingServiceRunFailsFastWhenBusy(t *testing.T) {
	svc := newSchedulingService(newMemoryStores(schedulingFixture()), nil)
	svc.runMu.Lock()
	defer svc.runMu.Unlock()

	_, err := svc.Run(context.Background(), midtermRequest())
	assert.ErrorIs(t, err, appErrors.ErrSchedulerBusy)
}

func TestSchedulingServiceCancelledRunIsNotPersisted(t *testing.T) {
	mem := newMemoryStores(schedulingFixture())
	svc := newSchedulingService(mem, nil)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := svc.RunWithProgress(ctx, midtermRequest(), func(done, total int, courseCode string) {
		if done == total {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mem.exams.snapshot())
}

func TestSchedulingServiceReportsProgress(t *testing.T) {
	svc := newSchedulingService(newMemoryStores(schedulingFixture()), nil)
	var codes []string

	_, err := svc.RunWithProgress(context.Background(), midtermRequest(), func(done, total int, courseCode string) {
		assert.Equal(t, 3, total)
		codes = append(codes, courseCode)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"CSCI401", "CSCI201", "CSCI101"}, codes)
}

func TestSchedulingServiceStoreFailure(t *testing.T) {
	mem := newMemoryStores(schedulingFixture())
	mem.exams.replaceErr = errStoreDown
	svc := newSchedulingService(mem, nil)

	_, err := svc.Run(context.Background(), midtermRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)
}

func TestSchedulingServiceSummary(t *testing.T) {
	fixture := schedulingFixture()
	fixture.Instructors[0].MaxLoad = 4
	fixture.Exams = []models.Exam{
		{ID: "e1", CourseCode: "CSCI101", Room: "C3", SeatColor: "Red", Date: "2024-10-19", Time: "08:00 - 10:00", Instructor: "Dr. Sarah Johnson", InstructorID: "i1", EnrolledStudents: 30, RoomCapacity: 40, ExamType: models.ExamTypeMidterm, AutoScheduled: true},
		{ID: "e2", CourseCode: "CSCI201", Room: "C3", SeatColor: "Red", Date: "2024-10-19", Time: "08:00 - 10:00", Instructor: "Dr. Alan Kay", InstructorID: "i2", EnrolledStudents: 50, RoomCapacity: 40, ExamType: models.ExamTypeFinal},
	}
	svc := newSchedulingService(newMemoryStores(fixture), nil)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalExams)
	assert.Equal(t, 1, summary.ExamsByType[models.ExamTypeMidterm])
	assert.Equal(t, 1, summary.ExamsByType[models.ExamTypeFinal])
	assert.Equal(t, 1, summary.AutoScheduled)
	assert.InDelta(t, 40.0, summary.AverageEnrollment, 0.001)
	require.Len(t, summary.UnscheduledCourses, 1)
	assert.Equal(t, "CSCI401", summary.UnscheduledCourses[0].Code)

	require.Len(t, summary.InstructorLoads, 2)
	assert.Equal(t, "1/4", summary.InstructorLoads[0].Display)
	assert.Equal(t, 25, summary.InstructorLoads[0].Percentage)
	assert.Equal(t, "1/8", summary.InstructorLoads[1].Display)

	// e1 and e2 share room, color and slot, and Ada sits both
	assert.Equal(t, 2, summary.ConflictCount)
}

func TestSchedulingServiceCatalogEditDuringRunIsNotLost(t *testing.T) {
	fixture := schedulingFixture()
	fixture.Exams = []models.Exam{{
		ID: "manual-1", CourseCode: "HIST100", Room: "D4", SeatColor: "Blue", Date: "2024-12-20", Time: "08:00 - 10:00",
		Instructor: "Dr. Sarah Johnson", InstructorID: "i1", ExamType: models.ExamTypeMidterm,
	}}
	mem := newMemoryStores(fixture)
	svc := newSchedulingService(mem, nil)
	catalog, _ := newCatalog(mem)

	deleted := make(chan error, 1)
	started := false
	resp, err := svc.RunWithProgress(context.Background(), midtermRequest(), func(done, total int, courseCode string) {
		if started {
			return
		}
		started = true
		go func() { deleted <- catalog.DeleteExam(context.Background(), "manual-1") }()
	})
	require.NoError(t, err)
	require.True(t, resp.Persisted)
	require.NoError(t, <-deleted)

	stored := mem.exams.snapshot()
	assert.Len(t, stored, resp.ScheduledCount)
	for _, exam := range stored {
		assert.NotEqual(t, "manual-1", exam.ID)
	}
	loads := 0
	for _, instructor := range mem.instructors.snapshot() {
		loads += instructor.CurrentLoad
	}
	assert.Equal(t, len(stored), loads)
}

func TestSchedulingServiceLogsStaleLoadsWhenLoadWriteFails(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	mem := newMemoryStores(schedulingFixture())
	mem.instructors.replaceErr = errStoreDown
	svc := NewSchedulingService(mem.Stores(), nil, nil, nil, zap.New(core), SchedulingConfig{
		MidtermStartWeek: 7,
		MidtermWeeks:     4,
		DefaultMaxLoad:   8,
		SnugMargin:       10,
	})

	_, err := svc.Run(context.Background(), midtermRequest())
	require.Error(t, err)
	assertAppCode(t, err, appErrors.ErrInternal.Code)
	assert.Len(t, mem.exams.snapshot(), 3)
	assert.Equal(t, 1, logs.FilterMessage("exams stored but instructor loads are stale").Len())
}
