package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

func doubleBookedSnapshot() models.Snapshot {
	snap := schedulingFixture()
	snap.Exams = []models.Exam{
		conflictExam("e1", "CSCI101", "C3", "Red", "Dr. Sarah Johnson"),
		conflictExam("e2", "CSCI201", "C3", "Red", "Dr. Sarah Johnson"),
	}
	return snap
}

func TestConflictServiceReportCachesResult(t *testing.T) {
	mem := newMemoryStores(doubleBookedSnapshot())
	cache := &memoryReportCache{}
	svc := NewConflictService(mem.Stores(), cache, NewMetricsService(), 0, nil)

	report, hit, err := svc.Report(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, report.Room, 1)
	assert.Len(t, report.Instructor, 1)
	assert.Len(t, report.Student, 1)
	assert.Equal(t, 1, cache.sets)

	mem.exams.listErr = errStoreDown
	cached, hit, err := svc.Report(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, report.Total(), cached.Total())
}

func TestConflictServiceInvalidate(t *testing.T) {
	mem := newMemoryStores(doubleBookedSnapshot())
	cache := &memoryReportCache{}
	svc := NewConflictService(mem.Stores(), cache, nil, 0, nil)

	_, _, err := svc.Report(context.Background())
	require.NoError(t, err)
	svc.Invalidate(context.Background())
	assert.Equal(t, 1, cache.cleared)

	_, hit, err := svc.Report(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestConflictServiceWithoutCache(t *testing.T) {
	mem := newMemoryStores(doubleBookedSnapshot())
	svc := NewConflictService(mem.Stores(), nil, nil, 0, nil)

	report, hit, err := svc.Report(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, report.Total())
	svc.Invalidate(context.Background())
}

func TestConflictServicePropagatesLoadErrors(t *testing.T) {
	mem := newMemoryStores(doubleBookedSnapshot())
	mem.rooms.listErr = errStoreDown
	svc := NewConflictService(mem.Stores(), nil, nil, 0, nil)

	_, _, err := svc.Report(context.Background())
	assert.ErrorIs(t, err, errStoreDown)
}
