package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
)

type conflictServiceMock struct {
	report   models.ConflictReport
	cacheHit bool
	err      error
}

func (m *conflictServiceMock) Report(ctx context.Context) (models.ConflictReport, bool, error) {
	return m.report, m.cacheHit, m.err
}

func TestConflictHandlerReportSetsMeta(t *testing.T) {
	svc := &conflictServiceMock{
		cacheHit: true,
		report: models.ConflictReport{
			Room:       []models.Conflict{{Type: models.ConflictTypeRoom, ConflictID: "room-e1-e2"}},
			Instructor: []models.Conflict{},
			Student:    []models.Conflict{},
		},
	}
	handler := NewConflictHandler(svc)
	c, w := newTestContext(http.MethodGet, "/conflicts", nil)

	handler.Report(c)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.EqualValues(t, 1, env.Meta["total"])

	var report models.ConflictReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	require.Len(t, report.Room, 1)
	assert.Equal(t, "room-e1-e2", report.Room[0].ConflictID)
}

func TestConflictHandlerReportError(t *testing.T) {
	svc := &conflictServiceMock{err: appErrors.Wrap(errors.New("db down"), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exams")}
	handler := NewConflictHandler(svc)
	c, w := newTestContext(http.MethodGet, "/conflicts", nil)

	handler.Report(c)

	requireErrorCode(t, w, http.StatusInternalServerError, appErrors.ErrInternal.Code)
}
