package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
	"github.com/noah-isme/exam-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
)

type exportServiceMock struct {
	examType models.ExamType
	format   string
	calendar string
	err      error
}

func (m *exportServiceMock) Timetable(ctx context.Context, examType models.ExamType, format string) (*service.ExportFile, error) {
	m.examType, m.format = examType, format
	if m.err != nil {
		return nil, m.err
	}
	return &service.ExportFile{Filename: "exam_timetable.csv", ContentType: "text/csv", Data: []byte("Course Code\nCSCI101\n")}, nil
}

func (m *exportServiceMock) Conflicts(ctx context.Context, format string) (*service.ExportFile, error) {
	m.format = format
	return &service.ExportFile{Filename: "exam_conflicts.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}, nil
}

func (m *exportServiceMock) InstructorCalendar(ctx context.Context, instructorID string) (*service.ExportFile, error) {
	m.calendar = "instructor:" + instructorID
	return &service.ExportFile{Filename: "instructor.ics", ContentType: "text/calendar", Data: []byte("BEGIN:VCALENDAR")}, nil
}

func (m *exportServiceMock) StudentCalendar(ctx context.Context, studentID string) (*service.ExportFile, error) {
	m.calendar = "student:" + studentID
	if m.err != nil {
		return nil, m.err
	}
	return &service.ExportFile{Filename: "student.ics", ContentType: "text/calendar", Data: []byte("BEGIN:VCALENDAR")}, nil
}

func TestExportHandlerTimetableStreamsAttachment(t *testing.T) {
	svc := &exportServiceMock{}
	handler := NewExportHandler(svc, nil)
	c, w := newTestContext(http.MethodGet, "/exams/export?format=csv&examType=final", nil)

	handler.Timetable(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ExamTypeFinal, svc.examType)
	assert.Equal(t, "csv", svc.format)
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="exam_timetable.csv"`)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "CSCI101")
}

func TestExportHandlerTimetableRejectsUnknownFormat(t *testing.T) {
	svc := &exportServiceMock{}
	handler := NewExportHandler(svc, nil)
	c, w := newTestContext(http.MethodGet, "/exams/export?format=docx", nil)

	handler.Timetable(c)

	requireErrorCode(t, w, http.StatusBadRequest, appErrors.ErrUnsupportedFormat.Code)
	assert.Empty(t, svc.format)
}

func TestExportHandlerConflictsRejectsSpreadsheet(t *testing.T) {
	svc := &exportServiceMock{}
	handler := NewExportHandler(svc, nil)
	c, w := newTestContext(http.MethodGet, "/conflicts/export?format=xlsx", nil)

	handler.Conflicts(c)

	requireErrorCode(t, w, http.StatusBadRequest, appErrors.ErrUnsupportedFormat.Code)
}

func TestExportHandlerConflictsPDF(t *testing.T) {
	svc := &exportServiceMock{}
	handler := NewExportHandler(svc, nil)
	c, w := newTestContext(http.MethodGet, "/conflicts/export?format=pdf", nil)

	handler.Conflicts(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pdf", svc.format)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
}

func TestExportHandlerCalendars(t *testing.T) {
	svc := &exportServiceMock{}
	handler := NewExportHandler(svc, nil)

	c, w := newTestContext(http.MethodGet, "/instructors/i1/exams.ics", nil)
	c.Params = gin.Params{{Key: "id", Value: "i1"}}
	handler.InstructorCalendar(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "instructor:i1", svc.calendar)
	assert.Equal(t, "text/calendar", w.Header().Get("Content-Type"))

	svc.err = appErrors.Clone(appErrors.ErrNotFound, "student not found")
	c, w = newTestContext(http.MethodGet, "/students/s9/exams.ics", nil)
	c.Params = gin.Params{{Key: "id", Value: "s9"}}
	handler.StudentCalendar(c)
	requireErrorCode(t, w, http.StatusNotFound, appErrors.ErrNotFound.Code)
}
