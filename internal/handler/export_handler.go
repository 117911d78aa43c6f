package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/exam-scheduler-api/internal/dto"
	"github.com/noah-isme/exam-scheduler-api/internal/models"
	"github.com/noah-isme/exam-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
	"github.com/noah-isme/exam-scheduler-api/pkg/response"
)

type exportService interface {
	Timetable(ctx context.Context, examType models.ExamType, format string) (*service.ExportFile, error)
	Conflicts(ctx context.Context, format string) (*service.ExportFile, error)
	InstructorCalendar(ctx context.Context, instructorID string) (*service.ExportFile, error)
	StudentCalendar(ctx context.Context, studentID string) (*service.ExportFile, error)
}

// ExportHandler streams timetables, conflict reports and calendars as downloads.
type ExportHandler struct {
	service   exportService
	validator *validator.Validate
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportService, validate *validator.Validate) *ExportHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &ExportHandler{service: svc, validator: validate}
}

func (h *ExportHandler) bindQuery(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return false
	}
	if err := h.validator.Struct(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnsupportedFormat.Code, appErrors.ErrUnsupportedFormat.Status, "invalid export query"))
		return false
	}
	return true
}

func sendFile(c *gin.Context, file *service.ExportFile, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Timetable godoc
// @Summary Download the exam timetable
// @Tags Exports
// @Produce octet-stream
// @Param format query string false "csv, pdf or xlsx"
// @Param examType query string false "midterm or final"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /exams/export [get]
func (h *ExportHandler) Timetable(c *gin.Context) {
	var query dto.ExamExportQuery
	if !h.bindQuery(c, &query) {
		return
	}
	file, err := h.service.Timetable(c.Request.Context(), models.ExamType(query.ExamType), query.Format)
	sendFile(c, file, err)
}

// Conflicts godoc
// @Summary Download the conflict report
// @Tags Exports
// @Produce octet-stream
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /conflicts/export [get]
func (h *ExportHandler) Conflicts(c *gin.Context) {
	var query dto.ConflictExportQuery
	if !h.bindQuery(c, &query) {
		return
	}
	file, err := h.service.Conflicts(c.Request.Context(), query.Format)
	sendFile(c, file, err)
}

// InstructorCalendar godoc
// @Summary Download an instructor's proctoring calendar
// @Tags Exports
// @Produce text/calendar
// @Param id path string true "Instructor ID or employee ID"
// @Success 200 {file} file
// @Router /instructors/{id}/exams.ics [get]
func (h *ExportHandler) InstructorCalendar(c *gin.Context) {
	file, err := h.service.InstructorCalendar(c.Request.Context(), c.Param("id"))
	sendFile(c, file, err)
}

// StudentCalendar godoc
// @Summary Download a student's exam calendar
// @Tags Exports
// @Produce text/calendar
// @Param id path string true "Student ID or student number"
// @Success 200 {file} file
// @Router /students/{id}/exams.ics [get]
func (h *ExportHandler) StudentCalendar(c *gin.Context) {
	file, err := h.service.StudentCalendar(c.Request.Context(), c.Param("id"))
	sendFile(c, file, err)
}
