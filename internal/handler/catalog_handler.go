package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-scheduler-api/internal/dto"
	"github.com/noah-isme/exam-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
	"github.com/noah-isme/exam-scheduler-api/pkg/response"
)

type catalogService interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
	ReplaceCourses(ctx context.Context, courses []models.Course) ([]models.Course, error)
	ListInstructors(ctx context.Context) ([]models.Instructor, error)
	ReplaceInstructors(ctx context.Context, instructors []models.Instructor) ([]models.Instructor, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	ReplaceRooms(ctx context.Context, rooms []models.Room) ([]models.Room, error)
	ClearUsedSeatColors(ctx context.Context, roomID string) (*models.Room, error)
	ListStudents(ctx context.Context) ([]models.Student, error)
	ReplaceStudents(ctx context.Context, students []models.Student) ([]models.Student, error)
	ListExams(ctx context.Context, examType models.ExamType) ([]models.Exam, error)
	ReplaceExams(ctx context.Context, exams []models.Exam) ([]models.Exam, error)
	DeleteExam(ctx context.Context, id string) error
	ClearExams(ctx context.Context) error
	InstructorExams(ctx context.Context, instructorID string) (*models.Instructor, []models.Exam, error)
	StudentExams(ctx context.Context, studentID string) (*models.Student, []models.Exam, error)
}

// CatalogHandler exposes the course, instructor, room, student and exam collections.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(svc catalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

func bindCollection[T any](c *gin.Context, name string) ([]T, bool) {
	var items []T
	if err := c.ShouldBindJSON(&items); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+name+" payload"))
		return nil, false
	}
	if items == nil {
		items = []T{}
	}
	return items, true
}

func respondList[T any](c *gin.Context, items []T, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, map[string]interface{}{"count": len(items)})
}

// ListCourses godoc
// @Summary List courses
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	courses, err := h.service.ListCourses(c.Request.Context())
	respondList(c, courses, err)
}

// ReplaceCourses godoc
// @Summary Replace the course collection
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body []models.Course true "Courses"
// @Success 200 {object} response.Envelope
// @Router /courses [put]
func (h *CatalogHandler) ReplaceCourses(c *gin.Context) {
	courses, ok := bindCollection[models.Course](c, "courses")
	if !ok {
		return
	}
	stored, err := h.service.ReplaceCourses(c.Request.Context(), courses)
	respondList(c, stored, err)
}

// ListInstructors godoc
// @Summary List instructors
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /instructors [get]
func (h *CatalogHandler) ListInstructors(c *gin.Context) {
	instructors, err := h.service.ListInstructors(c.Request.Context())
	respondList(c, instructors, err)
}

// ReplaceInstructors godoc
// @Summary Replace the instructor collection
// @Description Current loads are recomputed from the stored exams.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body []models.Instructor true "Instructors"
// @Success 200 {object} response.Envelope
// @Router /instructors [put]
func (h *CatalogHandler) ReplaceInstructors(c *gin.Context) {
	instructors, ok := bindCollection[models.Instructor](c, "instructors")
	if !ok {
		return
	}
	stored, err := h.service.ReplaceInstructors(c.Request.Context(), instructors)
	respondList(c, stored, err)
}

// ListRooms godoc
// @Summary List rooms
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *CatalogHandler) ListRooms(c *gin.Context) {
	rooms, err := h.service.ListRooms(c.Request.Context())
	respondList(c, rooms, err)
}

// ReplaceRooms godoc
// @Summary Replace the room collection
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body []models.Room true "Rooms"
// @Success 200 {object} response.Envelope
// @Router /rooms [put]
func (h *CatalogHandler) ReplaceRooms(c *gin.Context) {
	rooms, ok := bindCollection[models.Room](c, "rooms")
	if !ok {
		return
	}
	stored, err := h.service.ReplaceRooms(c.Request.Context(), rooms)
	respondList(c, stored, err)
}

// ClearUsedSeatColors godoc
// @Summary Reset the used seat colors of a room
// @Tags Catalog
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id}/seat-colors/clear [post]
func (h *CatalogHandler) ClearUsedSeatColors(c *gin.Context) {
	room, err := h.service.ClearUsedSeatColors(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.SeatColorClearResult{Room: *room}, nil)
}

// ListStudents godoc
// @Summary List students
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *CatalogHandler) ListStudents(c *gin.Context) {
	students, err := h.service.ListStudents(c.Request.Context())
	respondList(c, students, err)
}

// ReplaceStudents godoc
// @Summary Replace the student collection
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body []models.Student true "Students"
// @Success 200 {object} response.Envelope
// @Router /students [put]
func (h *CatalogHandler) ReplaceStudents(c *gin.Context) {
	students, ok := bindCollection[models.Student](c, "students")
	if !ok {
		return
	}
	stored, err := h.service.ReplaceStudents(c.Request.Context(), students)
	respondList(c, stored, err)
}

// ListExams godoc
// @Summary List exams
// @Tags Exams
// @Produce json
// @Param examType query string false "midterm or final"
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *CatalogHandler) ListExams(c *gin.Context) {
	examType := models.ExamType(c.Query("examType"))
	if examType != "" && examType != models.ExamTypeMidterm && examType != models.ExamTypeFinal {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "examType must be midterm or final"))
		return
	}
	exams, err := h.service.ListExams(c.Request.Context(), examType)
	respondList(c, exams, err)
}

// ReplaceExams godoc
// @Summary Replace the exam collection
// @Description Instructor loads are recomputed from the new exam set.
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body []models.Exam true "Exams"
// @Success 200 {object} response.Envelope
// @Router /exams [put]
func (h *CatalogHandler) ReplaceExams(c *gin.Context) {
	exams, ok := bindCollection[models.Exam](c, "exams")
	if !ok {
		return
	}
	stored, err := h.service.ReplaceExams(c.Request.Context(), exams)
	respondList(c, stored, err)
}

// DeleteExam godoc
// @Summary Delete an exam
// @Tags Exams
// @Param id path string true "Exam ID"
// @Success 204
// @Router /exams/{id} [delete]
func (h *CatalogHandler) DeleteExam(c *gin.Context) {
	if err := h.service.DeleteExam(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ClearExams godoc
// @Summary Delete every exam
// @Tags Exams
// @Success 204
// @Router /exams [delete]
func (h *CatalogHandler) ClearExams(c *gin.Context) {
	if err := h.service.ClearExams(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// InstructorExams godoc
// @Summary List the exams an instructor proctors
// @Tags Exams
// @Produce json
// @Param id path string true "Instructor ID or employee ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /instructors/{id}/exams [get]
func (h *CatalogHandler) InstructorExams(c *gin.Context) {
	instructor, exams, err := h.service.InstructorExams(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"instructor": instructor, "exams": exams}, nil)
}

// StudentExams godoc
// @Summary List the exams of a student's courses
// @Tags Exams
// @Produce json
// @Param id path string true "Student ID or student number"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/exams [get]
func (h *CatalogHandler) StudentExams(c *gin.Context) {
	student, exams, err := h.service.StudentExams(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"student": student, "exams": exams}, nil)
}
