package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
	"github.com/noah-isme/exam-scheduler-api/pkg/feedtoken"
	"github.com/noah-isme/exam-scheduler-api/pkg/response"
)

type feedSigner interface {
	Generate(kind, subjectID string) (string, time.Time, error)
	Parse(token string) (kind, subjectID string, err error)
}

type calendarService interface {
	InstructorCalendar(ctx context.Context, instructorID string) (*service.ExportFile, error)
	StudentCalendar(ctx context.Context, studentID string) (*service.ExportFile, error)
}

// FeedLink is a subscribable calendar URL.
type FeedLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FeedHandler issues and serves signed calendar subscription feeds.
type FeedHandler struct {
	signer    feedSigner
	calendars calendarService
	basePath  string
}

// NewFeedHandler constructs the handler. basePath is the public prefix the feed route is mounted on.
func NewFeedHandler(signer feedSigner, calendars calendarService, basePath string) *FeedHandler {
	return &FeedHandler{signer: signer, calendars: calendars, basePath: strings.TrimRight(basePath, "/")}
}

// InstructorLink godoc
// @Summary Create a calendar subscription link for an instructor
// @Tags Exports
// @Produce json
// @Param id path string true "Instructor ID or employee ID"
// @Success 200 {object} response.Envelope
// @Router /instructors/{id}/calendar-link [get]
func (h *FeedHandler) InstructorLink(c *gin.Context) {
	h.link(c, feedtoken.KindInstructor)
}

// StudentLink godoc
// @Summary Create a calendar subscription link for a student
// @Tags Exports
// @Produce json
// @Param id path string true "Student ID or student number"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/calendar-link [get]
func (h *FeedHandler) StudentLink(c *gin.Context) {
	h.link(c, feedtoken.KindStudent)
}

func (h *FeedHandler) link(c *gin.Context, kind string) {
	token, expiresAt, err := h.signer.Generate(kind, c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign feed link"))
		return
	}
	response.JSON(c, http.StatusOK, FeedLink{URL: h.basePath + "/feeds/" + token + ".ics", ExpiresAt: expiresAt}, nil)
}

// Feed serves the calendar a signed token grants. No bearer token is required.
func (h *FeedHandler) Feed(c *gin.Context) {
	kind, subjectID, err := h.signer.Parse(strings.TrimSuffix(c.Param("token"), ".ics"))
	if err != nil {
		msg := "invalid feed token"
		if errors.Is(err, feedtoken.ErrExpired) {
			msg = "feed token expired"
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, msg))
		return
	}

	var file *service.ExportFile
	switch kind {
	case feedtoken.KindInstructor:
		file, err = h.calendars.InstructorCalendar(c.Request.Context(), subjectID)
	default:
		file, err = h.calendars.StudentCalendar(c.Request.Context(), subjectID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
