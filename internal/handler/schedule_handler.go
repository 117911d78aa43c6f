package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-scheduler-api/internal/dto"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
	"github.com/noah-isme/exam-scheduler-api/pkg/response"
)

type schedulingService interface {
	Run(ctx context.Context, req dto.AutoScheduleRequest) (*dto.ScheduleRunResponse, error)
	Preview(ctx context.Context, req dto.AutoScheduleRequest) (*dto.ScheduleRunResponse, error)
	Summary(ctx context.Context) (*dto.ScheduleSummary, error)
}

type scheduleJobService interface {
	Submit(ctx context.Context, req dto.AutoScheduleRequest) (*dto.ScheduleJobResponse, error)
	Get(ctx context.Context, id string) (*dto.ScheduleJobResponse, error)
	Cancel(ctx context.Context, id string) (*dto.ScheduleJobResponse, error)
}

// ScheduleHandler exposes the automatic exam scheduler.
type ScheduleHandler struct {
	scheduling schedulingService
	jobs       scheduleJobService
	logger     *zap.Logger
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(scheduling schedulingService, jobs scheduleJobService, logger *zap.Logger) *ScheduleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleHandler{scheduling: scheduling, jobs: jobs, logger: logger}
}

func bindScheduleRequest(c *gin.Context) (dto.AutoScheduleRequest, bool) {
	var req dto.AutoScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scheduling payload"))
		return req, false
	}
	return req, true
}

// Auto godoc
// @Summary Schedule pending courses and persist the new exams
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body dto.AutoScheduleRequest true "Scheduling parameters"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule/auto [post]
func (h *ScheduleHandler) Auto(c *gin.Context) {
	req, ok := bindScheduleRequest(c)
	if !ok {
		return
	}
	result, err := h.scheduling.Run(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Sugar().Infow("schedule run requested", "user", requesterID(c), "exam_type", req.ExamType, "scheduled", result.ScheduledCount)
	response.JSON(c, http.StatusOK, result, nil)
}

// Preview godoc
// @Summary Schedule pending courses without persisting
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body dto.AutoScheduleRequest true "Scheduling parameters"
// @Success 200 {object} response.Envelope
// @Router /schedule/preview [post]
func (h *ScheduleHandler) Preview(c *gin.Context) {
	req, ok := bindScheduleRequest(c)
	if !ok {
		return
	}
	result, err := h.scheduling.Preview(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SubmitJob godoc
// @Summary Queue an asynchronous scheduling run
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body dto.AutoScheduleRequest true "Scheduling parameters"
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule/jobs [post]
func (h *ScheduleHandler) SubmitJob(c *gin.Context) {
	req, ok := bindScheduleRequest(c)
	if !ok {
		return
	}
	job, err := h.jobs.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Location", c.FullPath()+"/"+job.ID)
	response.JSON(c, http.StatusAccepted, job, nil)
}

// GetJob godoc
// @Summary Poll an asynchronous scheduling run
// @Tags Scheduling
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/jobs/{id} [get]
func (h *ScheduleHandler) GetJob(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// CancelJob godoc
// @Summary Cancel a queued or running scheduling run
// @Tags Scheduling
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule/jobs/{id} [delete]
func (h *ScheduleHandler) CancelJob(c *gin.Context) {
	job, err := h.jobs.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Summary godoc
// @Summary Aggregate the stored exam schedule
// @Tags Scheduling
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/summary [get]
func (h *ScheduleHandler) Summary(c *gin.Context) {
	summary, err := h.scheduling.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
