package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-scheduler-api/internal/middleware"
	"github.com/noah-isme/exam-scheduler-api/internal/models"
	"github.com/noah-isme/exam-scheduler-api/pkg/response"
)

type conflictService interface {
	Report(ctx context.Context) (models.ConflictReport, bool, error)
}

// ConflictHandler serves the conflict audit.
type ConflictHandler struct {
	service conflictService
}

// NewConflictHandler constructs the handler.
func NewConflictHandler(svc conflictService) *ConflictHandler {
	return &ConflictHandler{service: svc}
}

// Report godoc
// @Summary Audit the stored exams for conflicts
// @Description Room, instructor and student double bookings plus capacity overflows.
// @Tags Conflicts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /conflicts [get]
func (h *ConflictHandler) Report(c *gin.Context) {
	report, cacheHit, err := h.service.Report(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)

	meta := middleware.ExtractMeta(c)
	meta["total"] = report.Total()
	meta["by_type"] = report.CountByType()
	response.JSON(c, http.StatusOK, report, nil, meta)
}
