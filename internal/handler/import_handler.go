package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-scheduler-api/internal/dto"
	appErrors "github.com/noah-isme/exam-scheduler-api/pkg/errors"
	"github.com/noah-isme/exam-scheduler-api/pkg/response"
)

const maxImportBytes = 10 << 20

type importService interface {
	Import(ctx context.Context, collection string, in io.Reader) (*dto.ImportResult, error)
}

// ImportHandler replaces collections from CSV uploads.
type ImportHandler struct {
	service importService
}

// NewImportHandler constructs the handler.
func NewImportHandler(svc importService) *ImportHandler {
	return &ImportHandler{service: svc}
}

// Import godoc
// @Summary Replace a collection from CSV
// @Description Accepts a multipart "file" field or a raw text/csv body. List cells are "|" separated.
// @Tags Import
// @Accept mpfd
// @Accept text/csv
// @Produce json
// @Param collection path string true "courses, instructors, rooms, students or exams"
// @Param file formData file false "CSV file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /import/{collection} [post]
func (h *ImportHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)

	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "multipart upload requires a file field"))
			return
		}
		file, err := header.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read upload"))
			return
		}
		defer file.Close()
		body = file
	}

	result, err := h.service.Import(c.Request.Context(), c.Param("collection"), body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = appErrors.Clone(appErrors.ErrValidation, "upload exceeds 10MB")
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
