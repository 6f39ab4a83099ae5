package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/intervue/intervue-backend/internal/response"
	"github.com/intervue/intervue-backend/internal/service"
)

// SubjectHandler serves the quiz subject catalog.
type SubjectHandler struct {
	subjects *service.SubjectService
	log      zerolog.Logger
}

// NewSubjectHandler creates a new SubjectHandler.
func NewSubjectHandler(subjects *service.SubjectService, log zerolog.Logger) *SubjectHandler {
	return &SubjectHandler{
		subjects: subjects,
		log:      log.With().Str("component", "subject_handler").Logger(),
	}
}

// ListSubjects godoc
// GET /api/v1/subjects
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.subjects.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Subject list failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, subjects)
}
