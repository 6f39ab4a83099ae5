package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/intervue/intervue-backend/internal/gateway"
	"github.com/intervue/intervue-backend/internal/model"
	"github.com/intervue/intervue-backend/internal/response"
	"github.com/intervue/intervue-backend/internal/service"
	"github.com/intervue/intervue-backend/internal/session"
)

// InterviewHandler drives spoken-interview sessions over HTTP. The live
// state machine itself runs in internal/session; these endpoints create,
// inspect, and end sessions.
type InterviewHandler struct {
	registry *session.Registry
	resumes  *service.ResumeService
	tokens   *service.TokenService
	source   gateway.QuestionSource
	scorer   gateway.Scorer
	sink     session.ViolationSink
	clock    session.Clock
	log      zerolog.Logger
}

// NewInterviewHandler creates a new InterviewHandler.
func NewInterviewHandler(
	registry *session.Registry,
	resumes *service.ResumeService,
	tokens *service.TokenService,
	source gateway.QuestionSource,
	scorer gateway.Scorer,
	sink session.ViolationSink,
	log zerolog.Logger,
) *InterviewHandler {
	return &InterviewHandler{
		registry: registry,
		resumes:  resumes,
		tokens:   tokens,
		source:   source,
		scorer:   scorer,
		sink:     sink,
		clock:    session.NewClock(),
		log:      log.With().Str("component", "interview_handler").Logger(),
	}
}

// CreateInterview godoc
// POST /api/v1/interviews
// Accepts a resume upload, creates a session, and starts question
// generation. Unsupported document types are rejected here, before any
// generation work begins.
func (h *InterviewHandler) CreateInterview(c *gin.Context) {
	file, header, err := c.Request.FormFile("resume")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	doc, resumeURL, err := h.resumes.Intake(file, header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	ctrl := session.NewInterview(h.source, h.scorer, h.clock, h.sink, h.log)
	ctrl.SetOnTerminate(func(reason model.TerminationReason) {
		h.log.Info().
			Str("session_id", ctrl.ID().String()).
			Str("reason", string(reason)).
			Msg("Interview session terminated")
	})
	h.registry.Put(ctrl)

	token, err := h.tokens.GenerateSessionToken(ctrl.ID(), service.SessionKindInterview)
	if err != nil {
		h.registry.Remove(ctrl.ID())
		h.log.Error().Err(err).Msg("Token generation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	ctrl.Begin(doc)

	response.Success(c, http.StatusCreated, gin.H{
		"session":    ctrl.Snapshot(),
		"token":      token,
		"resume_url": resumeURL,
	})
}

// GetInterview godoc
// GET /api/v1/interviews/:id
// Returns the current session snapshot.
func (h *InterviewHandler) GetInterview(c *gin.Context) {
	ctrl := h.lookup(c)
	if ctrl == nil {
		return
	}
	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

// EndInterview godoc
// POST /api/v1/interviews/:id/end
// Ends the session at the user's request and discards all state.
func (h *InterviewHandler) EndInterview(c *gin.Context) {
	ctrl := h.lookup(c)
	if ctrl == nil {
		return
	}
	ctrl.End()
	h.registry.Remove(ctrl.ID())
	response.Success(c, http.StatusOK, gin.H{"status": "ended"})
}

func (h *InterviewHandler) lookup(c *gin.Context) *session.Interview {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil
	}
	ctrl := h.registry.Get(id)
	if ctrl == nil {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return nil
	}
	return ctrl
}
