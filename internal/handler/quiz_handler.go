package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/intervue/intervue-backend/internal/gateway"
	"github.com/intervue/intervue-backend/internal/model"
	"github.com/intervue/intervue-backend/internal/quiz"
	"github.com/intervue/intervue-backend/internal/response"
	"github.com/intervue/intervue-backend/internal/service"
	"github.com/intervue/intervue-backend/internal/validator"
)

// QuizHandler drives subject-quiz sessions. Quizzes are untimed and
// fully request-driven, so every state change happens inside a handler
// call rather than on a background loop.
type QuizHandler struct {
	registry *quiz.Registry
	subjects *service.SubjectService
	tokens   *service.TokenService
	source   gateway.QuestionSource
	scorer   gateway.Scorer
	sink     quiz.Sink
	log      zerolog.Logger
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(
	registry *quiz.Registry,
	subjects *service.SubjectService,
	tokens *service.TokenService,
	source gateway.QuestionSource,
	scorer gateway.Scorer,
	sink quiz.Sink,
	log zerolog.Logger,
) *QuizHandler {
	return &QuizHandler{
		registry: registry,
		subjects: subjects,
		tokens:   tokens,
		source:   source,
		scorer:   scorer,
		sink:     sink,
		log:      log.With().Str("component", "quiz_handler").Logger(),
	}
}

// CreateQuiz godoc
// POST /api/v1/quizzes
// Resolves the subject, creates a session, and starts question loading.
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	subject, err := h.subjects.Resolve(c.Request.Context(), req.Subject)
	if err != nil {
		if errors.Is(err, service.ErrSubjectNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrUnknownSubject)
			return
		}
		h.log.Error().Err(err).Msg("Subject lookup failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	ctrl := quiz.New(subject.Slug, h.source, h.scorer, h.sink, h.log)
	h.registry.Put(ctrl)

	token, err := h.tokens.GenerateSessionToken(ctrl.ID(), service.SessionKindQuiz)
	if err != nil {
		h.registry.Remove(ctrl.ID())
		h.log.Error().Err(err).Msg("Token generation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	ctrl.Begin()

	response.Success(c, http.StatusCreated, gin.H{
		"session": ctrl.Snapshot(),
		"token":   token,
		"subject": subject,
	})
}

// GetQuiz godoc
// GET /api/v1/quizzes/:id
// Returns the current session snapshot.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	ctrl := h.lookup(c)
	if ctrl == nil {
		return
	}
	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

// SelectAnswer godoc
// POST /api/v1/quizzes/:id/answer
// Records the chosen option for the current question. Selecting again
// before advancing overwrites the previous choice.
func (h *QuizHandler) SelectAnswer(c *gin.Context) {
	ctrl := h.lookup(c)
	if ctrl == nil {
		return
	}

	var req model.SelectAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := ctrl.Select(req.Option); err != nil {
		response.Fail(c, http.StatusConflict, response.ErrNotAcceptingAnswers)
		return
	}
	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

// NextQuestion godoc
// POST /api/v1/quizzes/:id/next
// Locks in the current answer and advances. On the last question this
// triggers grading and the summary.
func (h *QuizHandler) NextQuestion(c *gin.Context) {
	ctrl := h.lookup(c)
	if ctrl == nil {
		return
	}

	if err := ctrl.Next(); err != nil {
		if errors.Is(err, quiz.ErrNoSelection) {
			response.Fail(c, http.StatusConflict, response.ErrAnswerRequired)
			return
		}
		response.Fail(c, http.StatusConflict, response.ErrNotAcceptingAnswers)
		return
	}
	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

// ProctorEvent godoc
// POST /api/v1/quizzes/:id/proctor-event
// Records a face-absence report. Quiz proctoring is advisory: the
// session shows a warning and counts the violation but never ends.
func (h *QuizHandler) ProctorEvent(c *gin.Context) {
	ctrl := h.lookup(c)
	if ctrl == nil {
		return
	}

	var req model.ProctorEventRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ctrl.FaceAbsent(req.Detail)
	response.Success(c, http.StatusOK, ctrl.Snapshot())
}

// EndQuiz godoc
// POST /api/v1/quizzes/:id/end
// Ends the session at the user's request and discards all state.
func (h *QuizHandler) EndQuiz(c *gin.Context) {
	ctrl := h.lookup(c)
	if ctrl == nil {
		return
	}
	h.registry.Remove(ctrl.ID())
	response.Success(c, http.StatusOK, gin.H{"status": "ended"})
}

func (h *QuizHandler) lookup(c *gin.Context) *quiz.Controller {
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
