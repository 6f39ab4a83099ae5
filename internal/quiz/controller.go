// Package quiz implements the multiple-choice session controller: the
// simpler sibling of the spoken-interview controller with no timers and
// no transcription. Proctoring is advisory here — face-absence events
// raise warnings but never terminate the session.
package quiz

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/intervue/intervue-backend/internal/gateway"
	"github.com/intervue/intervue-backend/internal/model"
)

// Sink receives proctoring events for asynchronous persistence.
type Sink interface {
	Record(sessionID uuid.UUID, sessionKind, reason, detail string)
}

const advisoryWarningMessage = "Face not visible. Stay in front of the camera."

// Errors returned to the shell for out-of-order operations.
var (
	ErrNotInProgress = errSentinel("quiz is not in progress")
	ErrNoSelection   = errSentinel("no option selected for the current question")
)

type errSentinel string

func (e errSentinel) Error() string { return string(e) }

// Controller owns one quiz session. A plain mutex suffices: there are no
// timers and no event races, every mutation is a direct user intent.
type Controller struct {
	id      uuid.UUID
	subject string
	log     zerolog.Logger
	source  gateway.QuestionSource
	scorer  gateway.Scorer
	sink    Sink

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.RWMutex
	phase      model.QuizPhase
	questions  []model.QuizQuestion
	answers    []string
	index      int
	score      int
	violations int
	warning    string
	startError string
	summary    *model.PerformanceSummary
	startedAt  time.Time
	lastTouch  time.Time
}

// New creates a quiz controller in the select phase.
func New(subject string, source gateway.QuestionSource, scorer gateway.Scorer, sink Sink, log zerolog.Logger) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.New()
	now := time.Now()
	return &Controller{
		id:        id,
		subject:   subject,
		log:       log.With().Str("component", "quiz").Str("session_id", id.String()).Logger(),
		source:    source,
		scorer:    scorer,
		sink:      sink,
		ctx:       ctx,
		cancel:    cancel,
		phase:     model.QuizPhaseSelect,
		startedAt: now,
		lastTouch: now,
	}
}

// ID returns the session identifier.
func (c *Controller) ID() uuid.UUID { return c.id }

// Begin loads the question set asynchronously. The phase moves to
// loading immediately and to inProgress (or back to select with a
// surfaced error) once loading settles.
func (c *Controller) Begin() {
	c.mu.Lock()
	if c.phase != model.QuizPhaseSelect {
		c.mu.Unlock()
		return
	}
	c.phase = model.QuizPhaseLoading
	c.startError = ""
	c.touchLocked()
	c.mu.Unlock()

	go func() {
		questions, err := c.source.GenerateQuiz(c.ctx, c.subject)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.phase != model.QuizPhaseLoading {
			return
		}
		if err != nil || len(questions) == 0 {
			c.phase = model.QuizPhaseSelect
			c.startError = "Could not load a quiz for this subject. Please try another one."
			c.log.Warn().Err(err).Str("subject", c.subject).Msg("Quiz load failed")
			return
		}
		c.questions = questions
		c.answers = make([]string, len(questions))
		c.index = 0
		c.phase = model.QuizPhaseInProgress
	}()
}

// Select stores the option chosen for the current question. Re-selecting
// before Next overwrites the previous choice.
func (c *Controller) Select(option string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != model.QuizPhaseInProgress {
		return ErrNotInProgress
	}
	c.answers[c.index] = option
	c.touchLocked()
	return nil
}

// Next advances to the next question, or on the last question grades the
// quiz and starts summarization.
func (c *Controller) Next() error {
	c.mu.Lock()
	if c.phase != model.QuizPhaseInProgress {
		c.mu.Unlock()
		return ErrNotInProgress
	}
	if c.answers[c.index] == "" {
		c.mu.Unlock()
		return ErrNoSelection
	}
	c.touchLocked()

	if c.index < len(c.questions)-1 {
		c.index++
		c.mu.Unlock()
		return nil
	}

	// Last question: grade by exact match against the designated correct
	// option, then summarize.
	score := 0
	for i, q := range c.questions {
		if c.answers[i] == q.Correct {
			score++
		}
	}
	c.score = score
	c.phase = model.QuizPhaseSummarizing
	subject, total := c.subject, len(c.questions)
	c.mu.Unlock()

	go func() {
		summary := c.scorer.SummarizeQuiz(c.ctx, subject, score, total)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.phase != model.QuizPhaseSummarizing {
			return
		}
		c.summary = &summary
		c.phase = model.QuizPhaseResults
	}()
	return nil
}

// FaceAbsent records one face-absence event. Advisory only in quiz mode:
// the counter grows and a warning is surfaced, the session continues.
func (c *Controller) FaceAbsent(detail string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != model.QuizPhaseInProgress {
		return
	}
	c.violations++
	c.warning = advisoryWarningMessage
	c.touchLocked()
	if c.sink != nil {
		c.sink.Record(c.id, "quiz", "face_absent_warning", detail)
	}
}

// Close cancels any in-flight gateway calls.
func (c *Controller) Close() { c.cancel() }

// Expired reports whether the session has been inactive longer than ttl.
func (c *Controller) Expired(ttl time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Since(c.lastTouch) > ttl
}

// Snapshot returns a copy of the externally visible state. The current
// question is stripped of its answer key.
func (c *Controller) Snapshot() model.QuizSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := model.QuizSnapshot{
		ID:            c.id,
		Subject:       c.subject,
		Phase:         c.phase,
		QuestionIndex: c.index,
		QuestionCount: len(c.questions),
		Warning:       c.warning,
		StartError:    c.startError,
		Violations:    c.violations,
		Score:         c.score,
		Percentage:    c.percentageLocked(),
		Summary:       c.summary,
		StartedAt:     c.startedAt,
	}
	if c.phase == model.QuizPhaseInProgress && c.index < len(c.questions) {
		q := c.questions[c.index].Public()
		snap.Question = &q
		snap.Selected = c.answers[c.index]
	}
	if c.phase == model.QuizPhaseResults || c.phase == model.QuizPhaseSummarizing {
		snap.Answers = append([]string(nil), c.answers...)
	}
	return snap
}

// percentageLocked is defined for an empty quiz as well: zero questions
// yields 0%, never a division by zero.
func (c *Controller) percentageLocked() float64 {
	if len(c.questions) == 0 {
		return 0
	}
	return float64(c.score) / float64(len(c.questions)) * 100
}

func (c *Controller) touchLocked() {
	c.lastTouch = time.Now()
}
