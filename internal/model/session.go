package model

import (
	"time"

	"github.com/google/uuid"
)

// InterviewPhase enumerates the top-level lifecycle of a spoken session.
type InterviewPhase string

const (
	PhaseUpload      InterviewPhase = "UPLOAD"
	PhaseGenerating  InterviewPhase = "GENERATING"
	PhaseInProgress  InterviewPhase = "IN_PROGRESS"
	PhaseEvaluating  InterviewPhase = "EVALUATING"
	PhaseSummarizing InterviewPhase = "SUMMARIZING"
	PhaseResults     InterviewPhase = "RESULTS"
)

// SubPhase enumerates the inner state of the active spoken question.
type SubPhase string

const (
	SubPhaseThinking  SubPhase = "THINKING"
	SubPhaseRecording SubPhase = "RECORDING"
	SubPhaseIdle      SubPhase = "IDLE"
)

// TerminationReason classifies why a session was force-ended.
type TerminationReason string

const (
	TerminationProctoring TerminationReason = "PROCTORING"
	TerminationDevice     TerminationReason = "DEVICE_ERROR"
	TerminationUser       TerminationReason = "USER"
)

// InterviewSnapshot is the read-only view of a spoken session exposed to
// the client shell. All fields are copies; mutating a snapshot has no
// effect on the live session.
type InterviewSnapshot struct {
	ID            uuid.UUID          `json:"id"`
	Phase         InterviewPhase     `json:"phase"`
	SubPhase      SubPhase           `json:"sub_phase,omitempty"`
	Countdown     int                `json:"countdown"`
	QuestionIndex int                `json:"question_index"`
	QuestionCount int                `json:"question_count"`
	Question      string             `json:"question,omitempty"`
	Interim       string             `json:"interim,omitempty"`
	Answers       []string           `json:"answers,omitempty"`
	Warning       string             `json:"warning,omitempty"`
	SpeechError   string             `json:"speech_error,omitempty"`
	StartError    string             `json:"start_error,omitempty"`
	Violations    int                `json:"violations"`
	ProctorReady  bool               `json:"proctor_ready"`
	Terminated    bool               `json:"terminated"`
	Reason        TerminationReason  `json:"termination_reason,omitempty"`
	Results       []EvaluatedResult  `json:"results,omitempty"`
	Summary       *PerformanceSummary `json:"summary,omitempty"`
	StartedAt     time.Time          `json:"started_at"`
}

// QuizPhase enumerates the lifecycle of a multiple-choice session.
type QuizPhase string

const (
	QuizPhaseSelect      QuizPhase = "SELECT"
	QuizPhaseLoading     QuizPhase = "LOADING"
	QuizPhaseInProgress  QuizPhase = "IN_PROGRESS"
	QuizPhaseSummarizing QuizPhase = "SUMMARIZING"
	QuizPhaseResults     QuizPhase = "RESULTS"
)

// QuizSnapshot is the read-only view of a quiz session.
type QuizSnapshot struct {
	ID            uuid.UUID           `json:"id"`
	Subject       string              `json:"subject"`
	Phase         QuizPhase           `json:"phase"`
	QuestionIndex int                 `json:"question_index"`
	QuestionCount int                 `json:"question_count"`
	Question      *QuizQuestion       `json:"question,omitempty"`
	Selected      string              `json:"selected,omitempty"`
	Answers       []string            `json:"answers,omitempty"`
	Warning       string              `json:"warning,omitempty"`
	StartError    string              `json:"start_error,omitempty"`
	Violations    int                 `json:"violations"`
	Score         int                 `json:"score"`
	Percentage    float64             `json:"percentage"`
	Summary       *PerformanceSummary `json:"summary,omitempty"`
	StartedAt     time.Time           `json:"started_at"`
}

// CreateQuizRequest is the payload for starting a quiz session.
type CreateQuizRequest struct {
	Subject string `json:"subject" binding:"required,slug,max=64"`
}

// SelectAnswerRequest is the payload for choosing an option.
type SelectAnswerRequest struct {
	Option string `json:"option" binding:"required,max=500"`
}

// ProctorEventRequest is the payload for reporting a face-absence event
// over HTTP (quiz mode, advisory only).
type ProctorEventRequest struct {
	Detail string `json:"detail" binding:"max=500"`
}
