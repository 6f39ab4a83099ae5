// Package gateway wraps the generative-AI backend behind two narrow
// interfaces: a question source and a scorer. Scoring and summarization
// failures are absorbed here — callers always receive a usable value,
// never an error (question generation signals failure through a sentinel
// list instead, which the session controller checks).
package gateway

import (
	"context"
	"strings"

	"github.com/intervue/intervue-backend/internal/model"
)

// GenerationFailureMarker is the phrase carried by the single-element
// sentinel list a failed question generation returns. Callers distinguish
// success from failure by checking the first element for this marker.
const GenerationFailureMarker = "Failed to generate interview questions"

// Fixed fallback texts used when the scoring backend fails. The flow
// proceeds with degraded content rather than surfacing an error.
const (
	FallbackFeedback = "Sorry, this answer could not be scored automatically. Please review it yourself."
	FallbackSummary  = "Sorry, a performance summary could not be generated for this session."
)

// Evaluation is the scorer's verdict on one answer.
type Evaluation struct {
	Feedback string
	Score    int
}

// QuestionSource produces the ordered question list for a session.
type QuestionSource interface {
	// GenerateQuestions returns interview questions for a resume. On any
	// upstream failure it returns the single-element sentinel list; it
	// never returns an empty slice or an error.
	GenerateQuestions(ctx context.Context, doc model.ResumeDocument) []string

	// GenerateQuiz returns multiple-choice questions for a subject, each
	// with four options and a correct option equal to one of them.
	GenerateQuiz(ctx context.Context, subject string) ([]model.QuizQuestion, error)
}

// Scorer grades answers and produces narrative summaries. Implementations
// must absorb upstream failures into fallback values.
type Scorer interface {
	Score(ctx context.Context, question, answer string) Evaluation
	Summarize(ctx context.Context, results []model.EvaluatedResult) model.PerformanceSummary
	SummarizeQuiz(ctx context.Context, subject string, score, total int) model.PerformanceSummary
}

// IsGenerationFailure reports whether a question list is the sentinel
// produced by a failed generation.
func IsGenerationFailure(questions []string) bool {
	return len(questions) == 0 ||
		(len(questions) == 1 && strings.Contains(questions[0], GenerationFailureMarker))
}
