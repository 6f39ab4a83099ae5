package quiz

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intervue/intervue-backend/internal/gateway"
	"github.com/intervue/intervue-backend/internal/model"
)

type stubSource struct {
	questions []model.QuizQuestion
	err       error
}

func (s *stubSource) GenerateQuestions(context.Context, model.ResumeDocument) []string {
	return nil
}

func (s *stubSource) GenerateQuiz(context.Context, string) ([]model.QuizQuestion, error) {
	return s.questions, s.err
}

type stubScorer struct{}

func (stubScorer) Score(context.Context, string, string) gateway.Evaluation {
	return gateway.Evaluation{}
}

func (stubScorer) Summarize(context.Context, []model.EvaluatedResult) model.PerformanceSummary {
	return model.PerformanceSummary{}
}

func (stubScorer) SummarizeQuiz(_ context.Context, subject string, score, total int) model.PerformanceSummary {
	return model.PerformanceSummary{
		Strengths:           subject + " basics",
		AreasForImprovement: strconv.Itoa(score) + "/" + strconv.Itoa(total),
	}
}

type recordingSink struct {
	mu      sync.Mutex
	reasons []string
}

func (s *recordingSink) Record(_ uuid.UUID, _, reason, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reasons = append(s.reasons, reason)
}

func (s *recordingSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reasons)
}

func makeQuestions(n int) []model.QuizQuestion {
	questions := make([]model.QuizQuestion, n)
	for i := range questions {
		questions[i] = model.QuizQuestion{
			Question: "Question " + strconv.Itoa(i+1),
			Options:  []string{"A", "B", "C", "D"},
			Correct:  "B",
		}
	}
	return questions
}

func startedQuiz(t *testing.T, subject string, questions []model.QuizQuestion, sink Sink) *Controller {
	t.Helper()
	c := New(subject, &stubSource{questions: questions}, stubScorer{}, sink, zerolog.Nop())
	t.Cleanup(c.Close)
	c.Begin()
	require.Eventually(t, func() bool {
		return c.Snapshot().Phase == model.QuizPhaseInProgress
	}, 2*time.Second, 5*time.Millisecond)
	return c
}

func TestQuizFullCycleAllCorrect(t *testing.T) {
	c := startedQuiz(t, "dsa", makeQuestions(3), nil)

	snap := c.Snapshot()
	assert.Equal(t, 3, snap.QuestionCount)
	require.NotNil(t, snap.Question)
	assert.Empty(t, snap.Question.Correct, "the answer key must never reach the client")

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Select("B"))
		require.NoError(t, c.Next())
	}

	require.Eventually(t, func() bool {
		return c.Snapshot().Phase == model.QuizPhaseResults
	}, 2*time.Second, 5*time.Millisecond)

	snap = c.Snapshot()
	assert.Equal(t, 3, snap.Score)
	assert.InDelta(t, 100.0, snap.Percentage, 0.001)
	require.NotNil(t, snap.Summary)
	assert.Equal(t, "dsa basics", snap.Summary.Strengths)
	assert.Equal(t, "3/3", snap.Summary.AreasForImprovement)
}

func TestQuizPartialScore(t *testing.T) {
	c := startedQuiz(t, "dsa", makeQuestions(10), nil)

	for i := 0; i < 10; i++ {
		answer := "B"
		if i >= 6 {
			answer = "A"
		}
		require.NoError(t, c.Select(answer))
		require.NoError(t, c.Next())
	}

	require.Eventually(t, func() bool {
		return c.Snapshot().Phase == model.QuizPhaseResults
	}, 2*time.Second, 5*time.Millisecond)

	snap := c.Snapshot()
	assert.Equal(t, 6, snap.Score)
	assert.InDelta(t, 60.0, snap.Percentage, 0.001)
}

func TestQuizReselectionOverwrites(t *testing.T) {
	c := startedQuiz(t, "sql", makeQuestions(1), nil)

	require.NoError(t, c.Select("A"))
	require.NoError(t, c.Select("B"))
	assert.Equal(t, "B", c.Snapshot().Selected)
	require.NoError(t, c.Next())

	require.Eventually(t, func() bool {
		return c.Snapshot().Phase == model.QuizPhaseResults
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, c.Snapshot().Score)
}

func TestQuizNextWithoutSelection(t *testing.T) {
	c := startedQuiz(t, "sql", makeQuestions(2), nil)

	require.ErrorIs(t, c.Next(), ErrNoSelection)
	assert.Equal(t, 0, c.Snapshot().QuestionIndex)
}

func TestQuizOperationsBeforeStart(t *testing.T) {
	c := New("sql", &stubSource{questions: makeQuestions(1)}, stubScorer{}, nil, zerolog.Nop())
	t.Cleanup(c.Close)

	require.ErrorIs(t, c.Select("A"), ErrNotInProgress)
	require.ErrorIs(t, c.Next(), ErrNotInProgress)
}

func TestQuizLoadFailureReturnsToSelect(t *testing.T) {
	c := New("obscure", &stubSource{err: errors.New("boom")}, stubScorer{}, nil, zerolog.Nop())
	t.Cleanup(c.Close)

	c.Begin()
	require.Eventually(t, func() bool {
		snap := c.Snapshot()
		return snap.Phase == model.QuizPhaseSelect && snap.StartError != ""
	}, 2*time.Second, 5*time.Millisecond)

	// Percentage over zero questions stays defined.
	assert.Zero(t, c.Snapshot().Percentage)

	// Begin can be retried from the select phase.
	c.Begin()
	require.Eventually(t, func() bool {
		return c.Snapshot().Phase == model.QuizPhaseSelect
	}, 2*time.Second, 5*time.Millisecond)
}

func TestQuizProctoringIsAdvisoryOnly(t *testing.T) {
	sink := &recordingSink{}
	c := startedQuiz(t, "react", makeQuestions(2), sink)

	for i := 0; i < 5; i++ {
		c.FaceAbsent("looked away")
	}

	snap := c.Snapshot()
	assert.Equal(t, model.QuizPhaseInProgress, snap.Phase)
	assert.Equal(t, 5, snap.Violations)
	assert.Equal(t, advisoryWarningMessage, snap.Warning)
	assert.Equal(t, 5, sink.Count())

	// The session keeps working normally afterward.
	require.NoError(t, c.Select("B"))
	require.NoError(t, c.Next())
	assert.Equal(t, 1, c.Snapshot().QuestionIndex)
}
