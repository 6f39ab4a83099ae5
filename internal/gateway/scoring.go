package gateway

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/intervue/intervue-backend/internal/model"
)

// AIScorer grades answers through the chat gateway. Every upstream
// failure is absorbed into a fixed fallback value so the session flow
// always completes, with degraded content at worst.
type AIScorer struct {
	chat *ChatClient
	log  zerolog.Logger
}

// NewAIScorer creates an AIScorer.
func NewAIScorer(chat *ChatClient, log zerolog.Logger) *AIScorer {
	return &AIScorer{
		chat: chat,
		log:  log.With().Str("component", "scorer").Logger(),
	}
}

type scorePayload struct {
	Feedback string `json:"feedback"`
	Score    int    `json:"score"`
}

type summaryPayload struct {
	Strengths           string `json:"strengths"`
	AreasForImprovement string `json:"areas_for_improvement"`
}

// Score grades one question/answer pair. Returns {FallbackFeedback, 0}
// on any failure.
func (s *AIScorer) Score(ctx context.Context, question, answer string) Evaluation {
	reply, err := s.chat.Complete(ctx, scoreSystemPrompt, buildScorePrompt(question, answer))
	if err != nil {
		s.log.Warn().Err(err).Msg("Scoring call failed")
		return Evaluation{Feedback: FallbackFeedback, Score: 0}
	}

	var payload scorePayload
	if err := json.Unmarshal([]byte(stripFences(reply)), &payload); err != nil {
		s.log.Warn().Err(err).Msg("Scoring returned unparseable payload")
		return Evaluation{Feedback: FallbackFeedback, Score: 0}
	}

	if payload.Score < 1 || payload.Score > 5 {
		s.log.Warn().Int("score", payload.Score).Msg("Score out of range, using fallback")
		return Evaluation{Feedback: FallbackFeedback, Score: 0}
	}

	return Evaluation{Feedback: payload.Feedback, Score: payload.Score}
}

// Summarize produces the performance summary for a spoken session.
func (s *AIScorer) Summarize(ctx context.Context, results []model.EvaluatedResult) model.PerformanceSummary {
	return s.summarize(ctx, buildSummaryPrompt(results))
}

// SummarizeQuiz produces the performance summary for a quiz session.
func (s *AIScorer) SummarizeQuiz(ctx context.Context, subject string, score, total int) model.PerformanceSummary {
	return s.summarize(ctx, buildQuizSummaryPrompt(subject, score, total))
}

func (s *AIScorer) summarize(ctx context.Context, prompt string) model.PerformanceSummary {
	fallback := model.PerformanceSummary{
		Strengths:           FallbackSummary,
		AreasForImprovement: FallbackSummary,
	}

	reply, err := s.chat.Complete(ctx, summarySystemPrompt, prompt)
	if err != nil {
		s.log.Warn().Err(err).Msg("Summarization call failed")
		return fallback
	}

	var payload summaryPayload
	if err := json.Unmarshal([]byte(stripFences(reply)), &payload); err != nil {
		s.log.Warn().Err(err).Msg("Summarization returned unparseable payload")
		return fallback
	}
	if payload.Strengths == "" && payload.AreasForImprovement == "" {
		return fallback
	}

	return model.PerformanceSummary{
		Strengths:           payload.Strengths,
		AreasForImprovement: payload.AreasForImprovement,
	}
}
