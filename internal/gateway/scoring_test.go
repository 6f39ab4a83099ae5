package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intervue/intervue-backend/internal/config"
	"github.com/intervue/intervue-backend/internal/model"
)

// chatServer fakes the upstream chat-completions endpoint with a fixed
// assistant reply (or a bare status code).
func chatServer(t *testing.T, content string, status int) *ChatClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		AIBaseURL: srv.URL,
		AIAPIKey:  "test-key",
		AIModel:   "test-model",
		AITimeout: 2 * time.Second,
	}
	return NewChatClient(cfg, zerolog.Nop())
}

func TestScoreParsesVerdict(t *testing.T) {
	chat := chatServer(t, `{"feedback":"Good structure, missing metrics.","score":4}`, http.StatusOK)
	scorer := NewAIScorer(chat, zerolog.Nop())

	eval := scorer.Score(context.Background(), "Tell me about scaling.", "We sharded by tenant.")
	assert.Equal(t, "Good structure, missing metrics.", eval.Feedback)
	assert.Equal(t, 4, eval.Score)
}

func TestScoreStripsCodeFences(t *testing.T) {
	chat := chatServer(t, "```json\n{\"feedback\":\"ok\",\"score\":3}\n```", http.StatusOK)
	scorer := NewAIScorer(chat, zerolog.Nop())

	eval := scorer.Score(context.Background(), "q", "a")
	assert.Equal(t, 3, eval.Score)
}

func TestScoreFallsBackOnUpstreamError(t *testing.T) {
	chat := chatServer(t, "", http.StatusInternalServerError)
	scorer := NewAIScorer(chat, zerolog.Nop())

	eval := scorer.Score(context.Background(), "q", "a")
	assert.Equal(t, FallbackFeedback, eval.Feedback)
	assert.Zero(t, eval.Score)
}

func TestScoreFallsBackOnGarbage(t *testing.T) {
	chat := chatServer(t, "As an assistant I cannot score this.", http.StatusOK)
	scorer := NewAIScorer(chat, zerolog.Nop())

	eval := scorer.Score(context.Background(), "q", "a")
	assert.Equal(t, FallbackFeedback, eval.Feedback)
}

func TestScoreFallsBackOnOutOfRangeScore(t *testing.T) {
	chat := chatServer(t, `{"feedback":"great","score":11}`, http.StatusOK)
	scorer := NewAIScorer(chat, zerolog.Nop())

	eval := scorer.Score(context.Background(), "q", "a")
	assert.Equal(t, FallbackFeedback, eval.Feedback)
	assert.Zero(t, eval.Score)
}

func TestSummarizeParsesPayload(t *testing.T) {
	chat := chatServer(t, `{"strengths":"Clear answers.","areas_for_improvement":"Quantify impact."}`, http.StatusOK)
	scorer := NewAIScorer(chat, zerolog.Nop())

	summary := scorer.Summarize(context.Background(), []model.EvaluatedResult{
		{Question: "q", Answer: "a", Feedback: "f", Score: 4},
	})
	assert.Equal(t, "Clear answers.", summary.Strengths)
	assert.Equal(t, "Quantify impact.", summary.AreasForImprovement)
}

func TestSummarizeFallsBackOnFailure(t *testing.T) {
	chat := chatServer(t, "", http.StatusBadGateway)
	scorer := NewAIScorer(chat, zerolog.Nop())

	summary := scorer.SummarizeQuiz(context.Background(), "dsa", 6, 10)
	assert.Equal(t, FallbackSummary, summary.Strengths)
	assert.Equal(t, FallbackSummary, summary.AreasForImprovement)
}

func TestIsGenerationFailure(t *testing.T) {
	assert.True(t, IsGenerationFailure(nil))
	assert.True(t, IsGenerationFailure([]string{}))
	assert.True(t, IsGenerationFailure([]string{GenerationFailureMarker + ": timeout"}))
	assert.False(t, IsGenerationFailure([]string{"Tell me about your projects."}))
	assert.False(t, IsGenerationFailure([]string{"q1", "q2"}))
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`{"a":1}`))
}
