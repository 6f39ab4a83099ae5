package gateway

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"

	"github.com/intervue/intervue-backend/internal/config"
	"github.com/intervue/intervue-backend/internal/model"
	"github.com/intervue/intervue-backend/internal/repository"
)

const quizSize = 10

// ErrNoQuizAvailable is returned when both the generator and the curated
// fallback bank come up empty for a subject.
var ErrNoQuizAvailable = errors.New("no quiz available for subject")

// AIQuestionSource generates questions through the chat gateway, with a
// Redis cache in front and a curated Postgres bank as the quiz fallback.
type AIQuestionSource struct {
	chat     *ChatClient
	rdb      *redis.Client
	quizRepo *repository.QuizQuestionRepository
	ttl      time.Duration
	log      zerolog.Logger
}

// NewAIQuestionSource creates an AIQuestionSource.
func NewAIQuestionSource(chat *ChatClient, rdb *redis.Client, quizRepo *repository.QuizQuestionRepository, cfg *config.Config, log zerolog.Logger) *AIQuestionSource {
	return &AIQuestionSource{
		chat:     chat,
		rdb:      rdb,
		quizRepo: quizRepo,
		ttl:      cfg.QuestionTTL,
		log:      log.With().Str("component", "question_source").Logger(),
	}
}

// GenerateQuestions returns interview questions for a resume. Failures of
// any kind collapse into the sentinel list; the caller checks with
// IsGenerationFailure.
func (s *AIQuestionSource) GenerateQuestions(ctx context.Context, doc model.ResumeDocument) []string {
	cacheKey := config.CacheKey.ResumeQuestionsKey(hashDocument(doc))

	// Same resume within the TTL window reuses the generated set.
	if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
		var questions []string
		if json.Unmarshal([]byte(cached), &questions) == nil && len(questions) > 0 {
			return questions
		}
	}

	reply, err := s.chat.Complete(ctx, questionSystemPrompt, buildQuestionPrompt(doc))
	if err != nil {
		s.log.Warn().Err(err).Msg("Question generation failed")
		return sentinel(err)
	}

	var questions []string
	if err := json.Unmarshal([]byte(stripFences(reply)), &questions); err != nil {
		s.log.Warn().Err(err).Msg("Question generation returned unparseable payload")
		return sentinel(err)
	}
	if len(questions) == 0 {
		return sentinel(errors.New("empty question list"))
	}

	if data, err := json.Marshal(questions); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, data, s.ttl).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache generated questions")
		}
	}

	return questions
}

// GenerateQuiz returns a validated multiple-choice set for a subject. The
// chat gateway is tried first; a curated Postgres bank backs it up.
func (s *AIQuestionSource) GenerateQuiz(ctx context.Context, subject string) ([]model.QuizQuestion, error) {
	cacheKey := config.CacheKey.SubjectQuizKey(subject)

	if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
		var questions []model.QuizQuestion
		if json.Unmarshal([]byte(cached), &questions) == nil && len(questions) > 0 {
			return questions, nil
		}
	}

	questions, genErr := s.generateQuizUpstream(ctx, subject)
	if genErr != nil {
		s.log.Warn().Err(genErr).Str("subject", subject).Msg("Quiz generation failed, trying curated bank")
		var repoErr error
		questions, repoErr = s.quizRepo.ListBySubject(ctx, subject, quizSize)
		if repoErr != nil {
			return nil, fmt.Errorf("fallback bank: %w", repoErr)
		}
		if len(questions) == 0 {
			return nil, ErrNoQuizAvailable
		}
	}

	if data, err := json.Marshal(questions); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, data, s.ttl).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache quiz")
		}
	}

	return questions, nil
}

func (s *AIQuestionSource) generateQuizUpstream(ctx context.Context, subject string) ([]model.QuizQuestion, error) {
	reply, err := s.chat.Complete(ctx, quizSystemPrompt, buildQuizPrompt(subject))
	if err != nil {
		return nil, err
	}

	var questions []model.QuizQuestion
	if err := json.Unmarshal([]byte(stripFences(reply)), &questions); err != nil {
		return nil, fmt.Errorf("decode quiz payload: %w", err)
	}

	// Drop malformed entries rather than failing the whole set. A valid
	// question has four options and a correct option among them.
	valid := questions[:0]
	for _, q := range questions {
		if len(q.Options) != 4 {
			continue
		}
		if !containsOption(q.Options, q.Correct) {
			continue
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		return nil, errors.New("no valid questions in quiz payload")
	}

	return valid, nil
}

func containsOption(options []string, correct string) bool {
	for _, o := range options {
		if o == correct {
			return true
		}
	}
	return false
}

func sentinel(err error) []string {
	return []string{fmt.Sprintf("%s: %v", GenerationFailureMarker, err)}
}

// hashDocument derives a stable cache key from resume content.
func hashDocument(doc model.ResumeDocument) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(doc.MimeType))
	h.Write([]byte(doc.Text))
	h.Write([]byte(doc.Base64))
	return hex.EncodeToString(h.Sum(nil))
}
