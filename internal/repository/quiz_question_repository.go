package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/intervue/intervue-backend/internal/model"
)

// QuizQuestionRepository handles the curated fallback question banks used
// when quiz generation is unavailable.
type QuizQuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuizQuestionRepository creates a new QuizQuestionRepository.
func NewQuizQuestionRepository(pool *pgxpool.Pool) *QuizQuestionRepository {
	return &QuizQuestionRepository{pool: pool}
}

// ListBySubject retrieves up to limit questions for a subject slug in
// stored order. Options are stored as a JSON array.
func (r *QuizQuestionRepository) ListBySubject(ctx context.Context, subjectSlug string, limit int) ([]model.QuizQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_text, options, correct_option
		 FROM quiz_questions
		 WHERE subject_slug = $1
		 ORDER BY order_num ASC
		 LIMIT $2`, subjectSlug, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.QuizQuestion
	for rows.Next() {
		var q model.QuizQuestion
		var rawOptions []byte
		if err := rows.Scan(&q.Question, &rawOptions, &q.Correct); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(rawOptions, &q.Options); err != nil {
			return nil, fmt.Errorf("decode options: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
