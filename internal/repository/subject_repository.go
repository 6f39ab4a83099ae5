package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/intervue/intervue-backend/internal/model"
)

// SubjectRepository handles quiz subject catalog data access.
type SubjectRepository struct {
	pool *pgxpool.Pool
}

// NewSubjectRepository creates a new SubjectRepository.
func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

// List retrieves all subjects ordered by name.
func (r *SubjectRepository) List(ctx context.Context) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, slug, name, created_at FROM subjects ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Slug, &s.Name, &s.CreatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// GetBySlug retrieves one subject by its slug.
func (r *SubjectRepository) GetBySlug(ctx context.Context, slug string) (*model.Subject, error) {
	s := &model.Subject{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, slug, name, created_at FROM subjects WHERE slug = $1`, slug,
	).Scan(&s.ID, &s.Slug, &s.Name, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}
