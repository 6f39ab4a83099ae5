package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/intervue/intervue-backend/internal/model"
	"github.com/intervue/intervue-backend/internal/repository"
)

// ErrSubjectNotFound signals an unknown quiz subject slug.
var ErrSubjectNotFound = errors.New("subject not found")

// SubjectService exposes the quiz subject catalog.
type SubjectService struct {
	repo *repository.SubjectRepository
	log  zerolog.Logger
}

// NewSubjectService creates a new SubjectService.
func NewSubjectService(repo *repository.SubjectRepository, log zerolog.Logger) *SubjectService {
	return &SubjectService{
		repo: repo,
		log:  log.With().Str("component", "subject_service").Logger(),
	}
}

// List returns all subjects.
func (s *SubjectService) List(ctx context.Context) ([]model.Subject, error) {
	subjects, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// Resolve validates a subject slug against the catalog.
func (s *SubjectService) Resolve(ctx context.Context, slug string) (*model.Subject, error) {
	subject, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("get subject: %w", err)
	}
	return subject, nil
}
