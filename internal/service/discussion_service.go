package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/discussion-grader/internal/dto"
	"github.com/noah-isme/discussion-grader/internal/models"
	"github.com/noah-isme/discussion-grader/internal/repository"
)

// ErrValidation wraps validator failures on request payloads.
var ErrValidation = errors.New("invalid request payload")

// DiscussionService exposes discussion management use-cases.
type DiscussionService interface {
	Create(payload dto.DiscussionCreateRequest) (models.Discussion, error)
	Get(id int) (models.Discussion, error)
	List() ([]models.Discussion, error)
	Update(id int, payload dto.DiscussionUpdateRequest) (models.Discussion, error)
}

type discussionService struct {
	repo      repository.DiscussionRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewDiscussionService constructs a discussion service.
func NewDiscussionService(repo repository.DiscussionRepository, validate *validator.Validate, logger zerolog.Logger) DiscussionService {
	return &discussionService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "discussion_service").Logger(),
	}
}

func (s *discussionService) Create(payload dto.DiscussionCreateRequest) (models.Discussion, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Discussion{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	discussion, err := s.repo.Create(payload.Title, payload.Question, payload.Points, payload.MinWords)
	if err != nil {
		return models.Discussion{}, err
	}

	s.logger.Info().Int("discussion_id", discussion.ID).Str("title", discussion.Title).Msg("discussion created")
	return discussion, nil
}

func (s *discussionService) Get(id int) (models.Discussion, error) {
	return s.repo.Get(id)
}

func (s *discussionService) List() ([]models.Discussion, error) {
	return s.repo.List()
}

func (s *discussionService) Update(id int, payload dto.DiscussionUpdateRequest) (models.Discussion, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Discussion{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	discussion, err := s.repo.Update(id, repository.DiscussionUpdate{
		Title:    payload.Title,
		Points:   payload.Points,
		MinWords: payload.MinWords,
		Question: payload.Question,
	})
	if err != nil {
		return models.Discussion{}, err
	}

	s.logger.Info().Int("discussion_id", discussion.ID).Msg("discussion updated")
	return discussion, nil
}
