package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/discussion-grader/internal/models"
	"github.com/noah-isme/discussion-grader/internal/repository"
	"github.com/noah-isme/discussion-grader/pkg/ai"
)

// GradeOptions tune a single grading call.
type GradeOptions struct {
	// StudentName is attached to the stored submission when known.
	StudentName string
	// Save persists the submission and its grade under the discussion.
	Save bool
}

// GradeOutcome bundles the graded result with its storage identity, which is
// zero when saving was not requested.
type GradeOutcome struct {
	Discussion   models.Discussion
	Submission   models.Submission
	Graded       models.GradedSubmission
	SubmissionID int
}

// GradingService runs submissions through the AI grader.
type GradingService interface {
	GradeText(ctx context.Context, discussionID int, text string, opts GradeOptions) (GradeOutcome, error)
	GradeFile(ctx context.Context, discussionID int, path string, opts GradeOptions) (GradeOutcome, error)
}

type gradingService struct {
	discussions repository.DiscussionRepository
	submissions repository.SubmissionRepository
	client      ai.Client
	maxTokens   int
	temperature float32
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradingService constructs a grading service. The AI client is resolved
// by the caller so credential errors surface before any file is touched.
func NewGradingService(
	discussions repository.DiscussionRepository,
	submissions repository.SubmissionRepository,
	client ai.Client,
	cfg ai.ProviderConfig,
	logger zerolog.Logger,
) GradingService {
	return &gradingService{
		discussions: discussions,
		submissions: submissions,
		client:      client,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		now:         time.Now,
	}
}

func (s *gradingService) GradeText(ctx context.Context, discussionID int, text string, opts GradeOptions) (GradeOutcome, error) {
	discussion, err := s.discussions.Get(discussionID)
	if err != nil {
		return GradeOutcome{}, err
	}

	submission := models.NewSubmission(discussionID, text, discussion.Question)
	submission.StudentName = opts.StudentName

	criteria := ai.NewCriteria(discussion.Question, discussion.Points, discussion.MinWords)
	systemPrompt, userPrompt := ai.BuildPrompts(text, criteria)

	start := s.now()
	raw, err := s.client.Grade(ctx, ai.GradeRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    s.maxTokens,
		Temperature:  s.temperature,
	})
	if err != nil {
		return GradeOutcome{}, err
	}

	result, err := ai.ParseGradeResponse(raw, criteria)
	if err != nil {
		return GradeOutcome{}, err
	}

	// Word count comes from the submission text, never from model output.
	graded := models.GradedSubmission{
		Score:                  result.Score,
		Feedback:               result.Feedback,
		ImprovementSuggestions: result.ImprovementSuggestions,
		AddressedQuestions:     result.AddressedQuestions,
		WordCount:              submission.WordCount,
		MeetsWordCount:         submission.WordCount >= discussion.MinWords,
		CreatedAt:              s.now().UTC(),
	}

	s.logger.Info().
		Int("discussion_id", discussionID).
		Float64("score", graded.Score).
		Int("word_count", graded.WordCount).
		Dur("elapsed", s.now().Sub(start)).
		Msg("submission graded")

	outcome := GradeOutcome{Discussion: discussion, Submission: submission, Graded: graded}
	if opts.Save {
		record, err := s.submissions.Save(discussionID, submission, graded)
		if err != nil {
			return GradeOutcome{}, err
		}
		outcome.Submission = record.Submission
		outcome.Graded = record.Grading
		outcome.SubmissionID = record.SubmissionID
	}

	return outcome, nil
}

func (s *gradingService) GradeFile(ctx context.Context, discussionID int, path string, opts GradeOptions) (GradeOutcome, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return GradeOutcome{}, fmt.Errorf("read submission file: %w", err)
	}
	return s.GradeText(ctx, discussionID, string(raw), opts)
}
