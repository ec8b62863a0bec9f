package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/discussion-grader/internal/dto"
	"github.com/noah-isme/discussion-grader/internal/models"
	"github.com/noah-isme/discussion-grader/internal/repository"
)

// Canvas discussions default to a lighter rubric than locally created ones.
const (
	canvasDefaultPoints   = 8
	canvasDefaultMinWords = 100
	canvasTitleMaxLen     = 50
)

// CanvasService grades SpeedGrader payloads, keeping a local discussion in
// sync with what Canvas reports.
type CanvasService interface {
	Grade(ctx context.Context, req dto.CanvasGradeRequest) (dto.CanvasGradeResponse, error)
}

type canvasService struct {
	discussions repository.DiscussionRepository
	grader      GradingService
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewCanvasService constructs a Canvas integration service.
func NewCanvasService(
	discussions repository.DiscussionRepository,
	grader GradingService,
	validate *validator.Validate,
	logger zerolog.Logger,
) CanvasService {
	return &canvasService{
		discussions: discussions,
		grader:      grader,
		validator:   validate,
		logger:      logger.With().Str("component", "canvas_service").Logger(),
	}
}

func (s *canvasService) Grade(ctx context.Context, req dto.CanvasGradeRequest) (dto.CanvasGradeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CanvasGradeResponse{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	question := strings.TrimSpace(req.Discussion.QuestionText())
	if question == "" {
		return dto.CanvasGradeResponse{}, fmt.Errorf("%w: discussion prompt is empty", ErrValidation)
	}

	points := canvasDefaultPoints
	if req.Discussion.PointsPossible != nil {
		points = *req.Discussion.PointsPossible
	}
	minWords := canvasDefaultMinWords
	if req.Discussion.MinWords != nil {
		minWords = *req.Discussion.MinWords
	}
	title := req.Discussion.Title
	if title == "" {
		title = truncateTitle(question)
	}

	var (
		discussion models.Discussion
		created    bool
		err        error
	)
	if req.Discussion.ID != nil {
		discussion, err = s.discussions.Get(*req.Discussion.ID)
		if errors.Is(err, repository.ErrDiscussionNotFound) {
			// A stale id from the page is not fatal; match by question
			// text or create, same as when no id was sent.
			discussion, created, err = s.discussions.FindOrCreate(question, title, points, minWords)
		}
	} else {
		discussion, created, err = s.discussions.FindOrCreate(question, title, points, minWords)
	}
	if err != nil {
		return dto.CanvasGradeResponse{}, err
	}
	if !created && (discussion.Points != points || discussion.MinWords != minWords || discussion.Title != title) {
		discussion, err = s.discussions.Update(discussion.ID, repository.DiscussionUpdate{
			Title:    &title,
			Points:   &points,
			MinWords: &minWords,
		})
		if err != nil {
			return dto.CanvasGradeResponse{}, err
		}
	}

	outcome, err := s.grader.GradeText(ctx, discussion.ID, req.Submission.Message, GradeOptions{
		StudentName: req.StudentName(),
		Save:        true,
	})
	if err != nil {
		return dto.CanvasGradeResponse{}, err
	}

	s.logger.Info().
		Int("discussion_id", discussion.ID).
		Bool("discussion_created", created).
		Float64("score", outcome.Graded.Score).
		Msg("canvas submission graded")

	return dto.CanvasGradeResponse{
		Grade:                  formatGrade(outcome.Graded.Score),
		Comment:                buildCanvasComment(req.StudentName(), outcome.Graded, discussion),
		Points:                 int(math.Round(outcome.Graded.Score)),
		WordCount:              outcome.Graded.WordCount,
		MeetsWordCount:         outcome.Graded.MeetsWordCount,
		AddressedQuestions:     outcome.Graded.AddressedQuestions,
		ImprovementSuggestions: outcome.Graded.ImprovementSuggestions,
		DiscussionID:           discussion.ID,
		SubmissionID:           outcome.SubmissionID,
	}, nil
}

// buildCanvasComment renders the SpeedGrader comment: a first-name greeting,
// the feedback, suggestions as a bullet list, and a word-count note when the
// submission falls short.
func buildCanvasComment(studentName string, graded models.GradedSubmission, discussion models.Discussion) string {
	var b strings.Builder
	b.WriteString("Hi ")
	b.WriteString(firstName(studentName))
	b.WriteString(",\n\n")
	b.WriteString(strings.TrimSpace(graded.Feedback))

	if len(graded.ImprovementSuggestions) > 0 {
		b.WriteString("\n\nSuggestions for improvement:\n")
		for _, suggestion := range graded.ImprovementSuggestions {
			b.WriteString("- ")
			b.WriteString(suggestion)
			b.WriteString("\n")
		}
	}

	if !graded.MeetsWordCount {
		b.WriteString(fmt.Sprintf(
			"\nNote: your response is %d words, below the %d-word minimum.\n",
			graded.WordCount, discussion.MinWords))
	}

	return strings.TrimRight(b.String(), "\n")
}

// firstName falls back to a generic greeting when the page sent no name.
func firstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return "Student"
	}
	return fields[0]
}

// formatGrade renders a score the way SpeedGrader's input expects: whole
// numbers without a decimal point.
func formatGrade(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func truncateTitle(question string) string {
	runes := []rune(strings.TrimSpace(question))
	if len(runes) <= canvasTitleMaxLen {
		return string(runes)
	}
	return string(runes[:canvasTitleMaxLen]) + "..."
}
