package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/discussion-grader/internal/dto"
	"github.com/noah-isme/discussion-grader/internal/repository"
	"github.com/noah-isme/discussion-grader/pkg/ai"
)

func newCanvasFixture(t *testing.T, client ai.Client) (CanvasService, repository.DiscussionRepository) {
	t.Helper()
	dir := t.TempDir()
	discussions := repository.NewDiscussionRepository(dir)
	submissions := repository.NewSubmissionRepository(dir)
	grader := NewGradingService(discussions, submissions, client, ai.ProviderConfig{MaxTokens: 1024}, zerolog.Nop())
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewCanvasService(discussions, grader, validate, zerolog.Nop()), discussions
}

func canvasRequest() dto.CanvasGradeRequest {
	return dto.CanvasGradeRequest{
		Discussion: dto.CanvasDiscussion{
			Title:  "Week 3: Microservices",
			Prompt: "Discuss the benefits and challenges of microservices.",
		},
		Student: dto.CanvasStudent{Name: "Alan Mathison Turing"},
		Submission: dto.CanvasSubmission{
			Message: "Microservices scale independently but operations get harder.",
		},
	}
}

func TestCanvasGradeFullFlow(t *testing.T) {
	client := &fakeAIClient{reply: `{
		"score": 7,
		"feedback": "Strong points on scaling.",
		"improvement_suggestions": ["Mention observability"],
		"addressed_questions": {"benefits": true, "challenges": true}
	}`}
	svc, discussions := newCanvasFixture(t, client)

	resp, err := svc.Grade(context.Background(), canvasRequest())
	require.NoError(t, err)

	require.Equal(t, "7", resp.Grade)
	require.Equal(t, 7, resp.Points, "points carries the awarded score, matching the grade")
	require.Equal(t, 7, resp.WordCount)
	require.False(t, resp.MeetsWordCount, "7 words is below the 100-word canvas default")
	require.Equal(t, 1, resp.DiscussionID)
	require.Equal(t, 1, resp.SubmissionID)
	require.Empty(t, resp.Error)

	require.Contains(t, resp.Comment, "Hi Alan,")
	require.Contains(t, resp.Comment, "Strong points on scaling.")
	require.Contains(t, resp.Comment, "- Mention observability")
	require.Contains(t, resp.Comment, "below the 100-word minimum")

	discussion, err := discussions.Get(1)
	require.NoError(t, err)
	require.Equal(t, 8, discussion.Points)
	require.Equal(t, 100, discussion.MinWords)
	require.Equal(t, "Week 3: Microservices", discussion.Title)
}

func TestCanvasGradeExplicitPointsAndMinWords(t *testing.T) {
	client := &fakeAIClient{reply: `{"score": 10, "feedback": "Great."}`}
	svc, _ := newCanvasFixture(t, client)

	req := canvasRequest()
	points, minWords := 12, 5
	req.Discussion.PointsPossible = &points
	req.Discussion.MinWords = &minWords

	resp, err := svc.Grade(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "10", resp.Grade)
	require.Equal(t, 10, resp.Points)
	require.True(t, resp.MeetsWordCount)
	require.NotContains(t, resp.Comment, "minimum")
}

func TestCanvasGradeReusesDiscussion(t *testing.T) {
	client := &fakeAIClient{reply: `{"score": 6, "feedback": "Fine."}`}
	svc, _ := newCanvasFixture(t, client)

	first, err := svc.Grade(context.Background(), canvasRequest())
	require.NoError(t, err)

	req := canvasRequest()
	req.Discussion.Prompt = "  discuss the BENEFITS and challenges   of microservices. "
	second, err := svc.Grade(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, first.DiscussionID, second.DiscussionID, "normalized question matches the existing discussion")
	require.Equal(t, 2, second.SubmissionID)
}

func TestCanvasGradeSyncsChangedPoints(t *testing.T) {
	client := &fakeAIClient{reply: `{"score": 6, "feedback": "Fine."}`}
	svc, discussions := newCanvasFixture(t, client)

	_, err := svc.Grade(context.Background(), canvasRequest())
	require.NoError(t, err)

	req := canvasRequest()
	points := 20
	req.Discussion.PointsPossible = &points
	resp, err := svc.Grade(context.Background(), req)
	require.NoError(t, err)

	discussion, err := discussions.Get(resp.DiscussionID)
	require.NoError(t, err)
	require.Equal(t, 20, discussion.Points)
}

func TestCanvasGradeExplicitDiscussionID(t *testing.T) {
	client := &fakeAIClient{reply: `{"score": 6, "feedback": "Fine."}`}
	svc, discussions := newCanvasFixture(t, client)

	existing, err := discussions.Create("Stored", "Explain eventual consistency.", 8, 100)
	require.NoError(t, err)

	req := canvasRequest()
	req.Discussion.ID = &existing.ID
	resp, err := svc.Grade(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, existing.ID, resp.DiscussionID, "explicit id skips question matching")
	require.Equal(t, 1, resp.SubmissionID)
}

func TestCanvasGradeAwardedPointsBelowMaximum(t *testing.T) {
	client := &fakeAIClient{reply: `{"score": 6, "feedback": "Decent."}`}
	svc, _ := newCanvasFixture(t, client)

	resp, err := svc.Grade(context.Background(), canvasRequest())
	require.NoError(t, err)
	require.Equal(t, "6", resp.Grade)
	require.Equal(t, 6, resp.Points, "a 6/8 grade reports 6 points, not the 8 possible")
}

func TestCanvasGradeStaleDiscussionIDCreates(t *testing.T) {
	client := &fakeAIClient{reply: `{"score": 6, "feedback": "Fine."}`}
	svc, discussions := newCanvasFixture(t, client)

	req := canvasRequest()
	stale := 7
	req.Discussion.ID = &stale
	resp, err := svc.Grade(context.Background(), req)
	require.NoError(t, err, "an id the store has never seen must not fail the grading")
	require.Equal(t, 1, resp.DiscussionID)
	require.Equal(t, 1, resp.SubmissionID)

	discussion, err := discussions.Get(resp.DiscussionID)
	require.NoError(t, err)
	require.Equal(t, "Discuss the benefits and challenges of microservices.", discussion.Question)
}

func TestCanvasGradeNoStudentName(t *testing.T) {
	client := &fakeAIClient{reply: `{"score": 6, "feedback": "Fine."}`}
	svc, _ := newCanvasFixture(t, client)

	req := canvasRequest()
	req.Student.Name = ""
	req.Submission.StudentName = ""
	resp, err := svc.Grade(context.Background(), req)
	require.NoError(t, err)
	require.Contains(t, resp.Comment, "Hi Student,")
}

func TestCanvasGradeLegacyStudentNameField(t *testing.T) {
	client := &fakeAIClient{reply: `{"score": 6, "feedback": "Fine."}`}
	svc, _ := newCanvasFixture(t, client)

	req := canvasRequest()
	req.Student.Name = ""
	req.Submission.StudentName = "Grace Hopper"
	resp, err := svc.Grade(context.Background(), req)
	require.NoError(t, err)
	require.Contains(t, resp.Comment, "Hi Grace,")
}

func TestCanvasGradeMissingMessage(t *testing.T) {
	client := &fakeAIClient{}
	svc, _ := newCanvasFixture(t, client)

	req := canvasRequest()
	req.Submission.Message = ""
	_, err := svc.Grade(context.Background(), req)
	require.ErrorIs(t, err, ErrValidation)
	require.Zero(t, client.calls)
}

func TestCanvasGradeEmptyPrompt(t *testing.T) {
	client := &fakeAIClient{}
	svc, _ := newCanvasFixture(t, client)

	req := canvasRequest()
	req.Discussion.Prompt = ""
	req.Discussion.Message = "   "
	_, err := svc.Grade(context.Background(), req)
	require.ErrorIs(t, err, ErrValidation)
}

func TestCanvasGradePromptFallsBackToMessage(t *testing.T) {
	client := &fakeAIClient{reply: `{"score": 6, "feedback": "Fine."}`}
	svc, discussions := newCanvasFixture(t, client)

	req := canvasRequest()
	req.Discussion.Title = ""
	req.Discussion.Prompt = ""
	req.Discussion.Message = "Explain the CAP theorem."
	resp, err := svc.Grade(context.Background(), req)
	require.NoError(t, err)

	discussion, err := discussions.Get(resp.DiscussionID)
	require.NoError(t, err)
	require.Equal(t, "Explain the CAP theorem.", discussion.Question)
	require.Equal(t, "Explain the CAP theorem.", discussion.Title, "short prompts become the title untruncated")
}
