package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/discussion-grader/internal/models"
	"github.com/noah-isme/discussion-grader/internal/repository"
	"github.com/noah-isme/discussion-grader/pkg/ai"
)

// fakeAIClient returns a canned reply and records the last request.
type fakeAIClient struct {
	reply   string
	err     error
	lastReq ai.GradeRequest
	calls   int
}

func (f *fakeAIClient) Grade(ctx context.Context, req ai.GradeRequest) (string, error) {
	f.lastReq = req
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newGradingFixture(t *testing.T, client ai.Client) (GradingService, models.Discussion, repository.SubmissionRepository) {
	t.Helper()
	dir := t.TempDir()
	discussions := repository.NewDiscussionRepository(dir)
	submissions := repository.NewSubmissionRepository(dir)

	discussion, err := discussions.Create("Remote work", "Benefits and challenges of remote work?", 8, 100)
	require.NoError(t, err)

	svc := NewGradingService(discussions, submissions, client, ai.ProviderConfig{MaxTokens: 1024, Temperature: 0}, zerolog.Nop())
	return svc, discussion, submissions
}

func TestGradeTextEndToEnd(t *testing.T) {
	client := &fakeAIClient{reply: `{
		"score": 7,
		"feedback": "Clear and well argued.",
		"improvement_suggestions": ["Add data"],
		"addressed_questions": {"benefits": true, "challenges": true},
		"word_count": 5
	}`}
	svc, discussion, _ := newGradingFixture(t, client)

	text := strings.Repeat("word ", 150)
	outcome, err := svc.GradeText(context.Background(), discussion.ID, text, GradeOptions{})
	require.NoError(t, err)

	require.Equal(t, 7.0, outcome.Graded.Score)
	require.Equal(t, 150, outcome.Graded.WordCount, "word count is derived from the text, not the model reply")
	require.True(t, outcome.Graded.MeetsWordCount)
	require.Equal(t, map[string]bool{"benefits": true, "challenges": true}, outcome.Graded.AddressedQuestions)
	require.Zero(t, outcome.SubmissionID, "nothing saved without the save option")

	require.Equal(t, 1024, client.lastReq.MaxTokens)
	require.Contains(t, client.lastReq.UserPrompt, "out of 8 points")
	require.Contains(t, client.lastReq.UserPrompt, "at least 100 words")
}

func TestGradeTextBelowMinimumWords(t *testing.T) {
	client := &fakeAIClient{reply: `{"score": 4, "feedback": "Too short."}`}
	svc, discussion, _ := newGradingFixture(t, client)

	outcome, err := svc.GradeText(context.Background(), discussion.ID, "only a few words here", GradeOptions{})
	require.NoError(t, err)
	require.False(t, outcome.Graded.MeetsWordCount)
	require.Equal(t, 4, outcome.Graded.WordCount)
}

func TestGradeTextSaves(t *testing.T) {
	client := &fakeAIClient{reply: `{"score": 6, "feedback": "Fine."}`}
	svc, discussion, submissions := newGradingFixture(t, client)

	outcome, err := svc.GradeText(context.Background(), discussion.ID, "an answer", GradeOptions{
		StudentName: "Grace Hopper",
		Save:        true,
	})
	require.NoError(t, err)
	require.Equal(t, 1, outcome.SubmissionID)

	record, err := submissions.Get(discussion.ID, outcome.SubmissionID)
	require.NoError(t, err)
	require.Equal(t, "Grace Hopper", record.Submission.StudentName)
	require.Equal(t, 6.0, record.Grading.Score)
}

func TestGradeTextUnknownDiscussion(t *testing.T) {
	client := &fakeAIClient{reply: `{"score": 6}`}
	svc, _, _ := newGradingFixture(t, client)

	_, err := svc.GradeText(context.Background(), 99, "an answer", GradeOptions{})
	require.ErrorIs(t, err, repository.ErrDiscussionNotFound)
	require.Zero(t, client.calls, "no model call for a missing discussion")
}

func TestGradeTextClientError(t *testing.T) {
	client := &fakeAIClient{err: fmt.Errorf("%w: boom", ai.ErrConnection)}
	svc, discussion, _ := newGradingFixture(t, client)

	_, err := svc.GradeText(context.Background(), discussion.ID, "an answer", GradeOptions{})
	require.ErrorIs(t, err, ai.ErrConnection)
}

func TestGradeTextUnparseableReply(t *testing.T) {
	client := &fakeAIClient{reply: "I cannot grade this."}
	svc, discussion, _ := newGradingFixture(t, client)

	_, err := svc.GradeText(context.Background(), discussion.ID, "an answer", GradeOptions{})
	require.ErrorIs(t, err, ai.ErrParse)
}

func TestGradeFile(t *testing.T) {
	client := &fakeAIClient{reply: `{"score": 5, "feedback": "Okay."}`}
	svc, discussion, _ := newGradingFixture(t, client)

	path := filepath.Join(t.TempDir(), "submission.txt")
	require.NoError(t, os.WriteFile(path, []byte("the submission text"), 0o644))

	outcome, err := svc.GradeFile(context.Background(), discussion.ID, path, GradeOptions{})
	require.NoError(t, err)
	require.Equal(t, 5.0, outcome.Graded.Score)
	require.Equal(t, 3, outcome.Graded.WordCount)
}

func TestGradeFileMissing(t *testing.T) {
	client := &fakeAIClient{reply: `{"score": 5}`}
	svc, discussion, _ := newGradingFixture(t, client)

	_, err := svc.GradeFile(context.Background(), discussion.ID, "/nonexistent/path.txt", GradeOptions{})
	require.Error(t, err)
}
