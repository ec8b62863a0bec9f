package service

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/discussion-grader/internal/models"
	"github.com/noah-isme/discussion-grader/internal/repository"
)

func newReportFixture(t *testing.T) (ReportService, repository.DiscussionRepository, repository.SubmissionRepository) {
	t.Helper()
	dir := t.TempDir()
	discussions := repository.NewDiscussionRepository(dir)
	submissions := repository.NewSubmissionRepository(dir)
	return NewReportService(discussions, submissions, zerolog.Nop()), discussions, submissions
}

func seedSubmissions(t *testing.T, submissions repository.SubmissionRepository, discussion models.Discussion, scores []float64, texts []string) {
	t.Helper()
	for i, text := range texts {
		wordCount := models.CountWords(text)
		_, err := submissions.Save(discussion.ID, models.Submission{Text: text}, models.GradedSubmission{
			Score:          scores[i],
			MeetsWordCount: wordCount >= discussion.MinWords,
		})
		require.NoError(t, err)
	}
}

func TestReportServiceAggregates(t *testing.T) {
	svc, discussions, submissions := newReportFixture(t)

	discussion, err := discussions.Create("Caching", "Benefits and challenges of caching?", 8, 3)
	require.NoError(t, err)

	seedSubmissions(t, submissions, discussion,
		[]float64{8, 4, 6},
		[]string{"one two three four", "one two", "one two three four five six"})

	report, err := svc.DiscussionReport(discussion.ID, ReportFilter{})
	require.NoError(t, err)
	require.Equal(t, 3, report.SubmissionCount)
	require.InDelta(t, 6.0, report.AverageScore, 1e-9)
	require.Equal(t, 4.0, report.MinScore)
	require.Equal(t, 8.0, report.MaxScore)
	require.InDelta(t, 4.0, report.AverageWordCount, 1e-9)
	require.Equal(t, 1, report.BelowMinWords)
}

func TestReportServiceScoreFilter(t *testing.T) {
	svc, discussions, submissions := newReportFixture(t)

	discussion, err := discussions.Create("Caching", "A question.", 8, 3)
	require.NoError(t, err)

	seedSubmissions(t, submissions, discussion,
		[]float64{8, 4, 6},
		[]string{"a b c d", "a b", "a b c d e f"})

	low := 5.0
	report, err := svc.DiscussionReport(discussion.ID, ReportFilter{MinScore: &low})
	require.NoError(t, err)
	require.Equal(t, 2, report.SubmissionCount)
	require.Equal(t, 6.0, report.MinScore)

	high := 5.0
	report, err = svc.DiscussionReport(discussion.ID, ReportFilter{MaxScore: &high})
	require.NoError(t, err)
	require.Equal(t, 1, report.SubmissionCount)
	require.Equal(t, 4.0, report.MaxScore)

	both := 5.0
	_, err = svc.DiscussionReport(discussion.ID, ReportFilter{MinScore: &both, MaxScore: &both})
	require.ErrorIs(t, err, ErrNoSubmissions, "filter matching nothing reports as empty")
}

func TestReportServiceListSummaries(t *testing.T) {
	svc, discussions, submissions := newReportFixture(t)

	first, err := discussions.Create("First", "Question one.", 8, 3)
	require.NoError(t, err)
	_, err = discussions.Create("Second", "Question two.", 12, 300)
	require.NoError(t, err)

	seedSubmissions(t, submissions, first, []float64{4, 8}, []string{"a b c d", "a b c d"})

	summaries, err := svc.ListSummaries()
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	require.Equal(t, 2, summaries[0].SubmissionCount)
	require.InDelta(t, 6.0, summaries[0].AverageScore, 1e-9)
	require.Equal(t, 0, summaries[1].SubmissionCount)
	require.Zero(t, summaries[1].AverageScore)
}

func TestReportServiceNoSubmissions(t *testing.T) {
	svc, discussions, _ := newReportFixture(t)

	discussion, err := discussions.Create("Empty", "A question.", 12, 300)
	require.NoError(t, err)

	_, err = svc.DiscussionReport(discussion.ID, ReportFilter{})
	require.ErrorIs(t, err, ErrNoSubmissions)
}

func TestReportServiceUnknownDiscussion(t *testing.T) {
	svc, _, _ := newReportFixture(t)

	_, err := svc.DiscussionReport(404, ReportFilter{})
	require.ErrorIs(t, err, repository.ErrDiscussionNotFound)
}
