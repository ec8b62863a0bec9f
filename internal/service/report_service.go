package service

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/noah-isme/discussion-grader/internal/models"
	"github.com/noah-isme/discussion-grader/internal/repository"
)

// ErrNoSubmissions means a report was requested for a discussion with no
// graded submissions, or the score filter matched none.
var ErrNoSubmissions = errors.New("discussion has no graded submissions")

// ReportFilter restricts a report to a score range. Nil bounds are open.
type ReportFilter struct {
	MinScore *float64
	MaxScore *float64
}

func (f ReportFilter) matches(score float64) bool {
	if f.MinScore != nil && score < *f.MinScore {
		return false
	}
	if f.MaxScore != nil && score > *f.MaxScore {
		return false
	}
	return true
}

// DiscussionReport aggregates the graded submissions of one discussion.
type DiscussionReport struct {
	Discussion       models.Discussion
	SubmissionCount  int
	AverageScore     float64
	MinScore         float64
	MaxScore         float64
	AverageWordCount float64
	BelowMinWords    int
	Submissions      []repository.SubmissionRecord
}

// DiscussionSummary is the one-line overview used when listing reports
// across all discussions.
type DiscussionSummary struct {
	Discussion      models.Discussion
	SubmissionCount int
	AverageScore    float64
}

// ReportService summarizes grading activity per discussion.
type ReportService interface {
	DiscussionReport(discussionID int, filter ReportFilter) (DiscussionReport, error)
	ListSummaries() ([]DiscussionSummary, error)
}

type reportService struct {
	discussions repository.DiscussionRepository
	submissions repository.SubmissionRepository
	logger      zerolog.Logger
}

// NewReportService constructs a report service.
func NewReportService(
	discussions repository.DiscussionRepository,
	submissions repository.SubmissionRepository,
	logger zerolog.Logger,
) ReportService {
	return &reportService{
		discussions: discussions,
		submissions: submissions,
		logger:      logger.With().Str("component", "report_service").Logger(),
	}
}

func (s *reportService) DiscussionReport(discussionID int, filter ReportFilter) (DiscussionReport, error) {
	discussion, err := s.discussions.Get(discussionID)
	if err != nil {
		return DiscussionReport{}, err
	}

	all, err := s.submissions.List(discussionID)
	if err != nil {
		return DiscussionReport{}, err
	}
	records := make([]repository.SubmissionRecord, 0, len(all))
	for _, record := range all {
		if filter.matches(record.Grading.Score) {
			records = append(records, record)
		}
	}
	if len(records) == 0 {
		return DiscussionReport{}, ErrNoSubmissions
	}

	report := DiscussionReport{
		Discussion:      discussion,
		SubmissionCount: len(records),
		MinScore:        records[0].Grading.Score,
		MaxScore:        records[0].Grading.Score,
		Submissions:     records,
	}

	var scoreSum, wordSum float64
	for _, record := range records {
		score := record.Grading.Score
		scoreSum += score
		wordSum += float64(record.Grading.WordCount)
		if score < report.MinScore {
			report.MinScore = score
		}
		if score > report.MaxScore {
			report.MaxScore = score
		}
		if !record.Grading.MeetsWordCount {
			report.BelowMinWords++
		}
	}
	report.AverageScore = scoreSum / float64(len(records))
	report.AverageWordCount = wordSum / float64(len(records))

	return report, nil
}

func (s *reportService) ListSummaries() ([]DiscussionSummary, error) {
	discussions, err := s.discussions.List()
	if err != nil {
		return nil, err
	}

	summaries := make([]DiscussionSummary, 0, len(discussions))
	for _, discussion := range discussions {
		records, err := s.submissions.List(discussion.ID)
		if err != nil {
			return nil, err
		}

		summary := DiscussionSummary{Discussion: discussion, SubmissionCount: len(records)}
		if len(records) > 0 {
			var sum float64
			for _, record := range records {
				sum += record.Grading.Score
			}
			summary.AverageScore = sum / float64(len(records))
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
