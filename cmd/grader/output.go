package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/noah-isme/discussion-grader/internal/models"
	"github.com/noah-isme/discussion-grader/internal/repository"
	"github.com/noah-isme/discussion-grader/internal/service"
)

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func printDiscussionTable(w io.Writer, discussions []models.Discussion) {
	if len(discussions) == 0 {
		fmt.Fprintln(w, "No discussions yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPOINTS\tMIN WORDS\tCREATED")
	for _, d := range discussions {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n",
			d.ID, d.Title, d.Points, d.MinWords, d.CreatedAt.Format("2006-01-02"))
	}
	tw.Flush()
}

func printDiscussion(w io.Writer, d models.Discussion) {
	fmt.Fprintf(w, "Discussion %d: %s\n", d.ID, d.Title)
	fmt.Fprintf(w, "Points: %d  Min words: %d\n", d.Points, d.MinWords)
	fmt.Fprintf(w, "Created: %s  Updated: %s\n",
		d.CreatedAt.Format("2006-01-02 15:04"), d.UpdatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, d.Question)
}

func printSubmissionTable(w io.Writer, records []repository.SubmissionRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No submissions yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTUDENT\tSCORE\tWORDS\tMEETS MIN\tGRADED")
	for _, r := range records {
		student := r.Submission.StudentName
		if student == "" {
			student = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%v\t%s\n",
			r.SubmissionID, student, formatScore(r.Grading.Score), r.Grading.WordCount,
			r.Grading.MeetsWordCount, r.CreatedAt.Format("2006-01-02"))
	}
	tw.Flush()
}

func printSubmissionRecord(w io.Writer, r repository.SubmissionRecord) {
	fmt.Fprintf(w, "Submission %d (discussion %d)\n", r.SubmissionID, r.DiscussionID)
	if r.Submission.StudentName != "" {
		fmt.Fprintf(w, "Student: %s\n", r.Submission.StudentName)
	}
	fmt.Fprintf(w, "Graded: %s\n\n", r.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintln(w, renderGrading(r.Grading))
}

func printGradeReport(w io.Writer, outcome service.GradeOutcome) {
	fmt.Fprintln(w, renderGradeReport(outcome))
}

// renderGradeReport builds the plain-text grade report, also used for
// clipboard copy-back.
func renderGradeReport(outcome service.GradeOutcome) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("GRADE: %s/%d\n", formatScore(outcome.Graded.Score), outcome.Discussion.Points))
	b.WriteString(renderGrading(outcome.Graded))
	if outcome.SubmissionID > 0 {
		b.WriteString(fmt.Sprintf("\nSaved as submission %d.\n", outcome.SubmissionID))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderGrading(g models.GradedSubmission) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("WORD COUNT: %d (meets minimum: %v)\n", g.WordCount, g.MeetsWordCount))

	if len(g.AddressedQuestions) > 0 {
		b.WriteString("\nQUESTIONS ADDRESSED:\n")
		labels := make([]string, 0, len(g.AddressedQuestions))
		for label := range g.AddressedQuestions {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			mark := "✗"
			if g.AddressedQuestions[label] {
				mark = "✓"
			}
			b.WriteString(fmt.Sprintf("  %s %s\n", mark, label))
		}
	}

	b.WriteString("\nFEEDBACK:\n")
	b.WriteString(strings.TrimSpace(g.Feedback))
	b.WriteString("\n")

	if len(g.ImprovementSuggestions) > 0 {
		b.WriteString("\nSUGGESTIONS FOR IMPROVEMENT:\n")
		for _, suggestion := range g.ImprovementSuggestions {
			b.WriteString("  - ")
			b.WriteString(suggestion)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func printSummaryTable(w io.Writer, summaries []service.DiscussionSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No discussions yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSUBMISSIONS\tAVG SCORE")
	for _, s := range summaries {
		avg := "-"
		if s.SubmissionCount > 0 {
			avg = fmt.Sprintf("%.1f", s.AverageScore)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", s.Discussion.ID, s.Discussion.Title, s.SubmissionCount, avg)
	}
	tw.Flush()
}

func printReport(w io.Writer, report service.DiscussionReport) {
	d := report.Discussion
	fmt.Fprintf(w, "Report for discussion %d: %s\n", d.ID, d.Title)
	fmt.Fprintf(w, "Submissions: %d\n", report.SubmissionCount)
	fmt.Fprintf(w, "Score: avg %.1f, min %s, max %s (out of %d)\n",
		report.AverageScore, formatScore(report.MinScore), formatScore(report.MaxScore), d.Points)
	fmt.Fprintf(w, "Words: avg %.0f, %d below the %d-word minimum\n",
		report.AverageWordCount, report.BelowMinWords, d.MinWords)
	fmt.Fprintln(w)
	printSubmissionTable(w, report.Submissions)
}

func printReportCSV(w io.Writer, report service.DiscussionReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"submission_id", "student", "score", "word_count", "meets_word_count", "graded_at"}); err != nil {
		return err
	}
	for _, r := range report.Submissions {
		row := []string{
			strconv.Itoa(r.SubmissionID),
			r.Submission.StudentName,
			formatScore(r.Grading.Score),
			strconv.Itoa(r.Grading.WordCount),
			strconv.FormatBool(r.Grading.MeetsWordCount),
			r.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}

// defaultTitle derives a title from the first words of the question.
func defaultTitle(question string) string {
	runes := []rune(strings.TrimSpace(question))
	if len(runes) <= 50 {
		return string(runes)
	}
	return string(runes[:50]) + "..."
}
