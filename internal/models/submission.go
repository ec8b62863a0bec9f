package models

import (
	"strings"
	"time"
)

// CountWords reports the number of whitespace-separated words in text. All
// stored word counts derive from this function, never from model output.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// Submission is a student's response to a discussion question.
type Submission struct {
	DiscussionID int       `json:"discussion_id"`
	Text         string    `json:"submission_text"`
	QuestionText string    `json:"question_text"`
	StudentName  string    `json:"student_name,omitempty"`
	SubmittedAt  time.Time `json:"submitted_at"`
	WordCount    int       `json:"word_count"`
}

// NewSubmission builds a submission with its word count derived from the text.
func NewSubmission(discussionID int, text, questionText string) Submission {
	return Submission{
		DiscussionID: discussionID,
		Text:         text,
		QuestionText: questionText,
		SubmittedAt:  time.Now().UTC(),
		WordCount:    CountWords(text),
	}
}

// GradedSubmission is the AI-produced evaluation of a submission. A new
// grading call always produces a new GradedSubmission; past grades are never
// mutated in place.
type GradedSubmission struct {
	Score                  float64         `json:"score"`
	Feedback               string          `json:"feedback"`
	ImprovementSuggestions []string        `json:"improvement_suggestions"`
	AddressedQuestions     map[string]bool `json:"addressed_questions"`
	WordCount              int             `json:"word_count"`
	MeetsWordCount         bool            `json:"meets_word_count"`
	SubmissionID           int             `json:"submission_id,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
}
