package models

import "time"

// Discussion represents an instructor-defined question with a point value and
// minimum word count, the unit submissions are graded against.
type Discussion struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Points       int       `json:"points"`
	MinWords     int       `json:"min_words"`
	QuestionFile string    `json:"question_file"`
	Question     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefaultPoints and DefaultMinWords apply when a discussion is created
// without explicit values.
const (
	DefaultPoints   = 12
	DefaultMinWords = 300
)
