package dto

// Canvas SpeedGrader integration payloads. The request arrives on stdin as a
// single JSON document; the response goes to stdout. Field names match the
// browser-side userscript and must not change.

// CanvasGradeRequest is the full grading request from the SpeedGrader page.
type CanvasGradeRequest struct {
	Discussion CanvasDiscussion `json:"discussion"`
	Student    CanvasStudent    `json:"student"`
	Submission CanvasSubmission `json:"submission"`
}

// CanvasStudent identifies the student being graded.
type CanvasStudent struct {
	Name string `json:"name"`
}

// StudentName resolves the student's name, preferring the student object
// over the legacy field on the submission.
func (r CanvasGradeRequest) StudentName() string {
	if r.Student.Name != "" {
		return r.Student.Name
	}
	return r.Submission.StudentName
}

// CanvasDiscussion describes the discussion as scraped from Canvas. Pointer
// fields distinguish an absent value from an explicit zero so the Canvas
// defaults (8 points, 100 words) only apply when the field is missing.
type CanvasDiscussion struct {
	ID             *int   `json:"id"`
	Title          string `json:"title"`
	Prompt         string `json:"prompt"`
	Message        string `json:"message"`
	PointsPossible *int   `json:"points_possible"`
	MinWords       *int   `json:"min_words"`
}

// QuestionText resolves the discussion prompt, falling back to the message
// body when the prompt field is empty.
func (d CanvasDiscussion) QuestionText() string {
	if d.Prompt != "" {
		return d.Prompt
	}
	return d.Message
}

// CanvasSubmission is the student reply scraped from the SpeedGrader frame.
type CanvasSubmission struct {
	StudentName string `json:"student_name"`
	Message     string `json:"message" validate:"required,min=1"`
	WordCount   *int   `json:"word_count"`
}

// CanvasGradeResponse is the JSON document written back for the userscript.
// Grade is a string because SpeedGrader's score input expects text.
type CanvasGradeResponse struct {
	Grade                  string          `json:"grade"`
	Comment                string          `json:"comment"`
	Points                 int             `json:"points"`
	WordCount              int             `json:"word_count"`
	MeetsWordCount         bool            `json:"meets_word_count"`
	AddressedQuestions     map[string]bool `json:"addressed_questions,omitempty"`
	ImprovementSuggestions []string        `json:"improvement_suggestions,omitempty"`
	DiscussionID           int             `json:"discussion_id,omitempty"`
	SubmissionID           int             `json:"submission_id,omitempty"`
	Error                  string          `json:"error,omitempty"`
}

// NewCanvasErrorResponse is the fixed error envelope: grade zero, the error
// message repeated as a comment so it is visible in SpeedGrader.
func NewCanvasErrorResponse(message string) CanvasGradeResponse {
	return CanvasGradeResponse{
		Grade:          "0",
		Comment:        message + ". Please contact the instructor.",
		Points:         0,
		WordCount:      0,
		MeetsWordCount: false,
		Error:          message,
	}
}
