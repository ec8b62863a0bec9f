package ai

import "strings"

// Keyword lists used to detect multi-part questions. Package-level so an
// embedding process can extend them; only the documented terms ship.
var (
	BenefitKeywords   = []string{"benefit", "advantage"}
	ChallengeKeywords = []string{"challenge", "disadvantage", "problem", "limitation"}
)

// defaultCriteriaList is the rubric applied when a discussion defines none.
var defaultCriteriaList = []string{
	"Understanding of the topic",
	"Clarity of explanation",
	"Use of specific examples",
	"Depth of analysis",
}

// GradingCriteria describes how a submission should be evaluated. Built fresh
// per grading call from discussion data and never persisted.
type GradingCriteria struct {
	CriteriaList            []string
	TotalPoints             int
	MinWords                int
	QuestionText            string
	CheckAddressedQuestions bool
	QuestionKeys            map[string]string
}

// NewCriteria builds criteria for a question, deriving multi-part coverage
// labels from the question text.
func NewCriteria(question string, totalPoints, minWords int) GradingCriteria {
	keys := DetectQuestionKeys(question)
	return GradingCriteria{
		CriteriaList:            defaultCriteriaList,
		TotalPoints:             totalPoints,
		MinWords:                minWords,
		QuestionText:            question,
		CheckAddressedQuestions: len(keys) > 0,
		QuestionKeys:            keys,
	}
}

// DetectQuestionKeys scans a question for the benefit/challenge keyword pairs
// that mark it as multi-part. Both kinds must be present; the returned map
// then carries exactly the labels "benefits" and "challenges".
func DetectQuestionKeys(question string) map[string]string {
	lower := strings.ToLower(question)
	if !containsAny(lower, BenefitKeywords) || !containsAny(lower, ChallengeKeywords) {
		return nil
	}

	return map[string]string{
		"benefits":   "whether the submission discusses benefits or advantages",
		"challenges": "whether the submission discusses challenges or limitations",
	}
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
