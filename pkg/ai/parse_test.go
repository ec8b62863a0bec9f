package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testCriteria() GradingCriteria {
	return NewCriteria("Discuss the benefits and challenges of microservices.", 8, 100)
}

func TestParseGradeResponseStrictJSON(t *testing.T) {
	raw := `{
		"score": 7,
		"feedback": "Solid analysis with concrete examples.",
		"improvement_suggestions": ["Add a counterexample", "Cite a source"],
		"addressed_questions": {"benefits": true, "challenges": false},
		"word_count": 9999
	}`

	result, err := ParseGradeResponse(raw, testCriteria())
	require.NoError(t, err)
	require.Equal(t, 7.0, result.Score)
	require.Equal(t, "Solid analysis with concrete examples.", result.Feedback)
	require.Len(t, result.ImprovementSuggestions, 2)
	require.Equal(t, map[string]bool{"benefits": true, "challenges": false}, result.AddressedQuestions)
}

func TestParseGradeResponseEmbeddedInProse(t *testing.T) {
	raw := "Sure! Here is the grade:\n```json\n{\"score\": 6, \"feedback\": \"Good work.\"}\n```\nLet me know if you need anything else."

	result, err := ParseGradeResponse(raw, testCriteria())
	require.NoError(t, err)
	require.Equal(t, 6.0, result.Score)
	require.Equal(t, "Good work.", result.Feedback)
}

func TestParseGradeResponseEmbeddedWithControlChars(t *testing.T) {
	raw := "{\"score\": 5, \"feedback\": \"Line one.\nLine two.\"}"

	result, err := ParseGradeResponse(raw, testCriteria())
	require.NoError(t, err)
	require.Equal(t, 5.0, result.Score)
	require.Contains(t, result.Feedback, "Line one.")
	require.Contains(t, result.Feedback, "Line two.")
}

func TestParseGradeResponseHeuristicScoreOutOf(t *testing.T) {
	raw := "I would give this submission 7/8. The argument is well structured but short on examples."

	result, err := ParseGradeResponse(raw, testCriteria())
	require.NoError(t, err)
	require.Equal(t, 7.0, result.Score)
	require.Equal(t, raw, result.Feedback, "prose replies keep the full text as feedback")
}

func TestParseGradeResponseHeuristicScoreField(t *testing.T) {
	raw := "The score is 6 because the challenges section lacks depth."

	result, err := ParseGradeResponse(raw, testCriteria())
	require.NoError(t, err)
	require.Equal(t, 6.0, result.Score)
}

func TestParseGradeResponseNoScoreAnywhere(t *testing.T) {
	_, err := ParseGradeResponse("This essay shows real promise and careful thought.", testCriteria())
	require.ErrorIs(t, err, ErrParse)
}

func TestParseGradeResponseClampsOutOfRange(t *testing.T) {
	result, err := ParseGradeResponse(`{"score": 999, "feedback": "Excellent."}`, testCriteria())
	require.NoError(t, err)
	require.Equal(t, 8.0, result.Score)

	result, err = ParseGradeResponse(`{"score": -3, "feedback": "Hmm."}`, testCriteria())
	require.NoError(t, err)
	require.Equal(t, 0.0, result.Score)
}

func TestParseGradeResponseEmptyFeedbackFallsBackToRaw(t *testing.T) {
	raw := `{"score": 4}`
	result, err := ParseGradeResponse(raw, testCriteria())
	require.NoError(t, err)
	require.Equal(t, raw, result.Feedback)
}

func TestParseGradeResponseSkipsUnbalancedBrace(t *testing.T) {
	raw := "Your loop `for {` never exits.\n" +
		`{"score": 3, "feedback": "Needs work.", "improvement_suggestions": ["Add a break condition"]}`

	result, err := ParseGradeResponse(raw, testCriteria())
	require.NoError(t, err)
	require.Equal(t, 3.0, result.Score)
	require.Equal(t, "Needs work.", result.Feedback, "a stray brace in prose must not hide the structured reply")
	require.Equal(t, []string{"Add a break condition"}, result.ImprovementSuggestions)
}

func TestParseGradeResponseSkipsNonGradeObjects(t *testing.T) {
	raw := `The metadata was {"kind": "note"} but the grade is {"score": 3, "feedback": "Needs work."}`

	result, err := ParseGradeResponse(raw, testCriteria())
	require.NoError(t, err)
	require.Equal(t, 3.0, result.Score)
	require.Equal(t, "Needs work.", result.Feedback)
}
