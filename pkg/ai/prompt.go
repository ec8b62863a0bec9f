package ai

import (
	"fmt"
	"sort"
	"strings"
)

const gradingSystemPrompt = "You are an expert instructor grading computer science discussions. " +
	"Write feedback and grading reasoning directly to the student in a clear, " +
	"professional tone. Be concise but constructive. Grade fairly and provide " +
	"specific feedback without being overly verbose. Avoid using phrases like " +
	"'the student' and prefer to use 'you' instead. The feedback should be " +
	"constructive and actionable, helping the student understand how to improve."

// softwareEngineeringKeywords trigger an extra emphasis line in the prompt.
var softwareEngineeringKeywords = []string{
	"software engineering",
	"software development",
	"coding practices",
	"programming paradigm",
}

// BuildPrompts assembles the system and user prompts for one grading call.
// Pure function of its inputs; the word count embedded in the prompt is
// derived here from the submission text.
func BuildPrompts(submissionText string, criteria GradingCriteria) (string, string) {
	wordCount := len(strings.Fields(submissionText))

	builder := strings.Builder{}
	builder.WriteString("Grade this student's discussion response:\n\n")
	builder.WriteString("Question:\n")
	builder.WriteString(criteria.QuestionText)
	builder.WriteString("\n\nStudent Submission:\n")
	builder.WriteString(submissionText)
	builder.WriteString(fmt.Sprintf("\n\nPlease grade this submission out of %d points.\n", criteria.TotalPoints))
	builder.WriteString("Evaluate based on these criteria:\n")
	for _, criterion := range criteria.CriteriaList {
		builder.WriteString("- ")
		builder.WriteString(criterion)
		builder.WriteString("\n")
	}
	builder.WriteString(fmt.Sprintf(
		"\nThe submission should be at least %d words. Current word count: %d words.\nConsider this in your grading.\n",
		criteria.MinWords, wordCount))

	if containsAny(strings.ToLower(criteria.QuestionText), softwareEngineeringKeywords) {
		builder.WriteString("\nPlease pay special attention to the student's understanding of software " +
			"engineering concepts and their ability to apply these concepts to practical scenarios.\n")
	}

	builder.WriteString(fmt.Sprintf(
		"\nIMPORTANT GRADING REQUIREMENT: If you deduct any points (giving less than %d points), "+
			"you MUST clearly justify the deduction in your feedback. Explain specifically what was "+
			"missing, insufficient, or incorrect that led to the point reduction. Be constructive "+
			"and specific about what the student needs to improve.\n",
		criteria.TotalPoints))
	builder.WriteString("\nSCORING REQUIREMENT: Use only WHOLE NUMBER scores (e.g., 5, 6, 7, 8) - " +
		"no decimal points allowed (e.g., NOT 5.0, 6.5, 7.2).\n")

	builder.WriteString("\nProvide your response in JSON format like this:\n{\n")
	builder.WriteString(fmt.Sprintf("    \"score\": [whole number score out of %d],\n", criteria.TotalPoints))
	builder.WriteString("    \"feedback\": \"[1-2 paragraph summary of strengths and weaknesses, " +
		"with clear justification for any point deductions]\",\n")
	builder.WriteString("    \"improvement_suggestions\": [\n" +
		"        \"specific suggestion 1\",\n" +
		"        \"specific suggestion 2\",\n" +
		"        \"specific suggestion 3\"\n" +
		"    ],\n")
	if criteria.CheckAddressedQuestions && len(criteria.QuestionKeys) > 0 {
		builder.WriteString("    \"addressed_questions\": {\n")
		for _, label := range sortedKeys(criteria.QuestionKeys) {
			builder.WriteString(fmt.Sprintf("        %q: true/false, // %s\n", label, criteria.QuestionKeys[label]))
		}
		builder.WriteString("    },\n")
	}
	builder.WriteString(fmt.Sprintf("    \"word_count\": %d\n}\n", wordCount))
	builder.WriteString("\nONLY return the JSON, no other text.")

	return gradingSystemPrompt, builder.String()
}

// sortedKeys keeps the generated prompt deterministic across runs.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
