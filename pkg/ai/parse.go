package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// GradeResult is the structured outcome extracted from a provider reply.
// Word-count fields are deliberately absent: they are always derived from the
// submission text by the caller, never trusted from model output.
type GradeResult struct {
	Score                  float64
	Feedback               string
	ImprovementSuggestions []string
	AddressedQuestions     map[string]bool
}

// gradePayload mirrors the JSON shape the grading prompt asks the model to
// emit. Score is a pointer so a reply without one fails the strategy instead
// of silently producing zero.
type gradePayload struct {
	Score                  *float64        `json:"score"`
	Feedback               string          `json:"feedback"`
	ImprovementSuggestions []string        `json:"improvement_suggestions"`
	AddressedQuestions     map[string]bool `json:"addressed_questions"`
}

var (
	scoreOutOfPattern  = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:/|out of)\s*\d+`)
	scoreFieldPattern  = regexp.MustCompile(`(?i)"?(?:score|grade)"?\s*(?:is|was|[:=])\s*(\d+(?:\.\d+)?)`)
	controlCharPattern = regexp.MustCompile(`[\x00-\x1F]`)
)

// ParseGradeResponse extracts a grade from raw model output. Strategies are
// tried strictest first: the whole reply as a JSON object, then the first
// balanced JSON object embedded anywhere in the text, then heuristic pattern
// extraction. ErrParse is returned only when all three produce no usable
// score. The returned score is clamped into [0, criteria.TotalPoints] and
// feedback defaults to the full raw text when no structured field is present.
func ParseGradeResponse(raw string, criteria GradingCriteria) (GradeResult, error) {
	trimmed := strings.TrimSpace(raw)

	strategies := []func(string) (gradePayload, bool){
		parseStrictJSON,
		parseEmbeddedJSON,
	}
	for _, strategy := range strategies {
		if payload, ok := strategy(trimmed); ok {
			return payloadToResult(payload, trimmed, criteria), nil
		}
	}

	return parseHeuristic(trimmed, criteria)
}

// parseStrictJSON accepts only a reply that is a single JSON object carrying
// a numeric score.
func parseStrictJSON(raw string) (gradePayload, bool) {
	var payload gradePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return gradePayload{}, false
	}
	return payload, payload.Score != nil
}

// parseEmbeddedJSON walks the text looking for balanced {...} objects, which
// models frequently wrap in markdown fences or prose. Each candidate is tried
// as-is and then with control characters escaped.
func parseEmbeddedJSON(raw string) (gradePayload, bool) {
	for start := 0; start < len(raw); {
		open := strings.IndexByte(raw[start:], '{')
		if open < 0 {
			return gradePayload{}, false
		}
		open += start

		candidate, ok := balancedObject(raw[open:])
		if !ok {
			// An unmatched brace earlier in the prose must not hide a
			// later valid object.
			start = open + 1
			continue
		}

		if payload, ok := parseStrictJSON(candidate); ok {
			return payload, true
		}
		cleaned := controlCharPattern.ReplaceAllStringFunc(candidate, func(match string) string {
			return fmt.Sprintf(`\u%04x`, match[0])
		})
		if payload, ok := parseStrictJSON(cleaned); ok {
			return payload, true
		}

		start = open + 1
	}
	return gradePayload{}, false
}

// balancedObject returns the prefix of text forming a brace-balanced object,
// honoring JSON string literals and escapes.
func balancedObject(text string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[:i+1], true
			}
		}
	}
	return "", false
}

// parseHeuristic is the last resort for replies that are plain prose: the
// first number in a "7/8" or "7 out of 8" construction, else the first
// explicit score/grade mention. The full raw text becomes the feedback.
func parseHeuristic(raw string, criteria GradingCriteria) (GradeResult, error) {
	score, ok := heuristicScore(raw)
	if !ok {
		return GradeResult{}, fmt.Errorf("%w: no score pattern in %d bytes of output", ErrParse, len(raw))
	}

	return GradeResult{
		Score:    clampScore(score, criteria.TotalPoints),
		Feedback: raw,
	}, nil
}

func heuristicScore(raw string) (float64, bool) {
	for _, pattern := range []*regexp.Regexp{scoreOutOfPattern, scoreFieldPattern} {
		if match := pattern.FindStringSubmatch(raw); match != nil {
			score, err := strconv.ParseFloat(match[1], 64)
			if err == nil {
				return score, true
			}
		}
	}
	return 0, false
}

func payloadToResult(payload gradePayload, raw string, criteria GradingCriteria) GradeResult {
	feedback := strings.TrimSpace(payload.Feedback)
	if feedback == "" {
		feedback = raw
	}

	return GradeResult{
		Score:                  clampScore(*payload.Score, criteria.TotalPoints),
		Feedback:               feedback,
		ImprovementSuggestions: payload.ImprovementSuggestions,
		AddressedQuestions:     payload.AddressedQuestions,
	}
}

// clampScore forces a score into [0, totalPoints]. Models occasionally
// produce slightly out-of-range values (a 9/8); those are clamped, not
// rejected.
func clampScore(score float64, totalPoints int) float64 {
	if score < 0 {
		return 0
	}
	if limit := float64(totalPoints); score > limit {
		return limit
	}
	return score
}
