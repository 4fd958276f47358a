package domain

import (
	"regexp"
	"strings"
)

// Token sets for yes/no recognition. Matching is substring-based on the
// lower-cased transcript; the affirmative set is checked first, so a
// transcript containing tokens from both sets resolves to "Sí".
var (
	affirmativeTokens = []string{"sí", "si", "claro", "por supuesto", "afirmativo"}
	negativeTokens    = []string{"no", "negativo", "nunca", "jamás"}
)

var ratingPattern = regexp.MustCompile(`\b([1-5])\b`)

// Interpret maps a raw transcript to the normalized answer value for the
// given question type. ok is false only for closed types (rating, yesno)
// when no recognizable value is present; open and choice transcripts are
// always accepted, including the empty string.
func Interpret(transcript string, t QuestionType) (value string, ok bool) {
	text := strings.ToLower(strings.TrimSpace(transcript))

	switch t {
	case QuestionYesNo:
		for _, token := range affirmativeTokens {
			if strings.Contains(text, token) {
				return "Sí", true
			}
		}
		for _, token := range negativeTokens {
			if strings.Contains(text, token) {
				return "No", true
			}
		}
		return "", false

	case QuestionRating:
		match := ratingPattern.FindStringSubmatch(text)
		if match == nil {
			return "", false
		}
		return match[1], true

	case QuestionSingle, QuestionMultiple:
		// Stored as free text; no matching against the option list.
		return strings.TrimSpace(transcript), true

	default:
		return text, true
	}
}
