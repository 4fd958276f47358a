package domain

import "strconv"

// SubmittedResponse is one completed take of a survey as the backend
// returns it to the owner.
type SubmittedResponse struct {
	ID             string
	SurveyID       string
	RespondentName string
	Answers        []Answer
	Completed      bool
}

// QuestionSummary aggregates all answers given to a single question.
type QuestionSummary struct {
	Question Question
	Total    int
	// Counts maps answer value to occurrences. For rating questions the
	// keys are "1".."5"; for yesno, "Sí" and "No".
	Counts map[string]int
	// AverageRating is only meaningful for rating questions with Total > 0.
	AverageRating float64
	// Answers holds the raw values in submission order for open and
	// choice questions.
	Answers []string
}

// Summarize builds per-question aggregates in question order. Answers that
// reference unknown question ids are ignored.
func Summarize(survey *Survey, responses []SubmittedResponse) []QuestionSummary {
	byQuestion := make(map[string][]string, len(survey.Questions))
	for _, resp := range responses {
		for _, ans := range resp.Answers {
			byQuestion[ans.QuestionID] = append(byQuestion[ans.QuestionID], ans.Value)
		}
	}

	summaries := make([]QuestionSummary, 0, len(survey.Questions))
	for _, q := range survey.Questions {
		values := byQuestion[q.ID]
		summary := QuestionSummary{
			Question: q,
			Total:    len(values),
			Counts:   make(map[string]int),
		}

		switch q.Type {
		case QuestionRating:
			sum := 0
			counted := 0
			for _, v := range values {
				summary.Counts[v]++
				if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 5 {
					sum += n
					counted++
				}
			}
			if counted > 0 {
				summary.AverageRating = float64(sum) / float64(counted)
			}
		case QuestionYesNo, QuestionSingle, QuestionMultiple:
			for _, v := range values {
				summary.Counts[v]++
			}
			if q.Type.HasOptions() {
				summary.Answers = values
			}
		default:
			summary.Answers = values
		}

		summaries = append(summaries, summary)
	}
	return summaries
}
