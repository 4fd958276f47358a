package domain

import (
	"fmt"
	"strings"
	"time"
)

type QuestionType string

const (
	QuestionOpen     QuestionType = "open"
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
	QuestionRating   QuestionType = "rating"
	QuestionYesNo    QuestionType = "yesno"
)

// Survey is read-only from the flow's perspective: loaded once per session.
type Survey struct {
	ID             string
	Title          string
	Description    string
	WelcomeMessage string
	Farewell       string
	Questions      []Question
}

type Question struct {
	ID      string
	Text    string
	Type    QuestionType
	Options []string
}

// Answer holds the normalized value for one question. Created once, in
// question order, never mutated afterwards.
type Answer struct {
	QuestionID string
	Value      string
	Timestamp  time.Time
}

// Submission is the unit delivered to the backend when a session reaches
// its terminal state: the respondent name plus the full ordered answer set.
type Submission struct {
	SurveyID       string
	RespondentName string
	Answers        []Answer
	UserAgent      string
	Completed      bool
}

// IsClosed reports whether unparseable responses re-prompt instead of being
// accepted as-is.
func (t QuestionType) IsClosed() bool {
	return t == QuestionRating || t == QuestionYesNo
}

func (t QuestionType) HasOptions() bool {
	return t == QuestionSingle || t == QuestionMultiple
}

// Validate checks a survey definition before it is sent to the backend.
// These are authoring-time rules; taking a survey never re-checks them.
func (s *Survey) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("survey title is required")
	}
	if len(s.Questions) == 0 {
		return fmt.Errorf("survey needs at least one question")
	}
	for i, q := range s.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("question %d has no text", i+1)
		}
		switch q.Type {
		case QuestionOpen, QuestionSingle, QuestionMultiple, QuestionRating, QuestionYesNo:
		default:
			return fmt.Errorf("question %d has unknown type %q", i+1, q.Type)
		}
		if q.Type.HasOptions() {
			if len(q.Options) < 2 {
				return fmt.Errorf("question %d needs at least 2 options", i+1)
			}
			for j, opt := range q.Options {
				if strings.TrimSpace(opt) == "" {
					return fmt.Errorf("question %d option %d is empty", i+1, j+1)
				}
			}
		}
	}
	return nil
}
