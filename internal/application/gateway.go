package application

import (
	"context"

	"voice-survey/internal/domain"
)

// SurveyGateway loads surveys from the backend. Surveys are immutable for
// the lifetime of a session once fetched.
type SurveyGateway interface {
	PublicSurvey(ctx context.Context, surveyID string) (*domain.Survey, error)
}

// ResponseSubmitter delivers the completed answer set. The flow calls it
// exactly once per session.
type ResponseSubmitter interface {
	Submit(ctx context.Context, sub *domain.Submission) error
}

// TokenSource yields a bearer token for owner-side calls. The identity
// provider behind it is a black box; nothing else is consumed from auth.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ManualInput covers the non-voice answer path: on-screen controls in the
// original, terminal prompts here. Values returned by Answer are already
// normalized and bypass interpretation.
type ManualInput interface {
	Name(ctx context.Context) (string, error)
	Answer(ctx context.Context, q domain.Question) (string, error)
}
