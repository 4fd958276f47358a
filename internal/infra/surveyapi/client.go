package surveyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voice-survey/internal/application"
	"voice-survey/internal/domain"
	"voice-survey/internal/infra"
)

// Client talks to the survey REST backend. Public endpoints need no
// credentials; owner endpoints send a bearer token from the token source.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     application.TokenSource
}

func NewClient(baseURL string, tokens application.TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		tokens:     tokens,
	}
}

var (
	_ application.SurveyGateway     = (*Client)(nil)
	_ application.ResponseSubmitter = (*Client)(nil)
)

type questionJSON struct {
	ID      string   `json:"_id,omitempty"`
	Text    string   `json:"text"`
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
}

type surveyJSON struct {
	ID             string         `json:"_id,omitempty"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	WelcomeMessage string         `json:"welcomeMessage,omitempty"`
	Farewell       string         `json:"farewell,omitempty"`
	Questions      []questionJSON `json:"questions"`
}

type answerJSON struct {
	QuestionID string    `json:"questionId"`
	Value      string    `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
}

type submissionJSON struct {
	SurveyID       string       `json:"surveyId"`
	RespondentName string       `json:"respondentName"`
	Answers        []answerJSON `json:"answers"`
	UserAgent      string       `json:"userAgent,omitempty"`
	Completed      bool         `json:"completed"`
}

type responseJSON struct {
	ID             string       `json:"_id"`
	SurveyID       string       `json:"surveyId"`
	RespondentName string       `json:"respondentName"`
	Answers        []answerJSON `json:"answers"`
	Completed      bool         `json:"completed"`
}

// PublicSurvey fetches one survey through the unauthenticated endpoint.
func (c *Client) PublicSurvey(ctx context.Context, surveyID string) (*domain.Survey, error) {
	var raw surveyJSON
	err := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		return c.getJSON(ctx, "/api/surveys/public/"+surveyID, false, &raw)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching survey %s: %w", surveyID, err)
	}
	survey := raw.toDomain()
	return &survey, nil
}

// PublicSurveys lists surveys open for responses.
func (c *Client) PublicSurveys(ctx context.Context) ([]domain.Survey, error) {
	var raw []surveyJSON
	err := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		return c.getJSON(ctx, "/api/surveys/public", false, &raw)
	})
	if err != nil {
		return nil, fmt.Errorf("listing public surveys: %w", err)
	}
	surveys := make([]domain.Survey, 0, len(raw))
	for _, s := range raw {
		surveys = append(surveys, s.toDomain())
	}
	return surveys, nil
}

// Surveys lists the authenticated owner's surveys.
func (c *Client) Surveys(ctx context.Context) ([]domain.Survey, error) {
	var raw []surveyJSON
	err := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		return c.getJSON(ctx, "/api/surveys", true, &raw)
	})
	if err != nil {
		return nil, fmt.Errorf("listing surveys: %w", err)
	}
	surveys := make([]domain.Survey, 0, len(raw))
	for _, s := range raw {
		surveys = append(surveys, s.toDomain())
	}
	return surveys, nil
}

// CreateSurvey stores a new survey definition and returns its assigned id.
func (c *Client) CreateSurvey(ctx context.Context, survey *domain.Survey) (string, error) {
	if err := survey.Validate(); err != nil {
		return "", fmt.Errorf("invalid survey: %w", err)
	}

	payload := surveyFromDomain(survey)
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling survey: %w", err)
	}

	var created surveyJSON
	if err := c.postJSON(ctx, "/api/surveys", true, body, &created); err != nil {
		return "", fmt.Errorf("creating survey: %w", err)
	}
	return created.ID, nil
}

// SurveyResponses returns all submitted responses for one survey.
func (c *Client) SurveyResponses(ctx context.Context, surveyID string) ([]domain.SubmittedResponse, error) {
	var raw []responseJSON
	err := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		return c.getJSON(ctx, "/api/responses/survey/"+surveyID, true, &raw)
	})
	if err != nil {
		return nil, fmt.Errorf("listing responses for %s: %w", surveyID, err)
	}
	responses := make([]domain.SubmittedResponse, 0, len(raw))
	for _, r := range raw {
		responses = append(responses, r.toDomain())
	}
	return responses, nil
}

// Response fetches one submitted response by id.
func (c *Client) Response(ctx context.Context, responseID string) (*domain.SubmittedResponse, error) {
	var raw responseJSON
	err := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		return c.getJSON(ctx, "/api/responses/"+responseID, true, &raw)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching response %s: %w", responseID, err)
	}
	resp := raw.toDomain()
	return &resp, nil
}

// Submit delivers a completed answer set. Single attempt: a failed
// submission is reported to the caller, never retried here.
func (c *Client) Submit(ctx context.Context, sub *domain.Submission) error {
	payload := submissionJSON{
		SurveyID:       sub.SurveyID,
		RespondentName: sub.RespondentName,
		Answers:        make([]answerJSON, 0, len(sub.Answers)),
		UserAgent:      sub.UserAgent,
		Completed:      sub.Completed,
	}
	for _, a := range sub.Answers {
		payload.Answers = append(payload.Answers, answerJSON{
			QuestionID: a.QuestionID,
			Value:      a.Value,
			Timestamp:  a.Timestamp,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling submission: %w", err)
	}
	if err := c.postJSON(ctx, "/api/responses", false, body, nil); err != nil {
		return fmt.Errorf("submitting responses: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, authed bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, authed, out)
}

func (c *Client) postJSON(ctx context.Context, path string, authed bool, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, authed, out)
}

func (c *Client) do(req *http.Request, authed bool, out any) error {
	if authed {
		if c.tokens == nil {
			return fmt.Errorf("no credentials configured for %s", req.URL.Path)
		}
		token, err := c.tokens.Token(req.Context())
		if err != nil {
			return fmt.Errorf("getting auth token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := fmt.Errorf("api error %d on %s: %s", resp.StatusCode, req.URL.Path, string(respBody))
		if !infra.IsRetryableHTTPStatus(resp.StatusCode) {
			return &infra.PermanentError{Err: apiErr}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (s surveyJSON) toDomain() domain.Survey {
	questions := make([]domain.Question, 0, len(s.Questions))
	for _, q := range s.Questions {
		questions = append(questions, domain.Question{
			ID:      q.ID,
			Text:    q.Text,
			Type:    domain.QuestionType(q.Type),
			Options: q.Options,
		})
	}
	return domain.Survey{
		ID:             s.ID,
		Title:          s.Title,
		Description:    s.Description,
		WelcomeMessage: s.WelcomeMessage,
		Farewell:       s.Farewell,
		Questions:      questions,
	}
}

func surveyFromDomain(s *domain.Survey) surveyJSON {
	questions := make([]questionJSON, 0, len(s.Questions))
	for _, q := range s.Questions {
		questions = append(questions, questionJSON{
			Text:    q.Text,
			Type:    string(q.Type),
			Options: q.Options,
		})
	}
	return surveyJSON{
		Title:          s.Title,
		Description:    s.Description,
		WelcomeMessage: s.WelcomeMessage,
		Farewell:       s.Farewell,
		Questions:      questions,
	}
}

func (r responseJSON) toDomain() domain.SubmittedResponse {
	answers := make([]domain.Answer, 0, len(r.Answers))
	for _, a := range r.Answers {
		answers = append(answers, domain.Answer{
			QuestionID: a.QuestionID,
			Value:      a.Value,
			Timestamp:  a.Timestamp,
		})
	}
	return domain.SubmittedResponse{
		ID:             r.ID,
		SurveyID:       r.SurveyID,
		RespondentName: r.RespondentName,
		Answers:        answers,
		Completed:      r.Completed,
	}
}
