package surveyapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-survey/internal/domain"
)

type staticTokens struct{ token string }

func (s staticTokens) Token(context.Context) (string, error) { return s.token, nil }

func TestClient_PublicSurvey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/surveys/public/abc123", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"_id": "abc123",
			"title": "Satisfacción",
			"welcomeMessage": "Bienvenido",
			"farewell": "Gracias",
			"questions": [
				{"_id": "q1", "text": "¿Del 1 al 5?", "type": "rating"},
				{"_id": "q2", "text": "¿Color?", "type": "single", "options": ["Rojo", "Verde"]}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	survey, err := client.PublicSurvey(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, "abc123", survey.ID)
	assert.Equal(t, "Satisfacción", survey.Title)
	require.Len(t, survey.Questions, 2)
	assert.Equal(t, domain.QuestionRating, survey.Questions[0].Type)
	assert.Equal(t, []string{"Rojo", "Verde"}, survey.Questions[1].Options)
}

func TestClient_Submit(t *testing.T) {
	var got submissionJSON
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/responses", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	sub := &domain.Submission{
		SurveyID:       "abc123",
		RespondentName: "Ana",
		Answers: []domain.Answer{
			{QuestionID: "q1", Value: "5", Timestamp: ts},
			{QuestionID: "q2", Value: "No", Timestamp: ts},
		},
		UserAgent: "voicesurvey/1.0",
		Completed: true,
	}

	client := NewClient(server.URL, nil)
	require.NoError(t, client.Submit(context.Background(), sub))

	assert.Equal(t, "abc123", got.SurveyID)
	assert.Equal(t, "Ana", got.RespondentName)
	assert.True(t, got.Completed)
	require.Len(t, got.Answers, 2)
	assert.Equal(t, "q1", got.Answers[0].QuestionID)
	assert.Equal(t, "5", got.Answers[0].Value)
	assert.True(t, got.Answers[0].Timestamp.Equal(ts))
}

func TestClient_SubmitSingleAttempt(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	err := client.Submit(context.Background(), &domain.Submission{SurveyID: "s"})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "submission must not be retried")
}

func TestClient_AuthedEndpointsSendBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, staticTokens{token: "tok-1"})
	surveys, err := client.Surveys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, surveys)
}

func TestClient_AuthedWithoutCredentials(t *testing.T) {
	client := NewClient("http://unused.invalid", nil)
	_, err := client.Surveys(context.Background())
	require.ErrorContains(t, err, "no credentials")
}

func TestClient_RetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"_id": "abc123", "title": "t", "questions": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	survey, err := client.PublicSurvey(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "abc123", survey.ID)
}

func TestClient_DoesNotRetryNotFound(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.PublicSurvey(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 1, calls, "4xx responses must not be retried")
}

func TestClient_CreateSurveyValidatesFirst(t *testing.T) {
	client := NewClient("http://unused.invalid", staticTokens{token: "t"})
	_, err := client.CreateSurvey(context.Background(), &domain.Survey{})
	require.ErrorContains(t, err, "title is required")
}

func TestClient_SurveyResponses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/responses/survey/abc123", r.URL.Path)
		w.Write([]byte(`[
			{"_id": "r1", "surveyId": "abc123", "respondentName": "Ana",
			 "answers": [{"questionId": "q1", "value": "5", "timestamp": "2025-03-10T12:00:00Z"}],
			 "completed": true}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, staticTokens{token: "t"})
	responses, err := client.SurveyResponses(context.Background(), "abc123")
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, "Ana", responses[0].RespondentName)
	require.Len(t, responses[0].Answers, 1)
	assert.Equal(t, "5", responses[0].Answers[0].Value)
}
