package application_test

import (
	"errors"
	"testing"
	"time"

	"voice-survey/internal/application"
	"voice-survey/internal/domain"
)

func twoQuestionSurvey() *domain.Survey {
	return &domain.Survey{
		ID:             "svy1",
		Title:          "Atención al cliente",
		WelcomeMessage: "Bienvenido a la encuesta.",
		Farewell:       "Gracias por participar.",
		Questions: []domain.Question{
			{ID: "q1", Text: "¿Cómo calificaría el servicio del 1 al 5?", Type: domain.QuestionRating},
			{ID: "q2", Text: "¿Nos recomendaría?", Type: domain.QuestionYesNo},
		},
	}
}

func TestSession_FullVoiceFlow(t *testing.T) {
	session := application.NewSession(twoQuestionSurvey())

	fixed := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	session.SetClock(func() time.Time { return fixed })

	advance := func(ev application.Event) {
		t.Helper()
		if err := session.Advance(ev); err != nil {
			t.Fatalf("advance at step %s: %v", session.Step(), err)
		}
	}

	advance(application.Event{Kind: application.EventPromptFinished})
	if session.Step() != application.StepCollectingName {
		t.Fatalf("expected collecting_name, got %s", session.Step())
	}

	advance(application.Event{Kind: application.EventTranscript, Text: "Ana"})
	if session.RespondentName() != "Ana" {
		t.Errorf("expected name Ana, got %q", session.RespondentName())
	}
	if session.Step() != application.StepAsking || session.QuestionIndex() != 0 {
		t.Fatalf("expected asking question 0, got %s/%d", session.Step(), session.QuestionIndex())
	}

	// Unrecognized rating: state unchanged, same question.
	err := session.Advance(application.Event{Kind: application.EventTranscript, Text: "mmm no sé qué decir"})
	if !errors.Is(err, application.ErrUnparseable) {
		t.Fatalf("expected ErrUnparseable, got %v", err)
	}
	if session.QuestionIndex() != 0 || len(session.Answers()) != 0 {
		t.Fatalf("rejected answer must not advance: index=%d answers=%d",
			session.QuestionIndex(), len(session.Answers()))
	}
	if session.LastTranscript() != "mmm no sé qué decir" {
		t.Errorf("last transcript not stored: %q", session.LastTranscript())
	}

	advance(application.Event{Kind: application.EventTranscript, Text: "le doy un 5 sobre 5"})
	if session.QuestionIndex() != 1 {
		t.Fatalf("expected question 1, got %d", session.QuestionIndex())
	}

	advance(application.Event{Kind: application.EventTranscript, Text: "no"})
	if session.Step() != application.StepThanks {
		t.Fatalf("expected thanks, got %s", session.Step())
	}

	advance(application.Event{Kind: application.EventPromptFinished})
	if !session.Done() {
		t.Fatal("expected session to be done")
	}

	sub := session.Submission("test/1.0")
	if sub.SurveyID != "svy1" || sub.RespondentName != "Ana" || !sub.Completed {
		t.Errorf("unexpected submission header: %+v", sub)
	}
	if len(sub.Answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(sub.Answers))
	}
	if sub.Answers[0].QuestionID != "q1" || sub.Answers[0].Value != "5" {
		t.Errorf("unexpected first answer: %+v", sub.Answers[0])
	}
	if sub.Answers[1].QuestionID != "q2" || sub.Answers[1].Value != "No" {
		t.Errorf("unexpected second answer: %+v", sub.Answers[1])
	}
	if !sub.Answers[0].Timestamp.Equal(fixed) {
		t.Errorf("answer timestamp not taken from the clock: %v", sub.Answers[0].Timestamp)
	}
}

func TestSession_RejectsTranscriptDuringWelcome(t *testing.T) {
	session := application.NewSession(twoQuestionSurvey())

	err := session.Advance(application.Event{Kind: application.EventTranscript, Text: "hola"})
	if !errors.Is(err, application.ErrUnexpectedEvent) {
		t.Fatalf("expected ErrUnexpectedEvent during welcome, got %v", err)
	}
	if session.Step() != application.StepWelcome {
		t.Fatalf("step must not change on a rejected event, got %s", session.Step())
	}
}

func TestSession_EmptyNameRejected(t *testing.T) {
	session := application.NewSession(twoQuestionSurvey())
	if err := session.Advance(application.Event{Kind: application.EventPromptFinished}); err != nil {
		t.Fatal(err)
	}

	err := session.Advance(application.Event{Kind: application.EventTranscript, Text: ""})
	if !errors.Is(err, application.ErrEmptyTranscript) {
		t.Fatalf("expected ErrEmptyTranscript, got %v", err)
	}
	if session.Step() != application.StepCollectingName {
		t.Fatalf("expected to keep collecting the name, got %s", session.Step())
	}
}

func TestSession_EmptyOpenAnswerAccepted(t *testing.T) {
	survey := &domain.Survey{
		ID:        "svy2",
		Title:     "Comentarios",
		Questions: []domain.Question{{ID: "q1", Text: "¿Algo más?", Type: domain.QuestionOpen}},
	}
	session := application.NewSession(survey)

	steps := []application.Event{
		{Kind: application.EventPromptFinished},
		{Kind: application.EventTranscript, Text: "Luis"},
		{Kind: application.EventTranscript, Text: ""},
		{Kind: application.EventPromptFinished},
	}
	for _, ev := range steps {
		if err := session.Advance(ev); err != nil {
			t.Fatalf("advance at step %s: %v", session.Step(), err)
		}
	}

	if !session.Done() {
		t.Fatal("expected session to be done")
	}
	answers := session.Answers()
	if len(answers) != 1 || answers[0].Value != "" {
		t.Fatalf("expected a single empty answer, got %+v", answers)
	}
}

func TestSession_ManualAnswerBypassesInterpretation(t *testing.T) {
	session := application.NewSession(twoQuestionSurvey())
	if err := session.Advance(application.Event{Kind: application.EventPromptFinished}); err != nil {
		t.Fatal(err)
	}
	if err := session.Advance(application.Event{Kind: application.EventManualAnswer, Text: "Eva"}); err != nil {
		t.Fatal(err)
	}

	// A manual "3" is stored as given even though the spoken equivalent
	// would go through rating extraction.
	if err := session.Advance(application.Event{Kind: application.EventManualAnswer, Text: "3"}); err != nil {
		t.Fatal(err)
	}
	if got := session.Answers()[0].Value; got != "3" {
		t.Fatalf("expected manual value kept verbatim, got %q", got)
	}
}

func TestSession_NoQuestionsGoesStraightToThanks(t *testing.T) {
	session := application.NewSession(&domain.Survey{ID: "empty", Title: "Vacía"})

	if err := session.Advance(application.Event{Kind: application.EventPromptFinished}); err != nil {
		t.Fatal(err)
	}
	if err := session.Advance(application.Event{Kind: application.EventTranscript, Text: "Ana"}); err != nil {
		t.Fatal(err)
	}
	if session.Step() != application.StepThanks {
		t.Fatalf("expected thanks for a survey without questions, got %s", session.Step())
	}
}

func TestSession_RejectsEventsAfterDone(t *testing.T) {
	session := application.NewSession(&domain.Survey{ID: "empty", Title: "Vacía"})
	for _, ev := range []application.Event{
		{Kind: application.EventPromptFinished},
		{Kind: application.EventTranscript, Text: "Ana"},
		{Kind: application.EventPromptFinished},
	} {
		if err := session.Advance(ev); err != nil {
			t.Fatal(err)
		}
	}

	err := session.Advance(application.Event{Kind: application.EventPromptFinished})
	if !errors.Is(err, application.ErrSessionDone) {
		t.Fatalf("expected ErrSessionDone, got %v", err)
	}
}
