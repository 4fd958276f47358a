package application

import (
	"errors"
	"fmt"
	"time"

	"voice-survey/internal/domain"
)

// Step is the survey-taking flow position.
type Step int

const (
	StepWelcome Step = iota
	StepCollectingName
	StepAsking
	StepThanks
	StepSubmitted
)

func (s Step) String() string {
	switch s {
	case StepWelcome:
		return "welcome"
	case StepCollectingName:
		return "collecting_name"
	case StepAsking:
		return "asking"
	case StepThanks:
		return "thanks"
	case StepSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

type EventKind int

const (
	// EventPromptFinished signals that the current prompt finished
	// speaking or was explicitly skipped by the user.
	EventPromptFinished EventKind = iota
	// EventTranscript carries raw recognized text from one listen cycle.
	EventTranscript
	// EventManualAnswer carries an already-normalized value from a
	// non-voice control; it bypasses interpretation.
	EventManualAnswer
)

type Event struct {
	Kind EventKind
	Text string
}

var (
	// ErrUnparseable signals a rejected response to a closed question;
	// the step does not advance and the same question is re-prompted.
	ErrUnparseable = errors.New("response not understood")
	// ErrEmptyTranscript signals an empty listen result where a value
	// was required (the respondent name).
	ErrEmptyTranscript = errors.New("empty transcript")
	// ErrSessionDone rejects events after the terminal step.
	ErrSessionDone = errors.New("session already complete")
	// ErrUnexpectedEvent rejects events that are not valid in the
	// current step.
	ErrUnexpectedEvent = errors.New("event not valid in current step")
)

// Session is the survey flow state machine. It owns the current step, the
// question index and the in-progress answer set, and mutates them only
// through Advance. It is not safe for concurrent use: one session has a
// single driver.
type Session struct {
	survey *domain.Survey

	step           Step
	index          int
	name           string
	answers        []domain.Answer
	lastTranscript string

	clock func() time.Time
}

func NewSession(survey *domain.Survey) *Session {
	return &Session{
		survey:  survey,
		step:    StepWelcome,
		answers: make([]domain.Answer, 0, len(survey.Questions)),
		clock:   time.Now,
	}
}

// SetClock overrides the timestamp source for captured answers.
func (s *Session) SetClock(clock func() time.Time) { s.clock = clock }

func (s *Session) Survey() *domain.Survey { return s.survey }
func (s *Session) Step() Step             { return s.step }
func (s *Session) RespondentName() string { return s.name }

// QuestionIndex is only meaningful while the step is StepAsking.
func (s *Session) QuestionIndex() int { return s.index }

// CurrentQuestion returns the question being asked, or false outside
// StepAsking.
func (s *Session) CurrentQuestion() (domain.Question, bool) {
	if s.step != StepAsking || s.index >= len(s.survey.Questions) {
		return domain.Question{}, false
	}
	return s.survey.Questions[s.index], true
}

// Answers returns the recorded answer sequence, in question order.
func (s *Session) Answers() []domain.Answer { return s.answers }

// LastTranscript is the most recent raw transcript, kept for display only;
// it is not part of the submission.
func (s *Session) LastTranscript() string { return s.lastTranscript }

func (s *Session) Done() bool { return s.step == StepSubmitted }

// Advance applies one event to the state machine. On ErrUnparseable the
// state is unchanged except for the stored transcript, and the caller is
// expected to re-prompt the same question. Any other error also leaves the
// state untouched.
func (s *Session) Advance(ev Event) error {
	if s.step == StepSubmitted {
		return ErrSessionDone
	}
	if ev.Kind == EventTranscript {
		s.lastTranscript = ev.Text
	}

	switch s.step {
	case StepWelcome:
		if ev.Kind != EventPromptFinished {
			return s.unexpected(ev)
		}
		s.step = StepCollectingName
		return nil

	case StepCollectingName:
		switch ev.Kind {
		case EventTranscript, EventManualAnswer:
			if ev.Text == "" {
				return ErrEmptyTranscript
			}
			// Stored verbatim; names are not interpreted.
			s.name = ev.Text
			s.beginQuestions()
			return nil
		default:
			return s.unexpected(ev)
		}

	case StepAsking:
		q := s.survey.Questions[s.index]
		switch ev.Kind {
		case EventTranscript:
			value, ok := domain.Interpret(ev.Text, q.Type)
			if !ok {
				return ErrUnparseable
			}
			s.saveAnswer(q, value)
			return nil
		case EventManualAnswer:
			s.saveAnswer(q, ev.Text)
			return nil
		default:
			return s.unexpected(ev)
		}

	case StepThanks:
		if ev.Kind != EventPromptFinished {
			return s.unexpected(ev)
		}
		s.step = StepSubmitted
		return nil
	}

	return s.unexpected(ev)
}

// Submission assembles the final payload. Only valid once the session is
// done; by then the answer count equals the question count.
func (s *Session) Submission(userAgent string) *domain.Submission {
	return &domain.Submission{
		SurveyID:       s.survey.ID,
		RespondentName: s.name,
		Answers:        s.answers,
		UserAgent:      userAgent,
		Completed:      true,
	}
}

func (s *Session) beginQuestions() {
	s.index = 0
	if len(s.survey.Questions) == 0 {
		s.step = StepThanks
		return
	}
	s.step = StepAsking
}

func (s *Session) saveAnswer(q domain.Question, value string) {
	s.answers = append(s.answers, domain.Answer{
		QuestionID: q.ID,
		Value:      value,
		Timestamp:  s.clock(),
	})
	if s.index+1 < len(s.survey.Questions) {
		s.index++
		return
	}
	s.step = StepThanks
}

func (s *Session) unexpected(ev Event) error {
	return fmt.Errorf("%w: step=%s event=%d", ErrUnexpectedEvent, s.step, ev.Kind)
}
