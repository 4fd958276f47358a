package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"voice-survey/internal/domain"
)

// Spoken prompts are fixed to the survey locale.
const (
	namePrompt         = "¿Podría decirme su nombre, por favor?"
	correctiveRating   = "Por favor, responda con un número del 1 al 5."
	correctiveYesNo    = "Por favor, responda con sí o no."
	defaultUserAgent   = "voicesurvey/1.0"
	defaultMaxRelisten = 2
)

// SubmissionSpool queues submissions that could not be delivered, for a
// later out-of-band retry. Optional.
type SubmissionSpool interface {
	Enqueue(ctx context.Context, sub *domain.Submission) error
}

// Runner drives a Session to completion against the speech adapters. It is
// the sole owner of the session state and of the is-speaking and
// is-listening guards; speak and listen never overlap.
type Runner struct {
	session   *Session
	speaker   Speaker
	listener  Listener
	manual    ManualInput
	submitter ResponseSubmitter
	spool     SubmissionSpool
	logger    *slog.Logger

	userAgent   string
	maxRelisten int
	audioOff    bool

	isSpeaking  bool
	isListening bool
	submitted   bool
}

func NewRunner(
	session *Session,
	speaker Speaker,
	listener Listener,
	manual ManualInput,
	submitter ResponseSubmitter,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		session:     session,
		speaker:     speaker,
		listener:    listener,
		manual:      manual,
		submitter:   submitter,
		logger:      logger,
		userAgent:   defaultUserAgent,
		maxRelisten: defaultMaxRelisten,
	}
}

// UseSpool enables queue-on-failure for the final submission.
func (r *Runner) UseSpool(spool SubmissionSpool) { r.spool = spool }

func (r *Runner) SetUserAgent(ua string) { r.userAgent = ua }

// DisableAudio skips all speech output and input; every prompt goes
// straight to the manual path.
func (r *Runner) DisableAudio() { r.audioOff = true }

// Run walks the session from welcome to submitted. It returns early only
// on context cancellation or when even the manual input path fails;
// speech failures alone never abort the flow.
func (r *Runner) Run(ctx context.Context) error {
	survey := r.session.Survey()
	r.logger.Info("starting survey session",
		"survey_id", survey.ID,
		"title", survey.Title,
		"questions", len(survey.Questions),
	)

	for !r.session.Done() {
		if err := ctx.Err(); err != nil {
			r.logger.Info("session abandoned", "step", r.session.Step().String())
			return err
		}

		switch r.session.Step() {
		case StepWelcome:
			r.speak(ctx, survey.WelcomeMessage)
			if err := r.session.Advance(Event{Kind: EventPromptFinished}); err != nil {
				return err
			}

		case StepCollectingName:
			if err := r.collectName(ctx); err != nil {
				return err
			}

		case StepAsking:
			if err := r.askCurrent(ctx); err != nil {
				return err
			}

		case StepThanks:
			r.speak(ctx, survey.Farewell)
			if err := r.session.Advance(Event{Kind: EventPromptFinished}); err != nil {
				return err
			}
			r.submit(ctx)
		}
	}

	return nil
}

func (r *Runner) collectName(ctx context.Context) error {
	r.speak(ctx, namePrompt)

	for attempts := 0; ; attempts++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if r.audioOff || attempts > r.maxRelisten {
			name, err := r.manual.Name(ctx)
			if err != nil {
				return fmt.Errorf("manual name entry: %w", err)
			}
			if err := r.session.Advance(Event{Kind: EventManualAnswer, Text: name}); err != nil {
				return err
			}
			break
		}

		text, err := r.listen(ctx)
		if err != nil {
			r.logger.Warn("listening for name failed", "error", err)
			if errors.Is(err, ErrRecognition) {
				continue
			}
			// Unavailable or denied: no point re-listening.
			attempts = r.maxRelisten
			continue
		}

		err = r.session.Advance(Event{Kind: EventTranscript, Text: text})
		if errors.Is(err, ErrEmptyTranscript) {
			continue
		}
		if err != nil {
			return err
		}
		break
	}

	r.logger.Info("respondent name captured", "name", r.session.RespondentName())
	r.speak(ctx, fmt.Sprintf("Gracias, %s. Vamos a empezar con la encuesta %q.",
		r.session.RespondentName(), r.session.Survey().Title))
	return nil
}

func (r *Runner) askCurrent(ctx context.Context) error {
	q, ok := r.session.CurrentQuestion()
	if !ok {
		return fmt.Errorf("no current question at step %s", r.session.Step())
	}

	r.logger.Info("asking question",
		"index", r.session.QuestionIndex(),
		"type", string(q.Type),
	)
	r.speak(ctx, q.Text)

	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if r.audioOff {
			return r.answerManually(ctx, q)
		}

		text, err := r.listen(ctx)
		if err != nil {
			r.logger.Warn("listen failed", "error", err, "index", r.session.QuestionIndex())
			if errors.Is(err, ErrRecognition) && failures < r.maxRelisten {
				failures++
				continue
			}
			return r.answerManually(ctx, q)
		}

		err = r.session.Advance(Event{Kind: EventTranscript, Text: text})
		if errors.Is(err, ErrUnparseable) {
			r.logger.Info("response not understood, re-prompting",
				"index", r.session.QuestionIndex(),
				"transcript", text,
			)
			r.speak(ctx, correctiveFor(q.Type))
			continue
		}
		return err
	}
}

func (r *Runner) answerManually(ctx context.Context, q domain.Question) error {
	value, err := r.manual.Answer(ctx, q)
	if err != nil {
		return fmt.Errorf("manual answer entry: %w", err)
	}
	return r.session.Advance(Event{Kind: EventManualAnswer, Text: value})
}

// submit performs the single submission call. Failure is reported and, when
// a spool is configured, queued for later retry; the session stays
// submitted either way.
func (r *Runner) submit(ctx context.Context) {
	if r.submitted {
		return
	}
	r.submitted = true

	sub := r.session.Submission(r.userAgent)
	if err := r.submitter.Submit(ctx, sub); err != nil {
		r.logger.Error("submitting responses", "error", err, "survey_id", sub.SurveyID)
		if r.spool != nil {
			if qerr := r.spool.Enqueue(ctx, sub); qerr != nil {
				r.logger.Error("queueing submission for retry", "error", qerr)
			} else {
				r.logger.Info("submission queued for retry", "survey_id", sub.SurveyID)
			}
		}
		return
	}

	r.logger.Info("responses submitted",
		"survey_id", sub.SurveyID,
		"respondent", sub.RespondentName,
		"answers", len(sub.Answers),
	)
}

func (r *Runner) speak(ctx context.Context, text string) {
	if r.audioOff || text == "" || r.isSpeaking {
		return
	}
	r.isSpeaking = true
	defer func() { r.isSpeaking = false }()

	if err := r.speaker.Speak(ctx, text); err != nil {
		// Never blocks progress: the manual controls stay available.
		r.logger.Warn("speech output failed", "error", err)
	}
}

func (r *Runner) listen(ctx context.Context) (string, error) {
	if r.isListening {
		return "", fmt.Errorf("listen already in progress")
	}
	r.isListening = true
	defer func() { r.isListening = false }()

	return r.listener.Listen(ctx)
}

func correctiveFor(t domain.QuestionType) string {
	if t == domain.QuestionRating {
		return correctiveRating
	}
	return correctiveYesNo
}
