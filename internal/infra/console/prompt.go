// Package console provides the manual answer path: terminal forms standing
// in for the on-screen controls of the original survey UI. Values returned
// here are already normalized and bypass the voice interpreter.
package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"voice-survey/internal/application"
	"voice-survey/internal/domain"
)

type Prompt struct{}

var _ application.ManualInput = (*Prompt)(nil)

func NewPrompt() *Prompt { return &Prompt{} }

func (p *Prompt) Name(ctx context.Context) (string, error) {
	var name string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("¿Podría decirme su nombre, por favor?").
			Value(&name).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("el nombre es obligatorio")
				}
				return nil
			}),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return "", fmt.Errorf("reading name: %w", err)
	}
	return strings.TrimSpace(name), nil
}

func (p *Prompt) Answer(ctx context.Context, q domain.Question) (string, error) {
	var field huh.Field
	var value string
	var values []string
	var yes bool

	switch q.Type {
	case domain.QuestionYesNo:
		field = huh.NewConfirm().
			Title(q.Text).
			Affirmative("Sí").
			Negative("No").
			Value(&yes)

	case domain.QuestionRating:
		options := make([]huh.Option[string], 0, 5)
		for _, n := range []string{"1", "2", "3", "4", "5"} {
			options = append(options, huh.NewOption(n, n))
		}
		field = huh.NewSelect[string]().
			Title(q.Text).
			Options(options...).
			Value(&value)

	case domain.QuestionSingle:
		options := make([]huh.Option[string], 0, len(q.Options))
		for _, opt := range q.Options {
			options = append(options, huh.NewOption(opt, opt))
		}
		field = huh.NewSelect[string]().
			Title(q.Text).
			Options(options...).
			Value(&value)

	case domain.QuestionMultiple:
		options := make([]huh.Option[string], 0, len(q.Options))
		for _, opt := range q.Options {
			options = append(options, huh.NewOption(opt, opt))
		}
		field = huh.NewMultiSelect[string]().
			Title(q.Text).
			Options(options...).
			Value(&values)

	default:
		field = huh.NewInput().
			Title(q.Text).
			Value(&value)
	}

	form := huh.NewForm(huh.NewGroup(field))
	if err := form.RunWithContext(ctx); err != nil {
		return "", fmt.Errorf("reading answer: %w", err)
	}

	switch q.Type {
	case domain.QuestionYesNo:
		if yes {
			return "Sí", nil
		}
		return "No", nil
	case domain.QuestionMultiple:
		return strings.Join(values, ", "), nil
	default:
		return value, nil
	}
}
