package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"voice-survey/internal/domain"
	"voice-survey/internal/infra/surveyapi"
)

var resultsResponseID string

var resultsCmd = &cobra.Command{
	Use:   "results <survey-id>",
	Short: "Show aggregated results for one of your surveys",
	Args:  cobra.ExactArgs(1),
	RunE:  runResults,
}

func init() {
	resultsCmd.Flags().StringVar(&resultsResponseID, "response", "", "show one submitted response instead of the aggregate")
	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	client := apiClient(cfg)

	if resultsResponseID != "" {
		return printResponse(cmd, client, args[0])
	}
	survey, err := client.PublicSurvey(ctx, args[0])
	if err != nil {
		return fmt.Errorf("fetching survey: %w", err)
	}
	responses, err := client.SurveyResponses(ctx, args[0])
	if err != nil {
		return fmt.Errorf("fetching responses: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d respuestas\n", survey.Title, len(responses))

	for _, sum := range domain.Summarize(survey, responses) {
		fmt.Fprintf(out, "\n%s (%s, %d respuestas)\n", sum.Question.Text, sum.Question.Type, sum.Total)

		switch sum.Question.Type {
		case domain.QuestionRating:
			if sum.Total > 0 {
				fmt.Fprintf(out, "  promedio: %.2f\n", sum.AverageRating)
			}
			for n := 1; n <= 5; n++ {
				key := fmt.Sprintf("%d", n)
				if c := sum.Counts[key]; c > 0 {
					fmt.Fprintf(out, "  %s: %d\n", key, c)
				}
			}
		case domain.QuestionYesNo, domain.QuestionSingle, domain.QuestionMultiple:
			keys := make([]string, 0, len(sum.Counts))
			for k := range sum.Counts {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "  %s: %d\n", k, sum.Counts[k])
			}
		default:
			for _, v := range sum.Answers {
				fmt.Fprintf(out, "  - %s\n", v)
			}
		}
	}
	return nil
}

func printResponse(cmd *cobra.Command, client *surveyapi.Client, surveyID string) error {
	ctx := cmd.Context()

	survey, err := client.PublicSurvey(ctx, surveyID)
	if err != nil {
		return fmt.Errorf("fetching survey: %w", err)
	}
	resp, err := client.Response(ctx, resultsResponseID)
	if err != nil {
		return fmt.Errorf("fetching response: %w", err)
	}

	questionText := make(map[string]string, len(survey.Questions))
	for _, q := range survey.Questions {
		questionText[q.ID] = q.Text
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: respuesta de %s\n", survey.Title, resp.RespondentName)
	for _, a := range resp.Answers {
		text := questionText[a.QuestionID]
		if text == "" {
			text = a.QuestionID
		}
		fmt.Fprintf(out, "%s\n  %s (%s)\n", text, a.Value, a.Timestamp.Format("2006-01-02 15:04"))
	}
	return nil
}
