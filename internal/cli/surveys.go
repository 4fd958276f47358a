package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"voice-survey/internal/domain"
)

var surveysCreateFile string

var surveysCmd = &cobra.Command{
	Use:   "surveys",
	Short: "List and create surveys",
}

var surveysPublicCmd = &cobra.Command{
	Use:   "public",
	Short: "List surveys open to the public",
	RunE:  runSurveysPublic,
}

var surveysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your own surveys",
	RunE:  runSurveysList,
}

var surveysCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a survey from a YAML definition",
	RunE:  runSurveysCreate,
}

func init() {
	surveysCreateCmd.Flags().StringVarP(&surveysCreateFile, "file", "f", "", "YAML file describing the survey")
	surveysCreateCmd.MarkFlagRequired("file")

	surveysCmd.AddCommand(surveysPublicCmd, surveysListCmd, surveysCreateCmd)
	rootCmd.AddCommand(surveysCmd)
}

func runSurveysPublic(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	surveys, err := apiClient(cfg).PublicSurveys(cmd.Context())
	if err != nil {
		return err
	}
	printSurveys(cmd, surveys)
	return nil
}

func runSurveysList(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	surveys, err := apiClient(cfg).Surveys(cmd.Context())
	if err != nil {
		return err
	}
	printSurveys(cmd, surveys)
	return nil
}

func printSurveys(cmd *cobra.Command, surveys []domain.Survey) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tQUESTIONS")
	for _, s := range surveys {
		fmt.Fprintf(w, "%s\t%s\t%d\n", s.ID, s.Title, len(s.Questions))
	}
	w.Flush()
}

// surveyFile is the YAML shape accepted by "surveys create".
type surveyFile struct {
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	WelcomeMessage string `yaml:"welcome_message"`
	Farewell       string `yaml:"farewell"`
	Questions      []struct {
		Text    string   `yaml:"text"`
		Type    string   `yaml:"type"`
		Options []string `yaml:"options"`
	} `yaml:"questions"`
}

func runSurveysCreate(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(surveysCreateFile)
	if err != nil {
		return err
	}

	var def surveyFile
	if err := yaml.Unmarshal(data, &def); err != nil {
		return fmt.Errorf("parsing survey definition: %w", err)
	}

	survey := &domain.Survey{
		Title:          def.Title,
		Description:    def.Description,
		WelcomeMessage: def.WelcomeMessage,
		Farewell:       def.Farewell,
	}
	for _, q := range def.Questions {
		survey.Questions = append(survey.Questions, domain.Question{
			Text:    q.Text,
			Type:    domain.QuestionType(q.Type),
			Options: q.Options,
		})
	}

	id, err := apiClient(cfg).CreateSurvey(cmd.Context(), survey)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}
