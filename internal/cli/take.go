package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"voice-survey/internal/application"
	"voice-survey/internal/infra/audio"
	"voice-survey/internal/infra/console"
	"voice-survey/internal/infra/openai"
	"voice-survey/internal/infra/speech"
	"voice-survey/internal/infra/spool"
)

var (
	takeNoAudio  bool
	takeScript   string
	takeAudioDir string
)

var takeCmd = &cobra.Command{
	Use:   "take <survey-id>",
	Short: "Take a survey by voice",
	Args:  cobra.ExactArgs(1),
	RunE:  runTake,
}

func init() {
	takeCmd.Flags().BoolVar(&takeNoAudio, "no-audio", false, "answer through terminal prompts instead of voice")
	takeCmd.Flags().StringVar(&takeScript, "script", "", "file with one transcript per line, used instead of the microphone")
	takeCmd.Flags().StringVar(&takeAudioDir, "audio-dir", "", "answer with audio files dropped into this directory instead of the microphone")
	rootCmd.AddCommand(takeCmd)
}

func runTake(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	client := apiClient(cfg)
	survey, err := client.PublicSurvey(ctx, args[0])
	if err != nil {
		return fmt.Errorf("fetching survey: %w", err)
	}

	var speaker application.Speaker = application.NoopSpeaker{}
	var listener application.Listener = speech.NewScriptListener(strings.NewReader(""))

	switch {
	case takeNoAudio:
		// Manual entry only; nothing to wire.
	case takeScript != "":
		f, err := os.Open(takeScript)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		listener = speech.NewScriptListener(f)
	case takeAudioDir != "":
		capt := audio.NewFileCapturer(takeAudioDir)
		if err := capt.Start(ctx); err != nil {
			return err
		}
		stt := openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.OpenAI.Language, cfg.OpenAI.STTModel)
		listener = speech.NewRecognizer(capt, stt, logger)
	default:
		player := audio.NewPlayer(logger)
		if err := player.Start(ctx); err != nil {
			logger.Warn("speech output unavailable, continuing silently", "error", err)
		} else {
			defer player.Stop()
			synth := openai.NewTTSClient(cfg.OpenAI.APIKey, cfg.OpenAI.TTSModel, cfg.OpenAI.TTSVoice, cfg.OpenAI.TTSSpeed)
			speaker = speech.NewSpeaker(synth, player, openai.TTSSampleRate, logger)
		}

		mic := audio.NewMicrophone(cfg.Speech.SampleRate, logger)
		if err := mic.Start(ctx); err != nil {
			logger.Warn("microphone unavailable, answers fall back to manual entry", "error", err)
		} else {
			defer mic.Stop()
		}
		stt := openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.OpenAI.Language, cfg.OpenAI.STTModel)
		listener = speech.NewRecognizer(mic, stt, logger)
	}

	session := application.NewSession(survey)
	runner := application.NewRunner(session, speaker, listener, console.NewPrompt(), client, logger)
	if takeNoAudio {
		runner.DisableAudio()
	}

	if sp, err := spool.Open(cfg.Spool.Path, logger); err != nil {
		logger.Warn("submission spool unavailable", "error", err)
	} else {
		defer sp.Close()
		runner.UseSpool(sp)
	}

	if err := runner.Run(ctx); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Sus respuestas han sido guardadas. ¡Gracias por participar!")
	return nil
}
