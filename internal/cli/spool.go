package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"voice-survey/internal/infra/spool"
)

var spoolCmd = &cobra.Command{
	Use:   "spool",
	Short: "Manage submissions held back by earlier network failures",
}

var spoolStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how many submissions are waiting",
	RunE:  runSpoolStatus,
}

var spoolFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Resend spooled submissions to the backend",
	RunE:  runSpoolFlush,
}

func init() {
	spoolCmd.AddCommand(spoolStatusCmd, spoolFlushCmd)
	rootCmd.AddCommand(spoolCmd)
}

func runSpoolStatus(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	sp, err := spool.Open(cfg.Spool.Path, logger)
	if err != nil {
		return err
	}
	defer sp.Close()

	n, err := sp.Count(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d submission(s) pending\n", n)
	return nil
}

func runSpoolFlush(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	sp, err := spool.Open(cfg.Spool.Path, logger)
	if err != nil {
		return err
	}
	defer sp.Close()

	sent, err := sp.Flush(cmd.Context(), apiClient(cfg))
	if sent > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "sent %d submission(s)\n", sent)
	}
	return err
}
