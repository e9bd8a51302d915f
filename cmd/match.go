package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "rename every episode in a directory",
	Long: `Resolve every episode file in --directory and move it, along with its
subtitles and other sidecar files, into --destination.

Example:
  showmatcher match --directory ./downloads --destination "/tv/Four Corners (1961)" \
    --series-name "Four Corners (1961)" --ignore-substring "Four Corners Series"`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log := loadConfig()
		defer log.Sync()

		if err := cfg.Validate(); err != nil {
			log.Fatal("invalid configuration", zap.Error(err))
		}

		ctx, cancel := signalContext(log)
		defer cancel()

		r, err := newResolver(cfg)
		if err != nil {
			log.Fatal("failed to create episode lookup", zap.Error(err))
		}

		m, err := newMatcher(cfg, r)
		if err != nil {
			log.Fatal("failed to create matcher", zap.Error(err))
		}

		result, err := m.Run(ctx)
		if err != nil {
			log.Fatal("batch failed", zap.Error(err))
		}

		reportResult(log, result)

		strict, _ := cmd.Flags().GetBool("strict")
		if strict && result.Summary.Failed > 0 {
			log.Sync()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().Bool("strict", false, "exit non-zero when any file failed")
}
