package cmd

import (
	"context"
	"time"

	"github.com/kasuboski/showmatcher/pkg/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "rename episodes as they appear in a directory",
	Long: `Run a batch on start and again whenever new files settle in --directory.
Episode lists are fetched once and reused for the whole session.`,
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

		debounce, _ := cmd.Flags().GetDuration("debounce")
		w := watch.New(cfg.Directory, func(ctx context.Context) error {
			result, err := m.Run(ctx)
			if err != nil {
				return err
			}
			reportResult(log, result)
			return nil
		}, watch.WithDebounce(debounce))

		if err := w.Run(ctx); err != nil {
			log.Fatal("watch failed", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Duration("debounce", 2*time.Second, "how long the directory must be quiet before renaming")
}
