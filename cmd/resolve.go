package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve FILENAME",
	Short: "print the destination a file would be renamed to",
	Long: `Resolve a single file name with the configured mode and print its destination
without touching the file system. The file does not need to exist.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log := loadConfig()
		defer log.Sync()

		if err := cfg.ValidateMode(); err != nil {
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

		req := m.Request(args[0])
		resolved, err := m.Resolve(ctx, req)
		if err != nil {
			log.Fatal("failed to resolve episode", zap.String("file", args[0]), zap.Error(err))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", resolved, m.Destination(args[0], resolved))
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
