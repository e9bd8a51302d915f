package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/kasuboski/showmatcher/pkg/resolver"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup TITLE",
	Short: "rank a series' episodes against a title",
	Long: `Fetch the episode list of --series-name and print every episode scored
against TITLE, best first. Useful to tune --ignore-substring.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log := loadConfig()
		defer log.Sync()

		if cfg.SeriesName == "" {
			log.Fatal("series-name is required")
		}

		ctx, cancel := signalContext(log)
		defer cancel()

		l, err := newLookup(cfg)
		if err != nil {
			log.Fatal("failed to create episode lookup", zap.Error(err))
		}

		r := resolver.New(l)
		ranked, err := r.Scores(ctx, args[0], seriesFromConfig(cfg))
		if err != nil {
			log.Fatal("failed to list episodes", zap.Error(err))
		}

		limit, _ := cmd.Flags().GetInt("limit")
		if limit > 0 && len(ranked) > limit {
			ranked = ranked[:limit]
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SCORE\tEPISODE\tTITLE\tMATCH")
		for _, c := range ranked {
			match := ""
			if c.Score >= r.Threshold() {
				match = "yes"
			}
			fmt.Fprintf(w, "%d\tS%02dE%02d\t%s\t%s\n", c.Score, c.Season, c.Episode, c.Title, match)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().Int("limit", 10, "number of episodes to print, 0 for all")
}
