package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfigFile = ".matcherrc"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "showmatcher",
	Short: "rename tv episodes into a library",
	Long: `showmatcher renames downloaded tv episode files into a standard library layout.

Episodes are identified either by fuzzy matching their title against an episode
database (--ignore-substring) or by a regular expression with named season and
episode groups (--naming-pattern).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./.matcherrc when present)")
	flags.String("directory", "", "directory containing the episodes to rename")
	flags.String("destination", "", "library directory episodes are moved into")
	flags.String("series-name", "", "name of the series, used for lookups and file names")
	flags.Int("series-id", 0, "provider id of the series, skips searching by name")
	flags.String("ignore-substring", "", "regular expression removed from file names before fuzzy matching titles")
	flags.String("naming-pattern", "", "regular expression with season and episode (or year, month and day) groups")
	flags.Bool("dry-run", false, "log moves without touching any file")
	flags.Bool("overwrite", false, "replace files that already exist at the destination")
	flags.StringSlice("extensions", []string{".mp4"}, "extensions of the episode files to rename")
	flags.String("provider", "tvdb", "episode database: tvdb, tmdb or fixture")

	for key, flag := range map[string]string{
		"directory":        "directory",
		"destination":      "destination",
		"series-name":      "series-name",
		"series-id":        "series-id",
		"ignore-substring": "ignore-substring",
		"naming-pattern":   "naming-pattern",
		"dry-run":          "dry-run",
		"overwrite":        "overwrite",
		"extensions":       "extensions",
		"lookup.provider":  "provider",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

const (
	defaultBackoff    = time.Second
	defaultMaxRetries = 3
)

func initConfig() {
	switch {
	case cfgFile != "":
		viper.SetConfigFile(cfgFile)
	case fileExists(defaultConfigFile):
		viper.SetConfigFile(defaultConfigFile)
	}

	// files without a known extension, like .matcherrc, are key = value properties
	if used := viper.ConfigFileUsed(); used != "" && !isKnownConfigType(filepath.Ext(used)) {
		viper.SetConfigType("properties")
	}

	viper.SetEnvPrefix("SHOWMATCHER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", ""))
	viper.AutomaticEnv()

	_ = viper.BindEnv("lookup.tvdb.apiKey", "SHOWMATCHER_LOOKUP_TVDB_APIKEY", "TVDB_API_KEY")
	_ = viper.BindEnv("lookup.tmdb.apiKey", "SHOWMATCHER_LOOKUP_TMDB_APIKEY", "TMDB_API_KEY")

	viper.SetDefault("lookup.tvdb.uri", "https://api4.thetvdb.com")
	viper.SetDefault("lookup.tvdb.apiKey", "")
	viper.SetDefault("lookup.tvdb.pin", "")

	viper.SetDefault("lookup.tmdb.uri", "https://api.themoviedb.org")
	viper.SetDefault("lookup.tmdb.apiKey", "")

	viper.SetDefault("lookup.fixture", "")
	viper.SetDefault("lookup.backoff", defaultBackoff)
	viper.SetDefault("lookup.maxRetries", defaultMaxRetries)

	viper.SetDefault("log.level", "")
	viper.SetDefault("log.json", false)
	viper.SetDefault("log.file", "")
	viper.SetDefault("log.maxSizeMB", 10)
	viper.SetDefault("log.maxBackups", 3)
}

func isKnownConfigType(ext string) bool {
	ext = strings.TrimPrefix(ext, ".")
	for _, e := range viper.SupportedExts {
		if e == ext {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
