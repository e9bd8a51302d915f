package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kasuboski/showmatcher/config"
	mhttp "github.com/kasuboski/showmatcher/pkg/http"
	mio "github.com/kasuboski/showmatcher/pkg/io"
	"github.com/kasuboski/showmatcher/pkg/logger"
	"github.com/kasuboski/showmatcher/pkg/lookup"
	"github.com/kasuboski/showmatcher/pkg/matcher"
	"github.com/kasuboski/showmatcher/pkg/relocate"
	"github.com/kasuboski/showmatcher/pkg/resolver"
	"github.com/kasuboski/showmatcher/pkg/tmdb"
	"github.com/kasuboski/showmatcher/pkg/tvdb"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// loadConfig reads the configuration and sets up the process logger from it
func loadConfig() (config.Config, *zap.SugaredLogger) {
	cfg, err := config.New(viper.GetViper())
	if err != nil {
		logger.Get().Fatal("failed to read configurations", zap.Error(err))
	}

	log := logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		JSON:       cfg.Log.JSON,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debugw("using config file", "file", used)
	}

	return cfg, log
}

// signalContext is cancelled on interrupt so in flight lookups and copies stop
func signalContext(log *zap.SugaredLogger) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return logger.WithCtx(ctx, log), cancel
}

// newLookup builds the configured episode database client
func newLookup(cfg config.Config) (lookup.Lookup, error) {
	httpClient := mhttp.NewRateLimitedClient(
		mhttp.WithBaseBackoff(cfg.Lookup.BaseBackoff),
		mhttp.WithMaxRetries(cfg.Lookup.MaxRetries),
	)

	switch cfg.Lookup.Provider {
	case "fixture":
		return lookup.LoadFixture(cfg.Lookup.Fixture)
	case "tmdb":
		return tmdb.New(cfg.Lookup.TMDB.URI, cfg.Lookup.TMDB.APIKey, tmdb.WithHTTPClient(httpClient))
	case "tvdb", "":
		return tvdb.New(cfg.Lookup.TVDB.URI, cfg.Lookup.TVDB.APIKey, tvdb.WithHTTPClient(httpClient), tvdb.WithPIN(cfg.Lookup.TVDB.PIN))
	default:
		return nil, fmt.Errorf("unknown lookup provider %q", cfg.Lookup.Provider)
	}
}

func seriesFromConfig(cfg config.Config) lookup.Series {
	return lookup.Series{Name: cfg.SeriesName, ID: cfg.SeriesID}
}

// newResolver returns nil in pattern mode, which never queries a lookup
func newResolver(cfg config.Config) (*resolver.Resolver, error) {
	if cfg.IgnoreSubstring == "" {
		return nil, nil
	}

	l, err := newLookup(cfg)
	if err != nil {
		return nil, err
	}

	return resolver.New(l), nil
}

func newMatcher(cfg config.Config, r *resolver.Resolver) (*matcher.Matcher, error) {
	ignore, naming, err := cfg.Patterns()
	if err != nil {
		return nil, err
	}

	policy := relocate.OverwriteNever
	if cfg.Overwrite {
		policy = relocate.OverwriteAlways
	}

	fileIO := &mio.MediaFileSystem{}
	engine := relocate.New(fileIO, relocate.WithDryRun(cfg.DryRun), relocate.WithOverwrite(policy))

	return matcher.New(matcher.Options{
		Directory:       cfg.Directory,
		Destination:     cfg.Destination,
		Series:          seriesFromConfig(cfg),
		IgnoreSubstring: ignore,
		Pattern:         naming,
		Extensions:      cfg.Extensions,
	}, fileIO, r, engine)
}

func reportResult(log *zap.SugaredLogger, result matcher.Result) {
	for _, err := range result.Errors() {
		log.Errorw("file failed", "error", err)
	}
	log.Infow("summary", "run_id", result.RunID, "dry_run", result.DryRun, "result", result.Summary.String())
}
