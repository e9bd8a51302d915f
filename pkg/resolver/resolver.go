package resolver

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/kasuboski/showmatcher/pkg/cache"
	"github.com/kasuboski/showmatcher/pkg/episode"
	"github.com/kasuboski/showmatcher/pkg/fuzzy"
	"github.com/kasuboski/showmatcher/pkg/logger"
	"github.com/kasuboski/showmatcher/pkg/lookup"
)

// DefaultThreshold is the lowest score accepted as a match
const DefaultThreshold = 90

// Resolver matches filenames to episodes by fuzzy title similarity. Episode lists are fetched once per series
// and kept for the lifetime of the Resolver.
type Resolver struct {
	lookup    lookup.Lookup
	cache     *cache.Cache[lookup.Series, []episode.Candidate]
	threshold int
	scorer    fuzzy.Scorer
}

type Option func(*Resolver)

// WithThreshold sets the minimum accepted score, inclusive
func WithThreshold(threshold int) Option {
	return func(r *Resolver) {
		r.threshold = threshold
	}
}

// WithScorer replaces the title similarity function
func WithScorer(s fuzzy.Scorer) Option {
	return func(r *Resolver) {
		r.scorer = s
	}
}

// WithCache shares an episode list cache between resolvers
func WithCache(c *cache.Cache[lookup.Series, []episode.Candidate]) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

func New(l lookup.Lookup, opts ...Option) *Resolver {
	r := &Resolver{
		lookup:    l,
		threshold: DefaultThreshold,
		scorer:    fuzzy.WRatio,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = cache.New[lookup.Series, []episode.Candidate]()
	}

	return r
}

// Threshold returns the minimum accepted score
func (r *Resolver) Threshold() int {
	return r.threshold
}

// Probe strips the extension and the first match of ignore from the base name of filename
func Probe(filename string, ignore *regexp.Regexp) (string, error) {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	loc := ignore.FindStringIndex(base)
	if loc == nil {
		return "", episode.ErrNoSubstringMatch
	}

	return strings.TrimSpace(base[:loc[0]] + base[loc[1]:]), nil
}

// Episodes returns the episode list of series, from the cache when it was fetched before.
// Failed lookups are not cached.
func (r *Resolver) Episodes(ctx context.Context, series lookup.Series) ([]episode.Candidate, error) {
	log := logger.FromCtx(ctx)

	episodes, hit, err := r.cache.GetOrLoad(series, func() ([]episode.Candidate, error) {
		return r.lookup.ListEpisodes(ctx, series)
	})
	if err != nil {
		if errors.Is(err, episode.ErrLookupUnavailable) {
			return nil, err
		}
		return nil, lookup.Unavailable(series, err)
	}

	log.Debugw("episode list", "series", series.String(), "cached", hit, "count", len(episodes))
	return episodes, nil
}

// Scores ranks every episode of series against probe, best first. Equal scores are ordered by season then episode.
func (r *Resolver) Scores(ctx context.Context, probe string, series lookup.Series) ([]episode.Candidate, error) {
	episodes, err := r.Episodes(ctx, series)
	if err != nil {
		return nil, err
	}

	ranked := make([]episode.Candidate, len(episodes))
	for i, c := range episodes {
		c.Score = r.scorer(probe, c.Title)
		ranked[i] = c
	}

	slices.SortStableFunc(ranked, func(a, b episode.Candidate) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		if a.Less(b) {
			return -1
		}
		if b.Less(a) {
			return 1
		}
		return 0
	})

	return ranked, nil
}

// Resolve finds the episode of series whose title best matches filename once ignore is removed from it.
// A best score equal to the threshold is accepted.
func (r *Resolver) Resolve(ctx context.Context, filename string, series lookup.Series, ignore *regexp.Regexp) (episode.Resolved, error) {
	log := logger.FromCtx(ctx)

	probe, err := Probe(filename, ignore)
	if err != nil {
		return episode.Resolved{}, err
	}

	ranked, err := r.Scores(ctx, probe, series)
	if err != nil {
		return episode.Resolved{}, err
	}

	if len(ranked) == 0 {
		return episode.Resolved{}, &episode.NoConfidentMatchError{Probe: probe, Threshold: r.threshold}
	}

	best := ranked[0]
	if best.Score < r.threshold {
		return episode.Resolved{}, &episode.NoConfidentMatchError{Probe: probe, Best: &best, Threshold: r.threshold}
	}

	log.Debugw("matched episode", "probe", probe, "episode", best.String(), "score", best.Score)
	return episode.Resolved{
		Season:  best.Season,
		Episode: best.Episode,
		Title:   best.Title,
		Source:  episode.ProvenanceFuzzy,
	}, nil
}
