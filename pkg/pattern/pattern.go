package pattern

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/kasuboski/showmatcher/pkg/episode"
)

const (
	groupSeason  = "season"
	groupEpisode = "episode"
	groupName    = "name"
	groupYear    = "year"
	groupMonth   = "month"
	groupDay     = "day"
)

// Compile compiles a user supplied naming pattern and checks that it declares
// the groups needed to produce an episode: season and episode, or year, month and day.
func Compile(expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid naming pattern: %w", err)
	}

	if isDatePattern(re) {
		for _, g := range []string{groupMonth, groupDay} {
			if re.SubexpIndex(g) < 0 {
				return nil, fmt.Errorf("%w: naming pattern declares a year group but no %q group, %s", episode.ErrPatternMissingField, g, episode.MissingFieldHint)
			}
		}
		return re, nil
	}

	for _, g := range []string{groupSeason, groupEpisode} {
		if re.SubexpIndex(g) < 0 {
			return nil, fmt.Errorf("%w: naming pattern must declare a %q group, %s", episode.ErrPatternMissingField, g, episode.MissingFieldHint)
		}
	}

	return re, nil
}

// Resolve extracts season and episode details from filename using the named capture groups of re.
// Only the base name without its extension is matched.
func Resolve(filename string, re *regexp.Regexp) (episode.Resolved, error) {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	match := re.FindStringSubmatch(base)
	if match == nil {
		return episode.Resolved{}, episode.ErrNoPatternMatch
	}

	title := strings.TrimSpace(group(re, match, groupName))

	if isDatePattern(re) {
		year, err := intGroup(re, match, groupYear)
		if err != nil {
			return episode.Resolved{}, err
		}
		month, err := intGroup(re, match, groupMonth)
		if err != nil {
			return episode.Resolved{}, err
		}
		day, err := intGroup(re, match, groupDay)
		if err != nil {
			return episode.Resolved{}, err
		}

		return episode.Resolved{
			Season: year,
			Title:  title,
			Date:   &episode.Date{Year: year, Month: month, Day: day},
			Source: episode.ProvenancePattern,
		}, nil
	}

	season, err := intGroup(re, match, groupSeason)
	if err != nil {
		return episode.Resolved{}, err
	}
	ep, err := intGroup(re, match, groupEpisode)
	if err != nil {
		return episode.Resolved{}, err
	}

	return episode.Resolved{
		Season:  season,
		Episode: ep,
		Title:   title,
		Source:  episode.ProvenancePattern,
	}, nil
}

func isDatePattern(re *regexp.Regexp) bool {
	return re.SubexpIndex(groupYear) >= 0
}

func group(re *regexp.Regexp, match []string, name string) string {
	i := re.SubexpIndex(name)
	if i < 0 || i >= len(match) {
		return ""
	}
	return match[i]
}

func intGroup(re *regexp.Regexp, match []string, name string) (int, error) {
	raw := strings.TrimSpace(group(re, match, name))
	if raw == "" {
		return 0, &episode.MissingFieldError{Field: name}
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &episode.MissingFieldError{Field: name, Value: raw}
	}

	return n, nil
}
