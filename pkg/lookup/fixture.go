package lookup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/kasuboski/showmatcher/pkg/episode"
	"gopkg.in/yaml.v3"
)

var (
	_ Lookup = (*Fixture)(nil)

	ErrSeriesNotFound = errors.New("series not found")
)

// FixtureSeries is one series entry of a fixture file
type FixtureSeries struct {
	Name     string              `yaml:"name"`
	ID       int                 `yaml:"id"`
	Episodes []episode.Candidate `yaml:"episodes"`
}

// Fixture serves episode lists from memory, typically loaded from a YAML file:
//
//	series:
//	  - name: Four Corners (1961)
//	    episodes:
//	      - {season: 2018, episode: 21, title: Outbreak}
type Fixture struct {
	Series []FixtureSeries `yaml:"series"`
}

// NewFixture builds a fixture from in memory series
func NewFixture(series ...FixtureSeries) *Fixture {
	return &Fixture{Series: series}
}

// LoadFixture reads a YAML fixture file
func LoadFixture(path string) (*Fixture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	var f Fixture
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}

	return &f, nil
}

// ListEpisodes returns a copy of the matching series' episodes. Series are matched by ID when
// one is given, otherwise by case insensitive name.
func (f *Fixture) ListEpisodes(ctx context.Context, series Series) ([]episode.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable(series, err)
	}

	for _, s := range f.Series {
		if series.ID != 0 && s.ID == series.ID {
			return slices.Clone(s.Episodes), nil
		}
		if series.ID == 0 && strings.EqualFold(s.Name, series.Name) {
			return slices.Clone(s.Episodes), nil
		}
	}

	return nil, Unavailable(series, ErrSeriesNotFound)
}
