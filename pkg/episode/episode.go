package episode

import (
	"fmt"
	"regexp"
)

// Provenance records which resolution mode produced a Resolved episode
type Provenance string

const (
	ProvenancePattern Provenance = "pattern"
	ProvenanceFuzzy   Provenance = "fuzzy"
)

// Candidate is a single entry of a series' episode list
type Candidate struct {
	Season  int    `json:"season" yaml:"season"`
	Episode int    `json:"episode" yaml:"episode"`
	Title   string `json:"title" yaml:"title"`
	// Score is only populated when the candidate was ranked by the fuzzy resolver
	Score int `json:"score,omitempty" yaml:"-"`
}

func (c Candidate) String() string {
	return fmt.Sprintf("S%02dE%02d %s", c.Season, c.Episode, c.Title)
}

// Less orders candidates by season, then episode
func (c Candidate) Less(o Candidate) bool {
	if c.Season != o.Season {
		return c.Season < o.Season
	}
	return c.Episode < o.Episode
}

// Date is a calendar date extracted from a date based naming pattern
type Date struct {
	Year  int
	Month int
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Resolved is the outcome of a successful resolution. Season and Episode are never negative.
// Date is set only for date based patterns, in which case Season holds the year and Episode is 0.
type Resolved struct {
	Season  int
	Episode int
	Title   string
	Date    *Date
	Source  Provenance
}

func (r Resolved) String() string {
	if r.Date != nil {
		return fmt.Sprintf("%s %s (%s)", r.Date, r.Title, r.Source)
	}
	return fmt.Sprintf("S%02dE%02d %s (%s)", r.Season, r.Episode, r.Title, r.Source)
}

// Mode is the resolution mode selected for a request
type Mode int

const (
	ModeFuzzy Mode = iota
	ModePattern
)

func (m Mode) String() string {
	if m == ModePattern {
		return string(ProvenancePattern)
	}
	return string(ProvenanceFuzzy)
}

// MatchRequest is the input for resolving a single file. Exactly one of IgnoreSubstring and Pattern is set.
type MatchRequest struct {
	Path            string
	Series          string
	SeriesID        int
	IgnoreSubstring *regexp.Regexp
	Pattern         *regexp.Regexp
}

// Mode reports which resolver handles the request
func (r MatchRequest) Mode() Mode {
	if r.Pattern != nil {
		return ModePattern
	}
	return ModeFuzzy
}
