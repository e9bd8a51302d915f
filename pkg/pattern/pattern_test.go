package pattern

import (
	"regexp"
	"testing"

	"github.com/kasuboski/showmatcher/pkg/episode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		pattern  string
		want     episode.Resolved
	}{
		{
			name:     "season and episode",
			filename: "/downloads/Show S03E07.mp4",
			pattern:  `Show S(?P<season>[0-9]+)E(?P<episode>[0-9]+)`,
			want:     episode.Resolved{Season: 3, Episode: 7, Source: episode.ProvenancePattern},
		},
		{
			name:     "with name group",
			filename: "Four Corners - 2019x04 - The Trap.mp4",
			pattern:  `(?P<season>\d{4})x(?P<episode>\d+) - (?P<name>.+)$`,
			want:     episode.Resolved{Season: 2019, Episode: 4, Title: "The Trap", Source: episode.ProvenancePattern},
		},
		{
			name:     "name group trimmed",
			filename: "Show 1x02   Pilot  .mkv",
			pattern:  `(?P<season>\d+)x(?P<episode>\d+)(?P<name>.*)`,
			want:     episode.Resolved{Season: 1, Episode: 2, Title: "Pilot", Source: episode.ProvenancePattern},
		},
		{
			name:     "extension is not matched",
			filename: "Show S01E02.mp4",
			pattern:  `S(?P<season>\d+)E(?P<episode>\d+)(?P<name>.*)`,
			want:     episode.Resolved{Season: 1, Episode: 2, Source: episode.ProvenancePattern},
		},
		{
			name:     "date pattern",
			filename: "Nightly News 2018.03.05.mp4",
			pattern:  `(?P<year>\d{4})\.(?P<month>\d{2})\.(?P<day>\d{2})`,
			want: episode.Resolved{
				Season: 2018,
				Date:   &episode.Date{Year: 2018, Month: 3, Day: 5},
				Source: episode.ProvenancePattern,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.filename, regexp.MustCompile(tt.pattern))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	re := regexp.MustCompile(`S(?P<season>\d+)E(?P<episode>\d+)`)
	first, err := Resolve("Show S10E100.mp4", re)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		got, err := Resolve("Show S10E100.mp4", re)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestResolve_Errors(t *testing.T) {
	t.Run("no match", func(t *testing.T) {
		re := regexp.MustCompile(`Show S(?P<season>[0-9]+)E(?P<episode>[0-9]+)`)
		_, err := Resolve("RandomJunk.mp4", re)
		assert.ErrorIs(t, err, episode.ErrNoPatternMatch)
	})

	t.Run("episode group absent", func(t *testing.T) {
		re := regexp.MustCompile(`Show S(?P<season>[0-9]+)`)
		_, err := Resolve("Show S01E02.mp4", re)
		assert.ErrorIs(t, err, episode.ErrPatternMissingField)

		var mfe *episode.MissingFieldError
		require.ErrorAs(t, err, &mfe)
		assert.Equal(t, "episode", mfe.Field)
		assert.Contains(t, err.Error(), "--ignore-substring")
	})

	t.Run("optional episode group did not participate", func(t *testing.T) {
		re := regexp.MustCompile(`S(?P<season>\d+)(?:E(?P<episode>\d+))?`)
		_, err := Resolve("Show S01 Special.mp4", re)
		assert.ErrorIs(t, err, episode.ErrPatternMissingField)
	})

	t.Run("season not a number", func(t *testing.T) {
		re := regexp.MustCompile(`S(?P<season>\w+)E(?P<episode>\d+)`)
		_, err := Resolve("Show SxxE02.mp4", re)

		var mfe *episode.MissingFieldError
		require.ErrorAs(t, err, &mfe)
		assert.Equal(t, "season", mfe.Field)
		assert.Equal(t, "xx", mfe.Value)
	})

	t.Run("date missing day", func(t *testing.T) {
		re := regexp.MustCompile(`(?P<year>\d{4})-(?P<month>\d{2})(?:-(?P<day>\d{2}))?`)
		_, err := Resolve("News 2018-03.mp4", re)
		assert.ErrorIs(t, err, episode.ErrPatternMissingField)
	})
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{name: "season episode", expr: `S(?P<season>\d+)E(?P<episode>\d+)`},
		{name: "date", expr: `(?P<year>\d{4})(?P<month>\d{2})(?P<day>\d{2})`},
		{name: "invalid regex", expr: `S(?P<season>\d+`, wantErr: true},
		{name: "missing episode", expr: `S(?P<season>\d+)`, wantErr: true},
		{name: "date missing month", expr: `(?P<year>\d{4})-(?P<day>\d{2})`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re, err := Compile(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, re)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, re)
		})
	}
}

func TestCompile_MissingGroupSuggestsFuzzyMode(t *testing.T) {
	for _, expr := range []string{`S(?P<season>\d+)`, `(?P<year>\d{4})-(?P<day>\d{2})`} {
		_, err := Compile(expr)
		assert.ErrorIs(t, err, episode.ErrPatternMissingField)
		assert.ErrorContains(t, err, "--ignore-substring")
	}
}
