package naming

import (
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/kasuboski/showmatcher/pkg/episode"
	"github.com/kasuboski/showmatcher/pkg/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDestinationPath(t *testing.T) {
	tests := []struct {
		name     string
		resolved episode.Resolved
		series   string
		ext      string
		want     string
	}{
		{
			name:     "season and episode with title",
			resolved: episode.Resolved{Season: 2018, Episode: 21, Title: "Outbreak"},
			series:   "Four Corners (1961)",
			ext:      ".mp4",
			want:     "Season 2018/Four Corners (1961) S2018E21 Outbreak.mp4",
		},
		{
			name:     "padded numbers without title",
			resolved: episode.Resolved{Season: 1, Episode: 2},
			series:   "Show",
			ext:      ".mkv",
			want:     "Season 01/Show S01E02.mkv",
		},
		{
			name:     "blank title is dropped",
			resolved: episode.Resolved{Season: 3, Episode: 7, Title: "   "},
			series:   "Show",
			ext:      ".mp4",
			want:     "Season 03/Show S03E07.mp4",
		},
		{
			name:     "wide episode number",
			resolved: episode.Resolved{Season: 2018, Episode: 7},
			series:   "Four Corners (1961)",
			ext:      ".mp4",
			want:     "Season 2018/Four Corners (1961) S2018E07.mp4",
		},
		{
			name:     "invalid characters are removed per field",
			resolved: episode.Resolved{Season: 1, Episode: 1, Title: "What? Why: A/B"},
			series:   "Who*Knows",
			ext:      ".mp4",
			want:     "Season 01/WhoKnows S01E01 What Why AB.mp4",
		},
		{
			name:     "date",
			resolved: episode.Resolved{Season: 2021, Title: "Guest", Date: &episode.Date{Year: 2021, Month: 3, Day: 4}},
			series:   "Daily Show",
			ext:      ".mp4",
			want:     "Season 2021/Daily Show - 2021-03-04 Guest.mp4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildDestinationPath(tt.resolved, tt.series, tt.ext)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestBuildDestinationPath_Deterministic(t *testing.T) {
	r := episode.Resolved{Season: 2018, Episode: 21, Title: "Outbreak", Source: episode.ProvenanceFuzzy}
	first := BuildDestinationPath(r, "Four Corners (1961)", ".mp4")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, BuildDestinationPath(r, "Four Corners (1961)", ".mp4"))
	}
}

func TestBuildDestinationPath_Snapshot(t *testing.T) {
	resolved := []episode.Resolved{
		{Season: 2018, Episode: 20, Title: "The Trap"},
		{Season: 2018, Episode: 21, Title: "Outbreak"},
		{Season: 2019, Episode: 1, Title: "Inside the Firm"},
		{Season: 0, Episode: 3, Title: "Special: Behind the Scenes"},
		{Season: 12, Episode: 104},
	}

	paths := make([]string, 0, len(resolved))
	for _, r := range resolved {
		paths = append(paths, filepath.ToSlash(BuildDestinationPath(r, "Four Corners (1961)", ".mp4")))
	}

	snaps.MatchSnapshot(t, strings.Join(paths, "\n"))
}

func TestBuildDestinationPath_RoundTrip(t *testing.T) {
	re := regexp.MustCompile(`S(?P<season>\d+)E(?P<episode>\d+)`)
	files := []string{
		"Four Corners S2018E21.mp4",
		"Show S01E02.mkv",
		"Show S10E100.mp4",
	}

	for _, f := range files {
		r, err := pattern.Resolve(f, re)
		require.NoError(t, err)

		got := BuildDestinationPath(r, "Show", filepath.Ext(f))
		again, err := pattern.Resolve(got, re)
		require.NoError(t, err)

		assert.Equal(t, r.Season, again.Season, f)
		assert.Equal(t, r.Episode, again.Episode, f)
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "ABCDEFGH", Sanitize(`A:B<C>D/E|F?G*H`))
	assert.Equal(t, "AB", Sanitize(`A\B`))
	assert.Equal(t, "Four Corners (1961)", Sanitize("Four Corners (1961)"))
}
