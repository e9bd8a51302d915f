package naming

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kasuboski/showmatcher/pkg/episode"
)

var invalid = strings.NewReplacer(
	":", "",
	"<", "",
	">", "",
	"/", "",
	"|", "",
	"?", "",
	"*", "",
	"\\", "",
)

// Sanitize removes characters that are not allowed in file names on common file systems
func Sanitize(name string) string {
	return invalid.Replace(name)
}

// BuildDestinationPath returns the path of an episode relative to the destination root.
//
//	Season 2018/Four Corners (1961) S2018E21 Outbreak.mp4
//	Season 2021/Daily Show - 2021-03-04 Guest.mp4
//
// Numbers are padded to two digits and wider numbers are kept as is. ext includes the leading dot.
func BuildDestinationPath(resolved episode.Resolved, series, ext string) string {
	series = Sanitize(series)
	title := strings.TrimSpace(Sanitize(resolved.Title))

	var name string
	if resolved.Date != nil {
		name = fmt.Sprintf("%s - %s", series, resolved.Date)
	} else {
		name = fmt.Sprintf("%s S%02dE%02d", series, resolved.Season, resolved.Episode)
	}

	if title != "" {
		name += " " + title
	}

	return filepath.Join(formatSeasonDirectory(resolved.Season), name+ext)
}

// formatSeasonDirectory formats season number as "Season XX"
func formatSeasonDirectory(season int) string {
	return fmt.Sprintf("Season %02d", season)
}
