package lookup

import (
	"context"
	"fmt"

	"github.com/kasuboski/showmatcher/pkg/episode"
)

// Series identifies a show to look up. ID is optional; when set providers query by it instead of by name.
type Series struct {
	Name string
	ID   int
}

func (s Series) String() string {
	if s.ID != 0 {
		return fmt.Sprintf("%s (id %d)", s.Name, s.ID)
	}
	return s.Name
}

// Lookup lists every known episode of a series. Implementations wrap transport
// and service failures in episode.ErrLookupUnavailable.
type Lookup interface {
	ListEpisodes(ctx context.Context, series Series) ([]episode.Candidate, error)
}

// Unavailable wraps err so it matches episode.ErrLookupUnavailable
func Unavailable(series Series, err error) error {
	return fmt.Errorf("%w: %s: %w", episode.ErrLookupUnavailable, series, err)
}
