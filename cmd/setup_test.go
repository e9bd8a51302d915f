package cmd

import (
	"context"
	"testing"

	"github.com/kasuboski/showmatcher/config"
	"github.com/kasuboski/showmatcher/pkg/lookup"
	"github.com/kasuboski/showmatcher/pkg/tmdb"
	"github.com/kasuboski/showmatcher/pkg/tvdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLookup(t *testing.T) {
	t.Run("tvdb by default", func(t *testing.T) {
		l, err := newLookup(config.Config{Lookup: config.Lookup{TVDB: config.TVDB{APIKey: "key"}}})
		require.NoError(t, err)
		assert.IsType(t, &tvdb.Client{}, l)
	})

	t.Run("tvdb needs a key", func(t *testing.T) {
		_, err := newLookup(config.Config{Lookup: config.Lookup{Provider: "tvdb"}})
		assert.ErrorIs(t, err, tvdb.ErrMissingAPIKey)
	})

	t.Run("tmdb", func(t *testing.T) {
		l, err := newLookup(config.Config{Lookup: config.Lookup{Provider: "tmdb", TMDB: config.TMDB{APIKey: "key"}}})
		require.NoError(t, err)
		assert.IsType(t, &tmdb.Client{}, l)
	})

	t.Run("fixture", func(t *testing.T) {
		l, err := newLookup(config.Config{Lookup: config.Lookup{Provider: "fixture", Fixture: "../pkg/lookup/testing/four_corners.yaml"}})
		require.NoError(t, err)
		assert.IsType(t, &lookup.Fixture{}, l)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := newLookup(config.Config{Lookup: config.Lookup{Provider: "imdb"}})
		assert.Error(t, err)
	})
}

func TestNewMatcher(t *testing.T) {
	cfg := config.Config{
		Directory:     "/in",
		Destination:   "/out",
		SeriesName:    "Show",
		NamingPattern: `S(?P<season>\d+)E(?P<episode>\d+)`,
		DryRun:        true,
	}

	r, err := newResolver(cfg)
	require.NoError(t, err)
	assert.Nil(t, r)

	m, err := newMatcher(cfg, r)
	require.NoError(t, err)

	resolved, err := m.Resolve(context.Background(), m.Request("/in/Show S01E02.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "/out/Season 01/Show S01E02.mp4", m.Destination("/in/Show S01E02.mp4", resolved))
}

func TestIsKnownConfigType(t *testing.T) {
	assert.True(t, isKnownConfigType(".yaml"))
	assert.True(t, isKnownConfigType(".properties"))
	assert.False(t, isKnownConfigType(".matcherrc"))
	assert.False(t, isKnownConfigType(""))
}
