package story

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostName(t *testing.T) {
	cases := map[string]string{
		"https://x.com/a":                 "x.com",
		"http://news.example.org:8080/p?q": "news.example.org:8080",
		"https://sub.domain.io":           "sub.domain.io",
		"ftp//broken/path":                "ftp",
		"weird://host.tld/rest":           "host.tld",
	}
	for in, want := range cases {
		assert.Equal(t, want, Story{URL: in}.HostName(), in)
	}
}

func TestNewStoryValidate(t *testing.T) {
	ok := NewStory{Title: "A", Author: "Al", URL: "https://x.com/a"}
	require.NoError(t, ok.Validate())

	missing := NewStory{Title: " ", Author: "Al", URL: "https://x.com/a"}
	err := missing.Validate()
	require.ErrorIs(t, err, ErrValidation)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "title", ve.Field)

	for _, u := range []string{"x.com/a", "javascript:alert(1)", "mailto:a@b.c"} {
		err := NewStory{Title: "A", Author: "Al", URL: u}.Validate()
		assert.ErrorIs(t, err, ErrValidation, u)
	}
}

func TestDedupeKeepsFirst(t *testing.T) {
	in := []Story{{ID: "1", Title: "first"}, {ID: "2"}, {ID: "1", Title: "second"}}
	out := Dedupe(in)
	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Title)
	assert.Equal(t, "2", out[1].ID)
}

func TestViewerFavoritesByID(t *testing.T) {
	v := &Viewer{Username: "al"}
	s := Story{ID: "1", Title: "A"}

	assert.False(t, v.IsFavorite("1"))
	v.AddFavorite(s)
	v.AddFavorite(s)
	require.Len(t, v.Favorites, 1)

	// a different value with the same id is the same favorite
	assert.True(t, v.IsFavorite(Story{ID: "1", Title: "renamed"}.ID))
	assert.True(t, v.FavoriteSet().Has("1"))

	assert.True(t, v.RemoveFavorite("1"))
	assert.False(t, v.RemoveFavorite("1"))
	assert.Empty(t, v.Favorites)
}

func TestViewerToggleRoundTrip(t *testing.T) {
	v := &Viewer{Favorites: []Story{{ID: "2"}}}
	before := v.FavoriteSet()

	s := Story{ID: "1"}
	for i := 0; i < 2; i++ {
		if v.IsFavorite(s.ID) {
			v.RemoveFavorite(s.ID)
		} else {
			v.AddFavorite(s)
		}
	}
	assert.Equal(t, before, v.FavoriteSet())
}

func TestViewerOwnStories(t *testing.T) {
	v := &Viewer{OwnStories: []Story{{ID: "1"}}, Favorites: []Story{{ID: "1"}, {ID: "9"}}}
	v.AddOwnStory(Story{ID: "2"})
	require.Equal(t, "2", v.OwnStories[0].ID)

	assert.True(t, v.RemoveOwnStory("1"))
	_, ok := v.OwnStory("1")
	assert.False(t, ok)
	assert.False(t, v.IsFavorite("1"))
	assert.True(t, v.IsFavorite("9"))
	assert.False(t, v.RemoveOwnStory("missing"))
}

func TestServerErrorIs(t *testing.T) {
	err := error(&ServerError{Status: 500, Message: "boom"})
	assert.ErrorIs(t, err, ErrServer)
	assert.NotErrorIs(t, err, ErrNetwork)
	assert.Contains(t, err.Error(), "500")
}
