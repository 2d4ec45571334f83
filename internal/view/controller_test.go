package view

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snooze-web/internal/story"
)

type fakeLister struct {
	stories []story.Story
	err     error
	calls   int
}

func (f *fakeLister) FetchAll(context.Context) ([]story.Story, error) {
	f.calls++
	return f.stories, f.err
}

func mustView(t *testing.T, k Kind) View {
	t.Helper()
	v, ok := Lookup(k)
	require.True(t, ok)
	return v
}

func html(t *testing.T, c *Container) string {
	t.Helper()
	out, err := c.HTML()
	require.NoError(t, err)
	return string(out)
}

func TestRefreshAllFetchesEveryTime(t *testing.T) {
	lister := &fakeLister{stories: []story.Story{
		{ID: "1", Title: "A", URL: "https://x.com/a"},
		{ID: "2", Title: "B", URL: "https://y.com/b"},
	}}
	ctrl := NewController(lister, nil)
	all := mustView(t, KindAll)
	c := NewContainer(all.ContainerID)

	require.NoError(t, ctrl.Refresh(context.Background(), all, nil, c))
	require.NoError(t, ctrl.Refresh(context.Background(), all, nil, c))

	assert.Equal(t, 2, lister.calls)
	require.Len(t, c.Items, 2)
	assert.Equal(t, "1", c.Items[0].StoryID)
	assert.True(t, c.Visible)
	out := html(t, c)
	assert.Less(t, strings.Index(out, "story-1"), strings.Index(out, "story-2"))
	assert.NotContains(t, out, "fav-star")
}

func TestRefreshCachedViewsDoNotFetch(t *testing.T) {
	lister := &fakeLister{}
	ctrl := NewController(lister, nil)
	viewer := &story.Viewer{
		Username:   "al",
		OwnStories: []story.Story{{ID: "1", Title: "mine"}},
		Favorites:  []story.Story{{ID: "2", Title: "liked"}},
	}

	own := mustView(t, KindOwn)
	oc := NewContainer(own.ContainerID)
	require.NoError(t, ctrl.Refresh(context.Background(), own, viewer, oc))
	assert.Contains(t, html(t, oc), "delete-story")
	assert.Contains(t, html(t, oc), "mine")

	favs := mustView(t, KindFavorites)
	fc := NewContainer(favs.ContainerID)
	require.NoError(t, ctrl.Refresh(context.Background(), favs, viewer, fc))
	assert.Contains(t, html(t, fc), `fa-star fas`)
	assert.NotContains(t, html(t, fc), "delete-story")

	assert.Zero(t, lister.calls)
}

func TestRefreshEmptyState(t *testing.T) {
	ctrl := NewController(&fakeLister{}, nil)
	viewer := &story.Viewer{Username: "al"}

	for _, k := range []Kind{KindOwn, KindFavorites} {
		v := mustView(t, k)
		c := NewContainer(v.ContainerID)
		c.Append(Item{StoryID: "stale"})
		require.NoError(t, ctrl.Refresh(context.Background(), v, viewer, c))
		require.Len(t, c.Items, 1)
		assert.Empty(t, c.Items[0].StoryID)
		assert.Contains(t, html(t, c), v.Empty.Text)
	}
}

func TestRefreshRemovedOwnStoryIsGone(t *testing.T) {
	ctrl := NewController(&fakeLister{}, nil)
	viewer := &story.Viewer{Username: "al", OwnStories: []story.Story{{ID: "1"}, {ID: "2"}}}
	own := mustView(t, KindOwn)
	c := NewContainer(own.ContainerID)

	require.NoError(t, ctrl.Refresh(context.Background(), own, viewer, c))
	viewer.RemoveOwnStory("1")
	require.NoError(t, ctrl.Refresh(context.Background(), own, viewer, c))

	assert.NotContains(t, html(t, c), "story-1")
	assert.Contains(t, html(t, c), "story-2")
}

func TestRefreshFailureKeepsContent(t *testing.T) {
	lister := &fakeLister{stories: []story.Story{{ID: "1"}}}
	ctrl := NewController(lister, nil)
	all := mustView(t, KindAll)
	c := NewContainer(all.ContainerID)
	require.NoError(t, ctrl.Refresh(context.Background(), all, nil, c))

	lister.err = fmt.Errorf("boom: %w", story.ErrNetwork)
	err := ctrl.Refresh(context.Background(), all, nil, c)
	require.ErrorIs(t, err, story.ErrNetwork)
	assert.True(t, c.Contains("1"))
}

func TestRefreshNeedsViewer(t *testing.T) {
	ctrl := NewController(&fakeLister{}, nil)
	own := mustView(t, KindOwn)
	err := ctrl.Refresh(context.Background(), own, nil, NewContainer(own.ContainerID))
	require.ErrorIs(t, err, story.ErrNotSignedIn)
}

func TestContainerOps(t *testing.T) {
	c := NewContainer("x")
	c.Append(Item{StoryID: "0", HTML: "<li>0</li>"})
	c.Append(Item{StoryID: "1", HTML: "<li>1</li>"})
	assert.Equal(t, "0", c.Items[0].StoryID)

	assert.True(t, c.Replace("1", "<li>one</li>"))
	assert.Equal(t, "<li>one</li>", string(c.Items[1].HTML))
	assert.True(t, c.Remove("0"))
	assert.False(t, c.Remove("0"))
	assert.False(t, c.Remove(""))
	require.Len(t, c.Items, 1)

	c.Clear()
	assert.Empty(t, c.Items)
	assert.Equal(t, `<ol id="x" class="stories-list" hidden></ol>`, html(t, c))
}

func TestViewPolicies(t *testing.T) {
	assert.Equal(t, PolicyFetch, mustView(t, KindAll).Policy)
	assert.Equal(t, PolicyCached, mustView(t, KindOwn).Policy)
	assert.Equal(t, PolicyCached, mustView(t, KindFavorites).Policy)
	_, ok := Lookup("bogus")
	assert.False(t, ok)
	assert.Len(t, Views(), 3)
}

func TestEmptyStateLinks(t *testing.T) {
	ctrl := NewController(&fakeLister{}, nil)
	viewer := &story.Viewer{Username: "al"}

	for _, v := range Views() {
		c := NewContainer(v.ContainerID)
		require.NoError(t, ctrl.Refresh(context.Background(), v, viewer, c))
		out := html(t, c)
		assert.Contains(t, out, v.Empty.Text, v.Kind)
		assert.NotContains(t, out, `hx-get="#`, v.Kind)
		assert.NotContains(t, out, `hx-target="#`+v.ContainerID+`"`, "%s must not swap itself", v.Kind)
	}

	favs := NewContainer("favorited-stories")
	require.NoError(t, ctrl.Refresh(context.Background(), mustView(t, KindFavorites), viewer, favs))
	assert.Contains(t, html(t, favs), `href="/views/all" hx-get="/views/all" hx-target="#all-stories-list"`)

	anon := NewContainer("all-stories-list")
	require.NoError(t, ctrl.Refresh(context.Background(), mustView(t, KindAll), nil, anon))
	assert.Contains(t, html(t, anon), `href="#login-form"`)
	assert.NotContains(t, html(t, anon), "#story-form")
}
