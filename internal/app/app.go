// Package app implements the interactions of the story page: showing views,
// submitting, deleting and favoriting stories, and importing feeds.
package app

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"go.uber.org/zap"

	"snooze-web/internal/story"
	"snooze-web/internal/storylist"
	"snooze-web/internal/view"
)

// Remote is the part of the remote story service the handlers mutate
// directly; listing and creating go through the story list cache.
type Remote interface {
	DeleteStory(ctx context.Context, token, storyID string) error
	AddFavorite(ctx context.Context, token, username, storyID string) error
	RemoveFavorite(ctx context.Context, token, username, storyID string) error
	Viewer(ctx context.Context, token, username string) (*story.Viewer, error)
}

type Options struct {
	// DeleteRemote sends deletions to the remote service. When false a
	// deletion only affects the session.
	DeleteRemote bool
	ImportLimit  int
}

type App struct {
	stories *storylist.Cache
	ctrl    *view.Controller
	remote  Remote
	feeds   FeedParser
	opts    Options
	logger  *zap.Logger
}

func New(stories *storylist.Cache, remote Remote, feeds FeedParser, opts Options, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ImportLimit <= 0 {
		opts.ImportLimit = 25
	}
	logger = logger.With(zap.String("component", "app"))
	return &App{
		stories: stories,
		ctrl:    view.NewController(stories, logger),
		remote:  remote,
		feeds:   feeds,
		opts:    opts,
		logger:  logger,
	}
}

// ShowView refreshes kind under its policy and returns the container markup.
func (a *App) ShowView(ctx context.Context, st *State, kind view.Kind) (template.HTML, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := a.refreshLocked(ctx, st, kind); err != nil {
		return "", err
	}
	return st.container(kind).HTML()
}

// Container returns the current markup of kind without refreshing it.
func (a *App) Container(st *State, kind view.Kind) (template.HTML, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.container(kind).HTML()
}

// Stories re-fetches and returns the master list with the time it was fetched.
func (a *App) Stories(ctx context.Context) ([]story.Story, time.Time, error) {
	stories, err := a.stories.FetchAll(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	return stories, a.stories.LastFetch(), nil
}

// Page refreshes every view the session can see and returns their markup.
func (a *App) Page(ctx context.Context, st *State) ([]template.HTML, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	a.reloadViewerLocked(ctx, st)

	var lists []template.HTML
	for _, v := range view.Views() {
		if v.NeedsViewer && st.viewer == nil {
			continue
		}
		if err := a.refreshLocked(ctx, st, v.Kind); err != nil {
			return nil, err
		}
		if v.Kind != view.KindAll {
			st.container(v.Kind).Hide()
		}
		html, err := st.container(v.Kind).HTML()
		if err != nil {
			return nil, err
		}
		lists = append(lists, html)
	}
	return lists, nil
}

// reloadViewerLocked replaces the session's viewer with the remote copy so
// favorites and stories changed elsewhere show up on a full page load. The
// session copy is kept when the reload fails.
func (a *App) reloadViewerLocked(ctx context.Context, st *State) {
	if st.viewer == nil {
		return
	}
	fresh, err := a.remote.Viewer(ctx, st.viewer.Token, st.viewer.Username)
	if err != nil {
		a.logger.Warn("reloading viewer failed", zap.String("username", st.viewer.Username), zap.Error(err))
		return
	}
	st.viewer = fresh
}

// SubmitStory creates ns for the signed-in viewer and refreshes the views it
// appears in.
func (a *App) SubmitStory(ctx context.Context, st *State, ns story.NewStory) (story.Story, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.viewer == nil {
		return story.Story{}, story.ErrNotSignedIn
	}
	created, err := a.stories.Add(ctx, st.viewer, ns)
	if err != nil {
		return story.Story{}, err
	}
	st.viewer.AddOwnStory(created)

	if err := a.refreshLocked(ctx, st, view.KindAll, view.KindOwn); err != nil {
		return created, err
	}
	return created, nil
}

// DeleteOwnStory removes one of the viewer's stories. The page is updated
// first; a failing remote delete is reported but not rolled back.
func (a *App) DeleteOwnStory(ctx context.Context, st *State, storyID string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.viewer == nil {
		return story.ErrNotSignedIn
	}
	if _, ok := st.viewer.OwnStory(storyID); !ok {
		return fmt.Errorf("deleting %s: %w", storyID, story.ErrStoryNotFound)
	}

	for _, c := range st.containers {
		c.Remove(storyID)
	}
	st.viewer.RemoveOwnStory(storyID)
	if err := a.refreshLocked(ctx, st, view.KindOwn); err != nil {
		return err
	}

	if !a.opts.DeleteRemote {
		a.logger.Info("story removed from session", zap.String("story_id", storyID))
		return nil
	}
	if err := a.remote.DeleteStory(ctx, st.viewer.Token, storyID); err != nil {
		a.logger.Warn("remote delete failed", zap.String("story_id", storyID), zap.Error(err))
		return fmt.Errorf("deleting %s: %w", storyID, err)
	}
	a.logger.Info("story deleted", zap.String("story_id", storyID), zap.String("username", st.viewer.Username))
	return nil
}

// ToggleResult is the outcome of a favorite toggle. Fragment is the story
// redrawn for the list the click came from, or the whole favorites list when
// the click came from there.
type ToggleResult struct {
	Favorited bool
	Story     story.Story
	Fragment  template.HTML
}

// ToggleFavorite flips the favorite state of storyID as recorded on the
// viewer. The markup is only ever an output of the new state.
func (a *App) ToggleFavorite(ctx context.Context, st *State, storyID string, from view.Kind) (ToggleResult, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	v := st.viewer
	if v == nil {
		return ToggleResult{}, story.ErrNotSignedIn
	}
	s, ok := a.locate(st, storyID)
	if !ok {
		return ToggleResult{}, fmt.Errorf("favoriting %s: %w", storyID, story.ErrStoryNotFound)
	}

	res := ToggleResult{Favorited: !v.IsFavorite(storyID), Story: s}
	if res.Favorited {
		if err := a.remote.AddFavorite(ctx, v.Token, v.Username, storyID); err != nil {
			return ToggleResult{}, fmt.Errorf("favoriting %s: %w", storyID, err)
		}
		v.AddFavorite(s)
	} else {
		if err := a.remote.RemoveFavorite(ctx, v.Token, v.Username, storyID); err != nil {
			return ToggleResult{}, fmt.Errorf("unfavoriting %s: %w", storyID, err)
		}
		v.RemoveFavorite(storyID)
	}

	for _, vw := range view.Views() {
		c := st.container(vw.Kind)
		if vw.Kind == view.KindFavorites || !c.Contains(storyID) {
			continue
		}
		it, err := a.ctrl.Item(vw, s, v)
		if err != nil {
			return res, err
		}
		c.Replace(storyID, it.HTML)
	}
	if err := a.refreshLocked(ctx, st, view.KindFavorites); err != nil {
		return res, err
	}

	if from == view.KindFavorites {
		html, err := st.container(view.KindFavorites).HTML()
		if err != nil {
			return res, err
		}
		res.Fragment = html
	} else {
		vw, ok := view.Lookup(from)
		if !ok {
			vw, _ = view.Lookup(view.KindAll)
		}
		it, err := a.ctrl.Item(vw, s, v)
		if err != nil {
			return res, err
		}
		res.Fragment = it.HTML
	}

	a.logger.Debug("favorite toggled", zap.String("story_id", storyID), zap.Bool("favorited", res.Favorited))
	return res, nil
}

// locate finds a story in the master list, then among the viewer's own
// stories and favorites.
func (a *App) locate(st *State, storyID string) (story.Story, bool) {
	if s, ok := a.stories.Find(storyID); ok {
		return s, true
	}
	if s, ok := story.Find(st.viewer.Favorites, storyID); ok {
		return s, true
	}
	return story.Find(st.viewer.OwnStories, storyID)
}

// refreshLocked refreshes kinds in order, keeping whatever the session can
// see. The first error stops the run.
func (a *App) refreshLocked(ctx context.Context, st *State, kinds ...view.Kind) error {
	for _, k := range kinds {
		v, ok := view.Lookup(k)
		if !ok {
			return fmt.Errorf("unknown view %q", k)
		}
		if v.NeedsViewer && st.viewer == nil {
			return story.ErrNotSignedIn
		}
		if err := a.ctrl.Refresh(ctx, v, st.viewer, st.container(k)); err != nil {
			return fmt.Errorf("refreshing %s view: %w", k, err)
		}
	}
	return nil
}

// ErrUnknownView is returned when a request names a view that does not exist.
var ErrUnknownView = errors.New("unknown view")

func ParseKind(s string) (view.Kind, error) {
	if v, ok := view.Lookup(view.Kind(s)); ok {
		return v.Kind, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}
