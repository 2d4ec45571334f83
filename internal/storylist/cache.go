// Package storylist keeps the master list of stories as last fetched from the
// remote story service.
package storylist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"snooze-web/internal/story"
)

type Source interface {
	ListStories(ctx context.Context) ([]story.Story, error)
	CreateStory(ctx context.Context, token string, ns story.NewStory) (story.Story, error)
}

// Cache is shared by every session. The list is swapped wholesale on each
// fetch and never mutated in place, so snapshots handed out stay valid.
type Cache struct {
	src    Source
	logger *zap.Logger

	mutex     sync.RWMutex
	stories   []story.Story
	lastFetch time.Time
}

func New(src Source, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{src: src, logger: logger.With(zap.String("component", "storylist"))}
}

// FetchAll replaces the cached list with the remote one. On failure the
// previous list is kept and the error is returned to the caller.
func (c *Cache) FetchAll(ctx context.Context) ([]story.Story, error) {
	start := time.Now()
	fetched, err := c.src.ListStories(ctx)
	if err != nil {
		c.logger.Warn("fetching stories failed", zap.Error(err))
		return nil, fmt.Errorf("fetching stories: %w", err)
	}
	stories := story.Dedupe(fetched)

	c.mutex.Lock()
	c.stories = stories
	c.lastFetch = time.Now()
	c.mutex.Unlock()

	c.logger.Debug("stories fetched",
		zap.Int("count", len(stories)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return stories, nil
}

// Add submits a new story on behalf of viewer and returns it with its
// server-assigned id. The cached list only changes on the next FetchAll.
func (c *Cache) Add(ctx context.Context, viewer *story.Viewer, ns story.NewStory) (story.Story, error) {
	if viewer == nil {
		return story.Story{}, story.ErrNotSignedIn
	}
	if err := ns.Validate(); err != nil {
		return story.Story{}, err
	}
	created, err := c.src.CreateStory(ctx, viewer.Token, ns)
	if err != nil {
		return story.Story{}, fmt.Errorf("adding story: %w", err)
	}
	if created.Username == "" {
		created.Username = viewer.Username
	}
	c.logger.Info("story added",
		zap.String("story_id", created.ID),
		zap.String("username", viewer.Username),
	)
	return created, nil
}

func (c *Cache) Stories() []story.Story {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return append([]story.Story(nil), c.stories...)
}

func (c *Cache) Find(id string) (story.Story, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return story.Find(c.stories, id)
}

// LastFetch is when the list was last replaced; zero before the first fetch.
func (c *Cache) LastFetch() time.Time {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.lastFetch
}
