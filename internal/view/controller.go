package view

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"snooze-web/internal/render"
	"snooze-web/internal/story"
)

type Lister interface {
	FetchAll(ctx context.Context) ([]story.Story, error)
}

type Controller struct {
	stories Lister
	logger  *zap.Logger
}

func NewController(stories Lister, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{stories: stories, logger: logger.With(zap.String("component", "view"))}
}

// Refresh rebuilds dst for v: obtain the stories, clear, render each one in
// order (or the empty call to action), then show. When the stories cannot be
// obtained dst keeps its previous content.
func (c *Controller) Refresh(ctx context.Context, v View, viewer *story.Viewer, dst *Container) error {
	stories, err := c.source(ctx, v, viewer)
	if err != nil {
		return err
	}

	items := make([]Item, 0, len(stories))
	for _, s := range stories {
		it, err := c.Item(v, s, viewer)
		if err != nil {
			return err
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		cta, err := render.EmptyState(v.EmptyFor(viewer))
		if err != nil {
			return fmt.Errorf("rendering %s empty state: %w", v.Kind, err)
		}
		items = append(items, Item{HTML: cta})
	}

	dst.Clear()
	for _, it := range items {
		dst.Append(it)
	}
	dst.Show()

	c.logger.Debug("view refreshed",
		zap.String("view", string(v.Kind)),
		zap.Stringer("policy", v.Policy),
		zap.Int("stories", len(stories)),
	)
	return nil
}

// Item renders s the way v shows it.
func (c *Controller) Item(v View, s story.Story, viewer *story.Viewer) (Item, error) {
	html, err := render.Story(s, viewer, render.Options{Deletable: v.Deletable, View: string(v.Kind)})
	if err != nil {
		return Item{}, fmt.Errorf("rendering story %s: %w", s.ID, err)
	}
	return Item{StoryID: s.ID, HTML: html}, nil
}

func (c *Controller) source(ctx context.Context, v View, viewer *story.Viewer) ([]story.Story, error) {
	if v.NeedsViewer && viewer == nil {
		return nil, story.ErrNotSignedIn
	}
	switch v.Policy {
	case PolicyFetch:
		return c.stories.FetchAll(ctx)
	case PolicyCached:
		switch v.Kind {
		case KindOwn:
			return viewer.OwnStories, nil
		case KindFavorites:
			return viewer.Favorites, nil
		}
	}
	return nil, fmt.Errorf("view %q has no source for policy %s", v.Kind, v.Policy)
}
