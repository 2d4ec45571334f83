package view

import (
	"html/template"

	"snooze-web/internal/render"
)

// Item is one rendered child of a container. StoryID is empty for the
// empty-state call to action.
type Item struct {
	StoryID string
	HTML    template.HTML
}

// Container is the server-side model of a list element on the page.
type Container struct {
	ID      string
	Items   []Item
	Visible bool
}

func NewContainer(id string) *Container {
	return &Container{ID: id}
}

func (c *Container) Clear() {
	c.Items = nil
}

func (c *Container) Append(it Item) {
	c.Items = append(c.Items, it)
}

// Remove drops the item for storyID and reports whether it was present.
func (c *Container) Remove(storyID string) bool {
	for i, it := range c.Items {
		if it.StoryID != "" && it.StoryID == storyID {
			c.Items = append(c.Items[:i:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Replace swaps the markup of storyID in place.
func (c *Container) Replace(storyID string, html template.HTML) bool {
	for i, it := range c.Items {
		if it.StoryID != "" && it.StoryID == storyID {
			c.Items[i].HTML = html
			return true
		}
	}
	return false
}

func (c *Container) Contains(storyID string) bool {
	for _, it := range c.Items {
		if it.StoryID != "" && it.StoryID == storyID {
			return true
		}
	}
	return false
}

func (c *Container) Show() {
	c.Visible = true
}

func (c *Container) Hide() {
	c.Visible = false
}

func (c *Container) HTML() (template.HTML, error) {
	items := make([]template.HTML, len(c.Items))
	for i, it := range c.Items {
		items[i] = it.HTML
	}
	return render.List(c.ID, items, c.Visible)
}
