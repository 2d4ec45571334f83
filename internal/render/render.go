// Package render turns stories and views into HTML fragments. Every function
// is pure: the same input always yields the same markup.
package render

import (
	"html/template"
	"net/url"
	"strings"

	"snooze-web/internal/story"
)

const (
	StarFilled = "fas"
	StarHollow = "far"
)

var (
	fragments = template.Must(template.New("fragments").Parse(fragmentTemplates))
	page      = template.Must(template.Must(fragments.Clone()).New("page").Parse(pageTemplate))
)

type Options struct {
	// Deletable adds the trash control shown on the viewer's own stories.
	Deletable bool
	// View names the list the story is drawn in; favorite requests carry it
	// so the answer can be drawn for the same list.
	View string
}

type storyData struct {
	Story        story.Story
	HostName     string
	Path         string
	FavoritePath string
	Star         string
	Deletable    bool
}

// StarClass is empty when nobody is signed in, so no star is drawn at all.
func StarClass(id string, viewer *story.Viewer) string {
	if viewer == nil {
		return ""
	}
	if viewer.IsFavorite(id) {
		return StarFilled
	}
	return StarHollow
}

func Story(s story.Story, viewer *story.Viewer, opts Options) (template.HTML, error) {
	path := StoryPath(s.ID)
	favPath := path + "/favorite"
	if opts.View != "" {
		favPath += "?view=" + url.QueryEscape(opts.View)
	}
	return execute(fragments, "story", storyData{
		Story:        s,
		HostName:     s.HostName(),
		Path:         path,
		FavoritePath: favPath,
		Star:         StarClass(s.ID, viewer),
		Deletable:    opts.Deletable && viewer != nil,
	})
}

func StoryPath(id string) string {
	return "/stories/" + url.PathEscape(id)
}

// EmptyCTA is the call to action shown in place of an empty list. Href is
// either an in-page anchor or a fragment route swapped into Target.
type EmptyCTA struct {
	Text   string
	Href   string
	Target string
}

// Route reports whether the link loads a fragment rather than jumping to an
// anchor on the current page.
func (c EmptyCTA) Route() bool {
	return strings.HasPrefix(c.Href, "/") && c.Target != ""
}

func EmptyState(cta EmptyCTA) (template.HTML, error) {
	return execute(fragments, "empty", cta)
}

func ErrorBanner(msg string) template.HTML {
	out, err := execute(fragments, "error", msg)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(msg))
	}
	return out
}

func List(id string, items []template.HTML, visible bool) (template.HTML, error) {
	return execute(fragments, "list", struct {
		ID      string
		Items   []template.HTML
		Visible bool
	}{id, items, visible})
}

type PageData struct {
	Viewer *story.Viewer
	Lists  []template.HTML
	Error  string
}

func Page(data PageData) (template.HTML, error) {
	return execute(page, "page", data)
}

func execute(t *template.Template, name string, data any) (template.HTML, error) {
	var sb strings.Builder
	if err := t.ExecuteTemplate(&sb, name, data); err != nil {
		return "", err
	}
	return template.HTML(sb.String()), nil
}
