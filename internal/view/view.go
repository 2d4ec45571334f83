// Package view holds the page's story lists as server-side containers and
// refreshes them according to a per-view policy.
package view

import (
	"fmt"

	"snooze-web/internal/render"
	"snooze-web/internal/story"
)

type Kind string

const (
	KindAll       Kind = "all"
	KindOwn       Kind = "own"
	KindFavorites Kind = "favorites"
)

// Policy decides where a view gets its stories from on refresh.
type Policy int

const (
	// PolicyFetch re-fetches the master list on every refresh.
	PolicyFetch Policy = iota
	// PolicyCached renders from the signed-in viewer's state without a round trip.
	PolicyCached
)

func (p Policy) String() string {
	switch p {
	case PolicyFetch:
		return "fetch"
	case PolicyCached:
		return "cached"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

type View struct {
	Kind        Kind
	ContainerID string
	Policy      Policy
	Deletable   bool
	NeedsViewer bool
	Empty       render.EmptyCTA
}

const (
	storyFormAnchor = "#story-form"
	loginFormAnchor = "#login-form"
)

var views = []View{
	{
		Kind:        KindAll,
		ContainerID: "all-stories-list",
		Policy:      PolicyFetch,
		Empty: render.EmptyCTA{
			Text: "No stories yet! Click here to add a story.",
			Href: storyFormAnchor,
		},
	},
	{
		Kind:        KindOwn,
		ContainerID: "my-stories",
		Policy:      PolicyCached,
		Deletable:   true,
		NeedsViewer: true,
		Empty: render.EmptyCTA{
			Text: "No stories added! Click here to add a story.",
			Href: storyFormAnchor,
		},
	},
	{
		Kind:        KindFavorites,
		ContainerID: "favorited-stories",
		Policy:      PolicyCached,
		NeedsViewer: true,
		Empty: render.EmptyCTA{
			Text:   "No favorites added! Click here to view all stories.",
			Href:   "/views/all",
			Target: "#all-stories-list",
		},
	},
}

// EmptyFor is the call to action for viewer. The story form only exists for
// a signed-in viewer, so anonymous visitors are sent to the login form.
func (v View) EmptyFor(viewer *story.Viewer) render.EmptyCTA {
	cta := v.Empty
	if viewer == nil && cta.Href == storyFormAnchor {
		cta.Href = loginFormAnchor
	}
	return cta
}

func Views() []View {
	return append([]View(nil), views...)
}

func Lookup(kind Kind) (View, bool) {
	for _, v := range views {
		if v.Kind == kind {
			return v, true
		}
	}
	return View{}, false
}
