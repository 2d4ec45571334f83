package app

import (
	"sync"

	"snooze-web/internal/story"
	"snooze-web/internal/view"
)

// State is everything one browser session sees: the signed-in viewer (nil
// when anonymous) and the page containers. Handlers take mu for their whole
// run, network calls included, so a session's interactions apply in the
// order they were received.
type State struct {
	mu         sync.Mutex
	viewer     *story.Viewer
	containers map[view.Kind]*view.Container
}

func NewState() *State {
	st := &State{containers: make(map[view.Kind]*view.Container)}
	for _, v := range view.Views() {
		st.containers[v.Kind] = view.NewContainer(v.ContainerID)
	}
	return st
}

// Viewer returns a copy of the signed-in viewer, or nil.
func (s *State) Viewer() *story.Viewer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewer == nil {
		return nil
	}
	cp := *s.viewer
	cp.OwnStories = append([]story.Story(nil), s.viewer.OwnStories...)
	cp.Favorites = append([]story.Story(nil), s.viewer.Favorites...)
	return &cp
}

// SignIn replaces the viewer and resets the page, as a fresh page load would.
func (s *State) SignIn(v *story.Viewer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewer = v
	s.resetLocked()
}

func (s *State) SignOut() {
	s.SignIn(nil)
}

func (s *State) resetLocked() {
	for _, c := range s.containers {
		c.Clear()
		c.Hide()
	}
}

func (s *State) container(k view.Kind) *view.Container {
	return s.containers[k]
}
