package story

// Viewer is the signed-in user as seen by the page. Token is the credential
// issued by the remote story service and is never rendered.
type Viewer struct {
	Username   string  `json:"username"`
	Name       string  `json:"name"`
	Token      string  `json:"-"`
	OwnStories []Story `json:"stories"`
	Favorites  []Story `json:"favorites"`
}

type FavoriteSet map[string]struct{}

func (f FavoriteSet) Has(id string) bool {
	_, ok := f[id]
	return ok
}

func (v *Viewer) FavoriteSet() FavoriteSet {
	set := make(FavoriteSet, len(v.Favorites))
	for _, s := range v.Favorites {
		set[s.ID] = struct{}{}
	}
	return set
}

// IsFavorite compares by story id, never by value identity.
func (v *Viewer) IsFavorite(id string) bool {
	_, ok := Find(v.Favorites, id)
	return ok
}

func (v *Viewer) AddFavorite(s Story) {
	if v.IsFavorite(s.ID) {
		return
	}
	v.Favorites = append(v.Favorites, s)
}

func (v *Viewer) RemoveFavorite(id string) bool {
	var removed bool
	v.Favorites, removed = without(v.Favorites, id)
	return removed
}

// AddOwnStory puts s at the front, matching the newest-first order of the master list.
func (v *Viewer) AddOwnStory(s Story) {
	if _, ok := Find(v.OwnStories, s.ID); ok {
		return
	}
	v.OwnStories = append([]Story{s}, v.OwnStories...)
}

func (v *Viewer) OwnStory(id string) (Story, bool) {
	return Find(v.OwnStories, id)
}

// RemoveOwnStory drops the story from both own stories and favorites.
func (v *Viewer) RemoveOwnStory(id string) bool {
	var removed bool
	v.OwnStories, removed = without(v.OwnStories, id)
	v.Favorites, _ = without(v.Favorites, id)
	return removed
}

func without(stories []Story, id string) ([]Story, bool) {
	out := make([]Story, 0, len(stories))
	removed := false
	for _, s := range stories {
		if s.ID == id {
			removed = true
			continue
		}
		out = append(out, s)
	}
	return out, removed
}
