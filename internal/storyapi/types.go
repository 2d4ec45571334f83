package storyapi

import "snooze-web/internal/story"

type storiesResponse struct {
	Stories []story.Story `json:"stories"`
}

type storyResponse struct {
	Story story.Story `json:"story"`
}

type createStoryRequest struct {
	Token string          `json:"token"`
	Story story.NewStory `json:"story"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type credentials struct {
	Name     string `json:"name,omitempty"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type authRequest struct {
	User credentials `json:"user"`
}

type userPayload struct {
	Username  string        `json:"username"`
	Name      string        `json:"name"`
	Stories   []story.Story `json:"stories"`
	Favorites []story.Story `json:"favorites"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type userResponse struct {
	User userPayload `json:"user"`
}

type errorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Title   string `json:"title"`
		Message string `json:"message"`
	} `json:"error"`
}

func (u userPayload) viewer(token string) *story.Viewer {
	return &story.Viewer{
		Username:   u.Username,
		Name:       u.Name,
		Token:      token,
		OwnStories: story.Dedupe(u.Stories),
		Favorites:  story.Dedupe(u.Favorites),
	}
}
