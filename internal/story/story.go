package story

import (
	"net/url"
	"strings"
	"time"
)

type Story struct {
	ID        string    `json:"storyId"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	URL       string    `json:"url"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// HostName returns the authority part of the story URL without its scheme.
func (s Story) HostName() string {
	if u, err := url.Parse(s.URL); err == nil && u.Host != "" {
		return u.Host
	}
	host := s.URL
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	return host
}

type NewStory struct {
	Title  string `json:"title" form:"title"`
	Author string `json:"author" form:"author"`
	URL    string `json:"url" form:"url"`
}

// Validate only checks form presence and that the URL is an absolute http(s) link.
func (n NewStory) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return &ValidationError{Field: "title"}
	}
	if strings.TrimSpace(n.Author) == "" {
		return &ValidationError{Field: "author"}
	}
	if strings.TrimSpace(n.URL) == "" {
		return &ValidationError{Field: "url"}
	}
	u, err := url.Parse(strings.TrimSpace(n.URL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ValidationError{Field: "url", Reason: "must be an absolute http(s) URL"}
	}
	return nil
}

// Dedupe drops repeated story ids, keeping the first occurrence.
func Dedupe(stories []Story) []Story {
	seen := make(map[string]struct{}, len(stories))
	out := make([]Story, 0, len(stories))
	for _, s := range stories {
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Find returns the story with the given id.
func Find(stories []Story, id string) (Story, bool) {
	for _, s := range stories {
		if s.ID == id {
			return s, true
		}
	}
	return Story{}, false
}
