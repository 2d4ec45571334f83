// Package storyapitest runs an in-memory remote story service speaking the
// same JSON protocol as the real one.
package storyapitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"snooze-web/internal/story"
)

var epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

type user struct {
	name      string
	password  string
	token     string
	favorites []string
}

type failRule struct {
	after  int
	status int
}

type Server struct {
	*httptest.Server

	mu        sync.Mutex
	stories   []story.Story
	users     map[string]*user
	tokens    map[string]string
	nextID    int
	failing   int
	failAfter map[string]failRule
	calls     map[string]int
}

func NewServer(t testing.TB) *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		users:     map[string]*user{},
		tokens:    map[string]string{},
		failAfter: map[string]failRule{},
		calls:     map[string]int{},
	}

	r := gin.New()
	r.Use(s.failures())
	r.GET("/stories", s.listStories)
	r.POST("/stories", s.createStory)
	r.DELETE("/stories/:id", s.deleteStory)
	r.GET("/users/:username", s.getUser)
	r.POST("/users/:username/favorites/:id", s.addFavorite)
	r.DELETE("/users/:username/favorites/:id", s.removeFavorite)
	r.POST("/login", s.login)
	r.POST("/signup", s.signup)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// AddUser registers an account and returns its token.
func (s *Server) AddUser(username, password, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := "token-" + username
	s.users[username] = &user{name: name, password: password, token: token}
	s.tokens[token] = username
	return token
}

// AddStory stores a story as the newest one, assigning an id when empty.
func (s *Server) AddStory(st story.Story) story.Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(st)
}

// Fail makes every following request answer with status until Fail(0).
func (s *Server) Fail(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = status
}

// FailAfter lets the first n requests to route through and answers the rest
// with status. Routes are keyed like Calls.
func (s *Server) FailAfter(route string, n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAfter[route] = failRule{after: n, status: status}
}

// Calls reports how many requests hit the route, keyed like "GET /stories".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

func (s *Server) Stories() []story.Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]story.Story(nil), s.stories...)
}

func (s *Server) Favorites(username string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[username]; ok {
		return append([]string(nil), u.favorites...)
	}
	return nil
}

func (s *Server) insert(st story.Story) story.Story {
	s.nextID++
	if st.ID == "" {
		st.ID = fmt.Sprintf("story-%d", s.nextID)
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = epoch.Add(time.Duration(s.nextID) * time.Minute)
	}
	s.stories = append([]story.Story{st}, s.stories...)
	return st
}

func (s *Server) failures() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		key := c.Request.Method + " " + c.FullPath()
		s.calls[key]++
		status := s.failing
		if r, ok := s.failAfter[key]; ok && s.calls[key] > r.after {
			status = r.status
		}
		s.mu.Unlock()
		if status != 0 {
			abort(c, status, "injected failure")
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{
		"status":  status,
		"title":   http.StatusText(status),
		"message": msg,
	}})
}

// authorize resolves the token from the body or query. Callers hold s.mu.
func (s *Server) authorize(c *gin.Context, token string) (string, *user, bool) {
	if token == "" {
		token = c.Query("token")
	}
	name, ok := s.tokens[token]
	if !ok {
		abort(c, http.StatusUnauthorized, "invalid token")
		return "", nil, false
	}
	return name, s.users[name], true
}

func (s *Server) listStories(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"stories": s.stories})
}

func (s *Server) createStory(c *gin.Context) {
	var req struct {
		Token string         `json:"token"`
		Story story.NewStory `json:"story"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	name, _, ok := s.authorize(c, req.Token)
	if !ok {
		return
	}
	if req.Story.Title == "" || req.Story.Author == "" || req.Story.URL == "" {
		abort(c, http.StatusBadRequest, "story requires title, author and url")
		return
	}
	st := s.insert(story.Story{
		Title:    req.Story.Title,
		Author:   req.Story.Author,
		URL:      req.Story.URL,
		Username: name,
	})
	c.JSON(http.StatusCreated, gin.H{"story": st})
}

func (s *Server) deleteStory(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	_ = c.ShouldBindJSON(&req)
	s.mu.Lock()
	defer s.mu.Unlock()
	name, _, ok := s.authorize(c, req.Token)
	if !ok {
		return
	}
	id := c.Param("id")
	st, found := story.Find(s.stories, id)
	if !found {
		abort(c, http.StatusNotFound, "no such story")
		return
	}
	if st.Username != name {
		abort(c, http.StatusForbidden, "only the owner can delete a story")
		return
	}
	kept := s.stories[:0:0]
	for _, other := range s.stories {
		if other.ID != id {
			kept = append(kept, other)
		}
	}
	s.stories = kept
	for _, u := range s.users {
		u.favorites = dropID(u.favorites, id)
	}
	c.JSON(http.StatusOK, gin.H{"message": "story deleted", "story": st})
}

func (s *Server) getUser(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, u, ok := s.authorize(c, "")
	if !ok {
		return
	}
	if name != c.Param("username") {
		abort(c, http.StatusForbidden, "token does not match user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": s.userJSON(name, u)})
}

func (s *Server) addFavorite(c *gin.Context) {
	s.changeFavorite(c, true)
}

func (s *Server) removeFavorite(c *gin.Context) {
	s.changeFavorite(c, false)
}

func (s *Server) changeFavorite(c *gin.Context, add bool) {
	var req struct {
		Token string `json:"token"`
	}
	_ = c.ShouldBindJSON(&req)
	s.mu.Lock()
	defer s.mu.Unlock()
	name, u, ok := s.authorize(c, req.Token)
	if !ok {
		return
	}
	if name != c.Param("username") {
		abort(c, http.StatusForbidden, "token does not match user")
		return
	}
	id := c.Param("id")
	if _, found := story.Find(s.stories, id); !found {
		abort(c, http.StatusNotFound, "no such story")
		return
	}
	u.favorites = dropID(u.favorites, id)
	msg := "favorite removed"
	if add {
		u.favorites = append(u.favorites, id)
		msg = "favorite added"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "user": s.userJSON(name, u)})
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		User struct {
			Username string `json:"username"`
			Password string `json:"password"`
		} `json:"user"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[req.User.Username]
	if !ok || u.password != req.User.Password {
		abort(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": u.token, "user": s.userJSON(req.User.Username, u)})
}

func (s *Server) signup(c *gin.Context) {
	var req struct {
		User struct {
			Name     string `json:"name"`
			Username string `json:"username"`
			Password string `json:"password"`
		} `json:"user"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.User.Username == "" || req.User.Password == "" {
		abort(c, http.StatusBadRequest, "username and password are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.User.Username]; exists {
		abort(c, http.StatusConflict, "username taken")
		return
	}
	token := "token-" + req.User.Username
	u := &user{name: req.User.Name, password: req.User.Password, token: token}
	s.users[req.User.Username] = u
	s.tokens[token] = req.User.Username
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": s.userJSON(req.User.Username, u)})
}

func (s *Server) userJSON(name string, u *user) gin.H {
	own := []story.Story{}
	for _, st := range s.stories {
		if st.Username == name {
			own = append(own, st)
		}
	}
	favs := []story.Story{}
	for _, id := range u.favorites {
		if st, ok := story.Find(s.stories, id); ok {
			favs = append(favs, st)
		}
	}
	return gin.H{"username": name, "name": u.name, "stories": own, "favorites": favs}
}

func dropID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, other := range ids {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}
