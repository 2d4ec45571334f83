package api

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"snooze-web/internal/app"
	"snooze-web/internal/render"
	"snooze-web/internal/story"
	"snooze-web/internal/view"
)

type submitRequest struct {
	Title  string `form:"title" binding:"required"`
	Author string `form:"author" binding:"required"`
	URL    string `form:"url" binding:"required"`
}

type importRequest struct {
	FeedURL string `form:"feed_url" binding:"required"`
}

type loginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type signupRequest struct {
	Name     string `form:"name"`
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func (h *handlers) home(c *gin.Context) {
	sess := currentSession(c)
	h.renderPage(c, sess.State, http.StatusOK, "")
}

func (h *handlers) renderPage(c *gin.Context, st *app.State, status int, msg string) {
	lists, err := h.App.Page(c.Request.Context(), st)
	if err != nil {
		var text string
		status, text = describe(err)
		if msg == "" {
			msg = text
		}
		_ = c.Error(err)
	}
	page, err := render.Page(render.PageData{Viewer: st.Viewer(), Lists: lists, Error: msg})
	if err != nil {
		h.Logger.Error("rendering page failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	writeHTML(c, status, page)
}

func (h *handlers) showView(c *gin.Context) {
	kind, err := app.ParseKind(c.Param("kind"))
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := h.App.ShowView(c.Request.Context(), currentSession(c).State, kind)
	if err != nil {
		h.fail(c, err)
		return
	}
	writeHTML(c, http.StatusOK, out)
}

func (h *handlers) submitStory(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, &story.ValidationError{Field: "title, author and url", Reason: "are required"})
		return
	}
	st := currentSession(c).State
	created, err := h.App.SubmitStory(c.Request.Context(), st, story.NewStory{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Logger.Info("story submitted", zap.String("story_id", created.ID), zap.String("username", created.Username))
	h.writeContainer(c, st, view.KindAll)
}

func (h *handlers) importFeed(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, &story.ValidationError{Field: "feed_url"})
		return
	}
	st := currentSession(c).State
	res, err := h.App.ImportFeed(c.Request.Context(), st, req.FeedURL)
	c.Header("X-Imported", strconv.Itoa(len(res.Imported)))
	c.Header("X-Skipped", strconv.Itoa(res.Skipped))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.writeContainer(c, st, view.KindAll)
}

func (h *handlers) deleteStory(c *gin.Context) {
	st := currentSession(c).State
	if err := h.App.DeleteOwnStory(c.Request.Context(), st, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.writeContainer(c, st, view.KindOwn)
}

func (h *handlers) toggleFavorite(c *gin.Context) {
	from := view.Kind(c.DefaultQuery("view", string(view.KindAll)))
	res, err := h.App.ToggleFavorite(c.Request.Context(), currentSession(c).State, c.Param("id"), from)
	if err != nil {
		h.fail(c, err)
		return
	}
	if from == view.KindFavorites {
		if v, ok := view.Lookup(view.KindFavorites); ok {
			c.Header("HX-Retarget", "#"+v.ContainerID)
			c.Header("HX-Reswap", "outerHTML")
		}
	}
	c.Header("X-Favorited", strconv.FormatBool(res.Favorited))
	writeHTML(c, http.StatusOK, res.Fragment)
}

func (h *handlers) login(c *gin.Context) {
	sess := currentSession(c)
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderPage(c, sess.State, http.StatusBadRequest, "username and password are required")
		return
	}
	viewer, err := h.Accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		status, msg := describe(err)
		_ = c.Error(err)
		h.renderPage(c, sess.State, status, msg)
		return
	}
	h.signIn(c, viewer)
}

func (h *handlers) signup(c *gin.Context) {
	sess := currentSession(c)
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderPage(c, sess.State, http.StatusBadRequest, "username and password are required")
		return
	}
	viewer, err := h.Accounts.Signup(c.Request.Context(), req.Name, req.Username, req.Password)
	if err != nil {
		status, msg := describe(err)
		_ = c.Error(err)
		h.renderPage(c, sess.State, status, msg)
		return
	}
	h.signIn(c, viewer)
}

// signIn moves the viewer into a fresh session. The anonymous session id may
// be known to others, so it is dropped rather than promoted.
func (h *handlers) signIn(c *gin.Context, viewer *story.Viewer) {
	old := currentSession(c)
	sess := h.Sessions.Create()
	sess.State.SignIn(viewer)
	h.Sessions.Delete(old.ID)
	c.Set(sessionKey, sess)
	if err := h.issueCookie(c, sess, viewer.Username); err != nil {
		h.Logger.Error("issuing session cookie failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	h.Logger.Info("viewer signed in", zap.String("username", viewer.Username))
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *handlers) logout(c *gin.Context) {
	sess := currentSession(c)
	sess.State.SignOut()
	h.Sessions.Delete(sess.ID)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, "", -1, "/", "", h.SecureCookies, true)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *handlers) apiStories(c *gin.Context) {
	stories, fetchedAt, err := h.App.Stories(c.Request.Context())
	if err != nil {
		status, msg := describe(err)
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories, "count": len(stories), "fetched_at": fetchedAt})
}

func (h *handlers) apiFavorites(c *gin.Context) {
	viewer := currentSession(c).State.Viewer()
	if viewer == nil {
		status, msg := describe(story.ErrNotSignedIn)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	favorites := viewer.Favorites
	if favorites == nil {
		favorites = []story.Story{}
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favorites, "count": len(favorites)})
}

func (h *handlers) writeContainer(c *gin.Context, st *app.State, kind view.Kind) {
	out, err := h.App.Container(st, kind)
	if err != nil {
		h.fail(c, err)
		return
	}
	writeHTML(c, http.StatusOK, out)
}

// fail answers with an error banner fragment.
func (h *handlers) fail(c *gin.Context, err error) {
	status, msg := describe(err)
	_ = c.Error(err)
	writeHTML(c, status, render.ErrorBanner(msg))
}

func writeHTML(c *gin.Context, status int, html template.HTML) {
	c.Data(status, "text/html; charset=utf-8", []byte(html))
}

// describe maps an error to a status code and a message fit for the page.
func describe(err error) (int, string) {
	var ve *story.ValidationError
	var se *story.ServerError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.Is(err, story.ErrNotSignedIn):
		return http.StatusUnauthorized, "Please log in first."
	case errors.Is(err, story.ErrStoryNotFound):
		return http.StatusNotFound, "That story no longer exists."
	case errors.Is(err, app.ErrUnknownView):
		return http.StatusNotFound, "No such page."
	case errors.Is(err, app.ErrNoFeedParser):
		return http.StatusNotImplemented, "Feed import is disabled."
	case errors.As(err, &se) && se.Status >= 400 && se.Status < 500:
		if se.Status == http.StatusUnauthorized {
			return http.StatusUnauthorized, "Invalid username or password."
		}
		if se.Message != "" {
			return se.Status, se.Message
		}
		return se.Status, http.StatusText(se.Status)
	case errors.Is(err, story.ErrServer), errors.Is(err, story.ErrNetwork):
		return http.StatusBadGateway, "The story service is unavailable, please try again."
	default:
		return http.StatusInternalServerError, "Something went wrong."
	}
}
