// Package api serves the story page, its HTML fragments and a small JSON API.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"snooze-web/internal/app"
	"snooze-web/internal/auth"
	"snooze-web/internal/session"
	"snooze-web/internal/story"
)

// Accounts signs viewers in against the remote story service.
type Accounts interface {
	Login(ctx context.Context, username, password string) (*story.Viewer, error)
	Signup(ctx context.Context, name, username, password string) (*story.Viewer, error)
}

type Services struct {
	Auth          *auth.Service
	App           *app.App
	Sessions      *session.Store
	Accounts      Accounts
	Logger        *zap.Logger
	SecureCookies bool
}

type handlers struct {
	Services
}

func SetupRoutes(router *gin.Engine, services Services) {
	if services.Logger == nil {
		services.Logger = zap.NewNop()
	}
	h := &handlers{Services: services}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	pages := router.Group("/", h.sessionMiddleware())
	pages.GET("/", h.home)
	pages.GET("/views/:kind", h.showView)
	pages.POST("/stories", h.submitStory)
	pages.POST("/stories/import", h.importFeed)
	pages.DELETE("/stories/:id", h.deleteStory)
	pages.POST("/stories/:id/favorite", h.toggleFavorite)
	pages.POST("/login", h.login)
	pages.POST("/signup", h.signup)
	pages.POST("/logout", h.logout)

	api := router.Group("/api", h.sessionMiddleware())
	api.GET("/stories", h.apiStories)
	api.GET("/favorites", h.apiFavorites)
}
