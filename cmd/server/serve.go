package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"snooze-web/internal/api"
	"snooze-web/internal/app"
	"snooze-web/internal/auth"
	"snooze-web/internal/config"
	"snooze-web/internal/session"
	"snooze-web/internal/storyapi"
	"snooze-web/internal/storylist"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Arranca el servidor web",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	// Configurar logger estructurado
	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("🚀 Iniciando SNOOZE WEB", zap.String("remote", cfg.Remote.BaseURL))

	// Inicializar servicios
	client := storyapi.New(storyapi.Config{
		BaseURL:  cfg.Remote.BaseURL,
		Timeout:  cfg.Remote.Timeout.Std(),
		RetryMax: cfg.Remote.RetryMax,
	}, logger)
	stories := storylist.New(client, logger)
	application := app.New(stories, client, app.NewFeedParser(cfg.Stories.ImportTimeout.Std()), app.Options{
		DeleteRemote: cfg.Stories.DeleteRemote,
		ImportLimit:  cfg.Stories.ImportLimit,
	}, logger)
	authService := auth.NewService(cfg.JWT.Secret, cfg.JWT.Expiration.Std())

	sessions := session.NewStore(cfg.JWT.Expiration.Std(), logger)
	sessions.StartJanitor(cfg.Session.CleanupInterval.Std())
	defer sessions.Close()

	// Configurar Gin
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Middleware de logging
	router.Use(api.RequestLogger(logger))
	router.Use(gin.Recovery())

	// CORS
	router.Use(api.CORS(cfg.CORS.AllowOrigins))

	// Middleware de seguridad
	router.Use(api.SecurityHeaders())

	api.SetupRoutes(router, api.Services{
		Auth:          authService,
		App:           application,
		Sessions:      sessions,
		Accounts:      client,
		Logger:        logger,
		SecureCookies: cfg.Server.SecureCookies,
	})

	// Crear servidor HTTP
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
		IdleTimeout:  cfg.Server.IdleTimeout.Std(),
	}

	// Iniciar servidor en goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Info("🌐 Servidor iniciando en", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Esperar señal de interrupción
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		logger.Error("❌ Error iniciando servidor", zap.Error(err))
		return err
	case <-ctx.Done():
	}

	logger.Info("🛑 Cerrando servidor...")

	// Contexto con timeout para shutdown graceful
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ Error cerrando servidor", zap.Error(err))
		return err
	}

	logger.Info("✅ Servidor cerrado exitosamente")
	return nil
}
