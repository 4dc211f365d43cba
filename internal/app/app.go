package app

import (
	"context"
	"fmt"
	"log/slog"

	httpapp "jwt_auth/internal/app/http"
	"jwt_auth/internal/config"
	"jwt_auth/internal/lib/jwt"
	"jwt_auth/internal/lib/password"
	"jwt_auth/internal/repository"
	"jwt_auth/internal/services/auth"
	"jwt_auth/internal/services/identity"
	services "jwt_auth/internal/services/token_service"
	httprouters "jwt_auth/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
	repo       *repository.Repository
}

// New builds the service graph for cfg. Routes are registered but the server is not started.
func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	repo, err := repository.NewRepository(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	codec, err := jwt.NewCodec(cfg.Token.Algorithm)
	if err != nil {
		_ = repo.Close()

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tokens, err := services.NewTokenService(codec, services.Secrets{
		AccessSecret:  []byte(cfg.Token.AccessSecret),
		RefreshSecret: []byte(cfg.Token.RefreshSecret),
		AccessTTL:     cfg.Token.AccessTTL,
		RefreshTTL:    cfg.Token.RefreshTTL,
	})
	if err != nil {
		_ = repo.Close()

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	authService := auth.New(log, repo.User, password.NewHasher(cfg.Password.Cost), tokens)
	resolver := identity.New(log, tokens, repo.User)

	routers := httprouters.NewRouter(log, authService)

	server := httpapp.New(log, cfg.HTTP, routers, resolver)
	server.BuildRouters()

	log.Info("application initialized",
		slog.String("storage", cfg.Storage.Driver),
		slog.String("algorithm", codec.Algorithm()),
	)

	return &App{
		HTTPServer: server,
		repo:       repo,
	}, nil
}

// Stop shuts the HTTP server down, then closes the store.
func (a *App) Stop() error {
	const op = "app.Stop"

	if err := a.HTTPServer.Stop(); err != nil {
		_ = a.repo.Close()

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.repo.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
