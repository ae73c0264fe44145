package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"task-tracker/internal/config"
	"task-tracker/internal/domain"
	"task-tracker/internal/identity"
	"task-tracker/internal/repository"
	"task-tracker/internal/services"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// App holds the wired services a command runs against.
type App struct {
	config   *config.Config
	repo     repository.Repository
	services *services.ServiceContainer
	logger   *slog.Logger
	out      io.Writer
}

// NewApp wires the services around an open repository.
func NewApp(repo repository.Repository, cfg *config.Config, logger *slog.Logger) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		config:   cfg,
		repo:     repo,
		services: services.NewServiceContainer(repo, cfg, func() time.Time { return timeNow() }, logger),
		logger:   logger,
		out:      os.Stdout,
	}
}

// OpenApp opens the configured repository, applying migrations, and wires
// an App around it.
func OpenApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	repo, err := config.CreateRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewApp(repo, cfg, logger), nil
}

// SetOutput redirects command output, mainly for tests.
func (a *App) SetOutput(w io.Writer) {
	a.out = w
}

// Close releases the repository.
func (a *App) Close() error {
	return a.repo.Close()
}

// principalFor resolves username to the principal commands run as.
func (a *App) principalFor(ctx context.Context, username string) (domain.Principal, error) {
	if username == "" {
		return domain.Anonymous(), nil
	}
	user, err := a.services.UserService.GetUserByUsername(ctx, username)
	if err != nil {
		return domain.Principal{}, err
	}
	return domain.Authenticated(user), nil
}

// newResolver picks the identity resolver named by Identity.Mode.
func (a *App) newResolver() (identity.Resolver, error) {
	switch a.config.Identity.Mode {
	case config.IdentityModeJWT:
		return identity.NewJWTResolver(a.config.Identity.JWTSecret, a.config.Identity.JWTIssuer, a.services.UserService, a.logger), nil
	case config.IdentityModeHeader, "":
		return identity.NewHeaderResolver(a.config.Identity.Header, a.services.UserService, a.logger), nil
	default:
		return nil, &config.ConfigError{Field: "identity.mode", Message: "unsupported mode " + a.config.Identity.Mode}
	}
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
