package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tasktrack/tasktrack/internal/model"
	"github.com/tasktrack/tasktrack/internal/repository"
)

// ErrUnauthorized is returned when a request cannot be tied to a user.
var ErrUnauthorized = errors.New("unauthorized")

// UserLookup loads users by id.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// IdentityCache stores resolved identities.
// GetIdentity returns nil, nil on a miss.
type IdentityCache interface {
	GetIdentity(ctx context.Context, userID string) (*model.Identity, error)
	SetIdentity(ctx context.Context, identity *model.Identity) error
}

// Resolver turns bearer tokens into identities.
type Resolver struct {
	tokens *TokenService
	users  UserLookup
	cache  IdentityCache
	logger *slog.Logger
}

// NewResolver creates a Resolver. cache may be nil.
func NewResolver(tokens *TokenService, users UserLookup, cache IdentityCache, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		tokens: tokens,
		users:  users,
		cache:  cache,
		logger: logger,
	}
}

// Resolve verifies token and loads the identity of its subject.
// Invalid tokens and unknown users both yield ErrUnauthorized.
func (r *Resolver) Resolve(ctx context.Context, token string) (*model.Identity, error) {
	subject, err := r.tokens.Verify(token)
	if err != nil {
		r.logger.Debug("token rejected", slog.String("reason", err.Error()))
		return nil, ErrUnauthorized
	}

	if identity := r.cached(ctx, subject); identity != nil {
		return identity, nil
	}

	user, err := r.users.GetUserByID(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			r.logger.Info("token subject not found", slog.String("user_id", subject))
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	identity := user.Identity()

	if r.cache != nil {
		if err := r.cache.SetIdentity(ctx, identity); err != nil {
			r.logger.Warn("identity cache write failed", slog.String("error", err.Error()))
		}
	}

	return identity, nil
}

func (r *Resolver) cached(ctx context.Context, userID string) *model.Identity {
	if r.cache == nil {
		return nil
	}
	identity, err := r.cache.GetIdentity(ctx, userID)
	if err != nil {
		r.logger.Warn("identity cache read failed", slog.String("error", err.Error()))
		return nil
	}
	return identity
}
