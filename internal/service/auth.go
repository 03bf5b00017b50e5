package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/tasktrack/tasktrack/internal/auth"
	"github.com/tasktrack/tasktrack/internal/metrics"
	"github.com/tasktrack/tasktrack/internal/model"
	"github.com/tasktrack/tasktrack/internal/repository"
)

const (
	maxNameLength  = 100
	maxEmailLength = 100
)

// UserStore persists users.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}

// AccessToken is an issued bearer token.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

// SignupInput defines input for registering a user.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// AuthService handles signup and login.
type AuthService struct {
	users   UserStore
	hasher  *auth.Hasher
	tokens  *auth.TokenService
	metrics metrics.Recorder
	logger  *slog.Logger

	// decoy is verified against when the email is unknown so both login
	// failures cost one hash comparison.
	decoyOnce sync.Once
	decoy     string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, hasher *auth.Hasher, tokens *auth.TokenService, recorder metrics.Recorder, logger *slog.Logger) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		metrics: recorder,
		logger:  logger,
	}
}

// Signup registers a user and returns a token for them.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AccessToken, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)

	if err := validateSignup(name, email, input.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, scheme := s.hasher.Hash(input.Password)

	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same email.
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncSignup()
	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("hash_scheme", scheme.String()),
	)

	return s.issue(user.ID)
}

// Login checks credentials and returns a token.
// Every failure is reported as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AccessToken, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		s.hasher.Verify(password, s.decoyHash())
		s.metrics.IncLogin(metrics.LoginFailure)
		s.logger.Info("login failed", slog.String("reason", "unknown_email"))
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.metrics.IncLogin(metrics.LoginFailure)
		s.logger.Info("login failed",
			slog.String("reason", "bad_password"),
			slog.String("user_id", user.ID),
		)
		return nil, ErrInvalidCredentials
	}

	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}

	s.metrics.IncLogin(metrics.LoginSuccess)
	return s.issue(user.ID)
}

// upgradeHash re-hashes a verified password with the current strong scheme.
// Failures are logged and do not affect the login.
func (s *AuthService) upgradeHash(ctx context.Context, user *model.User, password string) {
	from := auth.DetectScheme(user.PasswordHash)

	hash, err := s.hasher.Rehash(password)
	if err != nil {
		s.logger.Warn("password hash upgrade skipped",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		s.logger.Warn("password hash upgrade failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	s.metrics.IncHashUpgrade()
	s.logger.Info("password hash upgraded",
		slog.String("user_id", user.ID),
		slog.String("from", from.String()),
	)
}

func (s *AuthService) issue(userID string) (*AccessToken, error) {
	token, expiresAt, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AccessToken{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) decoyHash() string {
	s.decoyOnce.Do(func() {
		s.decoy, _ = s.hasher.Hash(ulid.Make().String())
	})
	return s.decoy
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateSignup(name, email, password string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, maxNameLength)
	}
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(email) > maxEmailLength {
		return fmt.Errorf("%w: email must be at most %d characters", ErrInvalidInput, maxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: email is not a valid address", ErrInvalidInput)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	return nil
}
