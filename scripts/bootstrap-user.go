package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/tasktrack/tasktrack/internal/auth"
	"github.com/tasktrack/tasktrack/internal/metrics"
	"github.com/tasktrack/tasktrack/internal/repository"
	"github.com/tasktrack/tasktrack/internal/service"
)

type output struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		secretKey   = flag.String("secret-key", os.Getenv("SECRET_KEY"), "Token signing secret")
		name        = flag.String("name", "Demo User", "Display name")
		email       = flag.String("email", "demo@tasktrack.local", "User email")
		password    = flag.String("password", "", "User password")
		bcryptCost  = flag.Int("bcrypt-cost", 12, "Password hashing work factor")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" || *secretKey == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL, SECRET_KEY and -password are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	tokens := auth.NewTokenService(*secretKey, "HS256", 24*time.Hour, logger)
	svc := service.NewAuthService(repo, auth.NewHasher(*bcryptCost, logger), tokens, metrics.NewNoop(), logger)

	// Signing up twice is fine: fall back to logging in.
	token, err := svc.Signup(ctx, service.SignupInput{Name: *name, Email: *email, Password: *password})
	if errors.Is(err, service.ErrEmailTaken) {
		token, err = svc.Login(ctx, *email, *password)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "bootstrap user:", err)
		os.Exit(1)
	}

	user, err := repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(*email)))
	if err != nil {
		fmt.Fprintln(os.Stderr, "load user:", err)
		os.Exit(1)
	}

	out := output{
		UserID:      user.ID,
		Email:       user.Email,
		AccessToken: token.Token,
		ExpiresAt:   token.ExpiresAt,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.AccessToken)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
