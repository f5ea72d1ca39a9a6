package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Clark-Hu/movierank/internal/auth"
	"github.com/Clark-Hu/movierank/internal/domain"
	"github.com/Clark-Hu/movierank/internal/metrics"
	"github.com/Clark-Hu/movierank/internal/repository"
	"github.com/Clark-Hu/movierank/internal/validation"
)

// RegisterInput is a registration request after JSON decoding.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginInput is a login request; EmailOrUsername matches either field.
type LoginInput struct {
	EmailOrUsername string `json:"emailOrUsername" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// LoginResult carries the issued token and the identity it encodes.
type LoginResult struct {
	Token    string
	Identity domain.Identity
}

// Accounts registers users, authenticates them and serves profiles.
type Accounts struct {
	users   UserStore
	movies  MovieStore
	tokens  *auth.TokenService
	hasher  *auth.PasswordHasher
	isAdmin func(string) bool
	metrics *metrics.Metrics
	logger  zerolog.Logger

	// verified against when no user matches the login
	dummyHash string
}

// NewAccounts constructs the account service.
func NewAccounts(users UserStore, movies MovieStore, deps Deps) *Accounts {
	a := &Accounts{
		users:   users,
		movies:  movies,
		tokens:  deps.Tokens,
		hasher:  deps.Hasher,
		isAdmin: deps.IsAdmin,
		metrics: deps.Metrics,
		logger:  deps.Logger.With().Str("component", "accounts").Logger(),
	}
	if hash, err := a.hasher.Hash("movierank-dummy-password"); err == nil {
		a.dummyHash = hash
	}
	return a
}

// Register normalizes and stores a new user. Uniqueness is left to the store
// so concurrent registrations cannot both succeed.
func (a *Accounts) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	in.Email = normalize(in.Email)
	in.Username = normalize(in.Username)
	if err := validation.Struct(in); err != nil {
		a.metrics.Registrations.WithLabelValues("invalid").Inc()
		return domain.User{}, invalid(err)
	}

	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	role := domain.RoleUser
	if a.isAdmin(in.Username) {
		role = domain.RoleAdmin
	}

	user, err := a.users.Create(ctx, repository.UserCreateParams{
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			a.metrics.Registrations.WithLabelValues("duplicate").Inc()
		}
		return domain.User{}, storeError("create user", err)
	}

	a.metrics.Registrations.WithLabelValues("created").Inc()
	a.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user registered")
	return user, nil
}

// Authenticate resolves the login to a user, verifies the password and issues
// a token. Every credential failure returns the same ErrInvalidCredentials.
func (a *Accounts) Authenticate(ctx context.Context, in LoginInput) (LoginResult, error) {
	in.EmailOrUsername = normalize(in.EmailOrUsername)
	if err := validation.Struct(in); err != nil {
		return LoginResult{}, invalid(err)
	}

	user, err := a.users.GetByLogin(ctx, in.EmailOrUsername)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, storeError("find user", err)
		}
		if a.dummyHash != "" {
			_ = a.hasher.Verify(a.dummyHash, in.Password)
		}
		a.metrics.Logins.WithLabelValues("rejected").Inc()
		return LoginResult{}, ErrInvalidCredentials
	}

	if err := a.hasher.Verify(user.PasswordHash, in.Password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			a.logger.Error().Err(err).Str("user_id", user.ID).Msg("stored password hash unusable")
		}
		a.metrics.Logins.WithLabelValues("rejected").Inc()
		return LoginResult{}, ErrInvalidCredentials
	}

	identity := domain.Identity{ID: user.ID, Username: user.Username, Role: user.Role}
	token, err := a.tokens.Issue(identity)
	if err != nil {
		return LoginResult{}, err
	}

	a.metrics.Logins.WithLabelValues("accepted").Inc()
	return LoginResult{Token: token, Identity: identity}, nil
}

// Profile returns the user with its watchlist resolved to movie summaries.
func (a *Accounts) Profile(ctx context.Context, identity domain.Identity) (domain.Profile, error) {
	user, err := a.users.GetByID(ctx, identity.ID)
	if err != nil {
		return domain.Profile{}, storeError("get user", err)
	}
	summaries, err := a.movies.Summaries(ctx, user.Watchlist)
	if err != nil {
		return domain.Profile{}, storeError("resolve watchlist", err)
	}
	return domain.Profile{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Watchlist: summaries,
	}, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
