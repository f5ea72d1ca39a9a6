// Package service implements the account, catalog, review and watchlist
// operations on top of the repositories.
package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Clark-Hu/movierank/internal/auth"
	"github.com/Clark-Hu/movierank/internal/domain"
	"github.com/Clark-Hu/movierank/internal/metrics"
	"github.com/Clark-Hu/movierank/internal/repository"
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, params repository.UserCreateParams) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByLogin(ctx context.Context, login string) (domain.User, error)
}

// MovieStore persists the catalog.
type MovieStore interface {
	Create(ctx context.Context, params repository.MovieCreateParams) (domain.Movie, error)
	GetByID(ctx context.Context, id string) (domain.Movie, error)
	List(ctx context.Context) ([]domain.Movie, error)
	ListByGenre(ctx context.Context) ([]domain.GenreGroup, error)
	DeleteAll(ctx context.Context) (int64, error)
	Summaries(ctx context.Context, ids []string) ([]domain.MovieSummary, error)
}

// ReviewStore persists reviews together with the movie aggregate.
type ReviewStore interface {
	Submit(ctx context.Context, params repository.ReviewCreateParams) (domain.Review, domain.Movie, error)
	ListByMovie(ctx context.Context, movieID string) ([]domain.MovieReview, error)
	ListByUser(ctx context.Context, userID string) ([]domain.ReviewSummary, error)
}

// WatchlistStore mutates per-user watchlists.
type WatchlistStore interface {
	Add(ctx context.Context, userID, movieID string) ([]string, error)
	Remove(ctx context.Context, userID, movieID string) ([]string, error)
}

// Deps carries the collaborators shared by all services.
type Deps struct {
	Tokens  *auth.TokenService
	Hasher  *auth.PasswordHasher
	IsAdmin func(username string) bool
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

// Services bundles every business component.
type Services struct {
	Accounts  *Accounts
	Catalog   *Catalog
	Reviews   *Reviews
	Watchlist *Watchlist
}

// New wires the services over the Postgres repositories.
func New(repo *repository.Repository, deps Deps) *Services {
	return NewWithStores(repo.Users, repo.Movies, repo.Reviews, repo.Watchlist, deps)
}

// NewWithStores wires the services over arbitrary store implementations.
func NewWithStores(users UserStore, movies MovieStore, reviews ReviewStore, lists WatchlistStore, deps Deps) *Services {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.IsAdmin == nil {
		deps.IsAdmin = func(string) bool { return false }
	}
	return &Services{
		Accounts:  NewAccounts(users, movies, deps),
		Catalog:   NewCatalog(movies, deps),
		Reviews:   NewReviews(reviews, deps),
		Watchlist: NewWatchlist(users, movies, lists, deps),
	}
}
