package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Clark-Hu/movierank/internal/domain"
)

// Watchlist maintains each user's ordered set of movie ids.
type Watchlist struct {
	users  UserStore
	movies MovieStore
	lists  WatchlistStore
	logger zerolog.Logger
}

// NewWatchlist constructs the watchlist service.
func NewWatchlist(users UserStore, movies MovieStore, lists WatchlistStore, deps Deps) *Watchlist {
	return &Watchlist{
		users:  users,
		movies: movies,
		lists:  lists,
		logger: deps.Logger.With().Str("component", "watchlist").Logger(),
	}
}

// Add appends movieID to the caller's watchlist. The id is not checked against
// the catalog.
func (w *Watchlist) Add(ctx context.Context, by domain.Identity, movieID string) ([]string, error) {
	if err := checkID(movieID); err != nil {
		return nil, err
	}
	ids, err := w.lists.Add(ctx, by.ID, movieID)
	if err != nil {
		return nil, storeError("add to watchlist", err)
	}
	return ids, nil
}

// Remove drops movieID from the caller's watchlist. Removing an absent id
// returns the watchlist unchanged.
func (w *Watchlist) Remove(ctx context.Context, by domain.Identity, movieID string) ([]string, error) {
	if err := checkID(movieID); err != nil {
		return nil, err
	}
	ids, err := w.lists.Remove(ctx, by.ID, movieID)
	if err != nil {
		return nil, storeError("remove from watchlist", err)
	}
	return ids, nil
}

// List resolves the caller's watchlist to summaries, with placeholders for
// movies that no longer exist.
func (w *Watchlist) List(ctx context.Context, by domain.Identity) ([]domain.MovieSummary, error) {
	user, err := w.users.GetByID(ctx, by.ID)
	if err != nil {
		return nil, storeError("get user", err)
	}
	summaries, err := w.movies.Summaries(ctx, user.Watchlist)
	if err != nil {
		return nil, storeError("resolve watchlist", err)
	}
	return summaries, nil
}
