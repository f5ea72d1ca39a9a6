package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WatchlistRepository mutates the movie id set stored on each user.
// Movie ids are weak references and are not checked against the catalog.
type WatchlistRepository struct {
	pool *pgxpool.Pool
}

// Add appends movieID to the user's watchlist in a single statement. It
// returns ErrAlreadyPresent when the id is already listed and ErrNotFound when
// the user does not exist.
func (r *WatchlistRepository) Add(ctx context.Context, userID, movieID string) ([]string, error) {
	const query = `
        UPDATE users
        SET watchlist = array_append(watchlist, $2::uuid)
        WHERE id = $1::uuid AND NOT ($2::uuid = ANY(watchlist))
        RETURNING watchlist::text[]
    `

	var watchlist []string
	err := r.pool.QueryRow(ctx, query, userID, movieID).Scan(&watchlist)
	if err == nil {
		return nonNil(watchlist), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1::uuid)`, userID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	return nil, ErrAlreadyPresent
}

// Remove drops movieID from the user's watchlist. Removing an id that is not
// listed leaves the watchlist unchanged.
func (r *WatchlistRepository) Remove(ctx context.Context, userID, movieID string) ([]string, error) {
	const query = `
        UPDATE users
        SET watchlist = array_remove(watchlist, $2::uuid)
        WHERE id = $1::uuid
        RETURNING watchlist::text[]
    `

	var watchlist []string
	if err := r.pool.QueryRow(ctx, query, userID, movieID).Scan(&watchlist); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return nonNil(watchlist), nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
