package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movierank/internal/domain"
	"github.com/Clark-Hu/movierank/internal/store"
)

// ReviewsRepository persists reviews and keeps movie aggregates in step.
type ReviewsRepository struct {
	pool *pgxpool.Pool
}

// ReviewCreateParams captures the payload required to submit a review.
type ReviewCreateParams struct {
	UserID  string
	MovieID string
	Text    string
	Rating  float64
}

// Submit records a review and folds its rating into the movie aggregate in one
// transaction. The movie update runs first: when the movie is missing nothing
// is written and ErrNotFound is returned.
func (r *ReviewsRepository) Submit(ctx context.Context, params ReviewCreateParams) (domain.Review, domain.Movie, error) {
	var (
		review domain.Review
		movie  domain.Movie
	)
	err := store.WithTx(ctx, r.pool, func(ctx context.Context, tx store.DBTX) error {
		var err error
		movie, err = appendRating(ctx, tx, params.MovieID, params.Rating)
		if err != nil {
			return err
		}

		const query = `
            INSERT INTO reviews (user_id, movie_id, review, rating)
            VALUES ($1::uuid, $2::uuid, $3, $4)
            RETURNING id::text, user_id::text, movie_id::text, review, rating, created_at
        `
		err = tx.QueryRow(ctx, query, params.UserID, params.MovieID, params.Text, params.Rating).Scan(
			&review.ID,
			&review.UserID,
			&review.MovieID,
			&review.Text,
			&review.Rating,
			&review.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert review: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Review{}, domain.Movie{}, err
	}
	return review, movie, nil
}

// ListByMovie returns a movie's reviews with the author's username, oldest first.
func (r *ReviewsRepository) ListByMovie(ctx context.Context, movieID string) ([]domain.MovieReview, error) {
	const query = `
        SELECT r.id::text, r.user_id::text, r.movie_id::text, r.review, r.rating, r.created_at, u.username
        FROM reviews r
        LEFT JOIN users u ON u.id = r.user_id
        WHERE r.movie_id = $1::uuid
        ORDER BY r.created_at, r.id
    `
	rows, err := r.pool.Query(ctx, query, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.MovieReview, 0)
	for rows.Next() {
		var (
			item     domain.MovieReview
			username *string
		)
		if err := rows.Scan(&item.ID, &item.UserID, &item.MovieID, &item.Text, &item.Rating, &item.CreatedAt, &username); err != nil {
			return nil, err
		}
		item.Username = domain.UnknownUsername
		if username != nil {
			item.Username = *username
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListByUser returns a user's reviews joined with movie title and poster. A
// review whose movie is gone is reported with placeholder movie fields.
func (r *ReviewsRepository) ListByUser(ctx context.Context, userID string) ([]domain.ReviewSummary, error) {
	const query = `
        SELECT r.id::text, r.movie_id::text, m.title, m.poster, r.review, r.rating, r.created_at
        FROM reviews r
        LEFT JOIN movies m ON m.id = r.movie_id
        WHERE r.user_id = $1::uuid
        ORDER BY r.created_at, r.id
    `
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.ReviewSummary, 0)
	for rows.Next() {
		var (
			item  domain.ReviewSummary
			title *string
		)
		if err := rows.Scan(&item.ID, &item.MovieID, &title, &item.Poster, &item.Text, &item.Rating, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.MovieTitle = domain.UnknownMovieTitle
		if title != nil {
			item.MovieTitle = *title
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
