package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movierank/internal/domain"
	"github.com/Clark-Hu/movierank/internal/store"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    id::text,
    title,
    poster,
    description,
    release_date,
    genre,
    ratings,
    average_rating,
    created_at,
    updated_at
`

// MovieCreateParams bundles the fields required to create a movie.
type MovieCreateParams struct {
	Title       string
	Poster      string
	Description string
	ReleaseDate string
	Genre       string
	Ratings     []float64
}

// Create inserts a new movie row and returns the stored entity. The average is
// derived from the initial ratings in the same statement.
func (r *MoviesRepository) Create(ctx context.Context, params MovieCreateParams) (domain.Movie, error) {
	ratings := params.Ratings
	if ratings == nil {
		ratings = []float64{}
	}

	query := fmt.Sprintf(`
        INSERT INTO movies (title, poster, description, release_date, genre, ratings, average_rating)
        VALUES ($1,$2,$3,$4,$5,$6::float8[],movie_average($6::float8[]))
        RETURNING %s
    `, movieColumns)

	row := r.pool.QueryRow(ctx, query, params.Title, params.Poster, params.Description, params.ReleaseDate, params.Genre, ratings)
	return scanMovie(row)
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id string) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1::uuid`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// List returns every movie in insertion order.
func (r *MoviesRepository) List(ctx context.Context) ([]domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies ORDER BY created_at, id`, movieColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListByGenre groups movies by genre. Groups appear in order of their first
// movie; movies keep insertion order within a group.
func (r *MoviesRepository) ListByGenre(ctx context.Context) ([]domain.GenreGroup, error) {
	movies, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	groups := make([]domain.GenreGroup, 0)
	for _, movie := range movies {
		i, ok := index[movie.Genre]
		if !ok {
			i = len(groups)
			index[movie.Genre] = i
			groups = append(groups, domain.GenreGroup{Genre: movie.Genre})
		}
		groups[i].Movies = append(groups[i].Movies, movie)
	}
	return groups, nil
}

// DeleteAll empties the catalog and reports how many movies were removed.
func (r *MoviesRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movies`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Summaries resolves movie ids to summaries in the given order. Ids whose
// movie no longer exists come back as placeholders.
func (r *MoviesRepository) Summaries(ctx context.Context, ids []string) ([]domain.MovieSummary, error) {
	if len(ids) == 0 {
		return []domain.MovieSummary{}, nil
	}

	const query = `
        SELECT w.movie_id::text, m.title, m.poster, m.description, m.release_date, m.average_rating
        FROM unnest($1::uuid[]) WITH ORDINALITY AS w(movie_id, ord)
        LEFT JOIN movies m ON m.id = w.movie_id
        ORDER BY w.ord
    `
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.MovieSummary, 0, len(ids))
	for rows.Next() {
		var (
			id          string
			title       *string
			poster      *string
			description *string
			releaseDate *string
			average     *float64
		)
		if err := rows.Scan(&id, &title, &poster, &description, &releaseDate, &average); err != nil {
			return nil, err
		}
		if title == nil {
			items = append(items, domain.MissingMovie(id))
			continue
		}
		items = append(items, domain.MovieSummary{
			ID:            id,
			Title:         *title,
			Poster:        poster,
			Description:   deref(description),
			ReleaseDate:   deref(releaseDate),
			AverageRating: derefFloat(average),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// appendRating atomically appends rating to the movie's history and recomputes
// the rounded average in one statement. Concurrent callers serialize on the
// row lock, so no contribution is lost.
func appendRating(ctx context.Context, db store.DBTX, movieID string, rating float64) (domain.Movie, error) {
	query := fmt.Sprintf(`
        UPDATE movies
        SET ratings = array_append(ratings, $2::float8),
            average_rating = movie_average(array_append(ratings, $2::float8)),
            updated_at = now()
        WHERE id = $1::uuid
        RETURNING %s
    `, movieColumns)

	movie, err := scanMovie(db.QueryRow(ctx, query, movieID, rating))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Poster,
		&movie.Description,
		&movie.ReleaseDate,
		&movie.Genre,
		&movie.Ratings,
		&movie.AverageRating,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	if movie.Ratings == nil {
		movie.Ratings = []float64{}
	}
	return movie, nil
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func derefFloat(ptr *float64) float64 {
	if ptr == nil {
		return 0
	}
	return *ptr
}
