package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Clark-Hu/movierank/internal/domain"
	"github.com/Clark-Hu/movierank/internal/repository"
	"github.com/Clark-Hu/movierank/internal/validation"
)

// MovieInput is the payload accepted when adding a movie to the catalog.
type MovieInput struct {
	Title       string    `json:"title" validate:"required"`
	Poster      string    `json:"poster" validate:"required"`
	Description string    `json:"description" validate:"required"`
	ReleaseDate string    `json:"releaseDate" validate:"required"`
	Genre       string    `json:"genre" validate:"required"`
	Ratings     []float64 `json:"ratings" validate:"omitempty,dive,gt=0,lte=10"`
}

// Catalog is the CRUD surface over movies.
type Catalog struct {
	movies MovieStore
	logger zerolog.Logger
}

// NewCatalog constructs the catalog service.
func NewCatalog(movies MovieStore, deps Deps) *Catalog {
	return &Catalog{
		movies: movies,
		logger: deps.Logger.With().Str("component", "catalog").Logger(),
	}
}

// List returns every movie.
func (c *Catalog) List(ctx context.Context) ([]domain.Movie, error) {
	movies, err := c.movies.List(ctx)
	if err != nil {
		return nil, storeError("list movies", err)
	}
	return movies, nil
}

// ListByGenre returns movies grouped by genre.
func (c *Catalog) ListByGenre(ctx context.Context) ([]domain.GenreGroup, error) {
	groups, err := c.movies.ListByGenre(ctx)
	if err != nil {
		return nil, storeError("group movies", err)
	}
	return groups, nil
}

// Get fetches one movie. Malformed ids fail before any lookup.
func (c *Catalog) Get(ctx context.Context, id string) (domain.Movie, error) {
	if err := checkID(id); err != nil {
		return domain.Movie{}, err
	}
	movie, err := c.movies.GetByID(ctx, id)
	if err != nil {
		return domain.Movie{}, storeError("get movie", err)
	}
	return movie, nil
}

// Create validates and stores a movie. Initial ratings are accepted and the
// average is derived from them.
func (c *Catalog) Create(ctx context.Context, by domain.Identity, in MovieInput) (domain.Movie, error) {
	if !by.IsAdmin() {
		return domain.Movie{}, ErrForbidden
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Poster = strings.TrimSpace(in.Poster)
	in.Description = strings.TrimSpace(in.Description)
	in.ReleaseDate = strings.TrimSpace(in.ReleaseDate)
	in.Genre = strings.TrimSpace(in.Genre)
	if err := validation.Struct(in); err != nil {
		return domain.Movie{}, invalid(err)
	}

	movie, err := c.movies.Create(ctx, repository.MovieCreateParams{
		Title:       in.Title,
		Poster:      in.Poster,
		Description: in.Description,
		ReleaseDate: in.ReleaseDate,
		Genre:       in.Genre,
		Ratings:     in.Ratings,
	})
	if err != nil {
		return domain.Movie{}, storeError("create movie", err)
	}
	c.logger.Info().Str("movie_id", movie.ID).Str("user_id", by.ID).Str("title", movie.Title).Msg("movie created")
	return movie, nil
}

// DeleteAll empties the catalog. Only administrators may call it.
func (c *Catalog) DeleteAll(ctx context.Context, by domain.Identity) (int64, error) {
	if !by.IsAdmin() {
		return 0, ErrForbidden
	}
	deleted, err := c.movies.DeleteAll(ctx)
	if err != nil {
		return 0, storeError("delete movies", err)
	}
	c.logger.Warn().Str("user_id", by.ID).Int64("deleted", deleted).Msg("catalog emptied")
	return deleted, nil
}
